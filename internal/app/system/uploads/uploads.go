// internal/app/system/uploads/uploads.go
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/artisanbridge/artisanbridge/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Upload limits.
const (
	MaxFiles    = 5
	MaxFileSize = 10 << 20
)

var (
	ErrTooManyFiles = fmt.Errorf("at most %d files may be uploaded", MaxFiles)
	ErrFileTooLarge = fmt.Errorf("each file must be %d MB or smaller", MaxFileSize>>20)
)

// Backend is the part of a storage.Store the uploader needs.
type Backend interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
}

// Uploader stores multipart files and reduces them to file references.
type Uploader struct {
	backend   Backend
	urlPrefix string
	dir       string
	log       *zap.Logger
}

// New returns an Uploader writing under dir (e.g. "help-requests") and
// producing URLs rooted at urlPrefix (e.g. "/files").
func New(backend Backend, urlPrefix, dir string, log *zap.Logger) *Uploader {
	return &Uploader{
		backend:   backend,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		dir:       strings.Trim(dir, "/"),
		log:       log,
	}
}

// SaveAll stores files in order. Limits are checked before anything is
// written; if a write fails, files already stored by this call are removed.
func (u *Uploader) SaveAll(ctx context.Context, files []*multipart.FileHeader) ([]models.FileRef, error) {
	if len(files) == 0 {
		return []models.FileRef{}, nil
	}
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}
	for _, fh := range files {
		if fh.Size > MaxFileSize {
			return nil, ErrFileTooLarge
		}
	}

	refs := make([]models.FileRef, 0, len(files))
	stored := make([]string, 0, len(files))
	for _, fh := range files {
		p, ref, err := u.save(ctx, fh)
		if err != nil {
			u.cleanup(ctx, stored)
			return nil, err
		}
		stored = append(stored, p)
		refs = append(refs, ref)
	}
	return refs, nil
}

func (u *Uploader) save(ctx context.Context, fh *multipart.FileHeader) (string, models.FileRef, error) {
	f, err := fh.Open()
	if err != nil {
		return "", models.FileRef{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// dir/YYYY/MM/uuid-filename
	now := time.Now().UTC()
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(fh.Filename))
	p := path.Join(u.dir, fmt.Sprintf("%04d/%02d", now.Year(), now.Month()), name)

	if err := u.backend.Put(ctx, p, f, &storage.PutOptions{ContentType: contentType}); err != nil {
		return "", models.FileRef{}, fmt.Errorf("failed to upload file: %w", err)
	}
	return p, models.FileRef{
		FileName: fh.Filename,
		FileURL:  u.urlPrefix + "/" + p,
		FileType: contentType,
	}, nil
}

func (u *Uploader) cleanup(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := u.backend.Delete(ctx, p); err != nil {
			u.log.Warn("failed to remove partial upload", zap.String("path", p), zap.Error(err))
		}
	}
}

// Discard removes files previously returned by SaveAll. It is used when the
// record that would reference them could not be written.
func (u *Uploader) Discard(ctx context.Context, refs []models.FileRef) {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		if p, ok := strings.CutPrefix(ref.FileURL, u.urlPrefix+"/"); ok {
			paths = append(paths, p)
		}
	}
	u.cleanup(ctx, paths)
}

// IsLimitError reports whether err is a client-side upload limit violation.
func IsLimitError(err error) bool {
	return errors.Is(err, ErrTooManyFiles) || errors.Is(err, ErrFileTooLarge)
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "file"
	}
	if len(result) > 100 {
		// keep a short extension
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
