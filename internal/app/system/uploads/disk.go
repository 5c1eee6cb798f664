// internal/app/system/uploads/disk.go
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/spf13/afero"
)

// Disk is a Backend that writes into an afero filesystem. Paths are
// slash-separated and relative to the filesystem root.
type Disk struct {
	fs afero.Fs
}

// NewDisk returns a Disk rooted at the directory root, creating it if needed.
func NewDisk(root string) (*Disk, error) {
	if root == "" {
		return nil, errors.New("uploads: disk root is empty")
	}
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create root: %w", err)
	}
	return NewDiskFs(afero.NewBasePathFs(osfs, root)), nil
}

// NewDiskFs returns a Disk over fsys.
func NewDiskFs(fsys afero.Fs) *Disk {
	return &Disk{fs: fsys}
}

func cleanPath(p string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "." || clean == ".." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("uploads: invalid path %q", p)
	}
	return clean, nil
}

// Put writes r to p, replacing any existing file.
func (d *Disk) Put(ctx context.Context, p string, r io.Reader, _ *storage.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := cleanPath(p)
	if err != nil {
		return err
	}
	dir := path.Dir(name)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := afero.TempFile(d.fs, dir, ".upload-*")
	if err != nil {
		return err
	}
	tmpName := path.Join(dir, path.Base(tmp.Name()))
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		d.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		d.fs.Remove(tmpName)
		return err
	}
	return d.fs.Rename(tmpName, name)
}

// Delete removes p. Removing a missing file is not an error.
func (d *Disk) Delete(_ context.Context, p string) error {
	name, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := d.fs.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
