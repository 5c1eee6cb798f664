// internal/app/system/limits/limits.go
package limits

// Request body size limits for the API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the maximum size of a JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxMultipartMemory bounds the in-memory part of a multipart body;
	// larger files spill to temp files. Per-file and file-count limits are
	// enforced by the uploads package.
	MaxMultipartMemory = 32 << 20 // 32 MB
)
