package httpcore

import "strings"

// mimeTypes maps a lowercase file extension (including the leading dot)
// to its Content-Type. The original source's 8-entry table is expanded
// here per SPEC_FULL.md §4.2's MIME table note to cover the common static
// asset types a Go static server is expected to serve.
var mimeTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
	".woff": "font/woff",
	".woff2": "font/woff2",
	".wasm": "application/wasm",
	".xml":  "application/xml; charset=utf-8",
	".pdf":  "application/pdf",
	".gz":   "application/gzip",
}

const defaultMimeType = "application/octet-stream"

// MimeTypeForPath returns the Content-Type for path based on its
// extension, falling back to defaultMimeType for unknown or missing
// extensions.
func MimeTypeForPath(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return defaultMimeType
	}
	ext := strings.ToLower(path[idx:])
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return defaultMimeType
}
