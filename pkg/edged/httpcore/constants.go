// Package httpcore implements the restartable HTTP/1.1 request parser and
// the response assembler/router. Every function here is pure: no socket,
// no clock, no global state — the reactor package drives them.
package httpcore

// Field length caps, mirroring include/http_parser.h and
// include/http_router.h in the original source.
const (
	MaxMethodLen     = 15
	MaxPathLen       = 2047
	MaxVersionLen    = 15
	MaxHeaderNameLen = 63
	MaxHeaderValLen  = 1023
	MaxHeaders       = 64

	// MaxContentLength is the largest Content-Length this server accepts,
	// and doubles as the /echo body cap (the two caps are intentionally
	// tied, see SPEC_FULL.md §9).
	MaxContentLength = 128 * 1024

	// MaxRequestLineLen is the longest accepted request line
	// (method + SP + path + SP + version), before the terminating CRLF.
	MaxRequestLineLen = 4096

	// ResponseHeadCap is the capacity of a response's serialized head.
	ResponseHeadCap = 2 * 1024

	// ResponseBodyCap is the capacity of a response's inline body buffer.
	ResponseBodyCap = MaxContentLength

	// InputBufferCap is the capacity of a connection's input buffer.
	InputBufferCap = 256 * 1024
)

const httpVersion11 = "HTTP/1.1"
