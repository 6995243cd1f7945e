package httpcore

import "strings"

// Request is a fully parsed HTTP/1.1 request line plus the headers this
// server cares about. Body aliases a slice of the connection's input
// buffer: it is only valid until the buffer is next compacted, exactly as
// described in SPEC_FULL.md's "Borrowed body pointer" design note.
type Request struct {
	Method          string
	Path            string
	Version         string
	ContentLength   int
	ConnectionClose bool
	Body            []byte
}

// RoutablePath returns the request path with any "?query" suffix removed.
func (r *Request) RoutablePath() string {
	if idx := strings.IndexByte(r.Path, '?'); idx >= 0 {
		return r.Path[:idx]
	}
	return r.Path
}
