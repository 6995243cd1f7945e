package httpcore

import (
	"strings"

	"github.com/outpostlabs/edged/pkg/edged/util"
)

// ParseResult is the verdict of ParseRequest.
type ParseResult int

const (
	// Incomplete means buf does not yet hold a full request; the caller
	// should wait for more bytes and call ParseRequest again with a
	// longer prefix.
	Incomplete ParseResult = iota

	// OK means buf[:Consumed] is exactly one well-formed request.
	OK

	// ParseError means buf[:something] is malformed; Status carries the
	// HTTP status code the caller should respond with.
	ParseError
)

// ParseRequest consumes a prefix of buf and reports one of Incomplete, OK,
// or ParseError. It is a pure, restartable function: it never mutates buf,
// and calling it repeatedly on growing prefixes of the same byte stream
// always agrees with calling it once on the full stream (incremental
// safety, see SPEC_FULL.md §8).
//
// On OK, consumed is the header-block length plus Content-Length, and
// req.Body aliases buf[headerBlockLen:consumed] — it must not be retained
// past the next compaction of the connection's input buffer.
func ParseRequest(buf []byte) (result ParseResult, req Request, consumed int, status int) {
	headerEnd := findHeaderTerminator(buf)
	if headerEnd < 0 {
		return Incomplete, Request{}, 0, 0
	}
	headerBlockLen := headerEnd + 4

	lineEnd := findCRLF(buf[:headerBlockLen], 0)
	if lineEnd < 0 {
		return ParseError, Request{}, 0, 400
	}
	if lineEnd > MaxRequestLineLen {
		return ParseError, Request{}, 0, 414
	}

	line := string(buf[:lineEnd])
	sp1 := strings.IndexByte(line, ' ')
	if sp1 < 0 {
		return ParseError, Request{}, 0, 400
	}
	sp2 := strings.IndexByte(line[sp1+1:], ' ')
	if sp2 < 0 {
		return ParseError, Request{}, 0, 400
	}
	sp2 += sp1 + 1
	if strings.IndexByte(line[sp2+1:], ' ') >= 0 {
		return ParseError, Request{}, 0, 400
	}

	method := line[:sp1]
	path := line[sp1+1 : sp2]
	version := line[sp2+1:]

	if len(method) > MaxMethodLen || len(path) > MaxPathLen || len(version) > MaxVersionLen {
		return ParseError, Request{}, 0, 414
	}
	if version != httpVersion11 {
		return ParseError, Request{}, 0, 505
	}

	var (
		contentLength    int
		sawContentLength bool
		connectionClose  bool
		headerCount      int
	)

	pos := lineEnd + 2
	for pos < headerBlockLen {
		hdrLineEnd := findCRLF(buf[:headerBlockLen], pos)
		if hdrLineEnd < 0 {
			return ParseError, Request{}, 0, 400
		}

		hdrLen := hdrLineEnd - pos
		if hdrLen == 0 {
			break // blank line: end of headers
		}

		line := buf[pos:hdrLineEnd]
		colon := indexByteSlice(line, ':')
		if colon < 0 {
			return ParseError, Request{}, 0, 400
		}

		nameLen := colon
		valueLen := hdrLen - colon - 1
		if nameLen == 0 || nameLen > MaxHeaderNameLen || valueLen > MaxHeaderValLen {
			return ParseError, Request{}, 0, 431
		}

		name := string(line[:colon])
		value := util.TrimSpaceTab(string(line[colon+1:]))

		switch {
		case util.EqualFoldASCII(name, "Content-Length"):
			parsed, status, ok := parseContentLength(value)
			if !ok {
				return ParseError, Request{}, 0, status
			}
			if sawContentLength && contentLength != parsed {
				return ParseError, Request{}, 0, 400
			}
			sawContentLength = true
			contentLength = parsed
		case util.EqualFoldASCII(name, "Connection"):
			if util.EqualFoldASCII(value, "close") {
				connectionClose = true
			}
		case util.EqualFoldASCII(name, "Transfer-Encoding"):
			// Hardened per SPEC_FULL.md REDESIGN FLAGS: rather than
			// silently misparsing the encoded body as the next request,
			// reject outright.
			return ParseError, Request{}, 0, 400
		}

		headerCount++
		if headerCount > MaxHeaders {
			return ParseError, Request{}, 0, 431
		}

		pos = hdrLineEnd + 2
	}

	totalNeeded := headerBlockLen + contentLength
	if len(buf) < totalNeeded {
		return Incomplete, Request{}, 0, 0
	}

	req = Request{
		Method:          method,
		Path:            path,
		Version:         version,
		ContentLength:   contentLength,
		ConnectionClose: connectionClose,
		Body:            buf[headerBlockLen:totalNeeded],
	}

	return OK, req, totalNeeded, 0
}

// findHeaderTerminator returns the index of the first byte of the first
// "\r\n\r\n" in buf, or -1 if not present.
func findHeaderTerminator(buf []byte) int {
	if len(buf) < 4 {
		return -1
	}
	for i := 3; i < len(buf); i++ {
		if buf[i-3] == '\r' && buf[i-2] == '\n' && buf[i-1] == '\r' && buf[i] == '\n' {
			return i - 3
		}
	}
	return -1
}

// findCRLF returns the index of the '\r' of the first "\r\n" at or after
// from within buf, or -1 if none is present.
func findCRLF(buf []byte, from int) int {
	for i := from + 1; i < len(buf); i++ {
		if buf[i-1] == '\r' && buf[i] == '\n' {
			return i - 1
		}
	}
	return -1
}

func indexByteSlice(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// parseContentLength parses an all-digit decimal string, rejecting empty
// values, non-digit characters, and values that exceed MaxContentLength.
func parseContentLength(value string) (parsed int, status int, ok bool) {
	if value == "" {
		return 0, 400, false
	}

	total := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, 400, false
		}
		total = total*10 + int(c-'0')
		if total > MaxContentLength {
			return 0, 413, false
		}
	}

	return total, 0, true
}
