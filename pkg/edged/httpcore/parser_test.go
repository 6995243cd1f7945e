package httpcore

import (
	"strings"
	"testing"
)

func TestParseRequestSimpleGET(t *testing.T) {
	raw := "GET /healthz HTTP/1.1\r\nHost: example.com\r\n\r\n"
	result, req, consumed, status := ParseRequest([]byte(raw))
	if result != OK {
		t.Fatalf("result = %v, status = %d, want OK", result, status)
	}
	if consumed != len(raw) {
		t.Fatalf("consumed = %d, want %d", consumed, len(raw))
	}
	if req.Method != "GET" || req.Path != "/healthz" || req.Version != "HTTP/1.1" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.ContentLength != 0 || len(req.Body) != 0 {
		t.Fatalf("expected empty body, got %+v", req)
	}
}

func TestParseRequestWithBody(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	result, req, consumed, _ := ParseRequest([]byte(raw))
	if result != OK {
		t.Fatalf("result = %v, want OK", result)
	}
	if consumed != len(raw) {
		t.Fatalf("consumed = %d, want %d", consumed, len(raw))
	}
	if string(req.Body) != "hello" {
		t.Fatalf("body = %q, want %q", req.Body, "hello")
	}
}

// TestParseRequestIncrementalSafety verifies that feeding the parser every
// prefix of a request never reports OK early and always agrees with
// parsing the full buffer in one shot, per the incremental-safety property
// in SPEC_FULL.md §8.
func TestParseRequestIncrementalSafety(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 11\r\nConnection: close\r\n\r\nhello world"

	_, wantReq, wantConsumed, _ := ParseRequest([]byte(raw))

	for i := 0; i < len(raw); i++ {
		result, req, consumed, status := ParseRequest([]byte(raw[:i]))
		if result == OK {
			t.Fatalf("prefix len %d falsely reported OK (status %d)", i, status)
		}
		if result == ParseError {
			t.Fatalf("prefix len %d falsely reported ParseError (status %d)", i, status)
		}
		_ = req
		_ = consumed
	}

	result, req, consumed, _ := ParseRequest([]byte(raw))
	if result != OK {
		t.Fatalf("full buffer result = %v, want OK", result)
	}
	if consumed != wantConsumed || string(req.Body) != string(wantReq.Body) {
		t.Fatalf("full parse mismatch: %+v vs %+v", req, wantReq)
	}
}

func TestParseRequestMalformedRequestLine(t *testing.T) {
	cases := []string{
		"GET /onlyonespace\r\n\r\n",
		"GET / HTTP/1.1 extra\r\n\r\n",
		"GET/nospace HTTP/1.1\r\n\r\n",
	}
	for _, raw := range cases {
		result, _, _, status := ParseRequest([]byte(raw))
		if result != ParseError || status != 400 {
			t.Errorf("%q: result=%v status=%d, want ParseError/400", raw, result, status)
		}
	}
}

func TestParseRequestBadVersion(t *testing.T) {
	raw := "GET / HTTP/1.0\r\n\r\n"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 505 {
		t.Fatalf("result=%v status=%d, want ParseError/505", result, status)
	}
}

func TestParseRequestURITooLong(t *testing.T) {
	raw := "GET /" + strings.Repeat("a", MaxPathLen+1) + " HTTP/1.1\r\n\r\n"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 414 {
		t.Fatalf("result=%v status=%d, want ParseError/414", result, status)
	}
}

func TestParseRequestHeaderTooLarge(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", MaxHeaderValLen+1) + "\r\n\r\n"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 431 {
		t.Fatalf("result=%v status=%d, want ParseError/431", result, status)
	}
}

func TestParseRequestTooManyHeaders(t *testing.T) {
	var b strings.Builder
	b.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < MaxHeaders+1; i++ {
		b.WriteString("X-H: v\r\n")
	}
	b.WriteString("\r\n")
	result, _, _, status := ParseRequest([]byte(b.String()))
	if result != ParseError || status != 431 {
		t.Fatalf("result=%v status=%d, want ParseError/431", result, status)
	}
}

func TestParseRequestContentLengthTooLarge(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 999999999\r\n\r\n"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 413 {
		t.Fatalf("result=%v status=%d, want ParseError/413", result, status)
	}
}

func TestParseRequestDuplicateContentLengthConsistent(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 5\r\n\r\nhello"
	result, req, _, _ := ParseRequest([]byte(raw))
	if result != OK {
		t.Fatalf("result = %v, want OK", result)
	}
	if req.ContentLength != 5 {
		t.Fatalf("ContentLength = %d, want 5", req.ContentLength)
	}
}

func TestParseRequestDuplicateContentLengthConflicting(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nContent-Length: 5\r\nContent-Length: 6\r\n\r\nhello!"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 400 {
		t.Fatalf("result=%v status=%d, want ParseError/400", result, status)
	}
}

func TestParseRequestTransferEncodingRejected(t *testing.T) {
	raw := "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n"
	result, _, _, status := ParseRequest([]byte(raw))
	if result != ParseError || status != 400 {
		t.Fatalf("result=%v status=%d, want ParseError/400", result, status)
	}
}

func TestParseRequestConnectionClose(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nConnection: close\r\n\r\n"
	result, req, _, _ := ParseRequest([]byte(raw))
	if result != OK || !req.ConnectionClose {
		t.Fatalf("result=%v ConnectionClose=%v, want OK/true", result, req.ConnectionClose)
	}
}

func TestRoutablePathStripsQuery(t *testing.T) {
	r := Request{Path: "/static/a.html?x=1"}
	if got := r.RoutablePath(); got != "/static/a.html" {
		t.Fatalf("RoutablePath = %q, want /static/a.html", got)
	}
}
