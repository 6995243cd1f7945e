package httpcore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/outpostlabs/edged/pkg/edged/util"
)

const staticPrefix = "/static/"

// RouteStats is the minimal read-only metrics snapshot /metrics needs to
// render its body. httpcore stays decoupled from the metrics package's
// concrete counters so it can be unit-tested without a live process.
type RouteStats struct {
	Body string
}

// Route dispatches req to the matching handler and prepares resp
// accordingly. staticRoot is the filesystem directory backing
// "/static/...". forceClose overrides keep-alive even when the request did
// not ask for it: the response closes if forceClose or req.ConnectionClose
// is set.
//
// Route never returns an error for well-formed requests: handler failures
// (missing file, method mismatch, ...) are turned into error responses via
// BuildErrorResponse. An error is only returned if resp itself cannot hold
// the assembled response (errHeadTooLarge / errBodyTooLarge), which the
// caller should treat as a 500.
func Route(req *Request, resp *Response, staticRoot string, metricsBody string, forceClose bool) error {
	closeAfterSend := forceClose || req.ConnectionClose
	path := req.RoutablePath()

	switch {
	case path == "/healthz":
		return routeHealthz(req, resp, closeAfterSend)
	case path == "/metrics":
		return routeMetrics(req, resp, metricsBody, closeAfterSend)
	case path == "/echo":
		return routeEcho(req, resp, closeAfterSend)
	case strings.HasPrefix(path, staticPrefix):
		return routeStatic(req, resp, staticRoot, closeAfterSend)
	default:
		return BuildErrorResponse(resp, 404, closeAfterSend)
	}
}

func routeHealthz(req *Request, resp *Response, closeAfterSend bool) error {
	if req.Method != "GET" {
		return BuildErrorResponse(resp, 405, closeAfterSend)
	}
	return resp.PrepareMemory(200, "text/plain; charset=utf-8", []byte("ok"), closeAfterSend)
}

func routeMetrics(req *Request, resp *Response, body string, closeAfterSend bool) error {
	if req.Method != "GET" {
		return BuildErrorResponse(resp, 405, closeAfterSend)
	}
	return resp.PrepareMemory(200, "text/plain; charset=utf-8", []byte(body), closeAfterSend)
}

func routeEcho(req *Request, resp *Response, closeAfterSend bool) error {
	if req.Method != "POST" {
		return BuildErrorResponse(resp, 405, closeAfterSend)
	}
	return resp.PrepareMemory(200, "application/octet-stream", req.Body, closeAfterSend)
}

func routeStatic(req *Request, resp *Response, staticRoot string, closeAfterSend bool) error {
	if req.Method != "GET" {
		return BuildErrorResponse(resp, 405, closeAfterSend)
	}

	rel := strings.TrimPrefix(req.RoutablePath(), staticPrefix)
	if !util.IsSafeRelPath(rel) {
		return BuildErrorResponse(resp, 400, closeAfterSend)
	}

	fullPath := filepath.Join(staticRoot, rel)
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || isNotDirErr(err) {
			return BuildErrorResponse(resp, 404, closeAfterSend)
		}
		return BuildErrorResponse(resp, 500, closeAfterSend)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return BuildErrorResponse(resp, 500, closeAfterSend)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return BuildErrorResponse(resp, 404, closeAfterSend)
	}

	contentType := MimeTypeForPath(fullPath)
	return resp.PrepareFile(200, contentType, f, info.Size(), closeAfterSend)
}

func isNotDirErr(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return strings.Contains(pathErr.Err.Error(), "not a directory")
	}
	return false
}

// BuildErrorResponse prepares a small plain-text error body for the given
// status, porting route_not_found/route_method_not_allowed/
// route_bad_request/route_payload_too_large/route_server_error from the
// original router.
func BuildErrorResponse(resp *Response, status int, closeAfterSend bool) error {
	body := statusReason(status) + "\n"
	return resp.PrepareMemory(status, "text/plain; charset=utf-8", []byte(body), closeAfterSend)
}
