package httpcore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRouteHealthz(t *testing.T) {
	req := &Request{Method: "GET", Path: "/healthz"}
	var resp Response
	if err := Route(req, &resp, ".", "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !strings.Contains(string(resp.HeadPending()), "200 OK") {
		t.Fatalf("head = %q, want 200 OK", resp.HeadPending())
	}
}

func TestRouteMetricsBody(t *testing.T) {
	req := &Request{Method: "GET", Path: "/metrics"}
	var resp Response
	if err := Route(req, &resp, ".", "requests_total 5\n", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if string(resp.BodyPending()) != "requests_total 5\n" {
		t.Fatalf("body = %q", resp.BodyPending())
	}
}

func TestRouteEchoReflectsBody(t *testing.T) {
	req := &Request{Method: "POST", Path: "/echo", Body: []byte("ping")}
	var resp Response
	if err := Route(req, &resp, ".", "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if string(resp.BodyPending()) != "ping" {
		t.Fatalf("body = %q, want ping", resp.BodyPending())
	}
}

func TestRouteEchoWrongMethod(t *testing.T) {
	req := &Request{Method: "GET", Path: "/echo"}
	var resp Response
	if err := Route(req, &resp, ".", "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !strings.Contains(string(resp.HeadPending()), "405") {
		t.Fatalf("head = %q, want 405", resp.HeadPending())
	}
}

func TestRouteUnknownPath404(t *testing.T) {
	req := &Request{Method: "GET", Path: "/nope"}
	var resp Response
	if err := Route(req, &resp, ".", "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !strings.Contains(string(resp.HeadPending()), "404") {
		t.Fatalf("head = %q, want 404", resp.HeadPending())
	}
}

func TestRouteStaticServesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := &Request{Method: "GET", Path: "/static/a.txt"}
	var resp Response
	if err := Route(req, &resp, dir, "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if resp.File() == nil {
		t.Fatalf("expected file response")
	}
	if resp.FileRemain() != 5 {
		t.Fatalf("FileRemain = %d, want 5", resp.FileRemain())
	}
	if !strings.Contains(string(resp.HeadPending()), "text/plain") {
		t.Fatalf("head = %q, want text/plain content-type", resp.HeadPending())
	}
	resp.Reset()
}

func TestRouteStaticRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	req := &Request{Method: "GET", Path: "/static/../secret.txt"}
	var resp Response
	if err := Route(req, &resp, dir, "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !strings.Contains(string(resp.HeadPending()), "400") {
		t.Fatalf("head = %q, want 400", resp.HeadPending())
	}
}

func TestRouteStaticMissingFile404(t *testing.T) {
	dir := t.TempDir()
	req := &Request{Method: "GET", Path: "/static/missing.txt"}
	var resp Response
	if err := Route(req, &resp, dir, "", false); err != nil {
		t.Fatalf("Route: %v", err)
	}
	if !strings.Contains(string(resp.HeadPending()), "404") {
		t.Fatalf("head = %q, want 404", resp.HeadPending())
	}
}

func TestBuildErrorResponseSetsClose(t *testing.T) {
	var resp Response
	if err := BuildErrorResponse(&resp, 500, true); err != nil {
		t.Fatalf("BuildErrorResponse: %v", err)
	}
	if !resp.CloseAfterSend {
		t.Fatalf("CloseAfterSend = false, want true")
	}
	if !strings.Contains(string(resp.HeadPending()), "500") {
		t.Fatalf("head = %q, want 500", resp.HeadPending())
	}
}
