package reactor

import "testing"

func TestConnectionCompactSlidesRemainder(t *testing.T) {
	var c Connection
	c.reset(5, 0)
	c.inputLen = copy(c.input[:], "GET / HTTP/1.1\r\n\r\nGET /next HTTP/1.1\r\n\r\n")

	first := c.inputLen - len("GET /next HTTP/1.1\r\n\r\n")
	c.compact(first)

	if string(c.input[:c.inputLen]) != "GET /next HTTP/1.1\r\n\r\n" {
		t.Fatalf("after compact, buffer = %q", c.input[:c.inputLen])
	}
}

func TestConnectionCompactZeroIsNoop(t *testing.T) {
	var c Connection
	c.reset(5, 0)
	c.inputLen = copy(c.input[:], "hello")
	c.compact(0)
	if string(c.input[:c.inputLen]) != "hello" {
		t.Fatalf("buffer changed after compact(0): %q", c.input[:c.inputLen])
	}
}

func TestConnectionIdleFor(t *testing.T) {
	var c Connection
	c.reset(5, 1000)
	if got := c.idleFor(1500); got != 500 {
		t.Fatalf("idleFor = %d, want 500", got)
	}
	c.touch(1400)
	if got := c.idleFor(1500); got != 100 {
		t.Fatalf("idleFor after touch = %d, want 100", got)
	}
}

func TestConnectionInputTailShrinksAsBufferFills(t *testing.T) {
	var c Connection
	c.reset(5, 0)
	full := len(c.inputTail())
	c.inputLen = 10
	if got := len(c.inputTail()); got != full-10 {
		t.Fatalf("inputTail len = %d, want %d", got, full-10)
	}
}
