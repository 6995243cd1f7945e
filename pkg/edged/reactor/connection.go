package reactor

import (
	"github.com/outpostlabs/edged/pkg/edged/httpcore"
)

// Connection holds everything the worker needs to drive one accepted
// socket through request parsing, routing, and response flushing. Its
// input buffer is owned by the connection for its entire lifetime — it
// is never reallocated, only compacted — so httpcore.Request.Body can
// safely alias it between a parse and the next compaction.
type Connection struct {
	fd int

	input    [httpcore.InputBufferCap]byte
	inputLen int

	resp httpcore.Response

	lastActivityMs int64
}

// reset prepares a freshly accept()ed or about-to-be-reused Connection
// slot. Conn tables never shrink, so slots are reused across their
// lifetime rather than reallocated.
func (c *Connection) reset(fd int, nowMs int64) {
	c.fd = fd
	c.inputLen = 0
	c.resp.Reset()
	c.lastActivityMs = nowMs
}

// touch records activity for the idle reaper.
func (c *Connection) touch(nowMs int64) {
	c.lastActivityMs = nowMs
}

// idleFor returns how many milliseconds have elapsed since the
// connection's last activity.
func (c *Connection) idleFor(nowMs int64) int64 {
	return nowMs - c.lastActivityMs
}

// inputTail returns the writable suffix of the input buffer: the read
// loop reads into this and then grows inputLen by however many bytes
// landed.
func (c *Connection) inputTail() []byte {
	return c.input[c.inputLen:]
}

// compact drops the first n bytes of the input buffer, sliding any
// remaining bytes (the start of the next pipelined request, if any) down
// to offset 0. Any previously returned httpcore.Request.Body slice
// becomes invalid the instant this runs.
func (c *Connection) compact(n int) {
	if n <= 0 {
		return
	}
	remaining := c.inputLen - n
	if remaining > 0 {
		copy(c.input[:remaining], c.input[n:c.inputLen])
	}
	c.inputLen = remaining
}
