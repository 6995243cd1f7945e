package reactor

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/outpostlabs/edged/pkg/edged/httpcore"
	"github.com/outpostlabs/edged/pkg/edged/metrics"
	"github.com/outpostlabs/edged/pkg/edged/socket"
	"github.com/outpostlabs/edged/pkg/edged/util"
)

// maxEvents bounds how many ready events a single epoll_wait call
// returns; the worker loops over epoll_wait again immediately if more
// fds were ready than this.
const maxEvents = 256

// pollTimeoutMs is how long epoll_wait blocks before returning with zero
// events, giving the idle reaper a chance to run under the worker's own
// goroutine even when traffic is silent.
const pollTimeoutMs = 250

// reapIntervalMs is how often the idle reaper scans the connection
// table, independent of how often epoll_wait happens to return.
const reapIntervalMs = 1000

// overflowBufSize is the scratch buffer a connection's read loop drains
// into once its own input buffer is full and still has no complete
// request parsed out of it: the bytes are discarded, but draining them
// keeps the socket readable until the oversized request either completes
// (and the parser's own caps reject it) or the peer stops sending.
const overflowBufSize = 4096

// Config holds one worker's tunables. Every worker in a pool gets an
// identical Config except ListenFd, which is unique per worker because
// each binds its own SO_REUSEPORT listener, and Log, which carries the
// worker's index.
type Config struct {
	ListenFd        int
	StaticRoot      string
	IdleTimeoutMs   int64
	Counters        *metrics.Counters
	Log             *logrus.Entry
	MetricsSnapshot func() string
}

// Worker runs one epoll-driven event loop for the lifetime of the
// process. Each Worker owns its listener fd, its epoll instance, and its
// connection table; workers share nothing but the process-wide counters,
// so there is no lock contention between them.
type Worker struct {
	cfg   Config
	ep    *socket.Epoll
	conns *connTable
	stop  chan struct{}
	done  chan struct{}
}

// NewWorker creates a worker and registers its listener for readability.
func NewWorker(cfg Config) (*Worker, error) {
	ep, err := socket.NewEpoll()
	if err != nil {
		return nil, err
	}
	if err := ep.AddReadable(cfg.ListenFd); err != nil {
		ep.Close()
		return nil, err
	}

	return &Worker{
		cfg:   cfg,
		ep:    ep,
		conns: newConnTable(256),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Run drives the event loop until Stop is called. It locks the calling
// goroutine to its OS thread for the duration, the Go-idiomatic
// equivalent of the one-pthread-per-worker model this reactor is modeled
// on: epoll_wait blocking syscalls interleave more predictably when the
// goroutine never migrates between Ms.
func (w *Worker) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	events := make([]unix.EpollEvent, maxEvents)
	var lastReapMs int64

	for {
		select {
		case <-w.stop:
			w.shutdown()
			return
		default:
		}

		ready, err := w.ep.Wait(events, pollTimeoutMs)
		if err != nil {
			w.cfg.Log.WithError(err).Error("epoll_wait failed")
			continue
		}

		now := util.NowMillis()

		for _, ev := range ready {
			fd := int(ev.Fd)
			if fd == w.cfg.ListenFd {
				w.acceptLoop(now)
				continue
			}
			w.handleConnEvent(fd, ev, now)
		}

		if now-lastReapMs >= reapIntervalMs {
			w.reapIdle(now)
			lastReapMs = now
		}
	}
}

// Stop requests the worker's loop to exit and blocks until it has.
// Callers must only invoke Stop on a worker whose Run has actually been
// launched (as a goroutine) or is guaranteed to be; for cleanup of
// workers that were constructed but will never have Run called at all,
// use Close instead, which does not wait on the done channel.
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// Close releases a worker's listener and epoll instance directly,
// without going through the stop/done handshake Stop uses. It exists for
// server.Pool's partial-construction cleanup path: when one worker in a
// pool fails to bind, the workers built successfully before it never
// have Run launched for them (Pool.Run hasn't been called yet), so Stop
// would block forever waiting on a done channel nothing will ever close.
func (w *Worker) Close() {
	w.ep.Close()
	socket.Close(w.cfg.ListenFd)
}

func (w *Worker) acceptLoop(now int64) {
	for {
		fd, err := socket.Accept4(w.cfg.ListenFd)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				return
			}
			w.cfg.Log.WithError(err).Warn("accept4 failed")
			return
		}

		if err := socket.SetTCPNoDelay(fd); err != nil {
			w.cfg.Log.WithError(err).Debug("setsockopt TCP_NODELAY failed")
		}
		if err := w.ep.AddReadable(fd); err != nil {
			w.cfg.Log.WithError(err).Warn("epoll_ctl add failed, closing connection")
			socket.Close(fd)
			continue
		}

		w.conns.acquire(fd, now)
		w.cfg.Counters.IncConnections()
	}
}

func (w *Worker) handleConnEvent(fd int, ev socket.Event, now int64) {
	conn := w.conns.get(fd)
	if conn == nil {
		return // stale event for an already-closed fd
	}

	if ev.Error || ev.HangUp {
		w.closeConn(conn)
		return
	}

	conn.touch(now)

	if ev.Readable {
		if !w.handleRead(conn) {
			return
		}
	} else if ev.Writable && conn.resp.Active {
		w.drain(conn)
	}
}

// handleRead drains fd until EAGAIN/EOF, overflowing excess bytes to a
// scratch buffer (and producing a 413 + close) once the connection's own
// input buffer fills with no complete request parsed out of it yet, then
// hands off to drain for parsing, routing, and flushing. Returns false if
// the connection was closed while handling this event.
func (w *Worker) handleRead(conn *Connection) bool {
	var overflow [overflowBufSize]byte

	for {
		full := conn.inputLen >= len(conn.input)

		var n int
		var err error
		if full {
			n, err = socket.Read(conn.fd, overflow[:])
		} else {
			n, err = socket.Read(conn.fd, conn.input[conn.inputLen:])
		}

		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				break
			}
			w.closeConn(conn)
			return false
		}
		if n == 0 {
			w.closeConn(conn)
			return false
		}

		w.cfg.Counters.AddBytesIn(uint64(n))

		if !full {
			conn.inputLen += n
		} else if !conn.resp.Active {
			// Input buffer was already full with no complete request
			// parsed out of it: the request exceeds every length cap
			// httpcore enforces, which a bounded parse would already
			// have rejected. Reject it explicitly instead of reading it
			// forever. A response already in flight is left alone — its
			// bytes are just discarded here until it drains.
			if err := httpcore.BuildErrorResponse(&conn.resp, 413, true); err != nil {
				w.closeConn(conn)
				return false
			}
			conn.inputLen = 0
		}
	}

	return w.drain(conn)
}

// drain repeatedly parses, routes, and flushes complete requests out of
// conn's input buffer, matching the original reactor's flush_response
// loop: after a response fully drains, it immediately tries to parse the
// next pipelined request out of whatever remains buffered, rather than
// waiting for another epoll wakeup. It stops when the buffer holds no
// complete request, or when a write would block. Returns false if the
// connection was closed.
func (w *Worker) drain(conn *Connection) bool {
	for {
		if !conn.resp.Active {
			if !w.tryParseAndRoute(conn) {
				return false
			}
			if !conn.resp.Active {
				break // no complete request buffered; wait for more data
			}
		}

		blocked, ok := w.flush(conn)
		if !ok {
			return false
		}
		if blocked {
			// A write returned EAGAIN: the response is still active and
			// partially sent. Re-arm for writability and wait for the
			// next wakeup instead of busy-looping.
			if err := w.ep.UpdateInterest(conn.fd, true); err != nil {
				w.closeConn(conn)
				return false
			}
			return true
		}
		// flush fully drained the response (and reset it); loop back to
		// see whether another request is already buffered.
		if conn.inputLen == 0 {
			break
		}
	}

	if err := w.ep.UpdateInterest(conn.fd, conn.resp.Active); err != nil {
		w.closeConn(conn)
		return false
	}
	return true
}

// tryParseAndRoute parses one complete request out of conn's buffer, if
// any, and prepares conn.resp accordingly. Returns false if the
// connection was closed.
func (w *Worker) tryParseAndRoute(conn *Connection) bool {
	result, req, consumed, status := httpcore.ParseRequest(conn.input[:conn.inputLen])
	switch result {
	case httpcore.Incomplete:
		return true
	case httpcore.ParseError:
		if err := httpcore.BuildErrorResponse(&conn.resp, status, true); err != nil {
			w.closeConn(conn)
			return false
		}
		conn.compact(conn.inputLen)
		return true
	}

	w.cfg.Counters.IncRequests()

	metricsBody := ""
	if req.RoutablePath() == "/metrics" {
		metricsBody = w.cfg.MetricsSnapshot()
	}
	if err := httpcore.Route(&req, &conn.resp, w.cfg.StaticRoot, metricsBody, false); err != nil {
		conn.resp.Reset()
		if err := httpcore.BuildErrorResponse(&conn.resp, 500, true); err != nil {
			w.closeConn(conn)
			return false
		}
	}

	conn.compact(consumed)
	return true
}

// flush writes as much of the active response as the socket will accept
// right now: head, then inline body or sendfile region, retrying in
// place on EINTR. It returns (blocked, ok): blocked is true if a write
// returned EAGAIN before the response finished sending; ok is false if
// the connection was closed.
func (w *Worker) flush(conn *Connection) (blocked bool, ok bool) {
	for !conn.resp.HeadDone() {
		n, err := socket.Write(conn.fd, conn.resp.HeadPending())
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				return true, true
			}
			w.closeConn(conn)
			return false, false
		}
		conn.resp.AdvanceHead(n)
		w.cfg.Counters.AddBytesOut(uint64(n))
	}

	if f := conn.resp.File(); f != nil {
		for !conn.resp.FileDone() {
			offset := conn.resp.FileOffset()
			n, err := socket.SendFile(conn.fd, int(f.Fd()), &offset, conn.resp.FileRemain())
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				if err == unix.EAGAIN {
					return true, true
				}
				w.closeConn(conn)
				return false, false
			}
			if n == 0 {
				w.closeConn(conn)
				return false, false
			}
			conn.resp.AdvanceFile(int64(n))
			w.cfg.Counters.AddBytesOut(uint64(n))
		}
	} else {
		for !conn.resp.BodyDone() {
			n, err := socket.Write(conn.fd, conn.resp.BodyPending())
			if err != nil {
				if err == unix.EINTR {
					continue
				}
				if err == unix.EAGAIN {
					return true, true
				}
				w.closeConn(conn)
				return false, false
			}
			conn.resp.AdvanceBody(n)
			w.cfg.Counters.AddBytesOut(uint64(n))
		}
	}

	closeAfter := conn.resp.CloseAfterSend
	conn.resp.Reset()
	if closeAfter {
		w.closeConn(conn)
		return false, false
	}
	return false, true
}

func (w *Worker) reapIdle(now int64) {
	var toClose []*Connection
	w.conns.forEachLive(func(c *Connection) {
		if c.idleFor(now) >= w.cfg.IdleTimeoutMs {
			toClose = append(toClose, c)
		}
	})
	for _, c := range toClose {
		w.closeConn(c)
	}
}

// closeConn is the single close primitive every per-connection path in
// this worker uses (shutdown repeats the same steps for each live
// connection): it deregisters fd from epoll before closing it, so a racing
// epoll_wait batch already in hand can never hand the fd back to a
// different, just-accepted connection mid-iteration (see connTable's
// single-owner-per-fd invariant).
func (w *Worker) closeConn(c *Connection) {
	w.ep.Remove(c.fd)
	socket.Close(c.fd)
	w.conns.release(c.fd)
	c.resp.Reset()
	w.cfg.Counters.DecConnections()
}

func (w *Worker) shutdown() {
	w.conns.forEachLive(func(c *Connection) {
		w.ep.Remove(c.fd)
		socket.Close(c.fd)
		c.resp.Reset()
		w.cfg.Counters.DecConnections()
	})
	socket.Close(w.cfg.ListenFd)
	w.ep.Close()
}
