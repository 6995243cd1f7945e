//go:build linux
// +build linux

package socket

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Event mirrors the subset of unix.EpollEvent the reactor needs: which fd
// became ready, and for which operations.
type Event struct {
	Fd       int32
	Readable bool
	Writable bool
	HangUp   bool
	Error    bool
}

// Epoll wraps a single epoll instance, edge-triggered throughout: every
// registration this package makes sets EPOLLET, so the reactor must
// drain a ready fd (read/write/accept until EAGAIN) on every wakeup
// rather than relying on repeated level-triggered notifications.
type Epoll struct {
	fd int
}

// NewEpoll creates a new epoll instance via epoll_create1(2).
func NewEpoll() (*Epoll, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("socket: epoll_create1: %w", err)
	}
	return &Epoll{fd: fd}, nil
}

// AddReadable registers fd for edge-triggered readability (and hang-up)
// notifications. Used for listener fds, which are never registered for
// writability.
func (e *Epoll) AddReadable(fd int) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(fd)}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("socket: epoll_ctl add(readable, fd=%d): %w", fd, err)
	}
	return nil
}

// UpdateInterest re-arms fd's registration: readability (and hang-up) is
// always requested; writability is requested only when writable is true.
// A freshly accepted connection is only interested in readability (see
// AddReadable); once a response becomes active the worker calls
// UpdateInterest(fd, true) to start receiving writable notifications, and
// calls UpdateInterest(fd, false) again once the response drains, so an
// idle connection with nothing queued doesn't keep waking the worker for
// writability it has no use for.
func (e *Epoll) UpdateInterest(fd int, writable bool) error {
	events := uint32(unix.EPOLLIN | unix.EPOLLET)
	if writable {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("socket: epoll_ctl mod(fd=%d, writable=%v): %w", fd, writable, err)
	}
	return nil
}

// Remove deregisters fd. Safe to call even if fd was already closed;
// the kernel drops epoll interest automatically on close(2), so a failed
// EPOLL_CTL_DEL here (ENOENT) is not reported.
func (e *Epoll) Remove(fd int) {
	_ = unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait blocks up to timeoutMs milliseconds and returns the ready events,
// reusing buf as scratch space. A timeout of -1 blocks indefinitely; this
// reactor always passes a finite timeout so the idle reaper gets a
// chance to run once per second even under zero traffic.
func (e *Epoll) Wait(buf []unix.EpollEvent, timeoutMs int) ([]Event, error) {
	n, err := unix.EpollWait(e.fd, buf, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("socket: epoll_wait: %w", err)
	}

	out := make([]Event, n)
	for i := 0; i < n; i++ {
		ev := buf[i]
		out[i] = Event{
			Fd:       ev.Fd,
			Readable: ev.Events&unix.EPOLLIN != 0,
			Writable: ev.Events&unix.EPOLLOUT != 0,
			HangUp:   ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
			Error:    ev.Events&unix.EPOLLERR != 0,
		}
	}
	return out, nil
}

// Close closes the epoll instance.
func (e *Epoll) Close() error {
	return unix.Close(e.fd)
}
