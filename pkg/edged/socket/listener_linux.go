//go:build linux
// +build linux

// Package socket owns every raw syscall this server makes: listener
// setup, accept, tuning, and zero-copy file transmission. Keeping all of
// it in one package means the reactor only ever deals in plain ints (file
// descriptors) and never touches golang.org/x/sys/unix directly.
package socket

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Listen creates a non-blocking, close-on-exec TCP listener bound to
// 0.0.0.0:port with SO_REUSEADDR and SO_REUSEPORT set, so that every
// worker in the pool can bind the same port and let the kernel load
// balance accepted connections across them.
//
// The returned fd is ready for epoll registration; it is never wrapped in
// a net.Listener, since the reactor needs the raw descriptor for
// EpollCtl and Accept4.
func Listen(port int) (fd int, err error) {
	fd, err = unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: listen: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("socket: listen: SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("socket: listen: SO_REUSEPORT: %w", err)
	}

	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("socket: listen: bind port %d: %w", port, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("socket: listen: listen: %w", err)
	}

	return fd, nil
}

// listenBacklog is the pending-connection queue depth passed to listen(2).
// 1024 comfortably absorbs a SYN burst under the accept-until-EAGAIN loop
// each worker runs once per epoll wakeup.
const listenBacklog = 1024

// Accept4 wraps accept4(2), returning a non-blocking, close-on-exec
// connection fd; the peer's address is discarded. Returns unix.EAGAIN when the
// accept queue is drained — the reactor's accept loop treats that as
// "stop accepting this wakeup", not an error.
func Accept4(listenFd int) (connFd int, err error) {
	connFd, _, err = unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	return connFd, err
}

// Close closes fd, ignoring EINTR/EBADF since callers only close a
// descriptor once as part of a connection teardown they already own.
func Close(fd int) {
	_ = unix.Close(fd)
}

// SetTCPNoDelay disables Nagle's algorithm, since this server only ever
// writes whole responses (head, then body or file region) rather than
// many small writes that would benefit from coalescing.
func SetTCPNoDelay(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); err != nil {
		return fmt.Errorf("socket: SetTCPNoDelay: %w", err)
	}
	return nil
}

// Read wraps read(2) on a raw fd. Returns (0, nil) on EOF, matching the
// io.Reader convention the reactor's read loop expects even though this
// isn't an io.Reader (the reactor never allocates a []byte per read; it
// reads into a connection's own buffer tail).
func Read(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Write wraps write(2) on a raw fd.
func Write(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}
