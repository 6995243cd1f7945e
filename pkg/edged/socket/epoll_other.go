//go:build !linux
// +build !linux

package socket

type Event struct {
	Fd       int32
	Readable bool
	Writable bool
	HangUp   bool
	Error    bool
}

type Epoll struct{}

func NewEpoll() (*Epoll, error) {
	return nil, errUnsupportedPlatform
}

func (e *Epoll) AddReadable(fd int) error                    { return errUnsupportedPlatform }
func (e *Epoll) UpdateInterest(fd int, writable bool) error  { return errUnsupportedPlatform }
func (e *Epoll) Remove(fd int)                               {}
func (e *Epoll) Wait(buf []byte, timeoutMs int) ([]Event, error) {
	return nil, errUnsupportedPlatform
}
func (e *Epoll) Close() error { return errUnsupportedPlatform }
