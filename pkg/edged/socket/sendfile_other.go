//go:build !linux
// +build !linux

package socket

func SendFile(dstFd, srcFd int, offset *int64, count int64) (int, error) {
	return 0, errUnsupportedPlatform
}
