// Package util provides the small leaf-level helpers the rest of edged is
// built on: a monotonic clock, ASCII case-insensitive comparison, whitespace
// trimming, and static-path safety checks.
package util

import (
	"sync"
	"time"
)

var (
	clockOnce  sync.Once
	clockEpoch time.Time
)

// NowMillis returns a monotonically non-decreasing millisecond timestamp.
// It is anchored to process start, not the Unix epoch — callers must only
// compare two NowMillis values to each other, never interpret one as wall
// clock time. This mirrors CLOCK_MONOTONIC in the source implementation.
func NowMillis() int64 {
	clockOnce.Do(func() {
		clockEpoch = time.Now()
	})
	return time.Since(clockEpoch).Milliseconds()
}
