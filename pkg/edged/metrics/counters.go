// Package metrics holds the process-wide traffic counters. A single
// Counters value is created once at startup and shared by reference across
// every worker; all updates are relaxed atomic arithmetic, matching the
// teacher's server.Stats (MiraiMindz-watt/shockwave/pkg/shockwave/server/server.go)
// — counters are observational, so there is no need for anything stronger.
package metrics

import (
	"sync/atomic"
	"time"
)

// Counters is the process-wide set of traffic counters.
type Counters struct {
	requestsTotal      atomic.Uint64
	connectionsCurrent atomic.Int64
	bytesIn            atomic.Uint64
	bytesOut           atomic.Uint64
	startedAt          time.Time
}

// New creates a Counters value with its start time set to now.
func New() *Counters {
	return &Counters{startedAt: time.Now()}
}

// IncRequests bumps the total request count by one.
func (c *Counters) IncRequests() {
	c.requestsTotal.Add(1)
}

// AddBytesIn adds n to the bytes-received counter.
func (c *Counters) AddBytesIn(n uint64) {
	c.bytesIn.Add(n)
}

// AddBytesOut adds n to the bytes-sent counter.
func (c *Counters) AddBytesOut(n uint64) {
	c.bytesOut.Add(n)
}

// IncConnections bumps the current-connections gauge by one.
func (c *Counters) IncConnections() {
	c.connectionsCurrent.Add(1)
}

// DecConnections drops the current-connections gauge by one.
func (c *Counters) DecConnections() {
	c.connectionsCurrent.Add(-1)
}

// RequestsTotal returns the total number of requests observed.
func (c *Counters) RequestsTotal() uint64 {
	return c.requestsTotal.Load()
}

// ConnectionsCurrent returns the number of currently live connections.
func (c *Counters) ConnectionsCurrent() int64 {
	return c.connectionsCurrent.Load()
}

// BytesIn returns the total number of bytes read from clients.
func (c *Counters) BytesIn() uint64 {
	return c.bytesIn.Load()
}

// BytesOut returns the total number of bytes written to clients.
func (c *Counters) BytesOut() uint64 {
	return c.bytesOut.Load()
}

// RequestsPerSec returns the average request rate since start.
func (c *Counters) RequestsPerSec() float64 {
	elapsed := time.Since(c.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(c.RequestsTotal()) / elapsed
}
