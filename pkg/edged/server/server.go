// Package server wires together a pool of reactor workers sharing one
// SO_REUSEPORT listener group, one set of process-wide counters, and one
// shutdown signal.
package server

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/outpostlabs/edged/pkg/edged/metrics"
	"github.com/outpostlabs/edged/pkg/edged/reactor"
	"github.com/outpostlabs/edged/pkg/edged/socket"
)

// Config holds the fully validated settings a Pool is built from.
// Validation itself lives in cmd/edged, since the acceptable ranges are
// a property of the command-line surface, not of the server engine.
type Config struct {
	Port           int
	Threads        int
	StaticRoot     string
	IdleTimeoutSec int
}

// Pool owns one reactor.Worker per thread, all bound to independent
// SO_REUSEPORT listeners on the same port so the kernel spreads accepted
// connections across them with no coordination required between workers.
type Pool struct {
	cfg      Config
	counters *metrics.Counters
	log      *logrus.Logger
	workers  []*reactor.Worker
}

// New builds a Pool and binds one listener per worker. It does not start
// the workers; call Run for that.
func New(cfg Config, counters *metrics.Counters, log *logrus.Logger) (*Pool, error) {
	p := &Pool{cfg: cfg, counters: counters, log: log}

	for i := 0; i < cfg.Threads; i++ {
		listenFd, err := socket.Listen(cfg.Port)
		if err != nil {
			p.closeWorkers()
			return nil, fmt.Errorf("server: worker %d: %w", i, err)
		}

		w, err := reactor.NewWorker(reactor.Config{
			ListenFd:      listenFd,
			StaticRoot:    cfg.StaticRoot,
			IdleTimeoutMs: int64(cfg.IdleTimeoutSec) * 1000,
			Counters:      counters,
			Log:           log.WithField("worker", i),
			MetricsSnapshot: func() string {
				return metrics.RenderPlain(counters)
			},
		})
		if err != nil {
			socket.Close(listenFd)
			p.closeWorkers()
			return nil, fmt.Errorf("server: worker %d: %w", i, err)
		}

		p.workers = append(p.workers, w)
	}

	return p, nil
}

// closeWorkers tears down workers built before a sibling failed to bind
// during New. Run was never launched for any of them, so it calls
// Close rather than Stop: Stop waits on a done channel that only a
// running worker's goroutine ever closes.
func (p *Pool) closeWorkers() {
	for _, w := range p.workers {
		w.Close()
	}
}

// Run starts every worker's event loop and blocks until stop is closed,
// then stops every worker and waits for them to return.
func (p *Pool) Run(stop <-chan struct{}) {
	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func(w *reactor.Worker) {
			defer wg.Done()
			w.Run()
		}(w)
	}

	<-stop
	p.log.Info("shutdown signal received, stopping workers")
	for _, w := range p.workers {
		w.Stop()
	}
	wg.Wait()
}
