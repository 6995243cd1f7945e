// Command edged serves static files, an echo endpoint, and operational
// endpoints over a pool of non-blocking, epoll-driven HTTP/1.1 workers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/outpostlabs/edged/pkg/edged/metrics"
	"github.com/outpostlabs/edged/pkg/edged/server"
)

const (
	defaultPort       = 8080
	defaultThreads    = 1
	defaultStaticRoot = "./static"
	defaultIdleSec    = 10

	minPort = 1
	maxPort = 65535

	minThreads = 1
	maxThreads = 128

	maxStaticRootLen = 1024

	minIdleSec = 1
	maxIdleSec = 3600
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		port       = flag.IntP("port", "p", defaultPort, "TCP port to listen on (1-65535)")
		threads    = flag.IntP("threads", "t", defaultThreads, "number of worker threads (1-128)")
		staticRoot = flag.StringP("static-root", "s", defaultStaticRoot, "directory served under /static/")
		idleSec    = flag.IntP("idle-timeout", "i", defaultIdleSec, "idle connection timeout in seconds (1-3600)")
		help       = flag.BoolP("help", "h", false, "print usage and exit")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		return 0
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := validate(*port, *threads, *staticRoot, *idleSec); err != nil {
		fmt.Fprintln(os.Stderr, "edged:", err)
		return 1
	}

	counters := metrics.New()
	pool, err := server.New(server.Config{
		Port:           *port,
		Threads:        *threads,
		StaticRoot:     *staticRoot,
		IdleTimeoutSec: *idleSec,
	}, counters, log)
	if err != nil {
		log.WithError(err).Error("failed to start server")
		return 1
	}

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var once sync.Once
	go func() {
		<-sigCh
		log.Info("received shutdown signal")
		once.Do(func() { close(stop) })
		// A second signal delivery is a no-op: stop is already closed,
		// and closing a closed channel would panic, so this goroutine
		// simply drains and exits after the first signal.
	}()

	log.WithFields(logrus.Fields{
		"port":        *port,
		"threads":     *threads,
		"static_root": *staticRoot,
		"idle_sec":    *idleSec,
	}).Info("edged starting")

	pool.Run(stop)
	return 0
}

func validate(port, threads int, staticRoot string, idleSec int) error {
	if port < minPort || port > maxPort {
		return fmt.Errorf("port %d out of range [%d, %d]", port, minPort, maxPort)
	}
	if threads < minThreads || threads > maxThreads {
		return fmt.Errorf("threads %d out of range [%d, %d]", threads, minThreads, maxThreads)
	}
	if len(staticRoot) < 1 || len(staticRoot) >= maxStaticRootLen {
		return fmt.Errorf("static-root length %d out of range [1, %d)", len(staticRoot), maxStaticRootLen)
	}
	if idleSec < minIdleSec || idleSec > maxIdleSec {
		return fmt.Errorf("idle-timeout %d out of range [%d, %d]", idleSec, minIdleSec, maxIdleSec)
	}
	return nil
}
