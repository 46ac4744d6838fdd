// Command schedbench is a small harness exercising the scheduler
// end-to-end: it submits a batch of jobs, then fans a second batch into
// a barrier group and waits for the group's completion task. It is an
// external collaborator, like the sample Mandelbrot renderer the core
// scheduler spec treats as out of scope — nothing here is imported by
// the scheduler package itself.
package main

import (
	"flag"
	"fmt"
	"sync/atomic"
	"time"

	_ "go.uber.org/automaxprocs" // adjusts GOMAXPROCS to the container CPU quota before we size the pool
	"go.uber.org/zap"

	scheduler "github.com/go-foundations/scheduler"
	"github.com/go-foundations/scheduler/internal/envelope"
	"github.com/go-foundations/scheduler/metrics"
	"github.com/go-foundations/scheduler/resultfuture"
)

func main() {
	workers := flag.Int("workers", 0, "worker count (0 = GOMAXPROCS)")
	jobs := flag.Int("jobs", 10000, "number of jobs to submit")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	opts := []scheduler.Option{
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(metrics.NewCollector("schedbench")),
		scheduler.WithStartUnpaused(),
	}
	if *workers > 0 {
		opts = append(opts, scheduler.WithWorkers(*workers))
	}

	pool := scheduler.New(opts...)
	defer pool.Close()

	fmt.Printf("running %d jobs across %d workers\n", *jobs, pool.NumWorkers())

	start := time.Now()
	futures := make([]*resultfuture.Future[int], *jobs)
	for i := 0; i < *jobs; i++ {
		i := i
		fut, err := scheduler.Submit[int](pool, func() (int, error) { return i * i, nil })
		if err != nil {
			logger.Fatal("submit failed", zap.Error(err))
		}
		futures[i] = fut
	}
	for i, fut := range futures {
		if v, err := fut.Get(); err != nil || v != i*i {
			logger.Error("unexpected result", zap.Int("job", i), zap.Error(err), zap.Int("value", v))
		}
	}
	fmt.Printf("submit/collect phase: %s\n", time.Since(start))

	const groupSize = 100
	var counter atomic.Int64
	envs := make([]*envelope.Envelope, groupSize)
	for i := range envs {
		_, env := scheduler.WrapTask[struct{}](pool, func() (struct{}, error) {
			counter.Add(1)
			return struct{}{}, nil
		})
		envs[i] = env
	}

	completionFut, err := scheduler.AddGroupWithBarrierFunc[int64](pool, envs, func() (int64, error) {
		return counter.Load(), nil
	})
	if err != nil {
		logger.Fatal("barrier group failed", zap.Error(err))
	}

	total, err := completionFut.Get()
	if err != nil {
		logger.Fatal("barrier completion failed", zap.Error(err))
	}
	fmt.Printf("barrier group observed %d completions\n", total)
}
