package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Pool runs submitted jobs on a fixed set of goroutines. A job that panics is reported to sentry and
// logged, and does not take its goroutine down with it.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	log  *zap.Logger

	closeOnce sync.Once
}

// NewPool starts a pool of n workers. If n is not positive, one worker per CPU is started.
func NewPool(n int, log *zap.Logger) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pool{jobs: make(chan func(), n), log: log}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for f := range p.jobs {
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer func() {
		if v := recover(); v != nil {
			p.log.Error("worker job panicked", zap.Any("panic", v))
			hub := sentry.CurrentHub().Clone()
			hub.Recover(v)
			hub.Flush(time.Second * 5)
		}
	}()
	f()
}

// Submit queues f to run on the pool. To be used by a function that may be CPU or IO intensive. Submit
// blocks while every worker is busy and the queue is full.
func (p *Pool) Submit(f func()) {
	p.jobs <- f
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
