package scheduler

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

var (
	_ ThreadPool = (*GoroutinePool)(nil)
	_ ThreadPool = (*AntsPool)(nil)
)

const idleWorkerExpiry = 1 * time.Minute

// GoroutinePool runs every unit of work on its own goroutine. It never rejects work.
type GoroutinePool struct {
	wg sync.WaitGroup
}

func NewGoroutinePool() *GoroutinePool {
	return &GoroutinePool{}
}

func (p *GoroutinePool) Enqueue(work func(), done func()) error {
	if work == nil {
		return srvErrors.NewNilArgumentError("work")
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if done != nil {
			defer done()
		}
		work()
	}()
	return nil
}

// Wait blocks until every enqueued unit and its done callback returned.
func (p *GoroutinePool) Wait() {
	p.wg.Wait()
}

// AntsPool is a ThreadPool backed by a fixed size ants pool.
//
// done runs on the same ants worker as work, so when AntsPool backs a
// BoundedScheduler its size must exceed the scheduler's concurrency limit
// to leave a worker for the task released by done.
type AntsPool struct {
	pool *ants.Pool
}

func NewAntsPool(size int) (*AntsPool, error) {
	p, err := ants.NewPool(size,
		ants.WithExpiryDuration(idleWorkerExpiry),
		ants.WithPanicHandler(func(v any) {
			zap.S().Named("ants_pool").Errorw("worker panicked", "panic", v)
		}),
	)
	if err != nil {
		return nil, err
	}
	return &AntsPool{pool: p}, nil
}

func (p *AntsPool) Enqueue(work func(), done func()) error {
	if work == nil {
		return srvErrors.NewNilArgumentError("work")
	}
	return p.pool.Submit(func() {
		if done != nil {
			defer done()
		}
		work()
	})
}

func (p *AntsPool) Cap() int {
	return p.pool.Cap()
}

// Release closes the pool. Work enqueued afterwards is rejected with ants.ErrPoolClosed.
func (p *AntsPool) Release() {
	p.pool.Release()
}

func (p *AntsPool) ReleaseTimeout(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}
