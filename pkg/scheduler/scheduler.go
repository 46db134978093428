package scheduler

import (
	"sync"

	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

var _ Scheduler = (*BoundedScheduler)(nil)

type Option func(s *BoundedScheduler)

func WithMetrics(m Metrics) Option {
	return func(s *BoundedScheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// BoundedScheduler runs at most maxConcurrency tasks at once on a ThreadPool.
// Tasks beyond the limit wait in a FIFO queue and are released one per freed slot.
type BoundedScheduler struct {
	maxConcurrency int
	pool           ThreadPool
	metrics        Metrics

	mu      sync.Mutex
	running int
	pending *queue[Runnable]
}

// NewBoundedScheduler panics if maxConcurrency is less than 1 or pool is nil.
func NewBoundedScheduler(maxConcurrency int, pool ThreadPool, opts ...Option) *BoundedScheduler {
	if maxConcurrency < 1 {
		panic("scheduler: maxConcurrency must be at least 1")
	}
	if pool == nil {
		panic(srvErrors.NewNilArgumentError("pool"))
	}

	s := &BoundedScheduler{
		maxConcurrency: maxConcurrency,
		pool:           pool,
		metrics:        NilMetrics{},
		pending:        &queue[Runnable]{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule admits r right away when a slot is free and nothing is waiting,
// otherwise r is queued. If the pool declines r the slot is returned and a
// PoolRejectedError is returned; r was not accepted and may be scheduled again.
func (s *BoundedScheduler) Schedule(r Runnable) error {
	if r == nil {
		return srvErrors.NewNilArgumentError("task")
	}

	s.mu.Lock()
	if s.running >= s.maxConcurrency || s.pending.Len() > 0 {
		s.pending.Push(r)
		s.metrics.Occupancy(s.running, s.pending.Len())
		zap.S().Named("scheduler").Debugw("task queued", "running", s.running, "pending", s.pending.Len())
		s.mu.Unlock()

		// r is accepted either way; a slot left free by an earlier
		// rejection is refilled from the head of the queue
		if err := s.dispatch(); err != nil {
			zap.S().Named("scheduler").Warnw("queued task still waiting, thread pool rejected it", "error", err)
		}
		return nil
	}
	s.running++
	s.metrics.Occupancy(s.running, s.pending.Len())
	s.mu.Unlock()

	if err := s.admit(r); err != nil {
		s.mu.Lock()
		s.running--
		s.metrics.Occupancy(s.running, s.pending.Len())
		s.mu.Unlock()

		// a task queued meanwhile takes the slot over; a rejection of it
		// belongs to that task, not to this caller
		if derr := s.dispatch(); derr != nil {
			zap.S().Named("scheduler").Warnw("queued task still waiting, thread pool rejected it", "error", derr)
		}
		return srvErrors.NewPoolRejectedError(err)
	}
	return nil
}

func (s *BoundedScheduler) MaxConcurrency() int {
	return s.maxConcurrency
}

func (s *BoundedScheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *BoundedScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// admit must be called after the slot for r has been taken.
func (s *BoundedScheduler) admit(r Runnable) error {
	if err := s.pool.Enqueue(r.Run, s.release); err != nil {
		s.metrics.TaskRejected()
		zap.S().Named("scheduler").Errorw("thread pool rejected task", "error", err)
		return err
	}
	s.metrics.TaskAdmitted()
	return nil
}

// release frees the slot of a finished task and hands it to the head of
// the queue, if any. A pool rejection here has no caller to report to and
// is fatal; the rejected task stays at the head of the queue.
func (s *BoundedScheduler) release() {
	s.mu.Lock()
	s.running--
	s.metrics.Occupancy(s.running, s.pending.Len())
	s.mu.Unlock()

	if err := s.dispatch(); err != nil {
		panic(srvErrors.NewPoolRejectedError(err))
	}
}

// dispatch admits queued tasks while slots are free. A task the pool
// declines is put back at the head of the queue, its slot is freed and the
// pool error is returned.
func (s *BoundedScheduler) dispatch() error {
	for {
		s.mu.Lock()
		if s.running >= s.maxConcurrency || s.pending.Len() == 0 {
			s.mu.Unlock()
			return nil
		}
		next := s.pending.Pop()
		s.running++
		s.metrics.Occupancy(s.running, s.pending.Len())
		s.mu.Unlock()

		if err := s.admit(next); err != nil {
			s.mu.Lock()
			s.running--
			s.pending.PushFront(next)
			s.metrics.Occupancy(s.running, s.pending.Len())
			s.mu.Unlock()
			return err
		}
	}
}
