package scheduler_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/panjf2000/ants/v2"

	srvErrors "github.com/kubev2v/taskd/pkg/errors"
	"github.com/kubev2v/taskd/pkg/scheduler"
)

var _ = Describe("GoroutinePool", func() {
	It("should call done after work", func() {
		pool := scheduler.NewGoroutinePool()

		var mu sync.Mutex
		var calls []string
		record := func(s string) func() {
			return func() {
				mu.Lock()
				defer mu.Unlock()
				calls = append(calls, s)
			}
		}

		Expect(pool.Enqueue(record("work"), record("done"))).To(Succeed())
		pool.Wait()

		Expect(calls).To(Equal([]string{"work", "done"}))
	})

	It("should refuse nil work", func() {
		err := scheduler.NewGoroutinePool().Enqueue(nil, func() {})

		Expect(srvErrors.IsNilArgumentError(err)).To(BeTrue())
	})
})

var _ = Describe("AntsPool", func() {
	var pool *scheduler.AntsPool

	BeforeEach(func() {
		var err error
		pool, err = scheduler.NewAntsPool(3)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		pool.Release()
	})

	It("should run work and done on a worker", func() {
		doneCh := make(chan struct{})
		var worked atomic.Bool

		err := pool.Enqueue(func() { worked.Store(true) }, func() { close(doneCh) })

		Expect(err).NotTo(HaveOccurred())
		Eventually(doneCh, time.Second).Should(BeClosed())
		Expect(worked.Load()).To(BeTrue())
		Expect(pool.Cap()).To(Equal(3))
	})

	It("should back a bounded scheduler", func() {
		s := scheduler.NewBoundedScheduler(2, pool)

		tasks := make([]*scheduler.TaskOf[int], 0, 20)
		for i := 0; i < 20; i++ {
			idx := i
			task := scheduler.NewTaskOf(func() (int, error) {
				time.Sleep(time.Millisecond)
				return idx * 2, nil
			})
			tasks = append(tasks, task)
			Expect(task.Submit(s)).To(Succeed())
		}

		for i, task := range tasks {
			v, err := task.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(i * 2))
		}
		Eventually(s.Running, time.Second).Should(BeZero())
	})

	// Given a released ants pool
	// When a task is submitted through the scheduler
	// Then the pool error should surface as a PoolRejectedError
	It("should surface a closed pool as a rejection", func() {
		// Arrange
		pool.Release()
		s := scheduler.NewBoundedScheduler(2, pool)
		task := scheduler.NewTask(func() error { return nil })

		// Act
		err := task.Submit(s)

		// Assert
		Expect(srvErrors.IsPoolRejectedError(err)).To(BeTrue())
		Expect(errors.Is(err, ants.ErrPoolClosed)).To(BeTrue())
		Expect(s.Running()).To(BeZero())
	})
})
