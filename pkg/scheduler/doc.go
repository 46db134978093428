// Package scheduler implements deferred tasks and a bounded-concurrency scheduler.
//
// A task wraps a callback, tracks its lifecycle and fans its outcome out to
// continuations. A BoundedScheduler decides when each submitted task runs,
// making sure no more than N tasks run at once. The scheduler never starts
// goroutines itself: it hands work to a ThreadPool.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                         BoundedScheduler                            │
//	│                                                                     │
//	│   Schedule(task)                                                    │
//	│        │                                                            │
//	│        ▼                                                            │
//	│   ┌──────────────────────┐   no    ┌─────────────────────────────┐  │
//	│   │ running < max AND    │───────► │  Pending (FIFO)             │  │
//	│   │ pending empty ?      │         │  [task3] [task4] ...        │  │
//	│   └──────────┬───────────┘         └──────────────┬──────────────┘  │
//	│              │ yes (running++)                    │ pop head        │
//	│              ▼                                    │ (running++)     │
//	│   ┌──────────────────────┐                        │                 │
//	│   │  pool.Enqueue(       │ ◄──────────────────────┘                 │
//	│   │    task.Run,         │                                          │
//	│   │    release)          │                                          │
//	│   └──────────┬───────────┘                                          │
//	│              │                                                      │
//	└──────────────┼──────────────────────────────────────────────────────┘
//	               ▼
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           ThreadPool                                │
//	│   worker: task.Run()  ──►  release()  (running--, admit next)       │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Task Lifecycle
//
//	┌─────────┐   Run()   ┌─────────┐  callback ok   ┌─────────────────┐
//	│ Created │ ────────► │ Running │ ─────────────► │ RanToCompletion │
//	└─────────┘           └────┬────┘                └─────────────────┘
//	                           │ error or panic      ┌─────────────────┐
//	                           └───────────────────► │     Faulted     │
//	                                                 └─────────────────┘
//
// Terminal states never change. The failure is the exact error returned by
// the callback. A panic is recovered: when the panic value is an error it is
// kept as the failure, otherwise it is wrapped.
//
// # Continuations
//
// OnCompletion registers a callback receiving the completed task:
//   - registered before completion: queued and called by Run, in order
//   - registered after delivery: called immediately by the registering goroutine
//   - registered while Run is delivering: appended to the same delivery loop
//
// Every continuation is called exactly once. Continuations run before Run
// returns, so the scheduler slot of a task is still taken while they run.
// A panicking continuation is logged and does not affect the others.
//
// # Waiting
//
//	task := scheduler.NewTaskOf(func() (int, error) {
//	    return 42, nil
//	})
//	if err := task.Submit(sched); err != nil {
//	    // nil scheduler, submitted twice, or the pool declined the task
//	}
//	v, err := task.Result() // blocks, err is the original failure
//
// Wait, WaitContext and Result block on a channel closed when the task
// turns terminal. WaitContext gives up on context cancellation without
// affecting the task.
//
// Calling Wait from inside a task's callback for a task on the same
// scheduler deadlocks when maxConcurrency is 1: the slot is only freed when
// Run returns.
//
// # Admission and Release
//
// Admission (check and increment) and release (decrement, pop, increment)
// each run under the scheduler mutex, so two completions can never admit
// the same queued task or push running above the limit. pool.Enqueue is
// called outside the lock so inline pools may call release synchronously.
//
// With maxConcurrency == 1 the scheduler is a strict pipeline: the first
// task is admitted right away and every later task waits for its
// predecessor's release.
//
// # Thread Pools
//
//   - GoroutinePool: one goroutine per task, never rejects
//   - AntsPool: fixed size pool from github.com/panjf2000/ants/v2; its size
//     must be larger than the scheduler limit because release runs on the
//     worker that just finished
//
// When the pool declines a task in Schedule, the slot is given back and a
// PoolRejectedError is returned to that caller only; the task was not
// accepted. A queued task declined by the pool goes back to the head of the
// queue and its slot is freed. It is retried on the next Schedule or
// release. When that happens in release there is nobody to report to and
// the scheduler panics after putting the task back.
package scheduler
