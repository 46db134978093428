package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"

	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

// TaskOf is a deferred unit of work producing a value of type T.
type TaskOf[T any] struct {
	mu            sync.Mutex
	status        Status
	submitted     bool
	callback      func() (T, error)
	result        T
	failure       error
	continuations []func(*TaskOf[T])
	// delivered is set once Run has drained the continuation list.
	delivered bool
	done      chan struct{}
}

// Task is a task without a result.
type Task = TaskOf[struct{}]

func NewTask(fn func() error) *Task {
	if fn == nil {
		panic(srvErrors.NewNilArgumentError("callback"))
	}
	return NewTaskOf(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func NewTaskOf[T any](fn func() (T, error)) *TaskOf[T] {
	if fn == nil {
		panic(srvErrors.NewNilArgumentError("callback"))
	}
	return &TaskOf[T]{
		status:   StatusCreated,
		callback: fn,
		done:     make(chan struct{}),
	}
}

// Submit hands the task to s. A task can be accepted only once; when s
// returns an error the task stays Created and may be submitted again.
func (t *TaskOf[T]) Submit(s Scheduler) error {
	if s == nil {
		return srvErrors.NewNilArgumentError("scheduler")
	}

	t.mu.Lock()
	if t.submitted || t.status != StatusCreated {
		state := t.status.String()
		if t.submitted && t.status == StatusCreated {
			state = "submitted"
		}
		t.mu.Unlock()
		return srvErrors.NewInvalidStateError("submit task", state)
	}
	t.submitted = true
	t.mu.Unlock()

	if err := s.Schedule(t); err != nil {
		// not accepted, so the task may be submitted again
		t.mu.Lock()
		t.submitted = false
		t.mu.Unlock()
		return err
	}
	return nil
}

// Run executes the callback and then delivers the continuations on the
// calling goroutine. It panics if called more than once.
func (t *TaskOf[T]) Run() {
	t.mu.Lock()
	if t.status != StatusCreated {
		state := t.status
		t.mu.Unlock()
		panic(srvErrors.NewInvalidStateError("run task", state.String()))
	}
	t.status = StatusRunning
	fn := t.callback
	t.callback = nil
	t.mu.Unlock()

	result, err := invoke(fn)

	t.mu.Lock()
	if err != nil {
		t.failure = err
		t.status = StatusFaulted
	} else {
		t.result = result
		t.status = StatusRanToCompletion
	}
	close(t.done)
	t.mu.Unlock()

	t.deliver()
}

// OnCompletion registers fn to be called once the task is terminal.
// If delivery already happened fn is called right away by the caller.
// While Run is still delivering, fn joins the delivery and is called later
// on the goroutine running Run, even if Status already reports a terminal state.
func (t *TaskOf[T]) OnCompletion(fn func(*TaskOf[T])) {
	if fn == nil {
		panic(srvErrors.NewNilArgumentError("continuation"))
	}

	t.mu.Lock()
	if !t.delivered {
		t.continuations = append(t.continuations, fn)
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.fire(fn)
}

// Wait blocks until the task is terminal and returns the captured failure, if any.
func (t *TaskOf[T]) Wait() error {
	<-t.done
	return t.Failure()
}

// WaitContext is like Wait but gives up when ctx is done. The task itself
// keeps running.
func (t *TaskOf[T]) WaitContext(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Failure()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *TaskOf[T]) Result() (T, error) {
	if err := t.Wait(); err != nil {
		var zero T
		return zero, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, nil
}

// Done returns a channel closed when the task reaches a terminal state.
func (t *TaskOf[T]) Done() <-chan struct{} {
	return t.done
}

func (t *TaskOf[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TaskOf[T]) Failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// deliver drains the continuation list in order. Continuations appended
// while draining are picked up by the same loop.
func (t *TaskOf[T]) deliver() {
	for {
		t.mu.Lock()
		if len(t.continuations) == 0 {
			t.continuations = nil
			t.delivered = true
			t.mu.Unlock()
			return
		}
		next := t.continuations[0]
		t.continuations[0] = nil
		t.continuations = t.continuations[1:]
		t.mu.Unlock()

		t.fire(next)
	}
}

func (t *TaskOf[T]) fire(fn func(*TaskOf[T])) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("task").Errorw("continuation panicked", "panic", rec, "stack", string(debug.Stack()))
		}
	}()
	fn(t)
}

func invoke[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.S().Named("task").Errorw("task panicked", "panic", rec, "stack", string(debug.Stack()))
			if recErr, ok := rec.(error); ok {
				err = recErr
			} else {
				err = fmt.Errorf("task panicked: %v", rec)
			}
		}
	}()
	return fn()
}
