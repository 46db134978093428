package scheduler

// Status is the lifecycle state of a task.
type Status int

const (
	StatusCreated Status = iota
	StatusRunning
	StatusRanToCompletion
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusRunning:
		return "running"
	case StatusRanToCompletion:
		return "ran-to-completion"
	case StatusFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is an absorbing state.
func (s Status) IsTerminal() bool {
	return s == StatusRanToCompletion || s == StatusFaulted
}

// Runnable is the unit a Scheduler executes.
type Runnable interface {
	Run()
}

// Scheduler decides when a submitted Runnable executes.
// Implementations must invoke Run exactly once for every accepted Runnable.
// A non-nil error from Schedule means r was not accepted.
type Scheduler interface {
	Schedule(r Runnable) error
}

// ThreadPool runs work asynchronously on some worker and calls done once
// work has returned. A non-nil error means the work was not accepted and
// neither work nor done will be invoked.
type ThreadPool interface {
	Enqueue(work func(), done func()) error
}

// Metrics receives scheduler events. Implementations must be fast and must
// not call back into the scheduler.
type Metrics interface {
	TaskAdmitted()
	TaskRejected()
	Occupancy(running, pending int)
}

type NilMetrics struct{}

func (NilMetrics) TaskAdmitted()                  {}
func (NilMetrics) TaskRejected()                  {}
func (NilMetrics) Occupancy(running, pending int) {}

type queue[T any] []T

func (q *queue[T]) Len() int { return len(*q) }

func (q *queue[T]) Pop() T {
	old := *q
	x := old[0]
	var zero T
	old[0] = zero
	*q = old[1:]
	return x
}

func (q *queue[T]) Push(t T) {
	*q = append(*q, t)
}

// PushFront puts t back at the head of the queue.
func (q *queue[T]) PushFront(t T) {
	*q = append(queue[T]{t}, *q...)
}
