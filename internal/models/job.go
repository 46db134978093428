package models

import "time"

type JobStatus string

const (
	// JobStatusQueued - accepted and waiting for a scheduler slot
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning - the job callback is executing
	JobStatusRunning JobStatus = "running"
	// JobStatusSucceeded - the job finished without error
	JobStatusSucceeded JobStatus = "succeeded"
	// JobStatusFailed - the job returned an error or panicked
	JobStatusFailed JobStatus = "failed"
	// JobStatusRejected - the thread pool declined the job
	JobStatusRejected JobStatus = "rejected"
)

func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusRejected:
		return true
	default:
		return false
	}
}

// Job is a named unit of work run through the scheduler.
type Job struct {
	ID          string
	Kind        string
	Params      map[string]string
	CallbackURL string
	Status      JobStatus
	Result      string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SchedulerStatus is a snapshot of the bounded scheduler occupancy.
type SchedulerStatus struct {
	MaxConcurrency int
	Running        int
	Pending        int
}
