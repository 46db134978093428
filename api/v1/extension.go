package v1

import (
	"github.com/kubev2v/taskd/internal/models"
	"github.com/kubev2v/taskd/internal/util"
)

// NewJobFromModel converts a models.Job to an API Job.
func NewJobFromModel(job models.Job) Job {
	var status JobStatus
	switch job.Status {
	case models.JobStatusRunning:
		status = JobStatusRunning
	case models.JobStatusSucceeded:
		status = JobStatusSucceeded
	case models.JobStatusFailed:
		status = JobStatusFailed
	case models.JobStatusRejected:
		status = JobStatusRejected
	default:
		status = JobStatusQueued
	}

	params := job.Params
	if params == nil {
		params = map[string]string{}
	}

	return Job{
		Id:          job.ID,
		Kind:        job.Kind,
		Params:      params,
		CallbackUrl: util.StringPtrOrNil(job.CallbackURL),
		Status:      status,
		Result:      util.StringPtrOrNil(job.Result),
		Error:       util.StringPtrOrNil(job.Error),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

var validJobStatuses = []JobStatus{
	JobStatusQueued,
	JobStatusRunning,
	JobStatusSucceeded,
	JobStatusFailed,
	JobStatusRejected,
}

// ParseJobStatuses converts API status filters to model statuses. Unknown
// values are returned in the second slice.
func ParseJobStatuses(values []string) ([]models.JobStatus, []string) {
	var (
		statuses []models.JobStatus
		invalid  []string
	)
	for _, v := range values {
		if util.Contains(validJobStatuses, JobStatus(v)) {
			statuses = append(statuses, models.JobStatus(v))
		} else {
			invalid = append(invalid, v)
		}
	}
	return statuses, invalid
}

func NewSchedulerStatus(s models.SchedulerStatus) SchedulerStatus {
	return SchedulerStatus{
		MaxConcurrency: s.MaxConcurrency,
		Running:        s.Running,
		Pending:        s.Pending,
	}
}
