package v1

import "time"

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRejected  JobStatus = "rejected"
)

type CreateJobRequest struct {
	Kind        string            `json:"kind" binding:"required"`
	Params      map[string]string `json:"params,omitempty"`
	CallbackUrl string            `json:"callbackUrl,omitempty"`
}

type Job struct {
	Id          string            `json:"id"`
	Kind        string            `json:"kind"`
	Params      map[string]string `json:"params"`
	CallbackUrl *string           `json:"callbackUrl,omitempty"`
	Status      JobStatus         `json:"status"`
	Result      *string           `json:"result,omitempty"`
	Error       *string           `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type JobListResponse struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Total     int   `json:"total"`
	Jobs      []Job `json:"jobs"`
}

type GetJobsParams struct {
	Status   []string `form:"status"`
	Kind     []string `form:"kind"`
	Page     *int     `form:"page"`
	PageSize *int     `form:"pageSize"`
}

type GetJobParams struct {
	Wait *string `form:"wait"`
}

type SchedulerStatus struct {
	MaxConcurrency int `json:"maxConcurrency"`
	Running        int `json:"running"`
	Pending        int `json:"pending"`
}

type KindList struct {
	Kinds []string `json:"kinds"`
}

type Error struct {
	Error string `json:"error"`
}
