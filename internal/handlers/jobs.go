package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/taskd/api/v1"
	"github.com/kubev2v/taskd/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxWait         = 60 * time.Second

	// keeps the row offset of the last page within an int
	maxPage = math.MaxInt / maxPageSize
)

// CreateJob submits a new job
// (POST /jobs)
func (h *Handler) CreateJob(c *gin.Context) {
	var req v1.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	job, err := h.jobSrv.Submit(c.Request.Context(), services.SubmitJobRequest{
		Kind:        req.Kind,
		Params:      req.Params,
		CallbackURL: req.CallbackUrl,
	})
	if err != nil {
		writeError(c, err, "failed to submit job")
		return
	}

	c.JSON(http.StatusAccepted, v1.NewJobFromModel(*job))
}

// GetJobs returns the list of jobs with filtering and pagination
// (GET /jobs)
func (h *Handler) GetJobs(c *gin.Context) {
	var params v1.GetJobsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid query: %v", err)})
		return
	}

	statuses, invalid := v1.ParseJobStatuses(params.Status)
	if len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid status: %s", strings.Join(invalid, ", "))})
		return
	}

	page := 1
	if params.Page != nil && *params.Page > 0 {
		page = *params.Page
	}
	if page > maxPage {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid page %d: must not exceed %d", page, maxPage)})
		return
	}
	pageSize := defaultPageSize
	if params.PageSize != nil && *params.PageSize > 0 {
		pageSize = *params.PageSize
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	result, err := h.jobSrv.List(c.Request.Context(), services.JobListParams{
		Statuses: statuses,
		Kinds:    params.Kind,
		Limit:    uint64(pageSize),
		Offset:   uint64((page - 1) * pageSize),
	})
	if err != nil {
		writeError(c, err, "failed to list jobs")
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	jobs := make([]v1.Job, 0, len(result.Jobs))
	for _, job := range result.Jobs {
		jobs = append(jobs, v1.NewJobFromModel(job))
	}

	c.JSON(http.StatusOK, v1.JobListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Jobs:      jobs,
	})
}

// GetJob returns a job. With ?wait=<duration> it blocks until the job is
// finished or the duration elapsed, and returns the job as it is then.
// (GET /jobs/{id})
func (h *Handler) GetJob(c *gin.Context) {
	id := c.Param("id")

	var params v1.GetJobParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid query: %v", err)})
		return
	}

	if params.Wait == nil {
		job, err := h.jobSrv.Get(c.Request.Context(), id)
		if err != nil {
			writeError(c, err, "failed to get job")
			return
		}
		c.JSON(http.StatusOK, v1.NewJobFromModel(*job))
		return
	}

	wait, err := time.ParseDuration(*params.Wait)
	if err != nil || wait < 0 {
		c.JSON(http.StatusBadRequest, v1.Error{Error: fmt.Sprintf("invalid wait duration %q", *params.Wait)})
		return
	}
	if wait > maxWait {
		wait = maxWait
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
	defer cancel()

	job, err := h.jobSrv.Wait(ctx, id)
	if errors.Is(err, context.DeadlineExceeded) {
		job, err = h.jobSrv.Get(c.Request.Context(), id)
	}
	if err != nil {
		writeError(c, err, "failed to get job")
		return
	}
	c.JSON(http.StatusOK, v1.NewJobFromModel(*job))
}

// GetKinds returns the registered job kinds
// (GET /kinds)
func (h *Handler) GetKinds(c *gin.Context) {
	c.JSON(http.StatusOK, v1.KindList{Kinds: h.jobSrv.Kinds()})
}

// GetSchedulerStatus returns the scheduler occupancy
// (GET /scheduler)
func (h *Handler) GetSchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewSchedulerStatus(h.jobSrv.SchedulerStatus()))
}
