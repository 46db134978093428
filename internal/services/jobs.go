package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kubev2v/taskd/internal/models"
	"github.com/kubev2v/taskd/internal/store"
	"github.com/kubev2v/taskd/pkg/scheduler"
)

const interruptedMessage = "interrupted by a restart"

// JobScheduler is the part of scheduler.BoundedScheduler the service needs.
type JobScheduler interface {
	scheduler.Scheduler
	MaxConcurrency() int
	Running() int
	Pending() int
}

// JobObserver is told about every job reaching a terminal status.
type JobObserver interface {
	JobFinished(kind, status string, d time.Duration)
}

type nilObserver struct{}

func (nilObserver) JobFinished(string, string, time.Duration) {}

type JobServiceOption func(s *JobService)

func WithNotifier(n *Notifier) JobServiceOption {
	return func(s *JobService) {
		s.notifier = n
	}
}

func WithObserver(o JobObserver) JobServiceOption {
	return func(s *JobService) {
		if o != nil {
			s.observer = o
		}
	}
}

type SubmitJobRequest struct {
	Kind        string
	Params      map[string]string
	CallbackURL string
}

type JobListParams struct {
	Statuses []models.JobStatus
	Kinds    []string
	Limit    uint64
	Offset   uint64
}

type JobListResult struct {
	Jobs  []models.Job
	Total int
}

// JobService runs jobs through the scheduler and records their lifecycle in the store.
type JobService struct {
	store     *store.Store
	scheduler JobScheduler
	registry  *Registry
	notifier  *Notifier
	observer  JobObserver

	// ctx is handed to running jobs and cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]chan struct{}
}

func NewJobService(st *store.Store, s JobScheduler, registry *Registry, opts ...JobServiceOption) *JobService {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &JobService{
		store:     st,
		scheduler: s,
		registry:  registry,
		observer:  nilObserver{},
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

// Submit records a queued job and hands it to the scheduler.
// If the scheduler refuses it the job is marked rejected and the error returned.
func (s *JobService) Submit(ctx context.Context, req SubmitJobRequest) (*models.Job, error) {
	fn, err := s.registry.Lookup(req.Kind)
	if err != nil {
		return nil, err
	}

	params := req.Params
	if params == nil {
		params = map[string]string{}
	}

	job := models.Job{
		ID:          uuid.NewString(),
		Kind:        req.Kind,
		Params:      params,
		CallbackURL: req.CallbackURL,
		Status:      models.JobStatusQueued,
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	submittedAt := time.Now()
	task := scheduler.NewTaskOf(func() (string, error) {
		if err := s.store.Jobs().UpdateStatus(s.ctx, job.ID, models.JobStatusRunning, "", ""); err != nil {
			zap.S().Named("job_service").Warnw("failed to mark job running", "job_id", job.ID, "error", err)
		}
		return fn(s.ctx, params)
	})

	finished := make(chan struct{})
	task.OnCompletion(func(t *scheduler.TaskOf[string]) {
		defer close(finished)
		s.finish(job, t, submittedAt)
	})

	s.mu.Lock()
	s.inflight[job.ID] = finished
	s.mu.Unlock()

	if err := task.Submit(s.scheduler); err != nil {
		s.forget(job.ID)
		if uerr := s.store.Jobs().UpdateStatus(context.WithoutCancel(ctx), job.ID, models.JobStatusRejected, "", err.Error()); uerr != nil {
			zap.S().Named("job_service").Errorw("failed to mark job rejected", "job_id", job.ID, "error", uerr)
		}
		s.observer.JobFinished(job.Kind, string(models.JobStatusRejected), time.Since(submittedAt))
		return nil, fmt.Errorf("failed to schedule job %s: %w", job.ID, err)
	}

	zap.S().Named("job_service").Infow("job submitted", "job_id", job.ID, "kind", job.Kind)

	created, err := s.store.Jobs().Get(ctx, job.ID)
	if err != nil {
		return &job, nil
	}
	return created, nil
}

// finish runs as the first continuation of the job task, before its
// scheduler slot is released.
func (s *JobService) finish(job models.Job, t *scheduler.TaskOf[string], submittedAt time.Time) {
	defer s.forget(job.ID)

	result, err := t.Result()
	status := models.JobStatusSucceeded
	errMsg := ""
	if err != nil {
		status = models.JobStatusFailed
		errMsg = err.Error()
	}

	// the terminal state is written even when Close already cancelled s.ctx
	ctx := context.WithoutCancel(s.ctx)
	if err := s.store.Jobs().UpdateStatus(ctx, job.ID, status, result, errMsg); err != nil {
		zap.S().Named("job_service").Errorw("failed to record job outcome", "job_id", job.ID, "status", status, "error", err)
	}
	s.observer.JobFinished(job.Kind, string(status), time.Since(submittedAt))

	zap.S().Named("job_service").Infow("job finished", "job_id", job.ID, "kind", job.Kind, "status", status)

	if job.CallbackURL == "" || s.notifier == nil {
		return
	}
	finished, err := s.store.Jobs().Get(ctx, job.ID)
	if err != nil {
		zap.S().Named("job_service").Errorw("failed to load finished job", "job_id", job.ID, "error", err)
		return
	}
	s.notifier.NotifyAsync(ctx, *finished)
}

func (s *JobService) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	return s.store.Jobs().Get(ctx, id)
}

// Wait blocks until the job reached a terminal status or ctx is done, then
// returns the stored job. A job this process is not running is returned as stored.
func (s *JobService) Wait(ctx context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	finished, ok := s.inflight[id]
	s.mu.Unlock()

	if ok {
		select {
		case <-finished:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.store.Jobs().Get(ctx, id)
}

func (s *JobService) List(ctx context.Context, params JobListParams) (*JobListResult, error) {
	filters := s.buildFilterOptions(params)

	opts := append([]store.ListOption{}, filters...)
	opts = append(opts, store.WithDefaultSort())
	if params.Limit > 0 {
		opts = append(opts, store.WithLimit(params.Limit))
	}
	if params.Offset > 0 {
		opts = append(opts, store.WithOffset(params.Offset))
	}

	jobs, err := s.store.Jobs().List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	// Get total count without pagination
	total, err := s.store.Jobs().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	return &JobListResult{
		Jobs:  jobs,
		Total: total,
	}, nil
}

func (s *JobService) buildFilterOptions(params JobListParams) []store.ListOption {
	var opts []store.ListOption

	if len(params.Statuses) > 0 {
		opts = append(opts, store.ByStatus(params.Statuses...))
	}
	if len(params.Kinds) > 0 {
		opts = append(opts, store.ByKind(params.Kinds...))
	}

	return opts
}

func (s *JobService) Kinds() []string {
	return s.registry.Kinds()
}

func (s *JobService) SchedulerStatus() models.SchedulerStatus {
	return models.SchedulerStatus{
		MaxConcurrency: s.scheduler.MaxConcurrency(),
		Running:        s.scheduler.Running(),
		Pending:        s.scheduler.Pending(),
	}
}

// RecoverInterrupted fails every job a previous process left queued or running.
func (s *JobService) RecoverInterrupted(ctx context.Context) (int, error) {
	stale, err := s.store.Jobs().List(ctx, store.ByStatus(models.JobStatusQueued, models.JobStatusRunning))
	if err != nil {
		return 0, err
	}

	for _, job := range stale {
		if err := s.store.Jobs().UpdateStatus(ctx, job.ID, models.JobStatusFailed, "", interruptedMessage); err != nil {
			return 0, fmt.Errorf("failed to recover job %s: %w", job.ID, err)
		}
	}
	if len(stale) > 0 {
		zap.S().Named("job_service").Infow("recovered interrupted jobs", "count", len(stale))
	}
	return len(stale), nil
}

// Drain waits until every job submitted through this service reached a
// terminal status, or ctx is done.
func (s *JobService) Drain(ctx context.Context) error {
	s.mu.Lock()
	pending := make([]chan struct{}, 0, len(s.inflight))
	for _, finished := range s.inflight {
		pending = append(pending, finished)
	}
	s.mu.Unlock()

	for _, finished := range pending {
		select {
		case <-finished:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close cancels the context of running jobs. Their outcome is still recorded.
func (s *JobService) Close() {
	s.cancel()
}
