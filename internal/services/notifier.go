package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kubev2v/taskd/internal/models"
	srvErrors "github.com/kubev2v/taskd/pkg/errors"
	"github.com/kubev2v/taskd/pkg/scheduler"
)

const (
	notifierConcurrency    = 4
	notifierInitialBackoff = 200 * time.Millisecond
)

// Poster delivers a JSON body to a URL.
type Poster interface {
	Post(ctx context.Context, url string, body any) error
}

// JobNotification is the body posted to a job's callback URL.
type JobNotification struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Params    map[string]string `json:"params"`
	Status    string            `json:"status"`
	Result    string            `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func newJobNotification(job models.Job) JobNotification {
	return JobNotification{
		ID:        job.ID,
		Kind:      job.Kind,
		Params:    job.Params,
		Status:    string(job.Status),
		Result:    job.Result,
		Error:     job.Error,
		UpdatedAt: job.UpdatedAt,
	}
}

// Notifier posts finished jobs to their callback URL. Deliveries run on
// their own bounded scheduler so slow endpoints never hold a job slot.
type Notifier struct {
	poster     Poster
	maxElapsed time.Duration
	pool       *scheduler.GoroutinePool
	scheduler  *scheduler.BoundedScheduler
}

func NewNotifier(poster Poster, maxElapsed time.Duration) *Notifier {
	pool := scheduler.NewGoroutinePool()
	return &Notifier{
		poster:     poster,
		maxElapsed: maxElapsed,
		pool:       pool,
		scheduler:  scheduler.NewBoundedScheduler(notifierConcurrency, pool),
	}
}

// Notify posts job to its callback URL, retrying with exponential backoff
// until maxElapsed. A rejection by the endpoint is not retried.
func (n *Notifier) Notify(ctx context.Context, job models.Job) error {
	body := newJobNotification(job)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = notifierInitialBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := n.poster.Post(ctx, job.CallbackURL, body)
		if srvErrors.IsWebhookRejectedError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(n.maxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			zap.S().Named("notifier").Debugw("notification failed, retrying", "job_id", job.ID, "error", err, "next", next)
		}),
	)
	return err
}

// NotifyAsync schedules Notify and returns immediately. Failures are logged.
func (n *Notifier) NotifyAsync(ctx context.Context, job models.Job) {
	task := scheduler.NewTask(func() error {
		return n.Notify(ctx, job)
	})
	task.OnCompletion(func(t *scheduler.Task) {
		if err := t.Failure(); err != nil {
			zap.S().Named("notifier").Errorw("failed to notify job callback", "job_id", job.ID, "url", job.CallbackURL, "error", err)
			return
		}
		zap.S().Named("notifier").Debugw("job callback notified", "job_id", job.ID)
	})
	if err := task.Submit(n.scheduler); err != nil {
		zap.S().Named("notifier").Errorw("failed to schedule notification", "job_id", job.ID, "error", err)
	}
}

// Wait blocks until every scheduled notification finished.
func (n *Notifier) Wait() {
	n.pool.Wait()
}
