// Package services implements the business logic layer for taskd.
//
// Services sit between the HTTP handlers and the store. Jobs are executed as
// scheduler tasks, so the bounded scheduler decides when each job runs.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)
//	    │
//	    ▼
//	JobService ──► Store, BoundedScheduler, Registry, Notifier, JobObserver
//	                                                      │
//	                                                      ▼
//	                                       webhook.Client (callback POSTs)
//
// # JobService
//
// Submit looks up the kind in the Registry, stores the job as queued, wraps
// the kind function in a scheduler.TaskOf[string] and submits it.
//
//	┌────────┐  slot free   ┌─────────┐  fn returns  ┌───────────┐
//	│ Queued │─────────────►│ Running │─────────────►│ Succeeded │
//	└────────┘              └─────────┘      │       └───────────┘
//	    │                                    │       ┌───────────┐
//	    │ pool declined                      └──────►│  Failed   │
//	    ▼                                  error or  └───────────┘
//	┌──────────┐                           panic
//	│ Rejected │
//	└──────────┘
//
// Key behaviors:
//   - The task callback marks the row running and then calls the kind function.
//   - The first continuation of the task writes the terminal row, reports it to
//     the JobObserver and schedules the callback notification. It runs before the
//     scheduler slot is released.
//   - Wait blocks on a per-job channel closed after the terminal row is written,
//     so a job returned by Wait is never stale.
//   - Close cancels the context handed to kind functions. Outcomes are still written.
//   - RecoverInterrupted marks jobs a previous process left queued or running as failed.
//
// Usage:
//
//	srv := services.NewJobService(st, sched, services.NewDefaultRegistry(30*time.Second),
//	    services.WithNotifier(notifier),
//	    services.WithObserver(exporter),
//	)
//	job, err := srv.Submit(ctx, services.SubmitJobRequest{Kind: "sleep"})
//	job, err = srv.Wait(ctx, job.ID)
//
// # Registry
//
// Built-in kinds:
//
//	┌───────┬──────────────────────┬──────────────────────────────────────┐
//	│ Kind  │ Params               │ Behavior                             │
//	├───────┼──────────────────────┼──────────────────────────────────────┤
//	│ sleep │ duration (default 1s)│ Waits, result "slept <duration>"     │
//	│ http  │ url                  │ GET, non-2xx fails, result status    │
//	│ fail  │ message              │ Always fails with message            │
//	└───────┴──────────────────────┴──────────────────────────────────────┘
//
// # Notifier
//
// Notifier POSTs a JobNotification to the job callback URL. Transient failures
// are retried with exponential backoff until MaxElapsed; a 4xx answer is
// permanent. NotifyAsync runs deliveries on a small bounded scheduler of its own.
package services
