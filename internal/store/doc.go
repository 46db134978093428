// Package store implements the data access layer for taskd.
//
// Jobs submitted through the HTTP API are persisted in DuckDB so their
// final state outlives the in-memory task that ran them.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                            JobStore                             │
//	│                               ▼                                 │
//	│                             jobs                                │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables are created by the migrations under internal/store/migrations/sql/:
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  jobs              │  One row per submitted job and its outcome  │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, err := store.NewDB(path)      // "" or ":memory:" for in-memory
//	s := store.NewStore(db)
//	err = s.Migrate(ctx)              // applies pending migrations
//
// # Job Lifecycle In The Table
//
//	queued ──► running ──► succeeded
//	   │                └─► failed
//	   └──► rejected        (thread pool declined the task)
//
// The row is inserted as queued before the task is submitted. Every later
// transition goes through JobStore.UpdateStatus, which also bumps updated_at.
//
// # Query Building
//
// Queries are built with squirrel. List and Count accept ListOption values
// that decorate the select builder:
//
//	jobs, err := s.Jobs().List(ctx,
//	    store.ByStatus(models.JobStatusFailed),
//	    store.ByKind("http"),
//	    store.WithDefaultSort(),
//	    store.WithLimit(20),
//	    store.WithOffset(40),
//	)
//
// Count takes the same filter options but must not receive sort or
// pagination options.
package store
