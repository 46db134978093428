// Package handlers implements the HTTP API layer for taskd.
//
// Handlers delegate to the services layer and focus on request validation,
// response formatting, and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request validation                                           │
//	│  - Parameter parsing                                            │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion (api/v1)                             │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      JobService                                 │
//	└─────────────────────────────────────────────────────────────────┘
//
// Routes are registered on the /api/v1 group:
//
//	handlers.RegisterHandlers(router, handlers.New(jobSrv))
//
// # API Endpoints
//
//	┌────────┬────────────┬──────────────────────────────────────────────┐
//	│ Method │ Endpoint   │ Description                                  │
//	├────────┼────────────┼──────────────────────────────────────────────┤
//	│ POST   │ /jobs      │ Submit a job, 202 with the stored job        │
//	│ GET    │ /jobs      │ List jobs with filtering/pagination          │
//	│ GET    │ /jobs/{id} │ Get a job, optionally waiting for it         │
//	│ GET    │ /kinds     │ List registered job kinds                    │
//	│ GET    │ /scheduler │ Scheduler occupancy                          │
//	└────────┴────────────┴──────────────────────────────────────────────┘
//
// # Job Submission
//
// POST /jobs
//
//	{
//	    "kind": "sleep",                          // required
//	    "params": {"duration": "5s"},             // optional, kind specific
//	    "callbackUrl": "http://example.com/hook"  // optional
//	}
//
// When callbackUrl is set the finished job is POSTed to it.
//
// # Listing
//
// GET /jobs query parameters:
//
//	┌──────────┬──────────┬─────────────────────────────────────────┐
//	│ Parameter│ Type     │ Description                             │
//	├──────────┼──────────┼─────────────────────────────────────────┤
//	│ status   │ []string │ Filter by status (OR logic)             │
//	│ kind     │ []string │ Filter by kind (OR logic)               │
//	│ page     │ int      │ Page number (default: 1)                │
//	│ pageSize │ int      │ Items per page (default: 20, max: 100)  │
//	└──────────┴──────────┴─────────────────────────────────────────┘
//
// # Waiting
//
// GET /jobs/{id}?wait=10s blocks until the job reached a terminal status or
// the duration (capped at 60s) elapsed, then returns the job as stored.
//
// # Error Mapping
//
//	┌──────────────────────────┬────────────────────────────┐
//	│ Error                    │ Status                     │
//	├──────────────────────────┼────────────────────────────┤
//	│ ResourceNotFoundError    │ 404 Not Found              │
//	│ UnknownJobKindError      │ 400 Bad Request            │
//	│ InvalidArgumentError     │ 400 Bad Request            │
//	│ InvalidStateError        │ 409 Conflict               │
//	│ PoolRejectedError        │ 503 Service Unavailable    │
//	│ anything else            │ 500 Internal Server Error  │
//	└──────────────────────────┴────────────────────────────┘
package handlers
