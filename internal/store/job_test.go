package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskd/internal/models"
	"github.com/kubev2v/taskd/internal/store"
	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

var _ = Describe("JobStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newJob := func(id, kind string, status models.JobStatus) models.Job {
		return models.Job{
			ID:     id,
			Kind:   kind,
			Params: map[string]string{"duration": "1s"},
			Status: status,
		}
	}

	Context("Get", func() {
		// Given an empty job store
		// When we try to get a job
		// Then it should return a not found error
		It("should return a not found error when the job does not exist", func() {
			// Act
			_, err := s.Jobs().Get(ctx, "missing")

			// Assert
			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		// Given a created job
		// When we retrieve it
		// Then all fields should round trip
		It("should return a created job", func() {
			// Arrange
			job := newJob("job-1", "sleep", models.JobStatusQueued)
			job.CallbackURL = "http://localhost/hook"
			Expect(s.Jobs().Create(ctx, job)).To(Succeed())

			// Act
			retrieved, err := s.Jobs().Get(ctx, "job-1")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.ID).To(Equal("job-1"))
			Expect(retrieved.Kind).To(Equal("sleep"))
			Expect(retrieved.Params).To(Equal(map[string]string{"duration": "1s"}))
			Expect(retrieved.CallbackURL).To(Equal("http://localhost/hook"))
			Expect(retrieved.Status).To(Equal(models.JobStatusQueued))
			Expect(retrieved.CreatedAt).NotTo(BeZero())
		})
	})

	Context("Create", func() {
		It("should refuse a duplicate id", func() {
			job := newJob("job-1", "sleep", models.JobStatusQueued)
			Expect(s.Jobs().Create(ctx, job)).To(Succeed())

			err := s.Jobs().Create(ctx, job)

			Expect(err).To(HaveOccurred())
		})
	})

	Context("UpdateStatus", func() {
		It("should store the terminal state", func() {
			Expect(s.Jobs().Create(ctx, newJob("job-1", "fail", models.JobStatusQueued))).To(Succeed())

			err := s.Jobs().UpdateStatus(ctx, "job-1", models.JobStatusFailed, "", "boom")

			Expect(err).NotTo(HaveOccurred())
			retrieved, err := s.Jobs().Get(ctx, "job-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved.Status).To(Equal(models.JobStatusFailed))
			Expect(retrieved.Error).To(Equal("boom"))
			Expect(retrieved.UpdatedAt).NotTo(BeTemporally("<", retrieved.CreatedAt))
		})

		It("should return a not found error for an unknown job", func() {
			err := s.Jobs().UpdateStatus(ctx, "missing", models.JobStatusRunning, "", "")

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("List", func() {
		BeforeEach(func() {
			Expect(s.Jobs().Create(ctx, newJob("job-1", "sleep", models.JobStatusSucceeded))).To(Succeed())
			Expect(s.Jobs().Create(ctx, newJob("job-2", "http", models.JobStatusFailed))).To(Succeed())
			Expect(s.Jobs().Create(ctx, newJob("job-3", "sleep", models.JobStatusQueued))).To(Succeed())
			Expect(s.Jobs().Create(ctx, newJob("job-4", "sleep", models.JobStatusSucceeded))).To(Succeed())
		})

		It("should return an empty slice when nothing matches", func() {
			jobs, err := s.Jobs().List(ctx, store.ByKind("unknown"))

			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).NotTo(BeNil())
			Expect(jobs).To(BeEmpty())
		})

		It("should filter by status", func() {
			jobs, err := s.Jobs().List(ctx, store.ByStatus(models.JobStatusSucceeded), store.WithDefaultSort())

			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal("job-1"))
			Expect(jobs[1].ID).To(Equal("job-4"))
		})

		It("should filter by kind and status together", func() {
			jobs, err := s.Jobs().List(ctx,
				store.ByKind("sleep"),
				store.ByStatus(models.JobStatusQueued, models.JobStatusFailed),
			)

			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal("job-3"))
		})

		It("should paginate", func() {
			jobs, err := s.Jobs().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(1))

			Expect(err).NotTo(HaveOccurred())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal("job-2"))
			Expect(jobs[1].ID).To(Equal("job-3"))
		})

		It("should count matching jobs", func() {
			total, err := s.Jobs().Count(ctx, store.ByKind("sleep"))
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(3))

			total, err = s.Jobs().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(4))
		})
	})

	Context("Concurrent writes", func() {
		// Given multiple goroutines updating different jobs
		// When all updates run at the same time
		// Then every update should succeed
		It("should handle concurrent status updates", func() {
			const numJobs = 20
			for i := 0; i < numJobs; i++ {
				Expect(s.Jobs().Create(ctx, newJob(fmt.Sprintf("job-%02d", i), "sleep", models.JobStatusQueued))).To(Succeed())
			}

			var wg sync.WaitGroup
			errs := make(chan error, numJobs)
			for i := 0; i < numJobs; i++ {
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					if err := s.Jobs().UpdateStatus(ctx, fmt.Sprintf("job-%02d", idx), models.JobStatusSucceeded, "ok", ""); err != nil {
						errs <- fmt.Errorf("job %d: %w", idx, err)
					}
				}(i)
			}
			wg.Wait()
			close(errs)

			var collected []error
			for err := range errs {
				collected = append(collected, err)
			}
			Expect(collected).To(BeEmpty())

			total, err := s.Jobs().Count(ctx, store.ByStatus(models.JobStatusSucceeded))
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(numJobs))
		})
	})
})
