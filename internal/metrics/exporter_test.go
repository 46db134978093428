package metrics_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kubev2v/taskd/internal/metrics"
	"github.com/kubev2v/taskd/pkg/scheduler"
)

var _ = Describe("Exporter", func() {
	var (
		reg      *prom.Registry
		exporter *metrics.Exporter
	)

	BeforeEach(func() {
		reg = prom.NewRegistry()

		var err error
		exporter, err = metrics.NewExporter(reg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should export scheduler occupancy", func() {
		exporter.Occupancy(2, 5)
		exporter.TaskAdmitted()
		exporter.TaskAdmitted()
		exporter.TaskRejected()

		expected := `
# HELP taskd_scheduler_admitted_total Tasks handed to the thread pool.
# TYPE taskd_scheduler_admitted_total counter
taskd_scheduler_admitted_total 2
# HELP taskd_scheduler_pending Number of tasks waiting for a scheduler slot.
# TYPE taskd_scheduler_pending gauge
taskd_scheduler_pending 5
# HELP taskd_scheduler_rejected_total Tasks the thread pool refused.
# TYPE taskd_scheduler_rejected_total counter
taskd_scheduler_rejected_total 1
# HELP taskd_scheduler_running Number of tasks currently holding a scheduler slot.
# TYPE taskd_scheduler_running gauge
taskd_scheduler_running 2
`
		err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"taskd_scheduler_admitted_total",
			"taskd_scheduler_pending",
			"taskd_scheduler_rejected_total",
			"taskd_scheduler_running",
		)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should count finished jobs per kind and status", func() {
		exporter.JobFinished("sleep", "succeeded", 10*time.Millisecond)
		exporter.JobFinished("sleep", "failed", 20*time.Millisecond)
		exporter.JobFinished("sleep", "succeeded", 30*time.Millisecond)

		count, err := testutil.GatherAndCount(reg, "taskd_jobs_finished_total")
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(2))
	})

	// Given an exporter already registered on a registry
	// When a second exporter is created on the same registry
	// Then both should share the same collectors
	It("should reuse collectors already registered", func() {
		// Act
		second, err := metrics.NewExporter(reg)

		// Assert
		Expect(err).NotTo(HaveOccurred())
		exporter.TaskAdmitted()
		second.TaskAdmitted()

		expected := `
# HELP taskd_scheduler_admitted_total Tasks handed to the thread pool.
# TYPE taskd_scheduler_admitted_total counter
taskd_scheduler_admitted_total 2
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected), "taskd_scheduler_admitted_total")).To(Succeed())
	})

	It("should track a bounded scheduler", func() {
		pool := scheduler.NewGoroutinePool()
		s := scheduler.NewBoundedScheduler(2, pool, scheduler.WithMetrics(exporter))

		for i := 0; i < 5; i++ {
			Expect(scheduler.NewTask(func() error { return nil }).Submit(s)).To(Succeed())
		}
		Eventually(s.Running, time.Second).Should(BeZero())
		pool.Wait()

		expected := `
# HELP taskd_scheduler_admitted_total Tasks handed to the thread pool.
# TYPE taskd_scheduler_admitted_total counter
taskd_scheduler_admitted_total 5
# HELP taskd_scheduler_running Number of tasks currently holding a scheduler slot.
# TYPE taskd_scheduler_running gauge
taskd_scheduler_running 0
`
		Expect(testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"taskd_scheduler_admitted_total", "taskd_scheduler_running")).To(Succeed())
	})
})
