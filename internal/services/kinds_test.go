package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskd/internal/services"
	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

var _ = Describe("Registry", func() {
	var (
		ctx      context.Context
		registry *services.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		registry = services.NewDefaultRegistry(time.Second)
	})

	It("should list the built-in kinds sorted", func() {
		Expect(registry.Kinds()).To(Equal([]string{"fail", "http", "sleep"}))
	})

	It("should return an unknown kind error", func() {
		_, err := registry.Lookup("teleport")

		Expect(srvErrors.IsUnknownJobKindError(err)).To(BeTrue())
	})

	It("should panic when registering a nil function", func() {
		Expect(func() { registry.Register("noop", nil) }).To(Panic())
	})

	It("should replace a registered kind", func() {
		registry.Register(services.KindFail, func(context.Context, map[string]string) (string, error) {
			return "not failing", nil
		})

		fn, err := registry.Lookup(services.KindFail)
		Expect(err).NotTo(HaveOccurred())
		Expect(fn(ctx, nil)).To(Equal("not failing"))
	})

	Context("sleep", func() {
		var sleep services.JobFunc

		BeforeEach(func() {
			var err error
			sleep, err = registry.Lookup(services.KindSleep)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should sleep for the requested duration", func() {
			start := time.Now()

			result, err := sleep(ctx, map[string]string{"duration": "20ms"})

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("slept 20ms"))
			Expect(time.Since(start)).To(BeNumerically(">=", 20*time.Millisecond))
		})

		It("should refuse an invalid duration", func() {
			_, err := sleep(ctx, map[string]string{"duration": "soon"})

			Expect(srvErrors.IsInvalidArgumentError(err)).To(BeTrue())
		})

		It("should stop when the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := sleep(cctx, map[string]string{"duration": "1h"})

			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Context("http", func() {
		var call services.JobFunc

		BeforeEach(func() {
			var err error
			call, err = registry.Lookup(services.KindHTTP)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the status of a successful request", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			result, err := call(ctx, map[string]string{"url": srv.URL})

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("200 OK"))
		})

		It("should fail on a non 2xx answer", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer srv.Close()

			_, err := call(ctx, map[string]string{"url": srv.URL})

			Expect(err).To(MatchError(ContainSubstring("500")))
		})

		It("should require a url", func() {
			_, err := call(ctx, map[string]string{})

			Expect(srvErrors.IsInvalidArgumentError(err)).To(BeTrue())
		})
	})

	Context("fail", func() {
		It("should fail with the given message", func() {
			fail, err := registry.Lookup(services.KindFail)
			Expect(err).NotTo(HaveOccurred())

			_, err = fail(ctx, map[string]string{"message": "boom"})

			Expect(err).To(MatchError("boom"))
		})
	})
})
