package server_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/kubev2v/taskd/internal/config"
	"github.com/kubev2v/taskd/internal/server"
)

var _ = Describe("Server", func() {
	var (
		cfg *config.Configuration
		reg *prom.Registry
	)

	BeforeEach(func() {
		var err error
		cfg, err = config.NewConfigurationWithDefaults()
		Expect(err).NotTo(HaveOccurred())
		reg = prom.NewRegistry()
	})

	get := func(srv *server.Server, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	It("should require a register function", func() {
		_, err := server.NewServer(cfg, reg, nil)

		Expect(err).To(HaveOccurred())
	})

	It("should mount the handlers under /api/v1", func() {
		srv, err := server.NewServer(cfg, reg, func(router *gin.RouterGroup) {
			router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
		})
		Expect(err).NotTo(HaveOccurred())

		w := get(srv, "/api/v1/ping")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("pong"))
	})

	It("should expose prometheus metrics", func() {
		counter := prom.NewCounter(prom.CounterOpts{Name: "taskd_test_total", Help: "test"})
		reg.MustRegister(counter)
		counter.Inc()
		srv, err := server.NewServer(cfg, reg, func(*gin.RouterGroup) {})
		Expect(err).NotTo(HaveOccurred())

		w := get(srv, "/metrics")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("taskd_test_total 1"))
	})

	It("should answer unknown routes with a JSON 404", func() {
		srv, err := server.NewServer(cfg, reg, func(*gin.RouterGroup) {})
		Expect(err).NotTo(HaveOccurred())

		w := get(srv, "/api/v1/nothing")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	})

	It("should recover from a panicking handler", func() {
		srv, err := server.NewServer(cfg, reg, func(router *gin.RouterGroup) {
			router.GET("/panic", func(*gin.Context) { panic("boom") })
		})
		Expect(err).NotTo(HaveOccurred())

		w := get(srv, "/api/v1/panic")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
