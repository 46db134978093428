package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskd/api/v1"
	"github.com/kubev2v/taskd/internal/config"
)

const (
	apiPrefix         = "/api/v1"
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	srv    *http.Server
	engine *gin.Engine
}

// NewServer builds the gin engine. registerHandlerFn receives the /api/v1 group.
// gatherer serves /metrics; nil means the default prometheus registry.
func NewServer(cfg *config.Configuration, gatherer prom.Gatherer, registerHandlerFn func(router *gin.RouterGroup)) (*Server, error) {
	if registerHandlerFn == nil {
		return nil, errors.New("register handler function is required")
	}

	if cfg.Server.ServerMode == config.ServerModeProd {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if gatherer == nil {
		gatherer = prom.DefaultGatherer
	}

	logger := zap.L().Named("http")

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		ginzap.RecoveryWithZap(logger, true),
	)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	engine.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	registerHandlerFn(engine.Group(apiPrefix))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, v1.Error{Error: fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path)})
	})

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the server stops. It returns http.ErrServerClosed after Stop.
func (s *Server) Start(ctx context.Context) error {
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	zap.S().Named("server").Infow("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Stop shuts the server down gracefully, waiting for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
