package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskd/api/v1"
	"github.com/kubev2v/taskd/internal/services"
	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

type Handler struct {
	jobSrv *services.JobService
}

func New(jobSrv *services.JobService) *Handler {
	return &Handler{
		jobSrv: jobSrv,
	}
}

// RegisterHandlers wires the API routes on router, which is expected to be
// the /api/v1 group.
func RegisterHandlers(router gin.IRouter, h *Handler) {
	router.POST("/jobs", h.CreateJob)
	router.GET("/jobs", h.GetJobs)
	router.GET("/jobs/:id", h.GetJob)
	router.GET("/kinds", h.GetKinds)
	router.GET("/scheduler", h.GetSchedulerStatus)
}

// writeError maps service errors to HTTP status codes.
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
	case srvErrors.IsUnknownJobKindError(err), srvErrors.IsInvalidArgumentError(err):
		c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
	case srvErrors.IsInvalidStateError(err):
		c.JSON(http.StatusConflict, v1.Error{Error: err.Error()})
	case srvErrors.IsPoolRejectedError(err):
		zap.S().Named("handler").Warnw(msg, "error", err)
		c.JSON(http.StatusServiceUnavailable, v1.Error{Error: err.Error()})
	default:
		zap.S().Named("handler").Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: msg})
	}
}
