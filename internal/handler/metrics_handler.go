package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

const readinessKey = storage.KeyAuthorizedTeachers

// MetricsHandler exposes health, readiness and counter endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	store   storage.KeyedStore
	timeout time.Duration
}

// NewMetricsHandler constructs a metrics handler. store is read by Ready
// and may be nil.
func NewMetricsHandler(metrics *service.MetricsService, store storage.KeyedStore) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, store: store, timeout: 2 * time.Second}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Snapshot godoc
// @Summary Storage, grade and transfer counters
// @Tags Metrics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /stats [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}

// Health reports liveness only.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reads the teacher directory key to prove the storage medium answers.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if _, _, err := h.store.Get(ctx, readinessKey); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "storage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
