// Package http exposes raised SLA alerts over REST.
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lexmigra/caseops/internal/sla/application"
	"github.com/lexmigra/caseops/internal/sla/domain"
)

type Handler struct {
	alerts domain.AlertRepository
	sweep  *application.SweepJob
}

func NewHandler(alerts domain.AlertRepository, sweep *application.SweepJob) *Handler {
	return &Handler{alerts: alerts, sweep: sweep}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/alerts")
	{
		g.GET("", h.ListRecent)
		g.GET("/cases/:id", h.ListByCase)
	}
	r.POST("/sla/sweep", h.RunSweep)
}

// RunSweep triggers one synchronous pass, for operators who do not want to
// wait out the interval after fixing data.
func (h *Handler) RunSweep(c *gin.Context) {
	if err := h.sweep.Run(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	alerts, err := h.alerts.ListRecent(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *Handler) ListByCase(c *gin.Context) {
	alerts, err := h.alerts.ListByCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
