// Package http exposes the suspension controller over REST.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/internal/suspension/application"
	"github.com/lexmigra/caseops/pkg/metrics"
)

type Handler struct {
	controller *application.Controller
	metrics    *metrics.Metrics
}

func NewHandler(controller *application.Controller, m *metrics.Metrics) *Handler {
	return &Handler{controller: controller, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/suspensions")
	{
		g.POST("", h.Suspend)
		g.POST("/reactivation", h.Reactivate)
	}
}

type SuspendReq struct {
	ContractID string `json:"contract_id" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
	ActorID    string `json:"actor_id" binding:"required"`
}

func (h *Handler) Suspend(c *gin.Context) {
	var req SuspendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.controller.Suspend(c.Request.Context(), req.ContractID, req.Reason, req.ActorID); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.SuspendedCases.Inc()
	c.Status(http.StatusNoContent)
}

type ReactivateReq struct {
	ContractID string `json:"contract_id" binding:"required"`
	ActorID    string `json:"actor_id" binding:"required"`
}

func (h *Handler) Reactivate(c *gin.Context) {
	var req ReactivateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.controller.Reactivate(c.Request.Context(), req.ContractID, req.ActorID); err != nil {
		respondError(c, err)
		return
	}
	h.metrics.SuspendedCases.Dec()
	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrContractNotSigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "CONTRACT_NOT_SIGNED"})
	case errors.Is(err, billing.ErrAlreadySuspended),
		errors.Is(err, billing.ErrNotSuspended),
		errors.Is(err, billing.ErrConcurrentModification),
		errors.Is(err, casefile.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrContractNotFound),
		errors.Is(err, casefile.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
