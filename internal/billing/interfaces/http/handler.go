// Package http exposes contracts and installment collection over REST.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexmigra/caseops/internal/billing/application"
	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/lexmigra/caseops/pkg/metrics"
	"github.com/shopspring/decimal"
)

type Handler struct {
	contracts *application.ContractService
	payments  *application.PaymentService
	metrics   *metrics.Metrics
}

func NewHandler(contracts *application.ContractService, payments *application.PaymentService, m *metrics.Metrics) *Handler {
	return &Handler{contracts: contracts, payments: payments, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contracts := r.Group("/contracts")
	{
		contracts.POST("", h.CreateContract)
		contracts.GET("/:id", h.GetContract)
		contracts.POST("/:id/review", h.SubmitForReview)
		contracts.POST("/:id/dispatch", h.Send)
		contracts.POST("/:id/signature", h.Sign)
		contracts.POST("/:id/cancellation", h.Cancel)
		contracts.GET("/:id/installments", h.ListInstallments)
	}

	payments := r.Group("/payments")
	{
		payments.POST("/:id/confirmation", h.ConfirmPayment)
		payments.POST("/:id/analysis", h.MarkInAnalysis)
		payments.POST("/:id/partial", h.MarkPartial)
		payments.POST("/:id/refund", h.Refund)
	}
}

type CreateContractReq struct {
	OpportunityID    string     `json:"opportunity_id" binding:"required"`
	CaseID           string     `json:"case_id" binding:"required"`
	TotalFee         string     `json:"total_fee" binding:"required"`
	Currency         string     `json:"currency" binding:"required"`
	InstallmentCount int        `json:"installment_count" binding:"required,min=1"`
	FirstDueDate     time.Time  `json:"first_due_date" binding:"required"`
	DownPayment      string     `json:"down_payment"`
	DownPaymentDue   *time.Time `json:"down_payment_due"`
	ActorID          string     `json:"actor_id" binding:"required"`
}

func (h *Handler) CreateContract(c *gin.Context) {
	var req CreateContractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totalFee, err := decimal.NewFromString(req.TotalFee)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid total_fee"})
		return
	}
	downPayment := decimal.Zero
	if req.DownPayment != "" {
		if downPayment, err = decimal.NewFromString(req.DownPayment); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid down_payment"})
			return
		}
	}

	contract, err := h.contracts.Create(c.Request.Context(), application.CreateContractCommand{
		OpportunityID:    req.OpportunityID,
		CaseID:           req.CaseID,
		TotalFee:         totalFee,
		Currency:         req.Currency,
		InstallmentCount: req.InstallmentCount,
		FirstDueDate:     req.FirstDueDate,
		DownPayment:      downPayment,
		DownPaymentDue:   req.DownPaymentDue,
		ActorID:          req.ActorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) GetContract(c *gin.Context) {
	contract, err := h.contracts.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type ActorReq struct {
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) SubmitForReview(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.SubmitForReview(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) Send(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Send(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type SignReq struct {
	SignedDocumentURL string `json:"signed_document_url" binding:"required"`
	ActorID           string `json:"actor_id" binding:"required"`
}

func (h *Handler) Sign(c *gin.Context) {
	var req SignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Sign(c.Request.Context(), c.Param("id"), req.SignedDocumentURL, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.ContractsSigned.Inc()
	h.metrics.InstallmentsIssued.Add(float64(contract.InstallmentCount))
	c.JSON(http.StatusOK, contract)
}

type CancelReq struct {
	Reason  string `json:"reason" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) Cancel(c *gin.Context) {
	var req CancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Cancel(c.Request.Context(), c.Param("id"), req.Reason, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) ListInstallments(c *gin.Context) {
	payments, err := h.contracts.ListInstallments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"installments": payments})
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.payments.Confirm(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) MarkInAnalysis(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.payments.MarkInAnalysis(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type PartialPaymentReq struct {
	PaidAmount string `json:"paid_amount" binding:"required"`
	ActorID    string `json:"actor_id" binding:"required"`
}

func (h *Handler) MarkPartial(c *gin.Context) {
	var req PartialPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	paid, err := decimal.NewFromString(req.PaidAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paid_amount"})
		return
	}

	p, err := h.payments.MarkPartial(c.Request.Context(), c.Param("id"), paid, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Refund(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.payments.Refund(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidContractStatus),
		errors.Is(err, domain.ErrInvalidPaymentStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrContractNotSigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "CONTRACT_NOT_SIGNED"})
	case errors.Is(err, domain.ErrAlreadyGenerated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "ALREADY_GENERATED"})
	case errors.Is(err, domain.ErrActiveContractExists),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrAlreadySuspended),
		errors.Is(err, domain.ErrNotSuspended):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrContractNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidContractTerms),
		errors.Is(err, domain.ErrInvalidPaymentAmount),
		errors.Is(err, domain.ErrSignedDocumentRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
