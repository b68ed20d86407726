// Package http exposes the case engine over REST.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexmigra/caseops/internal/casefile/application"
	"github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/pkg/metrics"
)

type Handler struct {
	machine *application.CaseStateMachine
	ledger  *application.DocumentLedger
	tracker *application.RequirementTracker
	metrics *metrics.Metrics
}

func NewHandler(
	machine *application.CaseStateMachine,
	ledger *application.DocumentLedger,
	tracker *application.RequirementTracker,
	m *metrics.Metrics,
) *Handler {
	return &Handler{machine: machine, ledger: ledger, tracker: tracker, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cases := r.Group("/cases")
	{
		cases.POST("", h.CreateCase)
		cases.GET("/:id", h.GetCase)
		cases.POST("/:id/transitions", h.Transition)
		cases.POST("/:id/first-contact", h.RecordFirstContact)
		cases.PATCH("/:id/assignment", h.UpdateAssignment)
		cases.GET("/:id/documents", h.ListDocuments)
		cases.POST("/:id/requirements", h.CreateRequirement)
		cases.GET("/:id/requirements", h.ListRequirements)
	}

	docs := r.Group("/documents")
	{
		docs.POST("/:id/submission", h.SubmitDocument)
		docs.POST("/:id/review", h.StartDocumentReview)
		docs.POST("/:id/approval", h.ApproveDocument)
		docs.POST("/:id/rejection", h.RejectDocument)
		docs.PUT("/:id/post-protocol", h.SetPostProtocolPending)
	}

	reqs := r.Group("/requirements")
	{
		reqs.POST("/:id/extension", h.ExtendRequirement)
		reqs.POST("/:id/legal", h.SendRequirementToLegal)
		reqs.POST("/:id/closure", h.CloseRequirement)
	}
}

type CreateCaseReq struct {
	OpportunityID string `json:"opportunity_id" binding:"required"`
	Sector        string `json:"sector"`
	ServiceType   string `json:"service_type" binding:"required"`
	TechnicianID  string `json:"technician_id"`
	ClientRef     string `json:"client_ref"`
	ActorID       string `json:"actor_id" binding:"required"`
}

func (h *Handler) CreateCase(c *gin.Context) {
	var req CreateCaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cf, err := h.machine.CreateCase(c.Request.Context(), application.CreateCaseCommand{
		OpportunityID: req.OpportunityID,
		Sector:        req.Sector,
		ServiceType:   domain.ServiceType(req.ServiceType),
		TechnicianID:  req.TechnicianID,
		ClientRef:     req.ClientRef,
		ActorID:       req.ActorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cf)
}

func (h *Handler) GetCase(c *gin.Context) {
	cf, err := h.machine.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cf)
}

type TransitionReq struct {
	Target           string     `json:"target" binding:"required"`
	ActorID          string     `json:"actor_id" binding:"required"`
	ProtocolNumber   string     `json:"protocol_number"`
	Expediente       string     `json:"expediente"`
	PartialDocuments bool       `json:"partial_documents"`
	ResourceDeadline *time.Time `json:"resource_deadline"`
	ResourceNotes    string     `json:"resource_notes"`
}

func (h *Handler) Transition(c *gin.Context) {
	var req TransitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cf, err := h.machine.Transition(c.Request.Context(), application.TransitionCommand{
		CaseID:           c.Param("id"),
		Target:           domain.TechnicalStatus(req.Target),
		ActorID:          req.ActorID,
		ProtocolNumber:   req.ProtocolNumber,
		Expediente:       req.Expediente,
		PartialDocuments: req.PartialDocuments,
		ResourceDeadline: req.ResourceDeadline,
		ResourceNotes:    req.ResourceNotes,
	})
	if err != nil {
		h.metrics.TransitionsRejected.WithLabelValues(rejectionKind(err)).Inc()
		respondError(c, err)
		return
	}
	h.metrics.TransitionsApplied.WithLabelValues(string(cf.TechnicalStatus)).Inc()
	c.JSON(http.StatusOK, cf)
}

func rejectionKind(err error) string {
	var transErr *domain.TransitionError
	var preErr *domain.PreconditionError
	switch {
	case errors.As(err, &transErr), errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.As(err, &preErr), errors.Is(err, domain.ErrPreconditionUnmet):
		return "precondition_unmet"
	case errors.Is(err, domain.ErrCaseSuspended):
		return "suspended"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "concurrency"
	default:
		return "other"
	}
}

type ActorReq struct {
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) RecordFirstContact(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cf, err := h.machine.RecordFirstContact(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cf)
}

type AssignmentReq struct {
	TechnicianID *string `json:"technician_id"`
	Priority     *string `json:"priority"`
	Urgent       *bool   `json:"urgent"`
	ClientRef    *string `json:"client_ref"`
	ActorID      string  `json:"actor_id" binding:"required"`
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	var req AssignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.AssignmentCommand{
		CaseID:       c.Param("id"),
		TechnicianID: req.TechnicianID,
		Urgent:       req.Urgent,
		ClientRef:    req.ClientRef,
		ActorID:      req.ActorID,
	}
	if req.Priority != nil {
		p := domain.Priority(*req.Priority)
		cmd.Priority = &p
	}

	cf, err := h.machine.UpdateAssignment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cf)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.ledger.ListByCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type SubmitDocumentReq struct {
	FileURL string `json:"file_url" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) SubmitDocument(c *gin.Context) {
	var req SubmitDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ledger.Submit(c.Request.Context(), c.Param("id"), req.FileURL, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) StartDocumentReview(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ledger.StartReview(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) ApproveDocument(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ledger.Approve(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.DocumentsReviewed.WithLabelValues("approved").Inc()
	c.JSON(http.StatusOK, doc)
}

type RejectDocumentReq struct {
	Reason  string `json:"reason" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) RejectDocument(c *gin.Context) {
	var req RejectDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ledger.Reject(c.Request.Context(), c.Param("id"), req.Reason, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.metrics.DocumentsReviewed.WithLabelValues("rejected").Inc()
	c.JSON(http.StatusOK, doc)
}

type PostProtocolReq struct {
	Pending bool   `json:"pending"`
	ActorID string `json:"actor_id" binding:"required"`
}

func (h *Handler) SetPostProtocolPending(c *gin.Context) {
	var req PostProtocolReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.ledger.SetPostProtocolPending(c.Request.Context(), c.Param("id"), req.Pending, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

type CreateRequirementReq struct {
	Description      string    `json:"description" binding:"required"`
	OfficialDeadline time.Time `json:"official_deadline" binding:"required"`
	ActorID          string    `json:"actor_id" binding:"required"`
}

func (h *Handler) CreateRequirement(c *gin.Context) {
	var req CreateRequirementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.tracker.Create(c.Request.Context(), application.CreateRequirementCommand{
		CaseID:           c.Param("id"),
		Description:      req.Description,
		OfficialDeadline: req.OfficialDeadline,
		ActorID:          req.ActorID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListRequirements(c *gin.Context) {
	reqs, err := h.tracker.ListByCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requirements": reqs})
}

type ExtendRequirementReq struct {
	NewDeadline time.Time `json:"new_deadline" binding:"required"`
	ActorID     string    `json:"actor_id" binding:"required"`
}

func (h *Handler) ExtendRequirement(c *gin.Context) {
	var req ExtendRequirementReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.tracker.RequestExtension(c.Request.Context(), c.Param("id"), req.NewDeadline, req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) SendRequirementToLegal(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.tracker.SendToLegal(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) CloseRequirement(c *gin.Context) {
	var req ActorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.tracker.Close(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// respondError maps domain failure kinds to HTTP statuses: rule violations
// are 422, state conflicts 409, lookups 404, bad input 400.
func respondError(c *gin.Context, err error) {
	var transErr *domain.TransitionError
	if errors.As(err, &transErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": transErr.Error(),
			"kind":  "INVALID_TRANSITION",
			"from":  transErr.From,
			"to":    transErr.To,
		})
		return
	}

	var preErr *domain.PreconditionError
	if errors.As(err, &preErr) {
		body := gin.H{
			"error": preErr.Error(),
			"kind":  "PRECONDITION_UNMET",
		}
		if len(preErr.MissingDocuments) > 0 {
			body["missing_documents"] = preErr.MissingDocuments
		}
		if preErr.OpenRequirements > 0 {
			body["open_requirements"] = preErr.OpenRequirements
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPreconditionUnmet),
		errors.Is(err, domain.ErrInvalidDeadline):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCaseSuspended):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "CASE_SUSPENDED"})
	case errors.Is(err, domain.ErrCaseClosed),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrDocumentAlreadyApproved),
		errors.Is(err, domain.ErrDocumentNotUnderReview),
		errors.Is(err, domain.ErrDocumentNotSubmitted),
		errors.Is(err, domain.ErrRequirementNotOpen),
		errors.Is(err, domain.ErrRequirementClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCaseNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrRequirementNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRejectReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
