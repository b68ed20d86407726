package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexmigra/caseops/internal/casefile/domain"
)

// RequirementTracker manages authority exigencies: creation, deadline
// extensions, the legal hand-off and closure.
type RequirementTracker struct {
	reqs   domain.RequirementRepository
	cases  domain.CaseRepository
	logger *slog.Logger
	buffer time.Duration
	now    func() time.Time
}

// NewRequirementTracker wires the tracker. buffer is subtracted from official
// deadlines to derive internal ones.
func NewRequirementTracker(
	reqs domain.RequirementRepository,
	cases domain.CaseRepository,
	buffer time.Duration,
	logger *slog.Logger,
) *RequirementTracker {
	return &RequirementTracker{
		reqs:   reqs,
		cases:  cases,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

func (t *RequirementTracker) mutableCase(ctx context.Context, caseID string) (*domain.CaseFile, error) {
	cf, err := t.cases.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if cf.IsSuspended {
		return nil, domain.ErrCaseSuspended
	}
	if cf.IsTerminal() {
		return nil, domain.ErrCaseClosed
	}
	return cf, nil
}

// CreateRequirementCommand opens an exigency on a filed case.
type CreateRequirementCommand struct {
	CaseID           string
	Description      string
	OfficialDeadline time.Time
	ActorID          string
}

// Create opens a requirement. Requirements only exist on cases already filed
// with the authority.
func (t *RequirementTracker) Create(ctx context.Context, cmd CreateRequirementCommand) (*domain.Requirement, error) {
	cf, err := t.mutableCase(ctx, cmd.CaseID)
	if err != nil {
		return nil, err
	}
	if !cf.TechnicalStatus.PastProtocol() {
		return nil, &domain.PreconditionError{Reason: "case has not been filed with the authority"}
	}

	req, err := domain.NewRequirement(uuid.NewString(), cmd.CaseID, cmd.Description, cmd.OfficialDeadline, t.buffer, t.now())
	if err != nil {
		return nil, err
	}
	if err := t.reqs.Create(ctx, req); err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "requirement created",
		"requirement_id", req.RequirementID,
		"case_id", cmd.CaseID,
		"official_deadline", req.OfficialDeadline,
		"actor_id", cmd.ActorID,
	)
	return req, nil
}

// RequestExtension lengthens the official deadline. A deadline earlier than
// the current one is ErrInvalidDeadline.
func (t *RequirementTracker) RequestExtension(ctx context.Context, requirementID string, newDeadline time.Time, actorID string) (*domain.Requirement, error) {
	req, err := t.reqs.GetByRequirementID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := t.mutableCase(ctx, req.CaseID); err != nil {
		return nil, err
	}
	if err := req.Extend(newDeadline, t.buffer); err != nil {
		return nil, err
	}
	if err := t.reqs.Save(ctx, req); err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "requirement extended",
		"requirement_id", requirementID,
		"official_deadline", req.OfficialDeadline,
		"extension_count", req.ExtensionCount,
		"actor_id", actorID,
	)
	return req, nil
}

// SendToLegal records the hand-off of the prepared answer to the legal team.
func (t *RequirementTracker) SendToLegal(ctx context.Context, requirementID, actorID string) (*domain.Requirement, error) {
	req, err := t.reqs.GetByRequirementID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := t.mutableCase(ctx, req.CaseID); err != nil {
		return nil, err
	}
	if err := req.MarkResponded(actorID, t.now()); err != nil {
		return nil, err
	}
	if err := t.reqs.Save(ctx, req); err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "requirement sent to legal", "requirement_id", requirementID, "actor_id", actorID)
	return req, nil
}

// Close ends the exigency. Closing one requirement while others stay open
// never changes the case status; the state machine's precondition on leaving
// EXIGENCIA_ORGAO checks all of them.
func (t *RequirementTracker) Close(ctx context.Context, requirementID, actorID string) (*domain.Requirement, error) {
	req, err := t.reqs.GetByRequirementID(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	if _, err := t.mutableCase(ctx, req.CaseID); err != nil {
		return nil, err
	}
	if err := req.Close(t.now()); err != nil {
		return nil, err
	}
	if err := t.reqs.Save(ctx, req); err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "requirement closed", "requirement_id", requirementID, "actor_id", actorID)
	return req, nil
}

// ListByCase returns a case's requirements.
func (t *RequirementTracker) ListByCase(ctx context.Context, caseID string) ([]*domain.Requirement, error) {
	return t.reqs.ListByCase(ctx, caseID)
}
