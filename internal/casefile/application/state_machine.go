// Package application orchestrates the case engine: the state machine, the
// document ledger and the requirement tracker.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexmigra/caseops/internal/casefile/domain"
)

// DocumentChecklists maps a service type to the document type codes released
// when the case enters document collection. Supplied from configuration.
type DocumentChecklists map[domain.ServiceType][]string

// CaseStateMachine validates and applies technical-status transitions,
// including their preconditions and side effects. Every mutation runs in one
// transaction and is guarded by the aggregate's version.
type CaseStateMachine struct {
	cases      domain.CaseRepository
	documents  domain.DocumentRepository
	reqs       domain.RequirementRepository
	tx         domain.Transactor
	publisher  domain.EventPublisher
	checklists DocumentChecklists
	logger     *slog.Logger
	now        func() time.Time
}

// NewCaseStateMachine wires the state machine.
func NewCaseStateMachine(
	cases domain.CaseRepository,
	documents domain.DocumentRepository,
	reqs domain.RequirementRepository,
	tx domain.Transactor,
	publisher domain.EventPublisher,
	checklists DocumentChecklists,
	logger *slog.Logger,
) *CaseStateMachine {
	return &CaseStateMachine{
		cases:      cases,
		documents:  documents,
		reqs:       reqs,
		tx:         tx,
		publisher:  publisher,
		checklists: checklists,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateCaseCommand converts an opportunity into a case.
type CreateCaseCommand struct {
	OpportunityID string
	Sector        string
	ServiceType   domain.ServiceType
	TechnicianID  string
	ClientRef     string
	ActorID       string
}

// CreateCase opens a new case at CONTATO_INICIAL.
func (m *CaseStateMachine) CreateCase(ctx context.Context, cmd CreateCaseCommand) (*domain.CaseFile, error) {
	cf := domain.NewCaseFile(uuid.NewString(), cmd.OpportunityID, cmd.Sector, cmd.ServiceType)
	cf.TechnicianID = cmd.TechnicianID
	cf.ClientRef = cmd.ClientRef

	if err := m.cases.Create(ctx, cf); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "case created",
		"case_id", cf.CaseID,
		"opportunity_id", cf.OpportunityID,
		"service_type", cf.ServiceType,
		"actor_id", cmd.ActorID,
	)
	return cf, nil
}

// TransitionCommand asks for one status change.
type TransitionCommand struct {
	CaseID  string
	Target  domain.TechnicalStatus
	ActorID string

	// ProtocolNumber and Expediente accompany the move into PROTOCOLADO.
	ProtocolNumber string
	Expediente     string

	// PartialDocuments is the recorded staff override of the document gate.
	PartialDocuments bool

	// ResourceDeadline and ResourceNotes annotate the appeal sub-state on
	// the DENEGADO branch.
	ResourceDeadline *time.Time
	ResourceNotes    string
}

// Transition validates the requested move (suspension, adjacency,
// preconditions), applies it with its side effects atomically, and publishes
// the status-changed event. Failure kinds: ErrCaseSuspended,
// ErrInvalidTransition, ErrPreconditionUnmet, ErrConcurrentModification.
func (m *CaseStateMachine) Transition(ctx context.Context, cmd TransitionCommand) (*domain.CaseFile, error) {
	cf, err := m.cases.GetByCaseID(ctx, cmd.CaseID)
	if err != nil {
		return nil, err
	}

	from := cf.TechnicalStatus
	if cf.IsSuspended {
		return nil, domain.ErrCaseSuspended
	}
	if !cmd.Target.Valid() || !from.CanTransitionTo(cmd.Target) {
		return nil, &domain.TransitionError{From: from, To: cmd.Target}
	}

	if err := m.checkPreconditions(ctx, cf, cmd); err != nil {
		return nil, err
	}

	now := m.now()
	err = m.tx.InTx(ctx, func(txCtx context.Context) error {
		if cmd.PartialDocuments && gatedBySubmission(cmd.Target) {
			cf.ApproveDocumentsPartially(cmd.ActorID, now)
		}

		if err := cf.TransitionTo(cmd.Target); err != nil {
			return err
		}

		if err := m.applySideEffects(txCtx, cf, cmd, now); err != nil {
			return err
		}

		return m.cases.Save(txCtx, cf)
	})
	if err != nil {
		return nil, err
	}

	event := domain.CaseStatusChangedEvent{
		CaseID:  cf.CaseID,
		From:    from,
		To:      cf.TechnicalStatus,
		ActorID: cmd.ActorID,
		At:      now,
	}
	if err := m.publisher.Publish(ctx, domain.TopicCaseStatusChanged, cf.CaseID, event); err != nil {
		m.logger.ErrorContext(ctx, "failed to publish status change", "case_id", cf.CaseID, "error", err)
	}

	m.logger.InfoContext(ctx, "case transitioned",
		"case_id", cf.CaseID,
		"from", from,
		"to", cf.TechnicalStatus,
		"actor_id", cmd.ActorID,
	)
	return cf, nil
}

// gatedBySubmission reports whether entering target requires the document
// gate to be satisfied.
func gatedBySubmission(target domain.TechnicalStatus) bool {
	return target == domain.StatusProntoParaSubmissao || target == domain.StatusEnviadoJuridico
}

func (m *CaseStateMachine) checkPreconditions(ctx context.Context, cf *domain.CaseFile, cmd TransitionCommand) error {
	if gatedBySubmission(cmd.Target) && !cmd.PartialDocuments && !cf.PartialDocsApproved {
		docs, err := m.documents.ListByCase(ctx, cf.CaseID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return &domain.PreconditionError{Reason: "document collection has not started"}
		}
		var missing []string
		for _, d := range docs {
			if !d.SatisfiesGate() {
				missing = append(missing, d.TypeCode)
			}
		}
		if len(missing) > 0 {
			return &domain.PreconditionError{
				Reason:           "required documents are not approved",
				MissingDocuments: missing,
			}
		}
	}

	if cf.TechnicalStatus == domain.StatusExigenciaOrgao {
		open, err := m.reqs.CountOpenByCase(ctx, cf.CaseID)
		if err != nil {
			return err
		}
		if open > 0 {
			return &domain.PreconditionError{
				Reason:           "authority requirements remain open",
				OpenRequirements: int(open),
			}
		}
	}

	return nil
}

func (m *CaseStateMachine) applySideEffects(ctx context.Context, cf *domain.CaseFile, cmd TransitionCommand, now time.Time) error {
	switch cf.TechnicalStatus {
	case domain.StatusAguardandoDocumentos:
		if !cf.DocumentsReleased {
			if err := m.releaseChecklist(ctx, cf); err != nil {
				return err
			}
			cf.DocumentsReleased = true
		}

	case domain.StatusProtocolado:
		cf.RecordProtocol(cmd.ProtocolNumber, cmd.Expediente, now)

	case domain.StatusAprovado:
		cf.RecordDecision(domain.DecisionAprovado, now)

	case domain.StatusDenegado:
		cf.RecordDecision(domain.DecisionNegado, now)
		cf.OpenAppeal()
		if cmd.ResourceDeadline != nil {
			cf.ResourceDeadline = cmd.ResourceDeadline
		}
		if cmd.ResourceNotes != "" {
			cf.ResourceNotes = cmd.ResourceNotes
		}

	case domain.StatusEncerradoNegado:
		if cf.DecisionResult == domain.DecisionEmAndamento {
			cf.RecordDecision(domain.DecisionNegado, now)
		}

	case domain.StatusEncerradoAprovado:
		if cf.DecisionResult == domain.DecisionEmAndamento {
			cf.RecordDecision(domain.DecisionAprovado, now)
		}

	case domain.StatusArquivado:
		cf.RecordDecision(domain.DecisionNulo, now)
	}

	return nil
}

func (m *CaseStateMachine) releaseChecklist(ctx context.Context, cf *domain.CaseFile) error {
	codes := m.checklists[cf.ServiceType]
	if len(codes) == 0 {
		codes = m.checklists[domain.ServiceOther]
	}
	docs := make([]*domain.Document, 0, len(codes))
	for _, code := range codes {
		docs = append(docs, domain.NewDocument(uuid.NewString(), cf.CaseID, code, true))
	}
	if len(docs) == 0 {
		return nil
	}
	return m.documents.CreateBatch(ctx, docs)
}

// AssignmentCommand updates administrative attributes. These are unguarded
// field updates, not transitions, and are legal in any status.
type AssignmentCommand struct {
	CaseID       string
	TechnicianID *string
	Priority     *domain.Priority
	Urgent       *bool
	ClientRef    *string
	ActorID      string
}

// UpdateAssignment applies administrative updates without touching the state
// machinery.
func (m *CaseStateMachine) UpdateAssignment(ctx context.Context, cmd AssignmentCommand) (*domain.CaseFile, error) {
	cf, err := m.cases.GetByCaseID(ctx, cmd.CaseID)
	if err != nil {
		return nil, err
	}

	if cmd.TechnicianID != nil {
		cf.TechnicianID = *cmd.TechnicianID
	}
	if cmd.Priority != nil {
		if !cmd.Priority.Valid() {
			return nil, domain.ErrPreconditionUnmet
		}
		cf.Priority = *cmd.Priority
	}
	if cmd.Urgent != nil {
		cf.Urgent = *cmd.Urgent
	}
	if cmd.ClientRef != nil {
		cf.ClientRef = *cmd.ClientRef
	}

	if err := m.cases.Save(ctx, cf); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "case assignment updated", "case_id", cf.CaseID, "actor_id", cmd.ActorID)
	return cf, nil
}

// RecordFirstContact stamps the first client contact, feeding the
// first-contact SLA.
func (m *CaseStateMachine) RecordFirstContact(ctx context.Context, caseID, actorID string) (*domain.CaseFile, error) {
	cf, err := m.cases.GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	cf.RecordFirstContact(m.now())
	if err := m.cases.Save(ctx, cf); err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "first contact recorded", "case_id", caseID, "actor_id", actorID)
	return cf, nil
}

// GetCase loads one case by its external id.
func (m *CaseStateMachine) GetCase(ctx context.Context, caseID string) (*domain.CaseFile, error) {
	return m.cases.GetByCaseID(ctx, caseID)
}
