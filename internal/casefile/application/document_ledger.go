package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexmigra/caseops/internal/casefile/domain"
)

// DocumentLedger tracks per-case document submission and review. All
// mutations are refused while the parent case is suspended or closed.
type DocumentLedger struct {
	documents domain.DocumentRepository
	cases     domain.CaseRepository
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewDocumentLedger wires the ledger.
func NewDocumentLedger(
	documents domain.DocumentRepository,
	cases domain.CaseRepository,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *DocumentLedger {
	return &DocumentLedger{
		documents: documents,
		cases:     cases,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// loadMutable fetches the document and its case and applies the ledger-wide
// guards.
func (l *DocumentLedger) loadMutable(ctx context.Context, documentID string) (*domain.Document, *domain.CaseFile, error) {
	doc, err := l.documents.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	cf, err := l.cases.GetByCaseID(ctx, doc.CaseID)
	if err != nil {
		return nil, nil, err
	}
	if cf.IsSuspended {
		return nil, nil, domain.ErrCaseSuspended
	}
	if cf.IsTerminal() {
		return nil, nil, domain.ErrCaseClosed
	}
	return doc, cf, nil
}

// Submit records a client upload, also covering resubmission after a
// rejection.
func (l *DocumentLedger) Submit(ctx context.Context, documentID, fileURL, actorID string) (*domain.Document, error) {
	doc, _, err := l.loadMutable(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.Submit(fileURL, l.now()); err != nil {
		return nil, err
	}
	if err := l.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "document submitted", "document_id", documentID, "case_id", doc.CaseID, "actor_id", actorID)
	return doc, nil
}

// StartReview picks a submitted document up for conference.
func (l *DocumentLedger) StartReview(ctx context.Context, documentID, actorID string) (*domain.Document, error) {
	doc, _, err := l.loadMutable(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := doc.StartReview(); err != nil {
		return nil, err
	}
	if err := l.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "document review started", "document_id", documentID, "actor_id", actorID)
	return doc, nil
}

// Approve finishes review favourably; irreversible.
func (l *DocumentLedger) Approve(ctx context.Context, documentID, actorID string) (*domain.Document, error) {
	doc, _, err := l.loadMutable(ctx, documentID)
	if err != nil {
		return nil, err
	}
	now := l.now()
	if err := doc.Approve(actorID, now); err != nil {
		return nil, err
	}
	if err := l.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	l.publishReview(ctx, doc, "", actorID, now)
	return doc, nil
}

// Reject sends the document back to the client with a mandatory reason.
func (l *DocumentLedger) Reject(ctx context.Context, documentID, reason, actorID string) (*domain.Document, error) {
	doc, _, err := l.loadMutable(ctx, documentID)
	if err != nil {
		return nil, err
	}
	now := l.now()
	if err := doc.Reject(reason, actorID, now); err != nil {
		return nil, err
	}
	if err := l.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	l.publishReview(ctx, doc, reason, actorID, now)
	return doc, nil
}

// SetPostProtocolPending defers a document past submission. Only permitted
// once the case is filed with the authority and the document is not yet
// approved.
func (l *DocumentLedger) SetPostProtocolPending(ctx context.Context, documentID string, pending bool, actorID string) (*domain.Document, error) {
	doc, cf, err := l.loadMutable(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if pending && !cf.TechnicalStatus.PastProtocol() {
		return nil, &domain.PreconditionError{Reason: "case has not been filed with the authority"}
	}
	if err := doc.SetPostProtocolPending(pending); err != nil {
		return nil, err
	}
	if err := l.documents.Save(ctx, doc); err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "document post-protocol flag set",
		"document_id", documentID,
		"pending", pending,
		"actor_id", actorID,
	)
	return doc, nil
}

// ListByCase returns the case's checklist.
func (l *DocumentLedger) ListByCase(ctx context.Context, caseID string) ([]*domain.Document, error) {
	return l.documents.ListByCase(ctx, caseID)
}

func (l *DocumentLedger) publishReview(ctx context.Context, doc *domain.Document, reason, actorID string, at time.Time) {
	event := domain.DocumentReviewedEvent{
		CaseID:     doc.CaseID,
		DocumentID: doc.DocumentID,
		TypeCode:   doc.TypeCode,
		Status:     doc.Status,
		Reason:     reason,
		ActorID:    actorID,
		At:         at,
	}
	if err := l.publisher.Publish(ctx, domain.TopicDocumentReviewed, doc.CaseID, event); err != nil {
		l.logger.ErrorContext(ctx, "failed to publish document review", "document_id", doc.DocumentID, "error", err)
	}
	l.logger.InfoContext(ctx, "document reviewed",
		"document_id", doc.DocumentID,
		"case_id", doc.CaseID,
		"status", doc.Status,
		"actor_id", actorID,
	)
}
