package domain

import (
	"context"
)

// CaseRepository persists case aggregates. Save applies an optimistic
// check-and-set on the version column and reports ErrConcurrentModification
// when the row moved underneath the caller.
type CaseRepository interface {
	Create(ctx context.Context, cf *CaseFile) error
	Save(ctx context.Context, cf *CaseFile) error
	GetByCaseID(ctx context.Context, caseID string) (*CaseFile, error)
	GetByOpportunityID(ctx context.Context, opportunityID string) (*CaseFile, error)
	// ListActive pages through non-terminal cases for the SLA sweep.
	ListActive(ctx context.Context, limit, offset int) ([]*CaseFile, error)
}

// DocumentRepository persists checklist documents.
type DocumentRepository interface {
	CreateBatch(ctx context.Context, docs []*Document) error
	Save(ctx context.Context, doc *Document) error
	GetByDocumentID(ctx context.Context, documentID string) (*Document, error)
	ListByCase(ctx context.Context, caseID string) ([]*Document, error)
}

// RequirementRepository persists authority requirements.
type RequirementRepository interface {
	Create(ctx context.Context, req *Requirement) error
	Save(ctx context.Context, req *Requirement) error
	GetByRequirementID(ctx context.Context, requirementID string) (*Requirement, error)
	ListByCase(ctx context.Context, caseID string) ([]*Requirement, error)
	CountOpenByCase(ctx context.Context, caseID string) (int64, error)
	// ListOpen pages through non-closed requirements for the SLA sweep.
	ListOpen(ctx context.Context, limit, offset int) ([]*Requirement, error)
}

// Transactor runs a function inside a single persistence transaction; every
// repository call made with the callback context joins it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits domain events for external consumers. Delivery
// formatting is not this core's concern.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
