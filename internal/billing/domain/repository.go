package domain

import (
	"context"
	"time"
)

// ContractRepository persists contract aggregates. Save applies an
// optimistic check-and-set on the version column and reports
// ErrConcurrentModification on a stale write.
type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	Save(ctx context.Context, c *Contract) error
	GetByContractID(ctx context.Context, contractID string) (*Contract, error)
	// GetActiveByOpportunityID returns the one non-cancelled contract of an
	// opportunity, or ErrContractNotFound.
	GetActiveByOpportunityID(ctx context.Context, opportunityID string) (*Contract, error)
	// ListAwaitingSignature pages through ENVIADO contracts for the SLA sweep.
	ListAwaitingSignature(ctx context.Context, limit, offset int) ([]*Contract, error)
}

// PaymentRepository persists installments.
type PaymentRepository interface {
	CreateBatch(ctx context.Context, payments []*Payment) error
	Save(ctx context.Context, p *Payment) error
	GetByPaymentID(ctx context.Context, paymentID string) (*Payment, error)
	ListByContract(ctx context.Context, contractID string) ([]*Payment, error)
	CountByContract(ctx context.Context, contractID string) (int64, error)
	// ListOutstandingDueBefore pages through unsettled installments already
	// past due at t, for the SLA sweep.
	ListOutstandingDueBefore(ctx context.Context, t time.Time, limit, offset int) ([]*Payment, error)
}

// Transactor runs a function inside a single persistence transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher emits billing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
