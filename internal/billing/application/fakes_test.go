package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lexmigra/caseops/internal/billing/domain"
)

type fakeContractRepo struct {
	contracts map[string]*domain.Contract
	saveErr   error
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[string]*domain.Contract)}
}

func (r *fakeContractRepo) Create(_ context.Context, c *domain.Contract) error {
	r.contracts[c.ContractID] = c
	return nil
}

func (r *fakeContractRepo) Save(_ context.Context, c *domain.Contract) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	c.Version++
	r.contracts[c.ContractID] = c
	return nil
}

func (r *fakeContractRepo) GetByContractID(_ context.Context, contractID string) (*domain.Contract, error) {
	c, ok := r.contracts[contractID]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeContractRepo) GetActiveByOpportunityID(_ context.Context, opportunityID string) (*domain.Contract, error) {
	for _, c := range r.contracts {
		if c.OpportunityID == opportunityID && c.Status != domain.ContractCancelado {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrContractNotFound
}

func (r *fakeContractRepo) ListAwaitingSignature(_ context.Context, _, _ int) ([]*domain.Contract, error) {
	var out []*domain.Contract
	for _, c := range r.contracts {
		if c.Status == domain.ContractEnviado {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	payments map[string]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*domain.Payment)}
}

func (r *fakePaymentRepo) CreateBatch(_ context.Context, payments []*domain.Payment) error {
	for _, p := range payments {
		r.payments[p.PaymentID] = p
	}
	return nil
}

func (r *fakePaymentRepo) Save(_ context.Context, p *domain.Payment) error {
	r.payments[p.PaymentID] = p
	return nil
}

func (r *fakePaymentRepo) GetByPaymentID(_ context.Context, paymentID string) (*domain.Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) ListByContract(_ context.Context, contractID string) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.ContractID == contractID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) CountByContract(_ context.Context, contractID string) (int64, error) {
	var n int64
	for _, p := range r.payments {
		if p.ContractID == contractID {
			n++
		}
	}
	return n, nil
}

func (r *fakePaymentRepo) ListOutstandingDueBefore(_ context.Context, t time.Time, _, _ int) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, p := range r.payments {
		if p.Outstanding() && p.DueDate.Before(t) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic string, key string, event any) error {
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
