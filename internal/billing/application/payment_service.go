package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/shopspring/decimal"
)

// PaymentService handles installment collection. Payments stay mutable while
// the contract is suspended: confirming them is how a suspension gets
// resolved.
type PaymentService struct {
	payments  domain.PaymentRepository
	contracts domain.ContractRepository
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService wires the service.
func NewPaymentService(
	payments domain.PaymentRepository,
	contracts domain.ContractRepository,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:  payments,
		contracts: contracts,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Confirm settles an installment in full.
func (s *PaymentService) Confirm(ctx context.Context, paymentID, actorID string) (*domain.Payment, error) {
	p, err := s.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := p.Confirm(now); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}

	event := domain.PaymentConfirmedEvent{
		PaymentID:         p.PaymentID,
		ContractID:        p.ContractID,
		InstallmentNumber: p.InstallmentNumber,
		ActorID:           actorID,
		At:                now,
	}
	if err := s.publisher.Publish(ctx, domain.TopicPaymentConfirmed, p.ContractID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment confirmed", "payment_id", paymentID, "error", err)
	}

	s.logger.InfoContext(ctx, "payment confirmed",
		"payment_id", paymentID,
		"contract_id", p.ContractID,
		"installment", p.InstallmentNumber,
		"actor_id", actorID,
	)
	return p, nil
}

// MarkInAnalysis parks the installment while a receipt is verified.
func (s *PaymentService) MarkInAnalysis(ctx context.Context, paymentID, actorID string) (*domain.Payment, error) {
	return s.mutate(ctx, paymentID, actorID, "payment under analysis", func(p *domain.Payment) error {
		return p.MarkInAnalysis()
	})
}

// MarkPartial records an incomplete transfer.
func (s *PaymentService) MarkPartial(ctx context.Context, paymentID string, paidAmount decimal.Decimal, actorID string) (*domain.Payment, error) {
	return s.mutate(ctx, paymentID, actorID, "payment marked partial", func(p *domain.Payment) error {
		return p.MarkPartial(paidAmount)
	})
}

// Refund reverses a confirmed installment.
func (s *PaymentService) Refund(ctx context.Context, paymentID, actorID string) (*domain.Payment, error) {
	return s.mutate(ctx, paymentID, actorID, "payment refunded", func(p *domain.Payment) error {
		return p.Refund()
	})
}

func (s *PaymentService) mutate(ctx context.Context, paymentID, actorID, msg string, fn func(*domain.Payment) error) (*domain.Payment, error) {
	p, err := s.payments.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, msg, "payment_id", paymentID, "status", p.Status, "actor_id", actorID)
	return p, nil
}
