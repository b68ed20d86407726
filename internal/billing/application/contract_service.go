package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/shopspring/decimal"
)

// ContractService drives the contract lifecycle. Signing a contract and
// generating its installment schedule are one transaction: they never run
// twice for one signature event.
type ContractService struct {
	contracts domain.ContractRepository
	payments  domain.PaymentRepository
	tx        domain.Transactor
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewContractService wires the service.
func NewContractService(
	contracts domain.ContractRepository,
	payments domain.PaymentRepository,
	tx domain.Transactor,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		payments:  payments,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateContractCommand drafts a contract for an opportunity.
type CreateContractCommand struct {
	OpportunityID    string
	CaseID           string
	TotalFee         decimal.Decimal
	Currency         string
	InstallmentCount int
	FirstDueDate     time.Time
	DownPayment      decimal.Decimal
	DownPaymentDue   *time.Time
	ActorID          string
}

// Create drafts a contract; an opportunity holds at most one active one.
func (s *ContractService) Create(ctx context.Context, cmd CreateContractCommand) (*domain.Contract, error) {
	existing, err := s.contracts.GetActiveByOpportunityID(ctx, cmd.OpportunityID)
	if err != nil && !errors.Is(err, domain.ErrContractNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrActiveContractExists
	}

	c, err := domain.NewContract(uuid.NewString(), cmd.OpportunityID, cmd.CaseID, cmd.TotalFee, cmd.Currency, cmd.InstallmentCount, cmd.FirstDueDate)
	if err != nil {
		return nil, err
	}
	if cmd.DownPayment.IsPositive() && cmd.DownPaymentDue != nil {
		if err := c.SetDownPayment(cmd.DownPayment, *cmd.DownPaymentDue); err != nil {
			return nil, err
		}
	}

	if err := s.contracts.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "contract drafted",
		"contract_id", c.ContractID,
		"opportunity_id", c.OpportunityID,
		"total_fee", c.TotalFee,
		"actor_id", cmd.ActorID,
	)
	return c, nil
}

// SubmitForReview moves the draft into revision.
func (s *ContractService) SubmitForReview(ctx context.Context, contractID, actorID string) (*domain.Contract, error) {
	return s.mutate(ctx, contractID, actorID, "contract sent to review", func(c *domain.Contract) error {
		return c.SubmitForReview()
	})
}

// Send dispatches the contract to the client, anchoring the signature SLA.
func (s *ContractService) Send(ctx context.Context, contractID, actorID string) (*domain.Contract, error) {
	return s.mutate(ctx, contractID, actorID, "contract sent to client", func(c *domain.Contract) error {
		return c.Send(s.now())
	})
}

// Sign records the signature and generates the installment schedule in the
// same transaction. A contract that already has installments is never
// scheduled again: concurrent or repeated signature submissions get
// ErrAlreadyGenerated.
func (s *ContractService) Sign(ctx context.Context, contractID, signedDocumentURL, actorID string) (*domain.Contract, error) {
	c, err := s.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var installments int
	err = s.tx.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.payments.CountByContract(txCtx, c.ContractID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrAlreadyGenerated
		}

		if err := c.Sign(signedDocumentURL, now); err != nil {
			return err
		}

		schedule, err := GenerateSchedule(c)
		if err != nil {
			return err
		}
		installments = len(schedule)

		if err := s.payments.CreateBatch(txCtx, schedule); err != nil {
			return err
		}
		return s.contracts.Save(txCtx, c)
	})
	if err != nil {
		return nil, err
	}

	event := domain.ContractSignedEvent{
		ContractID:   c.ContractID,
		CaseID:       c.CaseID,
		Installments: installments,
		ActorID:      actorID,
		At:           now,
	}
	if err := s.publisher.Publish(ctx, domain.TopicContractSigned, c.ContractID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contract signed", "contract_id", c.ContractID, "error", err)
	}

	s.logger.InfoContext(ctx, "contract signed",
		"contract_id", c.ContractID,
		"installments", installments,
		"actor_id", actorID,
	)
	return c, nil
}

// Cancel voids the contract from any non-terminal state.
func (s *ContractService) Cancel(ctx context.Context, contractID, reason, actorID string) (*domain.Contract, error) {
	c, err := s.mutate(ctx, contractID, actorID, "contract cancelled", func(c *domain.Contract) error {
		return c.Cancel(reason)
	})
	if err != nil {
		return nil, err
	}

	event := domain.ContractCancelledEvent{
		ContractID: c.ContractID,
		CaseID:     c.CaseID,
		Reason:     reason,
		ActorID:    actorID,
		At:         s.now(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicContractCancelled, c.ContractID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish contract cancelled", "contract_id", c.ContractID, "error", err)
	}
	return c, nil
}

// GetContract loads one contract.
func (s *ContractService) GetContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	return s.contracts.GetByContractID(ctx, contractID)
}

// ListInstallments returns the schedule of one contract.
func (s *ContractService) ListInstallments(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	return s.payments.ListByContract(ctx, contractID)
}

func (s *ContractService) mutate(ctx context.Context, contractID, actorID, msg string, fn func(*domain.Contract) error) (*domain.Contract, error) {
	c, err := s.contracts.GetByContractID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.contracts.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, msg, "contract_id", contractID, "status", c.Status, "actor_id", actorID)
	return c, nil
}
