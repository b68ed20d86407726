// Package application implements the suspension controller: the one
// authority allowed to freeze a case together with its contract, and to lift
// that freeze.
package application

import (
	"context"
	"log/slog"
	"time"

	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
)

// Controller suspends and reactivates a contract and its linked case as one
// atomic unit. A case is never suspended without its contract, nor the other
// way around; both rows change in a single transaction or neither does.
type Controller struct {
	contracts billing.ContractRepository
	cases     casefile.CaseRepository
	tx        billing.Transactor
	publisher billing.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewController wires the controller.
func NewController(
	contracts billing.ContractRepository,
	cases casefile.CaseRepository,
	tx billing.Transactor,
	publisher billing.EventPublisher,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		contracts: contracts,
		cases:     cases,
		tx:        tx,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Suspend freezes a signed, unsuspended contract and its case. Failure
// kinds: ErrContractNotSigned, ErrAlreadySuspended, ErrConcurrentModification.
func (c *Controller) Suspend(ctx context.Context, contractID, reason, actorID string) error {
	now := c.now()

	var caseID string
	err := c.tx.InTx(ctx, func(txCtx context.Context) error {
		contract, err := c.contracts.GetByContractID(txCtx, contractID)
		if err != nil {
			return err
		}
		if err := contract.MarkSuspended(reason, now); err != nil {
			return err
		}

		cf, err := c.cases.GetByCaseID(txCtx, contract.CaseID)
		if err != nil {
			return err
		}
		cf.MarkSuspended(reason, now)
		caseID = cf.CaseID

		if err := c.contracts.Save(txCtx, contract); err != nil {
			return err
		}
		return c.cases.Save(txCtx, cf)
	})
	if err != nil {
		return err
	}

	event := casefile.CaseSuspensionEvent{
		CaseID:     caseID,
		ContractID: contractID,
		Reason:     reason,
		ActorID:    actorID,
		At:         now,
	}
	if err := c.publisher.Publish(ctx, casefile.TopicCaseSuspended, caseID, event); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish suspension", "case_id", caseID, "error", err)
	}

	c.logger.WarnContext(ctx, "case and contract suspended",
		"contract_id", contractID,
		"case_id", caseID,
		"reason", reason,
		"actor_id", actorID,
	)
	return nil
}

// Reactivate lifts the freeze on both entities. The technical status and the
// payment records are untouched: suspension is a pause, not a rollback.
func (c *Controller) Reactivate(ctx context.Context, contractID, actorID string) error {
	now := c.now()

	var caseID string
	err := c.tx.InTx(ctx, func(txCtx context.Context) error {
		contract, err := c.contracts.GetByContractID(txCtx, contractID)
		if err != nil {
			return err
		}
		if err := contract.ClearSuspension(); err != nil {
			return err
		}

		cf, err := c.cases.GetByCaseID(txCtx, contract.CaseID)
		if err != nil {
			return err
		}
		cf.ClearSuspension()
		caseID = cf.CaseID

		if err := c.contracts.Save(txCtx, contract); err != nil {
			return err
		}
		return c.cases.Save(txCtx, cf)
	})
	if err != nil {
		return err
	}

	event := casefile.CaseSuspensionEvent{
		CaseID:     caseID,
		ContractID: contractID,
		ActorID:    actorID,
		At:         now,
	}
	if err := c.publisher.Publish(ctx, casefile.TopicCaseReactivated, caseID, event); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish reactivation", "case_id", caseID, "error", err)
	}

	c.logger.InfoContext(ctx, "case and contract reactivated",
		"contract_id", contractID,
		"case_id", caseID,
		"actor_id", actorID,
	)
	return nil
}
