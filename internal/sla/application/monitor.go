// Package application implements the SLA monitor: pure evaluation of cases,
// payments, contracts and requirements against configured thresholds, and
// the periodic sweep that raises the resulting alerts.
package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	billing "github.com/lexmigra/caseops/internal/billing/domain"
	casefile "github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/internal/sla/domain"
)

// Monitor evaluates entities against the configured thresholds. It is
// read-only and deterministic for a given clock, so it can run concurrently
// with mutations; a stale read costs at most one sweep cycle of delay.
type Monitor struct {
	thresholds domain.Thresholds
	now        func() time.Time
}

// NewMonitor builds a monitor with injected thresholds and clock.
func NewMonitor(thresholds domain.Thresholds, now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{thresholds: thresholds, now: now}
}

// EvaluateCase checks the first-contact SLA.
func (m *Monitor) EvaluateCase(cf *casefile.CaseFile) []*domain.Alert {
	if cf.FirstContactAt != nil || cf.TechnicalStatus.IsTerminal() {
		return nil
	}
	elapsed := m.now().Sub(cf.CreatedAt)
	if elapsed <= m.thresholds.FirstContact {
		return nil
	}
	return []*domain.Alert{{
		AlertID:    uuid.NewString(),
		EntityType: domain.EntityCase,
		EntityID:   cf.CaseID,
		Kind:       domain.AlertFirstContact,
		Tier:       1,
		CaseID:     cf.CaseID,
		Audience:   domain.AudienceStaff,
		Message:    fmt.Sprintf("case without first contact for %s", elapsed.Round(time.Hour)),
		RaisedAt:   m.now(),
	}}
}

// EvaluatePayment walks the overdue ladder for an unsettled installment and
// returns the highest tier reached. The final tier flags eligibility for
// auto-suspension; acting on it is the suspension controller's decision.
func (m *Monitor) EvaluatePayment(p *billing.Payment) []*domain.Alert {
	if !p.Outstanding() {
		return nil
	}
	overdue := p.OverdueBy(m.now())

	var (
		tier     int
		audience domain.Audience
		suspend  bool
	)
	switch {
	case overdue > m.thresholds.PaymentTier3:
		tier, audience, suspend = 3, domain.AudienceClientManager, true
	case overdue > m.thresholds.PaymentTier2:
		tier, audience = 2, domain.AudienceClientStaff
	case overdue > m.thresholds.PaymentTier1:
		tier, audience = 1, domain.AudienceClient
	default:
		return nil
	}

	return []*domain.Alert{{
		AlertID:             uuid.NewString(),
		EntityType:          domain.EntityPayment,
		EntityID:            p.PaymentID,
		Kind:                domain.AlertPaymentOverdue,
		Tier:                tier,
		CaseID:              p.CaseID,
		Audience:            audience,
		Message:             fmt.Sprintf("installment %d overdue by %s", p.InstallmentNumber, overdue.Round(time.Hour)),
		RecommendSuspension: suspend,
		RaisedAt:            m.now(),
	}}
}

// EvaluateContract walks the signature ladder for a sent, unsigned contract.
// Tier one fires on the send day itself; the final tier recommends
// auto-cancellation.
func (m *Monitor) EvaluateContract(c *billing.Contract) []*domain.Alert {
	if c.Status != billing.ContractEnviado || c.SentAt == nil {
		return nil
	}
	elapsed := m.now().Sub(*c.SentAt)

	var (
		tier     int
		audience domain.Audience
		cancel   bool
	)
	switch {
	case elapsed > m.thresholds.SignatureCancel:
		tier, audience, cancel = 5, domain.AudienceClientManager, true
	case elapsed > m.thresholds.SignatureTier4:
		tier, audience = 4, domain.AudienceClientManager
	case elapsed > m.thresholds.SignatureTier3:
		tier, audience = 3, domain.AudienceClientStaff
	case elapsed > m.thresholds.SignatureTier2:
		tier, audience = 2, domain.AudienceClient
	case elapsed >= 0:
		tier, audience = 1, domain.AudienceClient
	default:
		return nil
	}

	return []*domain.Alert{{
		AlertID:               uuid.NewString(),
		EntityType:            domain.EntityContract,
		EntityID:              c.ContractID,
		Kind:                  domain.AlertContractSignature,
		Tier:                  tier,
		CaseID:                c.CaseID,
		Audience:              audience,
		Message:               fmt.Sprintf("contract awaiting signature for %s", elapsed.Round(time.Hour)),
		RecommendCancellation: cancel,
		RaisedAt:              m.now(),
	}}
}

// EvaluateRequirement checks the response SLA and the internal/official
// deadline breaches of an open requirement.
func (m *Monitor) EvaluateRequirement(r *casefile.Requirement) []*domain.Alert {
	if r.Status != casefile.RequirementAberta {
		return nil
	}
	now := m.now()

	var alerts []*domain.Alert
	if age := now.Sub(r.CreatedAt); age > m.thresholds.RequirementReply {
		alerts = append(alerts, &domain.Alert{
			AlertID:    uuid.NewString(),
			EntityType: domain.EntityRequirement,
			EntityID:   r.RequirementID,
			Kind:       domain.AlertRequirementResponse,
			Tier:       1,
			CaseID:     r.CaseID,
			Audience:   domain.AudienceStaff,
			Message:    fmt.Sprintf("requirement unanswered for %s", age.Round(time.Hour)),
			RaisedAt:   now,
		})
	}

	switch {
	case now.After(r.OfficialDeadline):
		alerts = append(alerts, &domain.Alert{
			AlertID:    uuid.NewString(),
			EntityType: domain.EntityRequirement,
			EntityID:   r.RequirementID,
			Kind:       domain.AlertRequirementDeadline,
			Tier:       2,
			CaseID:     r.CaseID,
			Audience:   domain.AudienceClientManager,
			Message:    "official requirement deadline breached",
			RaisedAt:   now,
		})
	case now.After(r.InternalDeadline):
		alerts = append(alerts, &domain.Alert{
			AlertID:    uuid.NewString(),
			EntityType: domain.EntityRequirement,
			EntityID:   r.RequirementID,
			Kind:       domain.AlertRequirementDeadline,
			Tier:       1,
			CaseID:     r.CaseID,
			Audience:   domain.AudienceStaff,
			Message:    "internal requirement deadline breached",
			RaisedAt:   now,
		})
	}

	return alerts
}
