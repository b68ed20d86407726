// Package domain holds the contract and payment aggregates and the rules for
// signing, cancelling, installment schedules and suspension.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractStatus is the contract's drafting/signature lifecycle.
type ContractStatus string

const (
	ContractEmElaboracao ContractStatus = "EM_ELABORACAO"
	ContractEmRevisao    ContractStatus = "EM_REVISAO"
	ContractEnviado      ContractStatus = "ENVIADO"
	ContractAssinado     ContractStatus = "ASSINADO"
	ContractCancelado    ContractStatus = "CANCELADO"
)

// Contract carries the financial terms of one opportunity. At most one
// non-cancelled contract exists per opportunity. Suspension mirrors the case
// flag, with the contract as the triggering entity.
type Contract struct {
	gorm.Model
	ContractID    string `gorm:"column:contract_id;type:varchar(36);uniqueIndex;not null" json:"contract_id"`
	OpportunityID string `gorm:"column:opportunity_id;type:varchar(36);index;not null" json:"opportunity_id"`
	CaseID        string `gorm:"column:case_id;type:varchar(36);index;not null" json:"case_id"`

	Status ContractStatus `gorm:"column:status;type:varchar(16);index;not null;default:'EM_ELABORACAO'" json:"status"`

	TotalFee         decimal.Decimal `gorm:"column:total_fee;type:decimal(18,2);not null" json:"total_fee"`
	Currency         string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	InstallmentCount int             `gorm:"column:installment_count;not null" json:"installment_count"`
	FirstDueDate     time.Time       `gorm:"column:first_due_date;not null" json:"first_due_date"`

	DownPayment        decimal.Decimal `gorm:"column:down_payment;type:decimal(18,2)" json:"down_payment"`
	DownPaymentDueDate *time.Time      `gorm:"column:down_payment_due_date" json:"down_payment_due_date"`

	// SignedDocumentURL is an opaque reference to the signed file; ASSINADO
	// is impossible without it.
	SignedDocumentURL string     `gorm:"column:signed_document_url;type:varchar(512)" json:"signed_document_url"`
	SentAt            *time.Time `gorm:"column:sent_at" json:"sent_at"`
	SignedAt          *time.Time `gorm:"column:signed_at" json:"signed_at"`
	CancelReason      string     `gorm:"column:cancel_reason;type:varchar(255)" json:"cancel_reason"`

	IsSuspended      bool       `gorm:"column:is_suspended;index;default:false" json:"is_suspended"`
	SuspendedAt      *time.Time `gorm:"column:suspended_at" json:"suspended_at"`
	SuspensionReason string     `gorm:"column:suspension_reason;type:varchar(255)" json:"suspension_reason"`

	Version int64 `gorm:"column:version;not null;default:0" json:"version"`
}

// TableName maps the aggregate to its table.
func (Contract) TableName() string { return "contracts" }

// NewContract drafts a contract for an opportunity.
func NewContract(contractID, opportunityID, caseID string, totalFee decimal.Decimal, currency string, installmentCount int, firstDueDate time.Time) (*Contract, error) {
	if totalFee.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidContractTerms
	}
	if installmentCount < 1 {
		return nil, ErrInvalidContractTerms
	}
	return &Contract{
		ContractID:       contractID,
		OpportunityID:    opportunityID,
		CaseID:           caseID,
		Status:           ContractEmElaboracao,
		TotalFee:         totalFee,
		Currency:         currency,
		InstallmentCount: installmentCount,
		FirstDueDate:     firstDueDate,
	}, nil
}

// SetDownPayment records the down payment terms while drafting. It is kept
// outside the installment split and never double-counted.
func (c *Contract) SetDownPayment(amount decimal.Decimal, dueDate time.Time) error {
	if c.Status != ContractEmElaboracao && c.Status != ContractEmRevisao {
		return ErrInvalidContractStatus
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidContractTerms
	}
	d := dueDate
	c.DownPayment = amount
	c.DownPaymentDueDate = &d
	return nil
}

// SubmitForReview moves the draft into revision.
func (c *Contract) SubmitForReview() error {
	if c.Status != ContractEmElaboracao {
		return ErrInvalidContractStatus
	}
	c.Status = ContractEmRevisao
	return nil
}

// Send dispatches the reviewed contract to the client and anchors the
// signature SLA ladder.
func (c *Contract) Send(now time.Time) error {
	if c.Status != ContractEmRevisao {
		return ErrInvalidContractStatus
	}
	t := now
	c.Status = ContractEnviado
	c.SentAt = &t
	return nil
}

// Sign records the client signature. A signed-document reference is
// mandatory; signing is irreversible except through cancellation.
func (c *Contract) Sign(signedDocumentURL string, now time.Time) error {
	if c.Status != ContractEnviado {
		return ErrInvalidContractStatus
	}
	if strings.TrimSpace(signedDocumentURL) == "" {
		return ErrSignedDocumentRequired
	}
	t := now
	c.Status = ContractAssinado
	c.SignedDocumentURL = signedDocumentURL
	c.SignedAt = &t
	return nil
}

// Cancel is reachable from any non-terminal state.
func (c *Contract) Cancel(reason string) error {
	if c.Status == ContractCancelado {
		return ErrInvalidContractStatus
	}
	c.Status = ContractCancelado
	c.CancelReason = reason
	return nil
}

// MarkSuspended freezes the contract; only the suspension controller calls
// this, always together with the linked case.
func (c *Contract) MarkSuspended(reason string, now time.Time) error {
	if c.Status != ContractAssinado {
		return ErrContractNotSigned
	}
	if c.IsSuspended {
		return ErrAlreadySuspended
	}
	t := now
	c.IsSuspended = true
	c.SuspendedAt = &t
	c.SuspensionReason = reason
	return nil
}

// ClearSuspension lifts the freeze; a pause, not a rollback.
func (c *Contract) ClearSuspension() error {
	if !c.IsSuspended {
		return ErrNotSuspended
	}
	c.IsSuspended = false
	c.SuspendedAt = nil
	c.SuspensionReason = ""
	return nil
}
