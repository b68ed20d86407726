package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the collection state of one installment.
type PaymentStatus string

const (
	PaymentPendente   PaymentStatus = "PENDENTE"
	PaymentParcial    PaymentStatus = "PARCIAL"
	PaymentEmAnalise  PaymentStatus = "EM_ANALISE"
	PaymentConfirmado PaymentStatus = "CONFIRMADO"
	PaymentEstornado  PaymentStatus = "ESTORNADO"
)

// paymentGraph is the legal movement between collection states. PARCIAL and
// EM_ANALISE are holding states between PENDENTE and the outcomes.
var paymentGraph = map[PaymentStatus][]PaymentStatus{
	PaymentPendente:   {PaymentEmAnalise, PaymentParcial, PaymentConfirmado},
	PaymentEmAnalise:  {PaymentConfirmado, PaymentParcial, PaymentPendente},
	PaymentParcial:    {PaymentConfirmado, PaymentEmAnalise},
	PaymentConfirmado: {PaymentEstornado},
	PaymentEstornado:  {},
}

// CanMoveTo reports whether the edge s → target exists.
func (s PaymentStatus) CanMoveTo(target PaymentStatus) bool {
	for _, next := range paymentGraph[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Payment is one scheduled installment of a signed contract. The down
// payment, when present, is installment number zero and is excluded from the
// fee split.
type Payment struct {
	gorm.Model
	PaymentID  string `gorm:"column:payment_id;type:varchar(36);uniqueIndex;not null" json:"payment_id"`
	ContractID string `gorm:"column:contract_id;type:varchar(36);index;not null" json:"contract_id"`
	CaseID     string `gorm:"column:case_id;type:varchar(36);index" json:"case_id"`

	InstallmentNumber int             `gorm:"column:installment_number;not null" json:"installment_number"`
	Amount            decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Currency          string          `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	DueDate           time.Time       `gorm:"column:due_date;index;not null" json:"due_date"`

	Status PaymentStatus `gorm:"column:status;type:varchar(12);index;not null;default:'PENDENTE'" json:"status"`
	PaidAt *time.Time    `gorm:"column:paid_at" json:"paid_at"`
	// PaidAmount tracks what actually arrived while the status is PARCIAL.
	PaidAmount decimal.Decimal `gorm:"column:paid_amount;type:decimal(18,2)" json:"paid_amount"`
}

// TableName maps the entity to its table.
func (Payment) TableName() string { return "contract_payments" }

// Confirm settles the installment in full.
func (p *Payment) Confirm(now time.Time) error {
	if !p.Status.CanMoveTo(PaymentConfirmado) {
		return ErrInvalidPaymentStatus
	}
	t := now
	p.Status = PaymentConfirmado
	p.PaidAt = &t
	p.PaidAmount = p.Amount
	return nil
}

// MarkInAnalysis parks the installment while a receipt is verified.
func (p *Payment) MarkInAnalysis() error {
	if !p.Status.CanMoveTo(PaymentEmAnalise) {
		return ErrInvalidPaymentStatus
	}
	p.Status = PaymentEmAnalise
	return nil
}

// MarkPartial records an incomplete transfer.
func (p *Payment) MarkPartial(paidAmount decimal.Decimal) error {
	if !p.Status.CanMoveTo(PaymentParcial) {
		return ErrInvalidPaymentStatus
	}
	if paidAmount.LessThanOrEqual(decimal.Zero) || paidAmount.GreaterThanOrEqual(p.Amount) {
		return ErrInvalidPaymentAmount
	}
	p.Status = PaymentParcial
	p.PaidAmount = paidAmount
	return nil
}

// Refund reverses a confirmed installment.
func (p *Payment) Refund() error {
	if !p.Status.CanMoveTo(PaymentEstornado) {
		return ErrInvalidPaymentStatus
	}
	p.Status = PaymentEstornado
	return nil
}

// Outstanding reports whether the installment still awaits full settlement.
func (p *Payment) Outstanding() bool {
	switch p.Status {
	case PaymentPendente, PaymentParcial, PaymentEmAnalise:
		return true
	}
	return false
}

// OverdueBy returns how far past due the installment is at now; zero or
// negative means not yet due.
func (p *Payment) OverdueBy(now time.Time) time.Duration {
	return now.Sub(p.DueDate)
}
