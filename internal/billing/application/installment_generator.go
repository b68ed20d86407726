// Package application orchestrates contracts, installment generation and
// payment collection.
package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/shopspring/decimal"
)

// GenerateSchedule derives the installment schedule from a signed contract's
// terms. Each installment is total_fee/count rounded to two places; the last
// one absorbs the rounding remainder so the sum equals total_fee exactly.
// Due dates advance one calendar month per installment, preserving the
// day-of-month and clamping to month end where the day does not exist. The
// down payment, when present, becomes installment zero outside the split.
func GenerateSchedule(c *domain.Contract) ([]*domain.Payment, error) {
	if c.Status != domain.ContractAssinado {
		return nil, domain.ErrContractNotSigned
	}
	if c.InstallmentCount < 1 {
		return nil, domain.ErrInvalidContractTerms
	}

	count := int64(c.InstallmentCount)
	base := c.TotalFee.Div(decimal.NewFromInt(count)).Round(2)
	last := c.TotalFee.Sub(base.Mul(decimal.NewFromInt(count - 1)))

	payments := make([]*domain.Payment, 0, c.InstallmentCount+1)

	if c.DownPayment.IsPositive() && c.DownPaymentDueDate != nil {
		payments = append(payments, &domain.Payment{
			PaymentID:         uuid.NewString(),
			ContractID:        c.ContractID,
			CaseID:            c.CaseID,
			InstallmentNumber: 0,
			Amount:            c.DownPayment,
			Currency:          c.Currency,
			DueDate:           *c.DownPaymentDueDate,
			Status:            domain.PaymentPendente,
		})
	}

	for k := 0; k < c.InstallmentCount; k++ {
		amount := base
		if k == c.InstallmentCount-1 {
			amount = last
		}
		payments = append(payments, &domain.Payment{
			PaymentID:         uuid.NewString(),
			ContractID:        c.ContractID,
			CaseID:            c.CaseID,
			InstallmentNumber: k + 1,
			Amount:            amount,
			Currency:          c.Currency,
			DueDate:           addMonths(c.FirstDueDate, k),
			Status:            domain.PaymentPendente,
		})
	}

	return payments, nil
}

// addMonths advances t by k calendar months keeping the day-of-month, or the
// last day of the target month when the day does not exist there (Jan 31 + 1
// month is Feb 29/28, not Mar 2/3, which is what time.AddDate would yield).
func addMonths(t time.Time, k int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	target := time.Date(year, month+time.Month(k), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if lastDay := daysIn(target.Year(), target.Month(), t.Location()); day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
