package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository builds the MySQL-backed payment repository.
func NewPaymentRepository(gdb *gorm.DB) domain.PaymentRepository {
	return &paymentRepository{db: gdb}
}

func (r *paymentRepository) CreateBatch(ctx context.Context, payments []*domain.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return db.FromContext(ctx, r.db).WithContext(ctx).Create(payments).Error
}

func (r *paymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Save(p).Error
}

func (r *paymentRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var p domain.Payment
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) ListByContract(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("installment_number ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) CountByContract(ctx context.Context, contractID string) (int64, error) {
	var count int64
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Model(&domain.Payment{}).
		Where("contract_id = ?", contractID).
		Count(&count).Error
	return count, err
}

func (r *paymentRepository) ListOutstandingDueBefore(ctx context.Context, t time.Time, limit, offset int) ([]*domain.Payment, error) {
	outstanding := []domain.PaymentStatus{
		domain.PaymentPendente,
		domain.PaymentEmAnalise,
		domain.PaymentParcial,
	}

	var payments []*domain.Payment
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("status IN ? AND due_date < ?", outstanding, t).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
