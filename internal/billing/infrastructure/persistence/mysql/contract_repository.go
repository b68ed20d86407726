// Package mysql implements the billing repositories on GORM/MySQL.
package mysql

import (
	"context"
	"errors"

	"github.com/lexmigra/caseops/internal/billing/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
)

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository builds the MySQL-backed contract repository.
func NewContractRepository(gdb *gorm.DB) domain.ContractRepository {
	return &contractRepository{db: gdb}
}

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Create(c).Error
}

// Save writes the aggregate back with an optimistic check-and-set on the
// version column.
func (r *contractRepository) Save(ctx context.Context, c *domain.Contract) error {
	current := c.Version
	c.Version = current + 1

	result := db.FromContext(ctx, r.db).WithContext(ctx).
		Model(&domain.Contract{}).
		Where("contract_id = ? AND version = ?", c.ContractID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(c)
	if result.Error != nil {
		c.Version = current
		return result.Error
	}
	if result.RowsAffected == 0 {
		c.Version = current
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *contractRepository) GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error) {
	var c domain.Contract
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("contract_id = ?", contractID).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepository) GetActiveByOpportunityID(ctx context.Context, opportunityID string) (*domain.Contract, error) {
	var c domain.Contract
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("opportunity_id = ? AND status <> ?", opportunityID, domain.ContractCancelado).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrContractNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepository) ListAwaitingSignature(ctx context.Context, limit, offset int) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("status = ?", domain.ContractEnviado).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
