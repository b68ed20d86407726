// Package mysql implements the casework repositories on GORM/MySQL.
package mysql

import (
	"context"
	"errors"

	"github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
)

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository builds the MySQL-backed case repository.
func NewCaseRepository(gdb *gorm.DB) domain.CaseRepository {
	return &caseRepository{db: gdb}
}

func (r *caseRepository) Create(ctx context.Context, cf *domain.CaseFile) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Create(cf).Error
}

// Save writes the aggregate back with an optimistic check-and-set on the
// version column. Zero rows affected means another writer got there first.
func (r *caseRepository) Save(ctx context.Context, cf *domain.CaseFile) error {
	current := cf.Version
	cf.Version = current + 1

	result := db.FromContext(ctx, r.db).WithContext(ctx).
		Model(&domain.CaseFile{}).
		Where("case_id = ? AND version = ?", cf.CaseID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(cf)
	if result.Error != nil {
		cf.Version = current
		return result.Error
	}
	if result.RowsAffected == 0 {
		cf.Version = current
		return domain.ErrConcurrentModification
	}
	return nil
}

func (r *caseRepository) GetByCaseID(ctx context.Context, caseID string) (*domain.CaseFile, error) {
	var cf domain.CaseFile
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("case_id = ?", caseID).
		First(&cf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func (r *caseRepository) GetByOpportunityID(ctx context.Context, opportunityID string) (*domain.CaseFile, error) {
	var cf domain.CaseFile
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		First(&cf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func (r *caseRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.CaseFile, error) {
	var cases []*domain.CaseFile
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("technical_status NOT IN ?", terminalStatuses()).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func terminalStatuses() []domain.TechnicalStatus {
	var terminal []domain.TechnicalStatus
	for _, s := range domain.AllStatuses {
		if s.IsTerminal() {
			terminal = append(terminal, s)
		}
	}
	return terminal
}
