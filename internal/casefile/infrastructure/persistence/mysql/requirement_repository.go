package mysql

import (
	"context"
	"errors"

	"github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
)

type requirementRepository struct {
	db *gorm.DB
}

// NewRequirementRepository builds the MySQL-backed requirement repository.
func NewRequirementRepository(gdb *gorm.DB) domain.RequirementRepository {
	return &requirementRepository{db: gdb}
}

func (r *requirementRepository) Create(ctx context.Context, req *domain.Requirement) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Create(req).Error
}

func (r *requirementRepository) Save(ctx context.Context, req *domain.Requirement) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Save(req).Error
}

func (r *requirementRepository) GetByRequirementID(ctx context.Context, requirementID string) (*domain.Requirement, error) {
	var req domain.Requirement
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("requirement_id = ?", requirementID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRequirementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requirementRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Requirement, error) {
	var reqs []*domain.Requirement
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("official_deadline ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// CountOpenByCase counts requirements still blocking the case: anything not
// yet ENCERRADA, a prepared response included.
func (r *requirementRepository) CountOpenByCase(ctx context.Context, caseID string) (int64, error) {
	var count int64
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Model(&domain.Requirement{}).
		Where("case_id = ? AND status <> ?", caseID, domain.RequirementEncerrada).
		Count(&count).Error
	return count, err
}

func (r *requirementRepository) ListOpen(ctx context.Context, limit, offset int) ([]*domain.Requirement, error) {
	var reqs []*domain.Requirement
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("status <> ?", domain.RequirementEncerrada).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&reqs).Error
	if err != nil {
		return nil, err
	}
	return reqs, nil
}
