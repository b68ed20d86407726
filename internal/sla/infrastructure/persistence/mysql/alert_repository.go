// Package mysql implements the alert repository on GORM/MySQL.
package mysql

import (
	"context"

	"github.com/lexmigra/caseops/internal/sla/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository builds the MySQL-backed alert repository.
func NewAlertRepository(gdb *gorm.DB) domain.AlertRepository {
	return &alertRepository{db: gdb}
}

// CreateIfAbsent leans on the unique entity/kind/tier index: a duplicate
// breach inserts nothing and reports false, so the sweep stays idempotent
// without a read-then-write race.
func (r *alertRepository) CreateIfAbsent(ctx context.Context, alert *domain.Alert) (bool, error) {
	result := db.FromContext(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(alert)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *alertRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("raised_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Order("raised_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}
