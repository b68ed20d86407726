package mysql

import (
	"context"
	"errors"

	"github.com/lexmigra/caseops/internal/casefile/domain"
	"github.com/lexmigra/caseops/pkg/db"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository builds the MySQL-backed document repository.
func NewDocumentRepository(gdb *gorm.DB) domain.DocumentRepository {
	return &documentRepository{db: gdb}
}

func (r *documentRepository) CreateBatch(ctx context.Context, docs []*domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return db.FromContext(ctx, r.db).WithContext(ctx).Create(docs).Error
}

func (r *documentRepository) Save(ctx context.Context, doc *domain.Document) error {
	return db.FromContext(ctx, r.db).WithContext(ctx).Save(doc).Error
}

func (r *documentRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.Document, error) {
	var doc domain.Document
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("document_id = ?", documentID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Document, error) {
	var docs []*domain.Document
	err := db.FromContext(ctx, r.db).WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("type_code ASC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
