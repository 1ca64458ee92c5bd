package repository

import (
	"context"

	"anoa.com/mentorhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Document, error)
	HasDocument(ctx context.Context, userID uuid.UUID, docType string) (bool, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.Document, error) {
	var docs []entity.Document
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	return docs, err
}

func (r *documentRepository) HasDocument(ctx context.Context, userID uuid.UUID, docType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Document{}).
		Where("user_id = ? AND doc_type = ?", userID, docType).
		Count(&count).Error
	return count > 0, err
}
