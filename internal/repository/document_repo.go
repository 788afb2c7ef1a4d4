package repository

import (
	"crewpay/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(d *models.Document) error {
	return r.db.Create(d).Error
}

func (r *DocumentRepository) ListBySubject(subject string) ([]models.Document, error) {
	var list []models.Document
	if err := r.db.Where("subject = ?", subject).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
