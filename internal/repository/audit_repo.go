package repository

import (
	"crewpay/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an entry inside the caller's transaction so state changes
// and their audit trail commit together.
func (r *AuditRepository) Record(tx *gorm.DB, e *models.AuditEntry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(e).Error
}

func (r *AuditRepository) ListBySubject(subject string) ([]models.AuditEntry, error) {
	var list []models.AuditEntry
	if err := r.db.Where("subject = ?", subject).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AuditRepository) ListRecent(limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var list []models.AuditEntry
	if err := r.db.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
