package repository

import (
	"errors"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PayoutRepository struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

func (r *PayoutRepository) Create(tx *gorm.DB, p *models.Payout) error {
	return tx.Create(p).Error
}

func (r *PayoutRepository) GetByID(id uint) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetForUpdate(tx *gorm.DB, id uint) (*models.Payout, error) {
	var p models.Payout
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByIdempotencyKey(key string) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.Where("idempotency_key = ?", key).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) GetByTransferID(transferID string) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.Where("external_transfer_id = ?", transferID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayoutRepository) Save(tx *gorm.DB, p *models.Payout) error {
	return tx.Save(p).Error
}

func (r *PayoutRepository) List(status string) ([]models.Payout, error) {
	var list []models.Payout
	q := r.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PayoutRepository) ListByContractor(contractorID uint) ([]models.Payout, error) {
	var list []models.Payout
	if err := r.db.Where("contractor_id = ?", contractorID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
