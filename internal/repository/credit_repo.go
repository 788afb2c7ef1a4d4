package repository

import (
	"errors"

	"crewpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// GetOrCreateBalance lazily materializes a zero balance on first access.
func (r *CreditRepository) GetOrCreateBalance(userID uint) (*models.CreditBalance, error) {
	var b models.CreditBalance
	err := r.db.Where("user_id = ?", userID).First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = models.CreditBalance{UserID: userID, CurrentBalance: decimal.Zero}
	if err := r.db.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBalanceForUpdate locks the balance row inside the caller's transaction,
// creating the zero row first if the user has never held credit.
func (r *CreditRepository) GetBalanceForUpdate(tx *gorm.DB, userID uint) (*models.CreditBalance, error) {
	var b models.CreditBalance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = models.CreditBalance{UserID: userID, CurrentBalance: decimal.Zero}
	if err := tx.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *CreditRepository) SaveBalance(tx *gorm.DB, b *models.CreditBalance) error {
	return tx.Save(b).Error
}

func (r *CreditRepository) CreateTransaction(tx *gorm.DB, ct *models.CreditTransaction) error {
	return tx.Create(ct).Error
}

func (r *CreditRepository) ListTransactions(userID uint) ([]models.CreditTransaction, error) {
	var list []models.CreditTransaction
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
