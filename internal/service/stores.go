package service

import (
	"crewpay/internal/models"

	"gorm.io/gorm"
)

// TxRunner runs a function inside one atomic commit scope.
type TxRunner interface {
	InTx(fn func(tx *gorm.DB) error) error
}

// Store interfaces are the slices of the repository layer each service
// needs; tests substitute in-memory implementations and pass a nil tx.

type AssignmentStore interface {
	Create(a *models.PaymentAssignment) error
	GetByID(id uint) (*models.PaymentAssignment, error)
	GetForUpdate(tx *gorm.DB, id uint) (*models.PaymentAssignment, error)
	Save(tx *gorm.DB, a *models.PaymentAssignment) error
	Delete(a *models.PaymentAssignment) error
	ListByProject(projectID uint) ([]models.PaymentAssignment, error)
	ListUnpaidWithAmount(tx *gorm.DB, projectID uint) ([]models.PaymentAssignment, error)
	ListPayable(tx *gorm.DB, contractorID uint) ([]models.PaymentAssignment, error)
	ListByPayout(tx *gorm.DB, payoutID uint) ([]models.PaymentAssignment, error)
}

type ProjectStore interface {
	GetByID(id uint) (*models.Project, error)
	GetByIDTx(tx *gorm.DB, id uint) (*models.Project, error)
	Save(tx *gorm.DB, p *models.Project) error
}

type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

type PayoutStore interface {
	Create(tx *gorm.DB, p *models.Payout) error
	GetByID(id uint) (*models.Payout, error)
	GetForUpdate(tx *gorm.DB, id uint) (*models.Payout, error)
	GetByTransferID(transferID string) (*models.Payout, error)
	GetByIdempotencyKey(key string) (*models.Payout, error)
	Save(tx *gorm.DB, p *models.Payout) error
}

type CreditStore interface {
	GetOrCreateBalance(userID uint) (*models.CreditBalance, error)
	GetBalanceForUpdate(tx *gorm.DB, userID uint) (*models.CreditBalance, error)
	SaveBalance(tx *gorm.DB, b *models.CreditBalance) error
	CreateTransaction(tx *gorm.DB, ct *models.CreditTransaction) error
}

type InvoiceStore interface {
	GetForUpdate(tx *gorm.DB, id uint) (*models.Invoice, error)
	Save(tx *gorm.DB, inv *models.Invoice) error
}
