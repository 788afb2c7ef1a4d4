package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditBalance is the single per-user running balance for the internal
// credit ledger.
type CreditBalance struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_balance"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditBalance) TableName() string {
	return "credit_balances"
}

// CreditTransaction is one ledger entry. Amount is signed (purchases positive,
// deductions negative); BalanceAfter is the snapshot written atomically with
// the balance update, so replaying the log from zero reproduces every balance.
type CreditTransaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Type         string          `gorm:"size:20;not null;index" json:"type"` // PURCHASE, DEDUCTION
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after"`
	Description  string          `gorm:"size:512" json:"description"`
	InvoiceID    *uint           `gorm:"index" json:"invoice_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
