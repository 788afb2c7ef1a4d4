package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	ProjectID   *uint           `gorm:"index" json:"project_id"`
	Number      string          `gorm:"size:64;uniqueIndex;not null" json:"number"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status      string          `gorm:"size:20;not null;index" json:"status"` // OPEN, PAID, VOID
	Description string          `gorm:"size:512" json:"description"`
	PaidAt      *time.Time      `json:"paid_at"`
	PaidVia     string          `gorm:"size:20" json:"paid_via"` // CREDIT or processor method
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Client User `gorm:"foreignKey:ClientID" json:"-"`
}

func (Invoice) TableName() string {
	return "invoices"
}
