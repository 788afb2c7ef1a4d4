package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payout is one money-movement event for one contractor, possibly covering
// several assignments. Gross/fee/net are computed once at dispatch and never
// recomputed; the row is an append-only financial record.
type Payout struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	ContractorID       uint            `gorm:"not null;index" json:"contractor_id"`
	BatchID            string          `gorm:"size:64;not null;index" json:"batch_id"`
	ExternalTransferID string          `gorm:"size:128;index" json:"external_transfer_id"`
	IdempotencyKey     string          `gorm:"size:64;uniqueIndex" json:"-"`
	GrossAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	ProcessorFeeAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"processor_fee_amount"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	Status             string          `gorm:"size:20;not null;index" json:"status"` // PROCESSING, COMPLETED, FAILED
	ProcessedBy        uint            `gorm:"not null" json:"processed_by"`
	FailureReason      string          `gorm:"size:512" json:"failure_reason"`
	CreatedAt          time.Time       `json:"created_at"`
	ProcessedAt        *time.Time      `json:"processed_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	Contractor User `gorm:"foreignKey:ContractorID" json:"-"`
}

func (Payout) TableName() string {
	return "payouts"
}
