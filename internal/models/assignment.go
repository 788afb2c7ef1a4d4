package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentAssignment binds one contractor to one project with a payable amount.
// PaymentStatus only ever advances UNPAID -> PENDING -> PROCESSING -> PAID/FAILED;
// ApprovalState is the tri-state review gate and resets to UNREVIEWED whenever
// the amount changes.
type PaymentAssignment struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	ProjectID       uint             `gorm:"not null;index:idx_assignments_project_contractor,unique" json:"project_id"`
	ContractorID    uint             `gorm:"not null;index:idx_assignments_project_contractor,unique;index" json:"contractor_id"`
	PaymentAmount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"payment_amount"` // nil until an admin sets it
	PaymentStatus   string           `gorm:"size:20;not null;index;default:'UNPAID'" json:"payment_status"`
	ApprovalState   string           `gorm:"size:20;not null;index;default:'UNREVIEWED'" json:"approval_state"`
	ApprovedBy      *uint            `json:"approved_by"`
	ApprovedAt      *time.Time       `json:"approved_at"`
	RejectionReason string           `gorm:"size:512" json:"rejection_reason"`
	ReviewNotes     string           `gorm:"size:1024" json:"review_notes"`
	PayoutID        *uint            `gorm:"index" json:"payout_id"` // set once batched
	PaymentDueDate  *time.Time       `json:"payment_due_date"`
	AssignedAt      time.Time        `json:"assigned_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`

	Project    Project `gorm:"foreignKey:ProjectID" json:"-"`
	Contractor User    `gorm:"foreignKey:ContractorID" json:"-"`
}

func (PaymentAssignment) TableName() string {
	return "payment_assignments"
}

// HasAmount reports whether an admin has set a positive payment amount.
func (a *PaymentAssignment) HasAmount() bool {
	return a.PaymentAmount != nil && a.PaymentAmount.IsPositive()
}
