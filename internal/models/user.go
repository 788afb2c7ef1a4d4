package models

import (
	"time"

	"crewpay/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string         `gorm:"size:128;not null" json:"name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // ADMIN | CONTRACTOR | CLIENT
	// Connected payout account at the external processor; empty until the
	// contractor finishes onboarding there.
	ProcessorAccountID string         `gorm:"size:128" json:"processor_account_id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsContractor() bool { return u.Role == domain.RoleContractor }
func (u *User) IsAdmin() bool      { return u.Role == domain.RoleAdmin }
