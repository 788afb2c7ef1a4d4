package models

import (
	"time"

	"gorm.io/gorm"
)

// Document is an uploaded file attached to an invoice or payout (receipts,
// signed statements). Stored externally; we keep only the URL.
type Document struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UploaderID uint           `gorm:"not null;index" json:"uploader_id"`
	Subject    string         `gorm:"size:64;index" json:"subject"` // invoice:9, payout:4
	Name       string         `gorm:"size:255" json:"name"`
	URL        string         `gorm:"size:512;not null" json:"url"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}
