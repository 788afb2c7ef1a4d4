package models

import "time"

// AuditEntry is an immutable fact about a state transition or money movement.
// Rows are only ever inserted.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:64;not null;index" json:"type"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`
	Subject   string    `gorm:"size:64;not null;index" json:"subject"` // e.g. assignment:12, payout:4, invoice:9
	OldValue  string    `gorm:"size:255" json:"old_value"`
	NewValue  string    `gorm:"size:255" json:"new_value"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON
	CreatedAt time.Time `json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
