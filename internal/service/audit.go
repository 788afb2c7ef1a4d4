package service

import (
	"encoding/json"
	"fmt"

	"crewpay/internal/models"

	"gorm.io/gorm"
)

// AuditStore appends immutable audit entries, inside the caller's
// transaction when one is given.
type AuditStore interface {
	Record(tx *gorm.DB, e *models.AuditEntry) error
}

// EventFeed receives committed audit entries for live dashboards.
// Delivery is best-effort; the durable record is the store.
type EventFeed interface {
	BroadcastAudit(e *models.AuditEntry)
}

// Auditor writes the append-only audit trail for every state transition and
// money movement. Record errors propagate so a failed audit write rolls back
// the state change it describes.
type Auditor struct {
	store AuditStore
	feed  EventFeed // may be nil
}

func NewAuditor(store AuditStore, feed EventFeed) *Auditor {
	return &Auditor{store: store, feed: feed}
}

func (a *Auditor) Record(tx *gorm.DB, entryType string, actorID *uint, subject, oldValue, newValue string, metadata map[string]interface{}) error {
	e := &models.AuditEntry{
		Type:     entryType,
		ActorID:  actorID,
		Subject:  subject,
		OldValue: oldValue,
		NewValue: newValue,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		e.Metadata = string(raw)
	}
	if err := a.store.Record(tx, e); err != nil {
		return fmt.Errorf("audit record: %w", err)
	}
	if a.feed != nil {
		a.feed.BroadcastAudit(e)
	}
	return nil
}

func assignmentSubject(id uint) string { return fmt.Sprintf("assignment:%d", id) }
func payoutSubject(id uint) string     { return fmt.Sprintf("payout:%d", id) }
func invoiceSubject(id uint) string    { return fmt.Sprintf("invoice:%d", id) }
func userSubject(id uint) string       { return fmt.Sprintf("user:%d", id) }
