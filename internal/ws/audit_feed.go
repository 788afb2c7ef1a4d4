package ws

import (
	"crewpay/internal/models"
)

// AuditFeed streams audit entries (state transitions, money movement) to
// connected admin dashboards. Purely a mirror of the durable audit log;
// nothing consumes it inside the core.
type AuditFeed struct {
	*Hub
}

func NewAuditFeed() *AuditFeed {
	return &AuditFeed{Hub: NewHub()}
}

type auditEvent struct {
	Kind  string             `json:"kind"`
	Entry *models.AuditEntry `json:"entry"`
}

// BroadcastAudit fans a committed audit entry out to every dashboard.
func (f *AuditFeed) BroadcastAudit(e *models.AuditEntry) {
	f.BroadcastAll(auditEvent{Kind: "audit", Entry: e})
}
