package domain

const (
	RoleAdmin      = "ADMIN"
	RoleContractor = "CONTRACTOR"
	RoleClient     = "CLIENT"
)

// Assignment payment lifecycle. Only ever advances:
// UNPAID -> PENDING -> PROCESSING -> PAID | FAILED
const (
	PaymentStatusUnpaid     = "UNPAID"
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusPaid       = "PAID"
	PaymentStatusFailed     = "FAILED"
)

// Tri-state approval; UNREVIEWED is distinct from REJECTED.
const (
	ApprovalUnreviewed = "UNREVIEWED"
	ApprovalApproved   = "APPROVED"
	ApprovalRejected   = "REJECTED"
)

const (
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusFailed     = "FAILED"
)

const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusArchived  = "ARCHIVED"
)

const (
	InvoiceStatusOpen = "OPEN"
	InvoiceStatusPaid = "PAID"
	InvoiceStatusVoid = "VOID"
)

const (
	CreditTxPurchase  = "PURCHASE"
	CreditTxDeduction = "DEDUCTION"
)

const (
	PaymentMethodCard = "CARD"
	PaymentMethodBank = "BANK"
)

// Audit event types written by the settlement core.
const (
	AuditAmountSet        = "ASSIGNMENT_AMOUNT_SET"
	AuditApprovalReset    = "ASSIGNMENT_APPROVAL_RESET"
	AuditApproved         = "ASSIGNMENT_APPROVED"
	AuditRejected         = "ASSIGNMENT_REJECTED"
	AuditPendingPromotion = "ASSIGNMENT_PENDING"
	AuditUnassigned       = "ASSIGNMENT_REMOVED"
	AuditPayoutDispatched = "PAYOUT_DISPATCHED"
	AuditPayoutConfirmed  = "PAYOUT_CONFIRMED"
	AuditPayoutFailed     = "PAYOUT_FAILED"
	AuditCreditPurchase   = "CREDIT_PURCHASE"
	AuditCreditDeduction  = "CREDIT_DEDUCTION"
	AuditInvoicePaid      = "INVOICE_PAID"
)
