package processor

import "context"

// TransferRequest asks the processor to move amountCents to a connected
// account. IdempotencyKey must be deterministic for the logical transfer;
// the processor treats a repeat call with the same key as a confirmation of
// the first, never a second transfer.
type TransferRequest struct {
	DestinationAccountID string
	AmountCents          int64
	Currency             string
	IdempotencyKey       string
	Description          string
}

type TransferResponse struct {
	TransferID string
	Status     string // pending, paid, failed
}

// OnboardingStatus mirrors the processor's connected-account capability flags.
type OnboardingStatus struct {
	ChargesEnabled bool `json:"charges_enabled"`
	PayoutsEnabled bool `json:"payouts_enabled"`
}

const (
	TransferStatusPending = "pending"
	TransferStatusPaid    = "paid"
	TransferStatusFailed  = "failed"
)

// Processor is the external transfer/account service. All calls are safe to
// retry; CreateTransfer relies on the idempotency key for that.
type Processor interface {
	CreateTransfer(ctx context.Context, req TransferRequest) (*TransferResponse, error)
	GetTransferStatus(ctx context.Context, transferID string) (string, error)
	CheckOnboardingStatus(ctx context.Context, accountID string) (*OnboardingStatus, error)
}
