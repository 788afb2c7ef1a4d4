package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/models"
	"crewpay/pkg/fees"
	"crewpay/pkg/processor"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementService dispatches batches of contractor payouts through the
// external processor and reconciles the results. The store is the source of
// truth for money and status; the processor is an eventually-consistent
// mirror whose confirmations are folded back by ConfirmPayout.
type SettlementService struct {
	txr         TxRunner
	users       UserStore
	assignments AssignmentStore
	payouts     PayoutStore
	proc        processor.Processor
	audit       *Auditor
}

func NewSettlementService(txr TxRunner, users UserStore, assignments AssignmentStore, payouts PayoutStore, proc processor.Processor, audit *Auditor) *SettlementService {
	return &SettlementService{
		txr:         txr,
		users:       users,
		assignments: assignments,
		payouts:     payouts,
		proc:        proc,
		audit:       audit,
	}
}

// BatchEntry is one contractor's payout request within a batch.
type BatchEntry struct {
	ContractorID uint            `json:"contractor_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// BatchEntryResult reports one contractor's outcome; Error is empty on
// success.
type BatchEntryResult struct {
	ContractorID uint            `json:"contractor_id"`
	PayoutID     uint            `json:"payout_id,omitempty"`
	TransferID   string          `json:"transfer_id,omitempty"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Skipped      bool            `json:"skipped,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type BatchResult struct {
	BatchID string             `json:"batch_id"`
	Results []BatchEntryResult `json:"results"`
}

// IdempotencyKey derives the stable per-transfer key from batch identity and
// recipient identity. Retrying the same batch for the same contractor always
// produces the same key, so the processor never double-transfers.
func IdempotencyKey(batchID string, contractorID uint) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", batchID, contractorID)))
	return "po_" + hex.EncodeToString(sum[:])[:32]
}

// ProcessBatch runs one settlement batch. batchID may be empty (a fresh UUID
// is generated) or the id of a previous attempt being retried; contractors
// already dispatched under that batch id are reported as skipped.
//
// Per-entry failures are isolated: one contractor's processor error never
// blocks the others. Context cancellation skips contractors whose transfer
// has not been issued yet; once a transfer call has gone out, its
// bookkeeping always completes.
func (s *SettlementService) ProcessBatch(ctx context.Context, adminID uint, batchID string, entries []BatchEntry) *BatchResult {
	if batchID == "" {
		batchID = uuid.New().String()
	}
	result := &BatchResult{BatchID: batchID, Results: make([]BatchEntryResult, 0, len(entries))}
	for _, entry := range entries {
		res := s.processEntry(ctx, adminID, batchID, entry)
		if res.Error != "" {
			log.Printf("[Settlement] batch=%s contractor=%d failed: %s", batchID, entry.ContractorID, res.Error)
		} else if res.Skipped {
			log.Printf("[Settlement] batch=%s contractor=%d skipped", batchID, entry.ContractorID)
		} else {
			log.Printf("[Settlement] batch=%s contractor=%d payout=%d transfer=%s net=%s", batchID, entry.ContractorID, res.PayoutID, res.TransferID, res.NetAmount)
		}
		result.Results = append(result.Results, res)
	}
	return result
}

func (s *SettlementService) processEntry(ctx context.Context, adminID uint, batchID string, entry BatchEntry) BatchEntryResult {
	res := BatchEntryResult{ContractorID: entry.ContractorID}

	if ctx.Err() != nil {
		res.Skipped = true
		res.Error = "batch canceled before dispatch"
		return res
	}
	if !entry.Amount.IsPositive() {
		res.Error = domain.ErrInvalidAmount.Error()
		return res
	}
	contractor, err := s.users.GetByID(entry.ContractorID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if !contractor.IsContractor() {
		res.Error = fmt.Sprintf("%v: user %d is not a contractor", domain.ErrValidation, entry.ContractorID)
		return res
	}
	if contractor.ProcessorAccountID == "" {
		res.Error = domain.ErrOnboardingIncomplete.Error()
		return res
	}

	key := IdempotencyKey(batchID, entry.ContractorID)
	if existing, err := s.payouts.GetByIdempotencyKey(key); err == nil {
		// This batch already dispatched this contractor; report the
		// prior payout instead of transferring again.
		res.PayoutID = existing.ID
		res.TransferID = existing.ExternalTransferID
		res.NetAmount = existing.NetAmount
		res.Skipped = true
		return res
	} else if !errors.Is(err, domain.ErrNotFound) {
		res.Error = err.Error()
		return res
	}

	onboarding, err := s.proc.CheckOnboardingStatus(ctx, contractor.ProcessorAccountID)
	if err != nil {
		res.Error = (&domain.ProcessorError{Op: "onboarding check", Err: err}).Error()
		return res
	}
	if !onboarding.PayoutsEnabled {
		res.Error = domain.ErrOnboardingIncomplete.Error()
		return res
	}

	breakdown := fees.PayoutFees(entry.Amount)
	res.NetAmount = breakdown.NetAmount

	// Last cancellation point: after this call the transfer is out with a
	// durable idempotency key and must be recorded.
	if ctx.Err() != nil {
		res.Skipped = true
		res.Error = "batch canceled before dispatch"
		return res
	}
	transfer, err := s.proc.CreateTransfer(ctx, processor.TransferRequest{
		DestinationAccountID: contractor.ProcessorAccountID,
		AmountCents:          minorUnits(breakdown.NetAmount),
		IdempotencyKey:       key,
		Description:          fmt.Sprintf("crewpay batch %s", batchID),
	})
	if err != nil {
		res.Error = (&domain.ProcessorError{Op: "create transfer", Err: err}).Error()
		return res
	}
	res.TransferID = transfer.TransferID

	err = s.txr.InTx(func(tx *gorm.DB) error {
		payout := &models.Payout{
			ContractorID:       entry.ContractorID,
			BatchID:            batchID,
			ExternalTransferID: transfer.TransferID,
			IdempotencyKey:     key,
			GrossAmount:        entry.Amount,
			ProcessorFeeAmount: breakdown.FeeAmount,
			NetAmount:          breakdown.NetAmount,
			Status:             domain.PayoutStatusProcessing,
			ProcessedBy:        adminID,
		}
		if err := s.payouts.Create(tx, payout); err != nil {
			return err
		}
		payable, err := s.assignments.ListPayable(tx, entry.ContractorID)
		if err != nil {
			return err
		}
		for i := range payable {
			a := &payable[i]
			a.PaymentStatus = domain.PaymentStatusProcessing
			a.PayoutID = &payout.ID
			if err := s.assignments.Save(tx, a); err != nil {
				return err
			}
		}
		if err := s.audit.Record(tx, domain.AuditPayoutDispatched, &adminID, payoutSubject(payout.ID), "", domain.PayoutStatusProcessing, map[string]interface{}{
			"batch_id":    batchID,
			"transfer_id": transfer.TransferID,
			"gross":       entry.Amount.String(),
			"fee":         breakdown.FeeAmount.String(),
			"net":         breakdown.NetAmount.String(),
			"assignments": len(payable),
		}); err != nil {
			return err
		}
		res.PayoutID = payout.ID
		return nil
	})
	if err != nil {
		// The transfer went out; the payout row did not stick. A retry
		// with the same batch id replays the transfer by key and
		// records it then.
		res.Error = fmt.Sprintf("transfer %s issued but not recorded: %v", transfer.TransferID, err)
	}
	return res
}

// ConfirmPayout closes the asynchronous half of PROCESSING by polling the
// processor for the transfer's current status. Safe to call repeatedly; a
// payout that already left PROCESSING is a no-op.
func (s *SettlementService) ConfirmPayout(ctx context.Context, payoutID uint) error {
	payout, err := s.payouts.GetByID(payoutID)
	if err != nil {
		return err
	}
	if payout.Status != domain.PayoutStatusProcessing {
		return nil
	}
	status, err := s.proc.GetTransferStatus(ctx, payout.ExternalTransferID)
	if err != nil {
		return &domain.ProcessorError{Op: "transfer status", Err: err}
	}
	switch status {
	case processor.TransferStatusPaid:
		return s.applyOutcome(payout.ID, true, "")
	case processor.TransferStatusFailed:
		return s.applyOutcome(payout.ID, false, "processor reported transfer failed")
	default:
		return nil
	}
}

// HandleTransferUpdate applies a processor webhook for a transfer. Unknown
// transfers and repeat notifications are ignored.
func (s *SettlementService) HandleTransferUpdate(transferID, status, reason string) error {
	payout, err := s.payouts.GetByTransferID(transferID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("[Settlement] webhook for unknown transfer %s", transferID)
			return nil
		}
		return err
	}
	switch status {
	case processor.TransferStatusPaid:
		return s.applyOutcome(payout.ID, true, "")
	case processor.TransferStatusFailed:
		if reason == "" {
			reason = "processor reported transfer failed"
		}
		return s.applyOutcome(payout.ID, false, reason)
	default:
		return nil
	}
}

// applyOutcome advances one payout and its assignments out of PROCESSING,
// atomically and at most once.
func (s *SettlementService) applyOutcome(payoutID uint, succeeded bool, reason string) error {
	return s.txr.InTx(func(tx *gorm.DB) error {
		payout, err := s.payouts.GetForUpdate(tx, payoutID)
		if err != nil {
			return err
		}
		if payout.Status != domain.PayoutStatusProcessing {
			return nil
		}
		now := time.Now()
		payout.ProcessedAt = &now
		assignmentStatus := domain.PaymentStatusPaid
		auditType := domain.AuditPayoutConfirmed
		if succeeded {
			payout.Status = domain.PayoutStatusCompleted
		} else {
			payout.Status = domain.PayoutStatusFailed
			payout.FailureReason = reason
			assignmentStatus = domain.PaymentStatusFailed
			auditType = domain.AuditPayoutFailed
		}
		if err := s.payouts.Save(tx, payout); err != nil {
			return err
		}
		list, err := s.assignments.ListByPayout(tx, payoutID)
		if err != nil {
			return err
		}
		for i := range list {
			a := &list[i]
			if a.PaymentStatus != domain.PaymentStatusProcessing {
				continue
			}
			a.PaymentStatus = assignmentStatus
			if err := s.assignments.Save(tx, a); err != nil {
				return err
			}
		}
		return s.audit.Record(tx, auditType, nil, payoutSubject(payoutID), domain.PayoutStatusProcessing, payout.Status, map[string]interface{}{
			"transfer_id": payout.ExternalTransferID,
			"reason":      reason,
		})
	})
}

// RedispatchPayout retries a FAILED payout under a fresh batch id and
// therefore a fresh idempotency key. Operator-driven; FAILED payouts are
// never retried automatically. The failed payout's assignments are returned
// to PENDING first so the new batch picks them up.
func (s *SettlementService) RedispatchPayout(ctx context.Context, adminID, payoutID uint) (*BatchResult, error) {
	payout, err := s.payouts.GetByID(payoutID)
	if err != nil {
		return nil, err
	}
	if payout.Status != domain.PayoutStatusFailed {
		return nil, fmt.Errorf("%w: payout %d is %s, only FAILED payouts can be re-dispatched", domain.ErrInvalidState, payoutID, payout.Status)
	}
	err = s.txr.InTx(func(tx *gorm.DB) error {
		list, err := s.assignments.ListByPayout(tx, payoutID)
		if err != nil {
			return err
		}
		for i := range list {
			a := &list[i]
			if a.PaymentStatus != domain.PaymentStatusFailed {
				continue
			}
			a.PaymentStatus = domain.PaymentStatusPending
			a.PayoutID = nil
			if err := s.assignments.Save(tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ProcessBatch(ctx, adminID, "", []BatchEntry{{ContractorID: payout.ContractorID, Amount: payout.GrossAmount}}), nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
