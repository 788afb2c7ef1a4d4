package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crewpay/internal/domain"
	"crewpay/internal/models"
	"crewpay/pkg/processor"
)

type settlementFixture struct {
	svc         *SettlementService
	stub        *processor.StubProcessor
	users       *memUsers
	projects    *memProjects
	assignments *memAssignments
	payouts     *memPayouts
	audit       *memAudit
}

func newSettlementFixture() *settlementFixture {
	projects := newMemProjects()
	assignments := newMemAssignments(projects)
	users := newMemUsers()
	payouts := newMemPayouts()
	audit := &memAudit{}
	stub := processor.NewStubProcessor()
	svc := NewSettlementService(memTxRunner{}, users, assignments, payouts, stub, NewAuditor(audit, nil))
	return &settlementFixture{
		svc:         svc,
		stub:        stub,
		users:       users,
		projects:    projects,
		assignments: assignments,
		payouts:     payouts,
		audit:       audit,
	}
}

func (f *settlementFixture) seedContractor(id uint, account string) {
	f.users.put(models.User{ID: id, Role: domain.RoleContractor, ProcessorAccountID: account})
}

// seedPayable creates an approved PENDING assignment on a COMPLETED project.
func (f *settlementFixture) seedPayable(contractorID uint, amount string) uint {
	projectID := f.projects.put(models.Project{Name: "done", Status: domain.ProjectStatusCompleted})
	amt := dec(amount)
	return f.assignments.put(models.PaymentAssignment{
		ProjectID:     projectID,
		ContractorID:  contractorID,
		PaymentAmount: &amt,
		PaymentStatus: domain.PaymentStatusPending,
		ApprovalState: domain.ApprovalApproved,
	})
}

func TestIdempotencyKeyIsStable(t *testing.T) {
	a := IdempotencyKey("batch-1", 42)
	b := IdempotencyKey("batch-1", 42)
	if a != b {
		t.Fatalf("same inputs produced different keys: %s vs %s", a, b)
	}
	if IdempotencyKey("batch-2", 42) == a {
		t.Errorf("different batch should produce a different key")
	}
	if IdempotencyKey("batch-1", 43) == a {
		t.Errorf("different contractor should produce a different key")
	}
	if !strings.HasPrefix(a, "po_") {
		t.Errorf("key %s missing po_ prefix", a)
	}
}

func TestProcessBatchHappyPath(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	assignmentID := f.seedPayable(2, "100.00")

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	if res.BatchID == "" {
		t.Fatalf("empty batch id")
	}
	if len(res.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(res.Results))
	}
	r := res.Results[0]
	if r.Error != "" || r.Skipped {
		t.Fatalf("unexpected outcome: %+v", r)
	}
	// 0.25% + 0.25 on 100.00
	if !r.NetAmount.Equal(dec("99.50")) {
		t.Errorf("net = %s, want 99.50", r.NetAmount)
	}
	payout, err := f.payouts.GetByID(r.PayoutID)
	if err != nil {
		t.Fatalf("payout not recorded: %v", err)
	}
	if payout.Status != domain.PayoutStatusProcessing {
		t.Errorf("payout status = %s, want PROCESSING", payout.Status)
	}
	if !payout.GrossAmount.Equal(dec("100.00")) || !payout.ProcessorFeeAmount.Equal(dec("0.50")) {
		t.Errorf("amounts wrong: gross=%s fee=%s", payout.GrossAmount, payout.ProcessorFeeAmount)
	}
	a, _ := f.assignments.GetByID(assignmentID)
	if a.PaymentStatus != domain.PaymentStatusProcessing {
		t.Errorf("assignment = %s, want PROCESSING", a.PaymentStatus)
	}
	if a.PayoutID == nil || *a.PayoutID != payout.ID {
		t.Errorf("assignment not linked to payout")
	}
}

func TestProcessBatchRetryDoesNotDoubleTransfer(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	f.seedPayable(2, "100.00")

	entries := []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}}
	first := f.svc.ProcessBatch(context.Background(), 1, "batch-retry", entries)
	second := f.svc.ProcessBatch(context.Background(), 1, "batch-retry", entries)

	if f.stub.TransferCount() != 1 {
		t.Fatalf("transfer count = %d, want 1", f.stub.TransferCount())
	}
	if f.payouts.count() != 1 {
		t.Fatalf("payout count = %d, want 1", f.payouts.count())
	}
	r := second.Results[0]
	if !r.Skipped {
		t.Errorf("retry should report skipped: %+v", r)
	}
	if r.PayoutID != first.Results[0].PayoutID {
		t.Errorf("retry reported a different payout: %d vs %d", r.PayoutID, first.Results[0].PayoutID)
	}
}

func TestProcessBatchRequiresProcessorAccount(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "")

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	r := res.Results[0]
	if !strings.Contains(r.Error, domain.ErrOnboardingIncomplete.Error()) {
		t.Fatalf("expected onboarding error, got %q", r.Error)
	}
	if f.stub.TransferCount() != 0 || f.payouts.count() != 0 {
		t.Errorf("nothing should have been dispatched")
	}
}

func TestProcessBatchChecksOnboardingCapabilities(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	f.stub.SetOnboarding("acct_2", processor.OnboardingStatus{ChargesEnabled: true, PayoutsEnabled: false})

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	r := res.Results[0]
	if !strings.Contains(r.Error, domain.ErrOnboardingIncomplete.Error()) {
		t.Fatalf("expected onboarding error, got %q", r.Error)
	}
	if f.stub.TransferCount() != 0 {
		t.Errorf("no transfer should go to an account without payouts enabled")
	}
}

func TestProcessBatchIsolatesEntryFailures(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	f.seedContractor(3, "acct_3")
	f.seedPayable(2, "100.00")
	f.seedPayable(3, "80.00")
	f.stub.FailAccount = "acct_3"

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{
		{ContractorID: 2, Amount: dec("100.00")},
		{ContractorID: 3, Amount: dec("80.00")},
	})
	if res.Results[0].Error != "" {
		t.Fatalf("first entry should succeed: %+v", res.Results[0])
	}
	if res.Results[1].Error == "" {
		t.Fatalf("second entry should carry the processor error")
	}
	if f.payouts.count() != 1 {
		t.Errorf("payout count = %d, want 1", f.payouts.count())
	}
}

func TestProcessBatchSkipsAfterCancellation(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.svc.ProcessBatch(ctx, 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	if !res.Results[0].Skipped {
		t.Fatalf("canceled batch should skip: %+v", res.Results[0])
	}
	if f.stub.TransferCount() != 0 || f.payouts.count() != 0 {
		t.Errorf("canceled batch must not dispatch anything")
	}
}

func TestConfirmPayoutAppliesOutcomeOnce(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	assignmentID := f.seedPayable(2, "100.00")

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	r := res.Results[0]
	f.stub.SetTransferStatus(r.TransferID, processor.TransferStatusPaid)

	if err := f.svc.ConfirmPayout(context.Background(), r.PayoutID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	payout, _ := f.payouts.GetByID(r.PayoutID)
	if payout.Status != domain.PayoutStatusCompleted || payout.ProcessedAt == nil {
		t.Errorf("payout not completed: %+v", payout)
	}
	a, _ := f.assignments.GetByID(assignmentID)
	if a.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("assignment = %s, want PAID", a.PaymentStatus)
	}

	// Second confirmation is a no-op; no extra audit entry.
	before := f.audit.countType(domain.AuditPayoutConfirmed)
	if err := f.svc.ConfirmPayout(context.Background(), r.PayoutID); err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if f.audit.countType(domain.AuditPayoutConfirmed) != before {
		t.Errorf("repeat confirmation wrote another audit entry")
	}
}

func TestHandleTransferUpdateFailure(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	assignmentID := f.seedPayable(2, "100.00")

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	r := res.Results[0]

	if err := f.svc.HandleTransferUpdate(r.TransferID, processor.TransferStatusFailed, "account closed"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	payout, _ := f.payouts.GetByID(r.PayoutID)
	if payout.Status != domain.PayoutStatusFailed {
		t.Errorf("payout = %s, want FAILED", payout.Status)
	}
	if payout.FailureReason != "account closed" {
		t.Errorf("failure reason = %q", payout.FailureReason)
	}
	a, _ := f.assignments.GetByID(assignmentID)
	if a.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("assignment = %s, want FAILED", a.PaymentStatus)
	}
}

func TestHandleTransferUpdateUnknownTransfer(t *testing.T) {
	f := newSettlementFixture()
	if err := f.svc.HandleTransferUpdate("tr_nope", processor.TransferStatusPaid, ""); err != nil {
		t.Fatalf("unknown transfer should be ignored, got %v", err)
	}
}

func TestRedispatchPayout(t *testing.T) {
	f := newSettlementFixture()
	f.seedContractor(2, "acct_2")
	assignmentID := f.seedPayable(2, "100.00")

	res := f.svc.ProcessBatch(context.Background(), 1, "", []BatchEntry{{ContractorID: 2, Amount: dec("100.00")}})
	first := res.Results[0]

	// Redispatch before the payout fails is refused.
	if _, err := f.svc.RedispatchPayout(context.Background(), 1, first.PayoutID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("redispatching PROCESSING should fail with ErrInvalidState, got %v", err)
	}

	if err := f.svc.HandleTransferUpdate(first.TransferID, processor.TransferStatusFailed, "account closed"); err != nil {
		t.Fatalf("fail webhook: %v", err)
	}

	retry, err := f.svc.RedispatchPayout(context.Background(), 1, first.PayoutID)
	if err != nil {
		t.Fatalf("redispatch: %v", err)
	}
	rr := retry.Results[0]
	if rr.Error != "" || rr.Skipped {
		t.Fatalf("redispatch outcome: %+v", rr)
	}
	if retry.BatchID == res.BatchID {
		t.Errorf("redispatch must use a fresh batch id")
	}
	if f.stub.TransferCount() != 2 {
		t.Errorf("transfer count = %d, want 2 (fresh idempotency key)", f.stub.TransferCount())
	}
	old, _ := f.payouts.GetByID(first.PayoutID)
	if old.Status != domain.PayoutStatusFailed {
		t.Errorf("original payout should stay FAILED, got %s", old.Status)
	}
	a, _ := f.assignments.GetByID(assignmentID)
	if a.PaymentStatus != domain.PaymentStatusProcessing {
		t.Errorf("assignment = %s, want PROCESSING under the new payout", a.PaymentStatus)
	}
	if a.PayoutID == nil || *a.PayoutID != rr.PayoutID {
		t.Errorf("assignment not relinked to the new payout")
	}
}
