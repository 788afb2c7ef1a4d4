package service

import (
	"errors"
	"testing"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"github.com/shopspring/decimal"
)

type creditFixture struct {
	svc      *CreditService
	credits  *memCredits
	invoices *memInvoices
	audit    *memAudit
}

func newCreditFixture() *creditFixture {
	credits := newMemCredits()
	invoices := newMemInvoices()
	audit := &memAudit{}
	svc := NewCreditService(memTxRunner{}, credits, invoices, NewAuditor(audit, nil))
	return &creditFixture{svc: svc, credits: credits, invoices: invoices, audit: audit}
}

func (f *creditFixture) seedInvoice(id, clientID uint, amount, status string) {
	f.invoices.put(models.Invoice{
		ID:       id,
		ClientID: clientID,
		Number:   "INV-1001",
		Amount:   dec(amount),
		Status:   status,
	})
}

func TestGetOrCreateBalanceStartsAtZero(t *testing.T) {
	f := newCreditFixture()
	b, err := f.svc.GetOrCreateBalance(5)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !b.CurrentBalance.IsZero() {
		t.Errorf("fresh balance = %s, want 0", b.CurrentBalance)
	}
}

func TestApplyPurchase(t *testing.T) {
	f := newCreditFixture()
	ct, err := f.svc.ApplyPurchase(5, dec("250.00"), "credit pack")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if ct.Type != domain.CreditTxPurchase {
		t.Errorf("type = %s, want PURCHASE", ct.Type)
	}
	if !ct.Amount.Equal(dec("250.00")) || !ct.BalanceAfter.Equal(dec("250.00")) {
		t.Errorf("amount=%s balanceAfter=%s", ct.Amount, ct.BalanceAfter)
	}
	b, _ := f.svc.GetOrCreateBalance(5)
	if !b.CurrentBalance.Equal(dec("250.00")) {
		t.Errorf("balance = %s, want 250.00", b.CurrentBalance)
	}
}

func TestApplyPurchaseRejectsNonPositive(t *testing.T) {
	f := newCreditFixture()
	if _, err := f.svc.ApplyPurchase(5, dec("0"), ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(f.credits.txs) != 0 {
		t.Errorf("no transaction should be written")
	}
}

func TestApplyInvoiceCredit(t *testing.T) {
	f := newCreditFixture()
	if _, err := f.svc.ApplyPurchase(5, dec("250.00"), ""); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	f.seedInvoice(10, 5, "200.00", domain.InvoiceStatusOpen)

	ct, err := f.svc.ApplyInvoiceCredit(10, 5)
	if err != nil {
		t.Fatalf("apply credit: %v", err)
	}
	if ct.Type != domain.CreditTxDeduction {
		t.Errorf("type = %s, want DEDUCTION", ct.Type)
	}
	if !ct.Amount.Equal(dec("-200.00")) {
		t.Errorf("deduction amount = %s, want -200.00", ct.Amount)
	}
	if !ct.BalanceAfter.Equal(dec("50.00")) {
		t.Errorf("balanceAfter = %s, want 50.00", ct.BalanceAfter)
	}
	if ct.InvoiceID == nil || *ct.InvoiceID != 10 {
		t.Errorf("deduction not linked to invoice")
	}

	b, _ := f.svc.GetOrCreateBalance(5)
	if !b.CurrentBalance.Equal(dec("50.00")) {
		t.Errorf("balance = %s, want 50.00", b.CurrentBalance)
	}
	inv, _ := f.invoices.GetForUpdate(nil, 10)
	if inv.Status != domain.InvoiceStatusPaid || inv.PaidVia != "CREDIT" || inv.PaidAt == nil {
		t.Errorf("invoice not settled: %+v", inv)
	}
	if f.audit.countType(domain.AuditInvoicePaid) != 1 {
		t.Errorf("expected one invoice-paid audit entry")
	}
}

func TestApplyInvoiceCreditInsufficientBalance(t *testing.T) {
	f := newCreditFixture()
	if _, err := f.svc.ApplyPurchase(5, dec("100.00"), ""); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	f.seedInvoice(10, 5, "200.00", domain.InvoiceStatusOpen)

	_, err := f.svc.ApplyInvoiceCredit(10, 5)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	b, _ := f.svc.GetOrCreateBalance(5)
	if !b.CurrentBalance.Equal(dec("100.00")) {
		t.Errorf("balance changed: %s", b.CurrentBalance)
	}
	inv, _ := f.invoices.GetForUpdate(nil, 10)
	if inv.Status != domain.InvoiceStatusOpen {
		t.Errorf("invoice status changed: %s", inv.Status)
	}
	if len(f.credits.txs) != 1 { // only the seed purchase
		t.Errorf("deduction written despite failure")
	}
}

func TestApplyInvoiceCreditGuards(t *testing.T) {
	f := newCreditFixture()
	if _, err := f.svc.ApplyPurchase(5, dec("500.00"), ""); err != nil {
		t.Fatalf("seed purchase: %v", err)
	}
	f.seedInvoice(10, 5, "200.00", domain.InvoiceStatusPaid)
	if _, err := f.svc.ApplyInvoiceCredit(10, 5); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("paying a PAID invoice should fail with ErrInvalidState, got %v", err)
	}
	f.seedInvoice(11, 5, "200.00", domain.InvoiceStatusVoid)
	if _, err := f.svc.ApplyInvoiceCredit(11, 5); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("paying a VOID invoice should fail with ErrInvalidState, got %v", err)
	}
	if _, err := f.svc.ApplyInvoiceCredit(99, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown invoice should fail with ErrNotFound, got %v", err)
	}
}

// Replaying the signed amounts from zero must land on every stored
// balanceAfter snapshot.
func TestLedgerReplayMatchesSnapshots(t *testing.T) {
	f := newCreditFixture()
	if _, err := f.svc.ApplyPurchase(5, dec("100.00"), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ApplyPurchase(5, dec("50.00"), ""); err != nil {
		t.Fatal(err)
	}
	f.seedInvoice(10, 5, "120.00", domain.InvoiceStatusOpen)
	if _, err := f.svc.ApplyInvoiceCredit(10, 5); err != nil {
		t.Fatal(err)
	}

	running := decimal.Zero
	for i, ct := range f.credits.txs {
		running = running.Add(ct.Amount)
		if !running.Equal(ct.BalanceAfter) {
			t.Fatalf("entry %d: replayed %s, snapshot %s", i, running, ct.BalanceAfter)
		}
	}
	b, _ := f.svc.GetOrCreateBalance(5)
	if !running.Equal(b.CurrentBalance) {
		t.Errorf("replayed %s, stored balance %s", running, b.CurrentBalance)
	}
}
