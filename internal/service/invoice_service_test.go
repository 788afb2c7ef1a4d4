package service

import (
	"errors"
	"testing"

	"crewpay/internal/domain"
	"crewpay/internal/models"
)

func TestRecordPayment(t *testing.T) {
	invoices := newMemInvoices()
	audit := &memAudit{}
	svc := NewInvoiceService(memTxRunner{}, invoices, NewAuditor(audit, nil))
	invoices.put(models.Invoice{ID: 10, ClientID: 5, Number: "INV-1001", Amount: dec("300.00"), Status: domain.InvoiceStatusOpen})

	inv, err := svc.RecordPayment(10, 1, domain.PaymentMethodCard)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if inv.Status != domain.InvoiceStatusPaid || inv.PaidVia != domain.PaymentMethodCard || inv.PaidAt == nil {
		t.Errorf("invoice not settled: %+v", inv)
	}
	if audit.countType(domain.AuditInvoicePaid) != 1 {
		t.Errorf("expected one invoice-paid audit entry")
	}

	if _, err := svc.RecordPayment(10, 1, domain.PaymentMethodCard); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("paying a PAID invoice should fail with ErrInvalidState, got %v", err)
	}
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	invoices := newMemInvoices()
	svc := NewInvoiceService(memTxRunner{}, invoices, NewAuditor(&memAudit{}, nil))
	invoices.put(models.Invoice{ID: 10, Amount: dec("300.00"), Status: domain.InvoiceStatusOpen})

	if _, err := svc.RecordPayment(10, 1, "CASH"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	inv, _ := invoices.GetForUpdate(nil, 10)
	if inv.Status != domain.InvoiceStatusOpen {
		t.Errorf("invoice touched despite bad method: %s", inv.Status)
	}
}
