package service

import (
	"fmt"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/models"
	"crewpay/pkg/fees"

	"gorm.io/gorm"
)

// InvoiceService settles invoices paid through the external processor; the
// credit path lives in CreditService.
type InvoiceService struct {
	txr      TxRunner
	invoices InvoiceStore
	audit    *Auditor
}

func NewInvoiceService(txr TxRunner, invoices InvoiceStore, audit *Auditor) *InvoiceService {
	return &InvoiceService{txr: txr, invoices: invoices, audit: audit}
}

// RecordPayment marks an open invoice paid via a processor payment method and
// records the fee breakdown the charge carried.
func (s *InvoiceService) RecordPayment(invoiceID, actorID uint, method string) (*models.Invoice, error) {
	if method != domain.PaymentMethodCard && method != domain.PaymentMethodBank {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, method)
	}
	var out *models.Invoice
	err := s.txr.InTx(func(tx *gorm.DB) error {
		invoice, err := s.invoices.GetForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.InvoiceStatusOpen {
			return fmt.Errorf("%w: invoice %d is %s, payment requires OPEN", domain.ErrInvalidState, invoiceID, invoice.Status)
		}
		breakdown := fees.PaymentFees(invoice.Amount, method)
		now := time.Now()
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &now
		invoice.PaidVia = method
		if err := s.invoices.Save(tx, invoice); err != nil {
			return err
		}
		if err := s.audit.Record(tx, domain.AuditInvoicePaid, &actorID, invoiceSubject(invoiceID), domain.InvoiceStatusOpen, domain.InvoiceStatusPaid, map[string]interface{}{
			"amount":   invoice.Amount.String(),
			"paid_via": method,
			"fee":      breakdown.FeeAmount.String(),
			"net":      breakdown.NetAmount.String(),
		}); err != nil {
			return err
		}
		out = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
