package service

import (
	"fmt"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditService maintains the per-user credit ledger. Every mutation writes
// the balance and a transaction carrying a balanceAfter snapshot in one
// commit, so replaying the log from zero reproduces every stored balance.
type CreditService struct {
	txr      TxRunner
	credits  CreditStore
	invoices InvoiceStore
	audit    *Auditor
}

func NewCreditService(txr TxRunner, credits CreditStore, invoices InvoiceStore, audit *Auditor) *CreditService {
	return &CreditService{txr: txr, credits: credits, invoices: invoices, audit: audit}
}

// GetOrCreateBalance lazily materializes a zero balance on first access.
func (s *CreditService) GetOrCreateBalance(userID uint) (*models.CreditBalance, error) {
	return s.credits.GetOrCreateBalance(userID)
}

// ApplyPurchase credits the user's balance and appends a PURCHASE
// transaction.
func (s *CreditService) ApplyPurchase(userID uint, amount decimal.Decimal, description string) (*models.CreditTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, amount)
	}
	var out *models.CreditTransaction
	err := s.txr.InTx(func(tx *gorm.DB) error {
		balance, err := s.credits.GetBalanceForUpdate(tx, userID)
		if err != nil {
			return err
		}
		balance.CurrentBalance = balance.CurrentBalance.Add(amount)
		if err := s.credits.SaveBalance(tx, balance); err != nil {
			return err
		}
		ct := &models.CreditTransaction{
			UserID:       userID,
			Type:         domain.CreditTxPurchase,
			Amount:       amount,
			BalanceAfter: balance.CurrentBalance,
			Description:  description,
		}
		if err := s.credits.CreateTransaction(tx, ct); err != nil {
			return err
		}
		if err := s.audit.Record(tx, domain.AuditCreditPurchase, &userID, userSubject(userID), "", amount.String(), map[string]interface{}{
			"balance_after": balance.CurrentBalance.String(),
		}); err != nil {
			return err
		}
		out = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInvoiceCredit settles an open invoice from the user's credit balance.
// The balance decrement, the DEDUCTION transaction, and the invoice status
// change commit together or not at all.
func (s *CreditService) ApplyInvoiceCredit(invoiceID, userID uint) (*models.CreditTransaction, error) {
	var out *models.CreditTransaction
	err := s.txr.InTx(func(tx *gorm.DB) error {
		invoice, err := s.invoices.GetForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == domain.InvoiceStatusPaid {
			return fmt.Errorf("%w: invoice %d is already PAID", domain.ErrInvalidState, invoiceID)
		}
		if invoice.Status == domain.InvoiceStatusVoid {
			return fmt.Errorf("%w: invoice %d is VOID", domain.ErrInvalidState, invoiceID)
		}
		balance, err := s.credits.GetBalanceForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if balance.CurrentBalance.LessThan(invoice.Amount) {
			return fmt.Errorf("%w: balance %s, invoice %s", domain.ErrInsufficientBalance, balance.CurrentBalance, invoice.Amount)
		}
		balance.CurrentBalance = balance.CurrentBalance.Sub(invoice.Amount)
		if err := s.credits.SaveBalance(tx, balance); err != nil {
			return err
		}
		ct := &models.CreditTransaction{
			UserID:       userID,
			Type:         domain.CreditTxDeduction,
			Amount:       invoice.Amount.Neg(),
			BalanceAfter: balance.CurrentBalance,
			Description:  fmt.Sprintf("invoice %s paid with credit", invoice.Number),
			InvoiceID:    &invoice.ID,
		}
		if err := s.credits.CreateTransaction(tx, ct); err != nil {
			return err
		}
		now := time.Now()
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &now
		invoice.PaidVia = "CREDIT"
		if err := s.invoices.Save(tx, invoice); err != nil {
			return err
		}
		if err := s.audit.Record(tx, domain.AuditInvoicePaid, &userID, invoiceSubject(invoiceID), domain.InvoiceStatusOpen, domain.InvoiceStatusPaid, map[string]interface{}{
			"amount":        invoice.Amount.String(),
			"paid_via":      "CREDIT",
			"balance_after": balance.CurrentBalance.String(),
		}); err != nil {
			return err
		}
		out = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
