package handler

import (
	"fmt"
	"net/http"
	"time"

	"crewpay/internal/domain"
	"crewpay/internal/middleware"
	"crewpay/internal/models"
	"crewpay/internal/repository"
	"crewpay/internal/service"
	"crewpay/pkg/fees"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	invoiceRepo *repository.InvoiceRepository
	invoiceSvc  *service.InvoiceService
}

func NewInvoiceHandler(invoiceRepo *repository.InvoiceRepository, invoiceSvc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceRepo: invoiceRepo, invoiceSvc: invoiceSvc}
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var req struct {
		ClientID    uint            `json:"client_id" binding:"required"`
		ProjectID   *uint           `json:"project_id"`
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		respondError(c, domain.ErrInvalidAmount)
		return
	}
	inv := &models.Invoice{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Number:      fmt.Sprintf("INV-%d-%d", time.Now().Year(), time.Now().UnixNano()%1000000),
		Amount:      req.Amount,
		Status:      domain.InvoiceStatusOpen,
		Description: req.Description,
	}
	if err := h.invoiceRepo.Create(inv); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	list, err := h.invoiceRepo.ListByClient(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list})
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := h.invoiceRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// RecordPayment marks an invoice settled through the processor with the
// given payment method. Credit settlement goes through the credit endpoint
// instead.
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Method string `json:"method" binding:"required,oneof=CARD BANK"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.invoiceSvc.RecordPayment(id, middleware.GetUserID(c), req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// QuoteCharge returns what a client must be charged for a contractor to net
// the given earnings after payment and payout fees, with the breakdown.
func (h *InvoiceHandler) QuoteCharge(c *gin.Context) {
	var req struct {
		Earnings decimal.Decimal `json:"earnings" binding:"required"`
		Method   string          `json:"method" binding:"omitempty,oneof=CARD BANK"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Earnings.IsPositive() {
		respondError(c, domain.ErrInvalidAmount)
		return
	}
	if req.Method == "" {
		req.Method = domain.PaymentMethodCard
	}
	charge := fees.ClientChargeForContractorNet(req.Earnings, req.Method)
	payment := fees.PaymentFees(charge, req.Method)
	payout := fees.PayoutFees(payment.NetAmount)
	c.JSON(http.StatusOK, gin.H{
		"charge":         charge,
		"payment_fee":    payment.FeeAmount,
		"payout_fee":     payout.FeeAmount,
		"contractor_net": payout.NetAmount,
	})
}
