package handler

import (
	"net/http"

	"crewpay/internal/middleware"
	"crewpay/internal/repository"
	"crewpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CreditHandler struct {
	creditSvc  *service.CreditService
	creditRepo *repository.CreditRepository
}

func NewCreditHandler(creditSvc *service.CreditService, creditRepo *repository.CreditRepository) *CreditHandler {
	return &CreditHandler{creditSvc: creditSvc, creditRepo: creditRepo}
}

func (h *CreditHandler) GetBalance(c *gin.Context) {
	b, err := h.creditSvc.GetOrCreateBalance(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CreditHandler) ListTransactions(c *gin.Context) {
	list, err := h.creditRepo.ListTransactions(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

func (h *CreditHandler) Purchase(c *gin.Context) {
	var req struct {
		Amount      decimal.Decimal `json:"amount" binding:"required"`
		Description string          `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Description == "" {
		req.Description = "credit purchase"
	}
	ct, err := h.creditSvc.ApplyPurchase(middleware.GetUserID(c), req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ct)
}

// PayInvoice settles an open invoice from the caller's credit balance.
func (h *CreditHandler) PayInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ct, err := h.creditSvc.ApplyInvoiceCredit(id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}
