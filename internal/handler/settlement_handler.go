package handler

import (
	"net/http"

	"crewpay/internal/middleware"
	"crewpay/internal/repository"
	"crewpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SettlementHandler struct {
	settlementSvc *service.SettlementService
	payoutRepo    *repository.PayoutRepository
}

func NewSettlementHandler(settlementSvc *service.SettlementService, payoutRepo *repository.PayoutRepository) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc, payoutRepo: payoutRepo}
}

// ProcessBatch dispatches one settlement batch. The response is a per-
// contractor breakdown; partial failure is reported, never hidden behind an
// all-or-nothing verdict.
func (h *SettlementHandler) ProcessBatch(c *gin.Context) {
	var req struct {
		BatchID  string `json:"batch_id"` // optional: set to retry a previous batch
		Payments []struct {
			ContractorID uint            `json:"contractor_id" binding:"required"`
			Amount       decimal.Decimal `json:"amount" binding:"required"`
		} `json:"payments" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries := make([]service.BatchEntry, 0, len(req.Payments))
	for _, p := range req.Payments {
		entries = append(entries, service.BatchEntry{ContractorID: p.ContractorID, Amount: p.Amount})
	}
	result := h.settlementSvc.ProcessBatch(c.Request.Context(), middleware.GetUserID(c), req.BatchID, entries)
	c.JSON(http.StatusOK, result)
}

func (h *SettlementHandler) ListPayouts(c *gin.Context) {
	payouts, err := h.payoutRepo.List(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

func (h *SettlementHandler) GetPayout(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.payoutRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ConfirmPayout polls the processor for the payout's transfer status and
// folds the result back. Safe to call repeatedly.
func (h *SettlementHandler) ConfirmPayout(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.settlementSvc.ConfirmPayout(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	p, err := h.payoutRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Redispatch retries a FAILED payout under a new batch id.
func (h *SettlementHandler) Redispatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.settlementSvc.RedispatchPayout(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
