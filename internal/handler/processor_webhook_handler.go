package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"crewpay/config"
	"crewpay/internal/service"

	"github.com/gin-gonic/gin"
)

// transferEvent is the webhook payload from the processor for transfer
// status changes.
type transferEvent struct {
	Type     string `json:"type"` // transfer.paid, transfer.failed
	Transfer struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		FailureReason string `json:"failure_reason"`
	} `json:"transfer"`
}

type ProcessorWebhookHandler struct {
	cfg           *config.ProcessorConfig
	settlementSvc *service.SettlementService
}

func NewProcessorWebhookHandler(cfg *config.ProcessorConfig, settlementSvc *service.SettlementService) *ProcessorWebhookHandler {
	return &ProcessorWebhookHandler{cfg: cfg, settlementSvc: settlementSvc}
}

// Handle folds a processor transfer notification back into the payout and
// its assignments. Repeat deliveries and unknown transfers are acknowledged
// without effect.
func (h *ProcessorWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.WebhookSecret != "" && !h.verifySignature(body, c.GetHeader("X-Signature")) {
		log.Printf("[Processor webhook] bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad signature"})
		return
	}
	var event transferEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[Processor webhook] json unmarshal error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if event.Transfer.ID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	if err := h.settlementSvc.HandleTransferUpdate(event.Transfer.ID, event.Transfer.Status, event.Transfer.FailureReason); err != nil {
		// Surface a retryable failure so the processor redelivers.
		log.Printf("[Processor webhook] transfer %s: %v", event.Transfer.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *ProcessorWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
