package handler

import (
	"net/http"
	"strconv"

	"crewpay/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditRepo *repository.AuditRepository
}

func NewAuditHandler(auditRepo *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// List returns recent audit entries, or the full history of one subject when
// ?subject=assignment:12 is given.
func (h *AuditHandler) List(c *gin.Context) {
	if subject := c.Query("subject"); subject != "" {
		list, err := h.auditRepo.ListBySubject(subject)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": list})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.auditRepo.ListRecent(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": list})
}
