package handler

import (
	"net/http"
	"strconv"

	"crewpay/internal/middleware"
	"crewpay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AssignmentHandler struct {
	assignmentSvc *service.AssignmentService
}

func NewAssignmentHandler(assignmentSvc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req struct {
		ProjectID    uint `json:"project_id" binding:"required"`
		ContractorID uint `json:"contractor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.assignmentSvc.Create(req.ProjectID, req.ContractorID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.assignmentSvc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AssignmentHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	list, err := h.assignmentSvc.ListByProject(uint(projectID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": list})
}

// SetAmount sets or edits the payable amount. Editing after review resets
// the approval state; the response carries the refreshed assignment so the
// admin UI reflects the mandatory re-review.
func (h *AssignmentHandler) SetAmount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.assignmentSvc.SetPaymentAmount(id, req.Amount, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AssignmentHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.assignmentSvc.Approve(id, middleware.GetUserID(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AssignmentHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rejection reason is required"})
		return
	}
	a, err := h.assignmentSvc.Reject(id, middleware.GetUserID(c), req.Reason, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ApproveBatch applies approval to each id independently and returns the
// per-id breakdown; partial failure is expected, not an error.
func (h *AssignmentHandler) ApproveBatch(c *gin.Context) {
	var req struct {
		AssignmentIDs []uint `json:"assignment_ids" binding:"required,min=1"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results := h.assignmentSvc.ApproveBatch(req.AssignmentIDs, middleware.GetUserID(c), req.Notes)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *AssignmentHandler) Unassign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.assignmentSvc.Unassign(id, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
