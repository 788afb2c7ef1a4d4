package handler

import (
	"net/http"

	"crewpay/internal/repository"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userRepo.List(c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetProcessorAccount links a contractor to their connected account at the
// external processor once onboarding there completes.
func (h *UserHandler) SetProcessorAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		ProcessorAccountID string `json:"processor_account_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	u.ProcessorAccountID = req.ProcessorAccountID
	if err := h.userRepo.Update(u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
