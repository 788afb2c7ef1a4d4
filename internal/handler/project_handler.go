package handler

import (
	"net/http"
	"strconv"

	"crewpay/internal/domain"
	"crewpay/internal/middleware"
	"crewpay/internal/models"
	"crewpay/internal/repository"
	"crewpay/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	projectSvc  *service.ProjectService
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, projectSvc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo, projectSvc: projectSvc}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req struct {
		ClientID    uint   `json:"client_id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Project{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatusActive,
	}
	if err := h.projectRepo.Create(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectRepo.List(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	p, err := h.projectRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Complete marks a project COMPLETED; assignments that already carry an
// amount move to PENDING review in the same commit.
func (h *ProjectHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	p, err := h.projectSvc.Complete(uint(id), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
