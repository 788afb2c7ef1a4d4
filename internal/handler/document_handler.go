package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"crewpay/internal/middleware"
	"crewpay/internal/models"
	"crewpay/internal/repository"
	"crewpay/pkg/storage"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	store        storage.Client
	documentRepo *repository.DocumentRepository
}

func NewDocumentHandler(store storage.Client, documentRepo *repository.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{store: store, documentRepo: documentRepo}
}

// Upload attaches a document (receipt, signed statement) to an invoice or
// payout. Returns the stored URL.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := middleware.GetUserID(c)
	subject := c.PostForm("subject")
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	publicID := "doc_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, err := h.store.UploadDocument(c.Request.Context(), f, "crewpay/documents", publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	doc := &models.Document{
		UploaderID: userID,
		Subject:    subject,
		Name:       file.Filename,
		URL:        url,
	}
	if err := h.documentRepo.Create(doc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}
