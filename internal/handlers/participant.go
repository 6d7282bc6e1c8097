package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/huangang/bigbrother/internal/services"
	"gorm.io/gorm"
)

type ParticipantHandler struct {
	service   *services.ParticipantService
	avatarDir string
}

func NewParticipantHandler(db *gorm.DB, avatarDir string) *ParticipantHandler {
	return &ParticipantHandler{
		service:   services.NewParticipantService(db),
		avatarDir: avatarDir,
	}
}

// List returns one page of the filtered participant list
// GET /api/participants
func (h *ParticipantHandler) List(c *gin.Context) {
	var req services.ParticipantListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.List(&req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetByID returns a participant with contacts, full history and the current
// value per tracked field
// GET /api/participants/:id
func (h *ParticipantHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	participant, err := h.service.Get(id)
	if err != nil {
		serviceError(c, err)
		return
	}

	current, err := h.service.CurrentValues(id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"participant":    participant,
		"full_name":      participant.FullName(),
		"current_values": current,
	})
}

// Create adds a participant with contacts and initial history
// POST /api/participants
func (h *ParticipantHandler) Create(c *gin.Context) {
	var in services.ParticipantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.service.Create(&in)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, participant)
}

// Update applies an edit form submission
// PUT /api/participants/:id
func (h *ParticipantHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	var in services.ParticipantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.service.Update(id, &in)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, participant)
}

// Delete removes a participant and everything it owns
// DELETE /api/participants/:id
func (h *ParticipantHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	if err := h.service.Delete(id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "participant deleted"})
}

// UploadAvatar stores an avatar image and records its path
// POST /api/participants/:id/avatar
func (h *ParticipantHandler) UploadAvatar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
		return
	}

	if err := os.MkdirAll(h.avatarDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	path := filepath.Join(h.avatarDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.UpdateAvatar(id, path); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar": path})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
