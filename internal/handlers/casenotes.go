package handlers

import (
	"net/http"

	"studentdash-be/internal/models"
	"studentdash-be/internal/repository"
	"studentdash-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type CaseNoteHandler struct {
	store repository.CaseNoteStore
}

func NewCaseNoteHandler(store repository.CaseNoteStore) *CaseNoteHandler {
	return &CaseNoteHandler{store: store}
}

// CreateCaseNote godoc
// @Summary Append a case note
// @Tags casenotes
// @Security ApiKeyAuth
// @Accept json
// @Param payload body models.CreateCaseNoteRequest true "Case note"
// @Success 201 {object} models.CaseNote
// @Failure 400 {object} models.ErrorResponse
// @Router /casenotes [post]
func (h *CaseNoteHandler) CreateCaseNote(c *gin.Context) {
	var req models.CreateCaseNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	note := &models.CaseNote{
		StudentEmail: req.StudentEmail,
		Subject:      utils.SanitizeSnippet(req.Subject),
		Body:         utils.SanitizeSnippet(req.Body),
	}

	if err := h.store.Append(c.Request.Context(), note); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to save case note",
		})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// ListCaseNotes godoc
// @Summary List case notes, newest first
// @Tags casenotes
// @Security ApiKeyAuth
// @Param studentEmail query string false "Filter by student email"
// @Success 200 {array} models.CaseNote
// @Router /casenotes [get]
func (h *CaseNoteHandler) ListCaseNotes(c *gin.Context) {
	notes, err := h.store.List(c.Request.Context(), c.Query("studentEmail"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to load case notes",
		})
		return
	}
	if notes == nil {
		notes = []models.CaseNote{}
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// DeleteCaseNote godoc
// @Summary Delete a case note by id
// @Tags casenotes
// @Security ApiKeyAuth
// @Param noteId path string true "Case note id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /casenotes/{noteId} [delete]
func (h *CaseNoteHandler) DeleteCaseNote(c *gin.Context) {
	err := h.store.DeleteByID(c.Request.Context(), c.Param("noteId"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "note_not_found",
				Message: "Case note not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete case note",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
