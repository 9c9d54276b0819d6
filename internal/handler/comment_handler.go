package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// CommentHandler serves the report-card comment bank.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Bank godoc
// @Summary Comment bank with default and custom entries
// @Tags Comments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /comments [get]
func (h *CommentHandler) Bank(c *gin.Context) {
	bank, err := h.comments.Bank(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bank)
}

// Category godoc
// @Summary Comments of one category
// @Tags Comments
// @Produce json
// @Param name path string true "Category name"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /comments/{name} [get]
func (h *CommentHandler) Category(c *gin.Context) {
	category, err := h.comments.Category(c.Request.Context(), sessionFromContext(c), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category)
}

// Suggest godoc
// @Summary Category suggested for an average score
// @Tags Comments
// @Produce json
// @Param average query number true "Average score"
// @Success 200 {object} response.Envelope
// @Router /comments/suggest [get]
func (h *CommentHandler) Suggest(c *gin.Context) {
	var query struct {
		Average float64 `form:"average" binding:"gte=0,lte=10"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Validation(err, "average must be between 0 and 10"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"category": service.SuggestCategory(query.Average)})
}

// Add godoc
// @Summary Add a custom comment
// @Tags Comments
// @Accept json
// @Param payload body models.CommentRequest true "Comment payload"
// @Success 204
// @Security BearerAuth
// @Router /comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.comments.Add(c.Request.Context(), sessionFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Remove godoc
// @Summary Remove a custom comment
// @Tags Comments
// @Accept json
// @Param payload body models.CommentRequest true "Comment payload"
// @Success 204
// @Security BearerAuth
// @Router /comments/delete [post]
func (h *CommentHandler) Remove(c *gin.Context) {
	var req models.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.comments.Remove(c.Request.Context(), sessionFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
