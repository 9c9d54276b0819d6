package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// DirectoryHandler manages the authorized-teacher directory.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs a DirectoryHandler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// List godoc
// @Summary List authorized teachers
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers [get]
func (h *DirectoryHandler) List(c *gin.Context) {
	teachers, err := h.directory.List(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, teachers)
}

// Add godoc
// @Summary Authorize a teacher
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body models.AddTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers [post]
func (h *DirectoryHandler) Add(c *gin.Context) {
	var req models.AddTeacherRequest
	if !bindJSON(c, &req) {
		return
	}
	teacher, err := h.directory.Add(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Delete godoc
// @Summary Remove a teacher
// @Tags Directory
// @Param email path string true "Teacher email"
// @Success 204
// @Security BearerAuth
// @Router /teachers/{email} [delete]
func (h *DirectoryHandler) Delete(c *gin.Context) {
	if err := h.directory.Delete(c.Request.Context(), sessionFromContext(c), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleLock godoc
// @Summary Lock or unlock a teacher
// @Tags Directory
// @Produce json
// @Param email path string true "Teacher email"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers/{email}/lock [post]
func (h *DirectoryHandler) ToggleLock(c *gin.Context) {
	locked, err := h.directory.ToggleLock(c.Request.Context(), sessionFromContext(c), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"email": c.Param("email"), "isLocked": locked})
}

// ResetPassword godoc
// @Summary Reset a teacher's password to the default
// @Tags Directory
// @Param email path string true "Teacher email"
// @Success 204
// @Security BearerAuth
// @Router /teachers/{email}/reset-password [post]
func (h *DirectoryHandler) ResetPassword(c *gin.Context) {
	if err := h.directory.ResetPassword(c.Request.Context(), sessionFromContext(c), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
