package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// MessageHandler serves internal mail and teacher groups.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send godoc
// @Summary Send a message
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body models.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Threads godoc
// @Summary Inbox threads, newest first
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/threads [get]
func (h *MessageHandler) Threads(c *gin.Context) {
	threads, err := h.messages.Threads(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, threads)
}

// ViewThread godoc
// @Summary Open a thread and mark it read
// @Tags Messages
// @Produce json
// @Param id path string true "Thread ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /messages/threads/{id} [get]
func (h *MessageHandler) ViewThread(c *gin.Context) {
	msgs, err := h.messages.ViewThread(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msgs)
}

// DeleteThread godoc
// @Summary Delete a thread
// @Tags Messages
// @Param id path string true "Thread ID"
// @Success 204
// @Security BearerAuth
// @Router /messages/threads/{id} [delete]
func (h *MessageHandler) DeleteThread(c *gin.Context) {
	if err := h.messages.DeleteThread(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Groups godoc
// @Summary List teacher groups
// @Tags Groups
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /groups [get]
func (h *MessageHandler) Groups(c *gin.Context) {
	groups, err := h.messages.Groups(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, groups)
}

// CreateGroup godoc
// @Summary Create a teacher group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body models.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /groups [post]
func (h *MessageHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	group, err := h.messages.CreateGroup(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// DeleteGroup godoc
// @Summary Delete a teacher group
// @Tags Groups
// @Param id path string true "Group ID"
// @Success 204
// @Security BearerAuth
// @Router /groups/{id} [delete]
func (h *MessageHandler) DeleteGroup(c *gin.Context) {
	if err := h.messages.DeleteGroup(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
