package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/service"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/response"
	"github.com/noah-isme/classroom-api/pkg/signer"
)

const streamScope = "notifications"

// NotificationHandler serves badge counters.
type NotificationHandler struct {
	notifications *service.NotificationService
	signer        *signer.TokenSigner
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService, tokens *signer.TokenSigner) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, signer: tokens}
}

// Badges godoc
// @Summary Unread message and pending transfer counters
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) Badges(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.notifications.Badges(c.Request.Context(), session.Email))
}

// StreamToken godoc
// @Summary Short-lived token for the badge event stream
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/stream-token [post]
func (h *NotificationHandler) StreamToken(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	token, expiresAt, err := h.signer.Generate(session.Email, streamScope)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign stream token"))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"token": token, "expiresAt": expiresAt.UTC()})
}

// Stream godoc
// @Summary Server-sent badge updates
// @Description Emits a "badges" event on connect and whenever a counter changes.
// @Tags Notifications
// @Produce text/event-stream
// @Param token query string true "Stream token"
// @Success 200 {string} string "event stream"
// @Failure 401 {object} response.Envelope
// @Router /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	email, err := h.signer.Parse(c.Query("token"), streamScope)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid stream token"))
		return
	}
	updates := h.notifications.Watch(c.Request.Context(), email)
	c.Header("Cache-Control", "no-store")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		badges, ok := <-updates
		if !ok {
			return false
		}
		c.SSEvent("badges", badges)
		return true
	})
}
