package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/signer"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// streamRecorder lets gin's Stream watch for client disconnects.
type streamRecorder struct {
	*httptest.ResponseRecorder
}

func (streamRecorder) CloseNotify() <-chan bool { return make(chan bool) }

func newNotificationFixture(t *testing.T) (*NotificationHandler, *service.MessageService) {
	t.Helper()
	store := storage.NewMemoryStore()
	factory := service.NewWorkspaceFactory(store, nil)
	_, err := factory.Global().Directory.Add(context.Background(), "lan@school.vn", "Cô Lan")
	require.NoError(t, err)
	notifications := service.NewNotificationService(factory, store, nil, 10*time.Millisecond)
	return NewNotificationHandler(notifications, signer.NewTokenSigner("secret", time.Minute)), service.NewMessageService(factory, nil, nil)
}

func TestNotificationHandlerBadges(t *testing.T) {
	h, messages := newNotificationFixture(t)
	_, err := messages.Send(context.Background(), teacher("hoa@school.vn"), models.SendMessageRequest{To: "lan@school.vn", Subject: "Họp tổ", Content: "Chiều nay 3h"})
	require.NoError(t, err)

	c, w := newGinContext(http.MethodGet, "/notifications", "", teacher("lan@school.vn"))
	h.Badges(c)
	mustStatus(t, w, http.StatusOK)
	var badges models.Badges
	decode(t, w, &badges)
	assert.Equal(t, models.Badges{UnreadMessages: 1}, badges)
}

func TestNotificationHandlerStreamToken(t *testing.T) {
	h, _ := newNotificationFixture(t)

	c, w := newGinContext(http.MethodPost, "/notifications/stream-token", "", teacher("lan@school.vn"))
	h.StreamToken(c)
	mustStatus(t, w, http.StatusOK)
	var issued struct {
		Token string `json:"token"`
	}
	decode(t, w, &issued)
	require.NotEmpty(t, issued.Token)

	c, w = newGinContext(http.MethodGet, "/notifications/stream?token=forged", "", nil)
	h.Stream(c)
	mustStatus(t, w, http.StatusUnauthorized)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	rec := streamRecorder{httptest.NewRecorder()}
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/notifications/stream?token="+issued.Token, nil).WithContext(ctx)
	h.Stream(c)
	assert.True(t, strings.Contains(rec.Body.String(), "event:badges"), rec.Body.String())
}
