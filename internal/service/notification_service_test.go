package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
)

func TestNotificationBadges(t *testing.T) {
	ctx := context.Background()
	factory, store := newTestFactory(t)
	svc := NewNotificationService(factory, store, nil, time.Hour)
	ws := factory.Global()

	ws.Messages.Send(ctx, "lan@school.vn", "Lan", "Minh@school.vn", "a", "b", "")
	ws.Transfers.Add(ctx, models.Transfer{ID: "trans-1", FromUser: "lan@school.vn", ToUser: "minh@school.vn", ClassName: "10A1"})

	assert.Equal(t, models.Badges{UnreadMessages: 1, PendingTransfers: 1}, svc.Badges(ctx, "minh@school.vn"))
	assert.Equal(t, models.Badges{}, svc.Badges(ctx, "lan@school.vn"))
}

func TestNotificationWatchWakesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	factory, store := newTestFactory(t)
	// the poll interval is long enough that only the change notification can wake the watcher
	svc := NewNotificationService(factory, store, nil, time.Hour)

	updates := svc.Watch(ctx, "minh@school.vn")
	select {
	case b := <-updates:
		assert.Equal(t, models.Badges{}, b)
	case <-time.After(time.Second):
		t.Fatal("no initial badges")
	}

	factory.Global().Messages.Send(context.Background(), "lan@school.vn", "Lan", "minh@school.vn", "a", "b", "")
	select {
	case b := <-updates:
		assert.Equal(t, 1, b.UnreadMessages)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was not woken by the change")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}
