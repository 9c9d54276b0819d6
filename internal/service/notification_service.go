package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

const defaultPollInterval = 5 * time.Second

// NotificationService computes badge counters and streams their changes.
type NotificationService struct {
	workspaces workspaceProvider
	logger     *zap.Logger
	interval   time.Duration

	mu     sync.Mutex
	wakers map[chan struct{}]struct{}
}

// NewNotificationService constructs NotificationService. When store announces
// writes, watchers re-poll immediately after messages or transfers change.
func NewNotificationService(workspaces workspaceProvider, store storage.KeyedStore, logger *zap.Logger, interval time.Duration) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	s := &NotificationService{
		workspaces: workspaces,
		logger:     logger,
		interval:   interval,
		wakers:     map[chan struct{}]struct{}{},
	}
	if n, ok := store.(storage.ChangeNotifier); ok {
		n.OnChange(s.onChange)
	}
	return s
}

func (s *NotificationService) onChange(key string) {
	if key != storage.KeyMessages && key != storage.KeyTransfers {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.wakers {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// Badges counts unread messages and pending transfers for email.
func (s *NotificationService) Badges(ctx context.Context, email string) models.Badges {
	ws := s.workspaces.For(nil)
	email = storage.NormalizeEmail(email)
	unread := 0
	for _, m := range ws.Messages.List(ctx) {
		if storage.NormalizeEmail(m.To) == email && !m.Read {
			unread++
		}
	}
	return models.Badges{
		UnreadMessages:   unread,
		PendingTransfers: len(ws.Transfers.PendingFor(ctx, email)),
	}
}

// Watch emits the current badges, then every change of them, until ctx is done.
func (s *NotificationService) Watch(ctx context.Context, email string) <-chan models.Badges {
	out := make(chan models.Badges, 1)
	wake := make(chan struct{}, 1)

	s.mu.Lock()
	s.wakers[wake] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.wakers, wake)
			s.mu.Unlock()
			close(out)
		}()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		var last *models.Badges
		for {
			current := s.Badges(ctx, email)
			if last == nil || *last != current {
				select {
				case out <- current:
				case <-ctx.Done():
					return
				}
				last = &current
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			case <-wake:
			}
		}
	}()
	return out
}
