package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// MessageService runs the internal mailbox and teacher groups.
type MessageService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMessageService constructs MessageService.
func NewMessageService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{workspaces: workspaces, validator: validate, logger: logger}
}

// Send delivers a message. A reply carries the thread id of its thread.
func (s *MessageService) Send(ctx context.Context, session *models.SessionTeacher, req models.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "recipient, subject and content are required")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var msg models.Message
	err := ws.Atomically(func() error {
		if ws.Directory.Find(ctx, req.To) == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "recipient is not an authorized teacher")
		}
		if req.ThreadID != "" && len(s.threadMessages(ctx, session, req.ThreadID)) == 0 {
			return appErrors.NotFound("thread")
		}
		msg = ws.Messages.Send(ctx, session.Email, session.Name, req.To, req.Subject, req.Content, req.ThreadID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("message sent", zap.String("thread_id", msg.ThreadID), zap.String("from", msg.From), zap.String("to", msg.To))
	return &msg, nil
}

func threadKey(m models.Message) string {
	if m.ThreadID != "" {
		return m.ThreadID
	}
	return m.ID
}

func (s *MessageService) threadMessages(ctx context.Context, session *models.SessionTeacher, threadID string) []models.Message {
	var out []models.Message
	for _, m := range s.workspaces.For(session).Messages.ForUser(ctx, session.Email) {
		if threadKey(m) == threadID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// Threads groups the caller's messages by thread, newest activity first.
func (s *MessageService) Threads(ctx context.Context, session *models.SessionTeacher) ([]models.Thread, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	me := storage.NormalizeEmail(session.Email)
	byID := map[string]*models.Thread{}
	seen := map[string]map[string]bool{}
	var order []string

	for _, m := range s.workspaces.For(session).Messages.ForUser(ctx, me) {
		id := threadKey(m)
		t, ok := byID[id]
		if !ok {
			t = &models.Thread{ID: id, Subject: m.Subject, LastMessage: m, UpdatedAt: m.Timestamp}
			byID[id] = t
			seen[id] = map[string]bool{}
			order = append(order, id)
		}
		t.Count++
		if m.Timestamp.After(t.UpdatedAt) {
			t.UpdatedAt = m.Timestamp
			t.Subject = m.Subject
			t.LastMessage = m
		}
		if m.To == me && !m.Read {
			t.Unread++
		}
		for _, p := range []string{m.From, m.To} {
			if !seen[id][p] {
				seen[id][p] = true
				t.Participants = append(t.Participants, p)
			}
		}
	}

	threads := make([]models.Thread, 0, len(order))
	for _, id := range order {
		threads = append(threads, *byID[id])
	}
	sort.SliceStable(threads, func(i, j int) bool { return threads[i].UpdatedAt.After(threads[j].UpdatedAt) })
	return threads, nil
}

// ViewThread returns a thread oldest first and marks messages addressed to
// the caller as read.
func (s *MessageService) ViewThread(ctx context.Context, session *models.SessionTeacher, threadID string) ([]models.Message, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var messages []models.Message
	err := ws.Atomically(func() error {
		messages = s.threadMessages(ctx, session, threadID)
		if len(messages) == 0 {
			return appErrors.NotFound("thread")
		}
		me := storage.NormalizeEmail(session.Email)
		for i := range messages {
			if messages[i].To == me && !messages[i].Read {
				ws.Messages.MarkRead(ctx, messages[i].ID)
				messages[i].Read = true
			}
		}
		return nil
	})
	return messages, err
}

// DeleteThread removes every message of a thread the caller takes part in.
func (s *MessageService) DeleteThread(ctx context.Context, session *models.SessionTeacher, threadID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		messages := s.threadMessages(ctx, session, threadID)
		if len(messages) == 0 {
			return appErrors.NotFound("thread")
		}
		drop := make(map[string]bool, len(messages))
		for _, m := range messages {
			drop[m.ID] = true
		}
		all := ws.Messages.List(ctx)
		kept := all[:0]
		for _, m := range all {
			if !drop[m.ID] {
				kept = append(kept, m)
			}
		}
		ws.Messages.Save(ctx, kept)
		return nil
	})
}

// UnreadCount counts unread messages addressed to email.
func (s *MessageService) UnreadCount(ctx context.Context, email string) int {
	email = storage.NormalizeEmail(email)
	n := 0
	for _, m := range s.workspaces.For(nil).Messages.List(ctx) {
		if storage.NormalizeEmail(m.To) == email && !m.Read {
			n++
		}
	}
	return n
}

// Groups lists every teacher group.
func (s *MessageService) Groups(ctx context.Context, session *models.SessionTeacher) ([]models.Group, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.workspaces.For(session).Groups.List(ctx), nil
}

// CreateGroup adds a named recipient list.
func (s *MessageService) CreateGroup(ctx context.Context, session *models.SessionTeacher, req models.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "group name and members are required")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var group *models.Group
	err := ws.Atomically(func() error {
		id := ws.Groups.Add(ctx, req.Name, req.Members)
		group = ws.Groups.Find(ctx, id)
		return nil
	})
	return group, err
}

// DeleteGroup removes a group.
func (s *MessageService) DeleteGroup(ctx context.Context, session *models.SessionTeacher, groupID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Groups.Find(ctx, groupID) == nil {
			return appErrors.NotFound("group")
		}
		ws.Groups.Delete(ctx, groupID)
		return nil
	})
}
