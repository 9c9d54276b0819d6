package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// GroupRepository manages global teacher groups.
type GroupRepository struct {
	w *Workspace
}

// List returns every group.
func (r *GroupRepository) List(ctx context.Context) []models.Group {
	return load(ctx, r.w, storage.KeyGroups, []models.Group{})
}

// Save overwrites the list.
func (r *GroupRepository) Save(ctx context.Context, groups []models.Group) {
	if groups == nil {
		groups = []models.Group{}
	}
	save(ctx, r.w, storage.KeyGroups, groups)
}

// Add creates a group and returns its id.
func (r *GroupRepository) Add(ctx context.Context, name string, members []string) string {
	normalised := make([]string, 0, len(members))
	for _, m := range members {
		if m = storage.NormalizeEmail(m); m != "" {
			normalised = append(normalised, m)
		}
	}
	id := r.w.NewID("group_")
	groups := r.List(ctx)
	groups = append(groups, models.Group{ID: id, Name: name, Members: normalised})
	r.Save(ctx, groups)
	return id
}

// Find returns the group with id or nil.
func (r *GroupRepository) Find(ctx context.Context, id string) *models.Group {
	for _, g := range r.List(ctx) {
		if g.ID == id {
			found := g
			return &found
		}
	}
	return nil
}

// Delete removes a group.
func (r *GroupRepository) Delete(ctx context.Context, id string) {
	groups := r.List(ctx)
	kept := groups[:0]
	for _, g := range groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	r.Save(ctx, kept)
}

// MessageRepository manages the global message store.
type MessageRepository struct {
	w *Workspace
}

// List returns every message.
func (r *MessageRepository) List(ctx context.Context) []models.Message {
	return load(ctx, r.w, storage.KeyMessages, []models.Message{})
}

// Save overwrites the store.
func (r *MessageRepository) Save(ctx context.Context, messages []models.Message) {
	if messages == nil {
		messages = []models.Message{}
	}
	save(ctx, r.w, storage.KeyMessages, messages)
}

// Send appends a message. An empty threadID starts a new thread keyed by the message id.
func (r *MessageRepository) Send(ctx context.Context, from, fromName, to, subject, content, threadID string) models.Message {
	id := r.w.NewID("msg_")
	if threadID == "" {
		threadID = id
	}
	msg := models.Message{
		ID:        id,
		ThreadID:  threadID,
		From:      storage.NormalizeEmail(from),
		FromName:  fromName,
		To:        storage.NormalizeEmail(to),
		Subject:   subject,
		Content:   content,
		Timestamp: r.w.now().UTC(),
	}
	messages := r.List(ctx)
	messages = append(messages, msg)
	r.Save(ctx, messages)
	return msg
}

// ForUser lists messages sent or received by email.
func (r *MessageRepository) ForUser(ctx context.Context, email string) []models.Message {
	email = storage.NormalizeEmail(email)
	all := r.List(ctx)
	out := make([]models.Message, 0, len(all))
	for _, m := range all {
		if storage.NormalizeEmail(m.To) == email || storage.NormalizeEmail(m.From) == email {
			out = append(out, m)
		}
	}
	return out
}

// MarkRead flags one message as read.
func (r *MessageRepository) MarkRead(ctx context.Context, id string) {
	messages := r.List(ctx)
	for i := range messages {
		if messages[i].ID == id {
			if !messages[i].Read {
				messages[i].Read = true
				r.Save(ctx, messages)
			}
			return
		}
	}
}

// Delete removes one message.
func (r *MessageRepository) Delete(ctx context.Context, id string) {
	messages := r.List(ctx)
	kept := messages[:0]
	for _, m := range messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.Save(ctx, kept)
}
