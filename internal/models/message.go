package models

import "time"

// Group is a named set of teacher emails used as a recipient list.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// CreateGroupRequest payload for adding a group.
type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Members []string `json:"members" validate:"required,min=1,dive,email"`
}

// Message is one internal mail item. ThreadID equals ID for a thread's first message.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	From      string    `json:"from"`
	FromName  string    `json:"fromName"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// SendMessageRequest payload for sending or replying.
type SendMessageRequest struct {
	To       string `json:"to" validate:"required,email"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	ThreadID string `json:"threadId"`
}

// Thread is the inbox view of messages sharing a thread id.
type Thread struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	Participants []string  `json:"participants"`
	LastMessage  Message   `json:"lastMessage"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Unread       int       `json:"unread"`
	Count        int       `json:"count"`
}

// CustomComments maps a comment category to the teacher's own entries.
type CustomComments map[string][]string

// CommentEntry is one suggestion of a comment category.
type CommentEntry struct {
	Text   string `json:"text"`
	Custom bool   `json:"custom"`
}

// CommentCategory lists the suggestions of one category, defaults first.
type CommentCategory struct {
	Name     string         `json:"name"`
	Comments []CommentEntry `json:"comments"`
}

// CommentRequest payload for adding or removing a custom comment.
type CommentRequest struct {
	Category string `json:"category" validate:"required,max=100"`
	Text     string `json:"text" validate:"required,max=500"`
}

// Badges are the counters shown in the notification bar.
type Badges struct {
	UnreadMessages   int `json:"unreadMessages"`
	PendingTransfers int `json:"pendingTransfers"`
}
