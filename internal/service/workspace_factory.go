package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// WorkspaceFactory hands out per-session workspaces over one shared store.
type WorkspaceFactory struct {
	store  storage.KeyedStore
	logger *zap.Logger
	clock  func() time.Time

	mu     sync.RWMutex
	mirror repository.Mirror
}

// NewWorkspaceFactory constructs a WorkspaceFactory.
func NewWorkspaceFactory(store storage.KeyedStore, logger *zap.Logger) *WorkspaceFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceFactory{store: store, logger: logger, clock: time.Now}
}

// SetMirror installs the cloud mirror hook used by every later workspace.
func (f *WorkspaceFactory) SetMirror(m repository.Mirror) {
	f.mu.Lock()
	f.mirror = m
	f.mu.Unlock()
}

// SetClock overrides the clock handed to workspaces.
func (f *WorkspaceFactory) SetClock(now func() time.Time) {
	if now != nil {
		f.clock = now
	}
}

// Store returns the shared medium.
func (f *WorkspaceFactory) Store() storage.KeyedStore { return f.store }

// For returns a workspace bound to session; nil yields a workspace without session.
func (f *WorkspaceFactory) For(session *models.SessionTeacher) *repository.Workspace {
	f.mu.RLock()
	mirror := f.mirror
	f.mu.RUnlock()

	opts := []repository.WorkspaceOption{repository.WithClock(f.clock)}
	if mirror != nil {
		opts = append(opts, repository.WithMirror(mirror))
	}
	return repository.NewWorkspace(f.store, session, f.logger, opts...)
}

// Global returns a workspace that only reaches the global collections.
func (f *WorkspaceFactory) Global() *repository.Workspace {
	return f.For(nil)
}
