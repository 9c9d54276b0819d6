package repository

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/logger"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// Namespaced logical keys.
const (
	KeySchools            = "schools"
	KeyClasses            = "classes"
	KeySubjects           = "subjects"
	KeyStudents           = "students"
	KeyAttendanceSessions = "attendanceSessions"
	KeyGridSettings       = "gridSettings"
	KeyGradeFormulas      = "gradeFormulas"
	KeyDisplaySettings    = "displaySettings"
	KeySharingSettings    = "sharingSettings"
	KeyCustomComments     = "custom_comments"
)

// MirroredCollections are copied to the cloud mirror after every save.
var MirroredCollections = []string{
	KeySchools,
	KeyClasses,
	KeySubjects,
	KeyStudents,
	KeyAttendanceSessions,
	KeyGridSettings,
	KeyGradeFormulas,
	KeyDisplaySettings,
	KeySharingSettings,
}

// SubjectGridKey is the logical key of a subject's grid override.
func SubjectGridKey(subjectID string) string {
	return KeyGridSettings + "_" + subjectID
}

// Mirror receives the serialized collection after a namespaced save.
type Mirror func(owner, collection string, payload []byte)

var turns sync.Map

func turnFor(store storage.KeyedStore) *sync.Mutex {
	mu, _ := turns.LoadOrStore(store, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Workspace is the per-session view over a KeyedStore. Every collection is
// loaded whole, mutated in memory and saved whole.
type Workspace struct {
	store   storage.KeyedStore
	ns      storage.Namespace
	session *models.SessionTeacher
	logger  *zap.Logger
	mirror  Mirror
	now     func() time.Time
	turn    *sync.Mutex

	Schools    *SchoolRepository
	Classes    *ClassRepository
	Subjects   *SubjectRepository
	Students   *StudentRepository
	Attendance *AttendanceRepository
	Settings   *SettingsRepository
	Directory  *DirectoryRepository
	Transfers  *TransferRepository
	Groups     *GroupRepository
	Messages   *MessageRepository
}

// WorkspaceOption customises a Workspace.
type WorkspaceOption func(*Workspace)

// WithMirror installs the cloud mirror hook.
func WithMirror(m Mirror) WorkspaceOption {
	return func(w *Workspace) { w.mirror = m }
}

// WithClock overrides the time source used for ids and dates.
func WithClock(now func() time.Time) WorkspaceOption {
	return func(w *Workspace) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorkspace binds a store to the given session; a nil session yields a
// workspace where namespaced reads are empty and namespaced writes are dropped.
func NewWorkspace(store storage.KeyedStore, session *models.SessionTeacher, l *zap.Logger, opts ...WorkspaceOption) *Workspace {
	if l == nil {
		l = zap.NewNop()
	}
	w := &Workspace{
		store:   store,
		session: session,
		logger:  l,
		now:     time.Now,
		turn:    turnFor(store),
	}
	if session != nil {
		w.ns = storage.NewNamespace(session.Email)
		w.logger = logger.ForTeacher(l, w.ns.Owner())
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Schools = &SchoolRepository{w: w}
	w.Classes = &ClassRepository{w: w}
	w.Subjects = &SubjectRepository{w: w}
	w.Students = &StudentRepository{w: w}
	w.Attendance = &AttendanceRepository{w: w}
	w.Settings = &SettingsRepository{w: w}
	w.Directory = &DirectoryRepository{w: w}
	w.Transfers = &TransferRepository{w: w}
	w.Groups = &GroupRepository{w: w}
	w.Messages = &MessageRepository{w: w}
	return w
}

// Session returns the bound teacher or nil.
func (w *Workspace) Session() *models.SessionTeacher { return w.session }

// Owner returns the normalised email of the session or "".
func (w *Workspace) Owner() string { return w.ns.Owner() }

// Logger returns the workspace-scoped logger.
func (w *Workspace) Logger() *zap.Logger { return w.logger }

func (w *Workspace) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, w.logger)
}

// Now returns the workspace clock.
func (w *Workspace) Now() time.Time { return w.now() }

// Atomically runs fn while holding the store's turn so a whole
// read-modify-write sequence completes before another starts.
func (w *Workspace) Atomically(fn func() error) error {
	w.turn.Lock()
	defer w.turn.Unlock()
	return fn()
}

// ReadRaw returns the stored bytes of a logical key.
func (w *Workspace) ReadRaw(ctx context.Context, logical string) ([]byte, bool) {
	key, ok := w.ns.Key(logical)
	if !ok {
		return nil, false
	}
	raw, found, err := w.store.Get(ctx, key)
	if err != nil {
		w.log(ctx).Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, found
}

// WriteRaw stores bytes under a logical key without mirroring.
func (w *Workspace) WriteRaw(ctx context.Context, logical string, raw []byte) bool {
	key, ok := w.ns.Key(logical)
	if !ok {
		w.log(ctx).Debug("dropping write without session", zap.String("key", logical))
		return false
	}
	if err := w.store.Set(ctx, key, raw); err != nil {
		w.log(ctx).Warn("storage write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (w *Workspace) remove(ctx context.Context, logical string) {
	key, ok := w.ns.Key(logical)
	if !ok {
		return
	}
	if err := w.store.Remove(ctx, key); err != nil {
		w.log(ctx).Warn("storage remove failed", zap.String("key", key), zap.Error(err))
	}
}

// NewID returns prefix followed by 16 random hex characters.
func (w *Workspace) NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func (w *Workspace) today() string {
	return w.now().Format("2006-01-02")
}

func isMirrored(logical string) bool {
	if strings.HasPrefix(logical, KeyGridSettings+"_") {
		return false
	}
	for _, c := range MirroredCollections {
		if c == logical {
			return true
		}
	}
	return false
}

// load decodes a collection, falling back when absent, unreadable or without session.
func load[T any](ctx context.Context, w *Workspace, logical string, fallback T) T {
	raw, found := w.ReadRaw(ctx, logical)
	if !found {
		return fallback
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		w.log(ctx).Warn("corrupt collection ignored", zap.String("key", logical), zap.Error(err))
		return fallback
	}
	return out
}

// save encodes and stores a collection, then mirrors it when eligible.
func save(ctx context.Context, w *Workspace, logical string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		w.log(ctx).Error("encode collection", zap.String("key", logical), zap.Error(err))
		return
	}
	if !w.WriteRaw(ctx, logical, raw) {
		return
	}
	if w.mirror != nil && !storage.IsGlobal(logical) && isMirrored(logical) {
		w.mirror(w.ns.Owner(), logical, raw)
	}
}
