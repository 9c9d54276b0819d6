package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// DirectoryService administers the authorized-teacher directory.
type DirectoryService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewDirectoryService constructs DirectoryService.
func NewDirectoryService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{workspaces: workspaces, validator: validate, logger: logger}
}

func requireAdmin(session *models.SessionTeacher) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if !session.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	return nil
}

// List returns every directory member without password hashes.
func (s *DirectoryService) List(ctx context.Context, session *models.SessionTeacher) ([]models.Teacher, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	teachers := s.workspaces.For(session).Directory.List(ctx)
	for i := range teachers {
		teachers[i].PasswordHash = ""
	}
	return teachers, nil
}

// Add authorizes a new teacher with the default password.
func (s *DirectoryService) Add(ctx context.Context, session *models.SessionTeacher, req models.AddTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var teacher *models.Teacher
	err := ws.Atomically(func() error {
		var err error
		teacher, err = ws.Directory.Add(ctx, req.Email, req.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("teacher authorized", zap.String("email", teacher.Email), zap.String("by", session.Email))
	return teacher, nil
}

// Delete removes a teacher from the directory.
func (s *DirectoryService) Delete(ctx context.Context, session *models.SessionTeacher, email string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		return ws.Directory.Delete(ctx, email)
	})
}

// ToggleLock locks or unlocks a teacher and returns the new state.
func (s *DirectoryService) ToggleLock(ctx context.Context, session *models.SessionTeacher, email string) (bool, error) {
	if err := requireAdmin(session); err != nil {
		return false, err
	}
	ws := s.workspaces.For(session)
	var locked bool
	err := ws.Atomically(func() error {
		var err error
		locked, err = ws.Directory.ToggleLock(ctx, email)
		return err
	})
	return locked, err
}

// ResetPassword restores a teacher's default password.
func (s *DirectoryService) ResetPassword(ctx context.Context, session *models.SessionTeacher, email string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	err := ws.Atomically(func() error {
		return ws.Directory.SetPasswordHash(ctx, email, "")
	})
	if err == nil {
		s.logger.Info("password reset to default", zap.String("email", email), zap.String("by", session.Email))
	}
	return err
}
