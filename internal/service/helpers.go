package service

import (
	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

type workspaceProvider interface {
	For(session *models.SessionTeacher) *repository.Workspace
}

func requireSession(session *models.SessionTeacher) error {
	if session == nil || session.Email == "" {
		return appErrors.ErrNoSession
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
