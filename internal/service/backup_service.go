package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// BackupService exports and restores a teacher's namespaced collections.
type BackupService struct {
	workspaces workspaceProvider
	logger     *zap.Logger
}

// NewBackupService constructs BackupService.
func NewBackupService(workspaces workspaceProvider, logger *zap.Logger) *BackupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupService{workspaces: workspaces, logger: logger}
}

func exportDate(ws *repository.Workspace) string {
	return ws.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func encodeBackup(doc models.BackupDocument) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	return raw, nil
}

// Export returns the session teacher's full backup document.
func (s *BackupService) Export(ctx context.Context, session *models.SessionTeacher) ([]byte, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return ExportWorkspace(ctx, s.workspaces.For(session))
}

// ExportWorkspace builds the full backup document of a workspace.
func ExportWorkspace(ctx context.Context, ws *repository.Workspace) ([]byte, error) {
	sharing := ws.Settings.Sharing(ctx)
	formulas := ws.Settings.Formulas(ctx)
	display := ws.Settings.Display(ctx)
	doc := models.BackupDocument{
		Schools:            ws.Schools.List(ctx),
		Classes:            ws.Classes.List(ctx),
		Subjects:           ws.Subjects.List(ctx),
		Students:           ws.Students.List(ctx),
		AttendanceSessions: ws.Attendance.List(ctx),
		GridSettings:       ws.Settings.Grid(ctx, ""),
		GradeFormulas:      &formulas,
		DisplaySettings:    &display,
		SharingSettings:    &sharing,
		ExportDate:         exportDate(ws),
		Version:            models.BackupVersion,
	}
	return encodeBackup(doc)
}

// ExportClass returns a single-class document: the class, its school and
// subjects, its students and its attendance sessions.
func (s *BackupService) ExportClass(ctx context.Context, session *models.SessionTeacher, classID, schoolID string) ([]byte, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	class := ws.Classes.Find(ctx, classID)
	if class == nil {
		return nil, appErrors.NotFound("class")
	}
	if schoolID == "" {
		schoolID = class.SchoolID
	}

	schools := []models.School{}
	if school := ws.Schools.Find(ctx, schoolID); school != nil {
		schools = append(schools, *school)
	}
	doc := models.BackupDocument{
		Schools:            schools,
		Classes:            []models.Class{*class},
		Subjects:           ws.Subjects.ListBySchool(ctx, schoolID),
		Students:           ws.Students.ListByClass(ctx, classID),
		AttendanceSessions: ws.Attendance.ListByClass(ctx, classID, ""),
		GridSettings:       ws.Settings.Grid(ctx, ""),
		ExportDate:         exportDate(ws),
		Type:               models.BackupTypeSingleClass,
		Version:            models.BackupVersion,
	}
	return encodeBackup(doc)
}

// Import restores a backup document for the session teacher.
func (s *BackupService) Import(ctx context.Context, session *models.SessionTeacher, raw []byte) (bool, error) {
	if err := requireSession(session); err != nil {
		return false, err
	}
	ok, err := ImportWorkspace(ctx, s.workspaces.For(session), raw)
	if err != nil {
		s.logger.Warn("backup import rejected", zap.String("teacher", session.Email), zap.Error(err))
	}
	return ok, err
}

// ImportWorkspace decodes the whole document before touching storage; a
// malformed document leaves every collection unchanged. Present fields
// replace their collection, absent fields are left alone.
func ImportWorkspace(ctx context.Context, ws *repository.Workspace, raw []byte) (bool, error) {
	var doc models.BackupImport
	decoder := json.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&doc); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "backup document is malformed")
	}
	if decoder.More() {
		return false, appErrors.Clone(appErrors.ErrImportFailed, "backup document has trailing data")
	}

	start := time.Now()
	applied := 0
	err := ws.Atomically(func() error {
		if doc.Schools != nil {
			ws.Schools.Save(ctx, *doc.Schools)
			applied++
		}
		if doc.Classes != nil {
			ws.Classes.Save(ctx, *doc.Classes)
			applied++
		}
		if doc.Subjects != nil {
			ws.Subjects.Save(ctx, *doc.Subjects)
			applied++
		}
		if doc.Students != nil {
			ws.Students.Save(ctx, *doc.Students)
			applied++
		}
		if doc.AttendanceSessions != nil {
			ws.Attendance.Save(ctx, *doc.AttendanceSessions)
			applied++
		}
		if doc.GridSettings != nil {
			ws.Settings.SaveGrid(ctx, "", *doc.GridSettings)
			applied++
		}
		if doc.GradeFormulas != nil {
			ws.Settings.SaveFormulas(ctx, *doc.GradeFormulas)
			applied++
		}
		if doc.DisplaySettings != nil {
			ws.Settings.SaveDisplay(ctx, *doc.DisplaySettings)
			applied++
		}
		if doc.SharingSettings != nil {
			ws.Settings.SaveSharing(ctx, *doc.SharingSettings)
			applied++
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	ws.Logger().Info("backup imported",
		zap.String("teacher", ws.Owner()),
		zap.Int("collections", applied),
		zap.String("version", doc.Version),
		zap.Duration("took", time.Since(start)))
	return true, nil
}
