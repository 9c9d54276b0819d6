package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// SchoolService coordinates schools, classes, subjects and per-teacher settings.
type SchoolService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSchoolService constructs SchoolService.
func NewSchoolService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{workspaces: workspaces, validator: validate, logger: logger}
}

// ListSchools returns the teacher's schools.
func (s *SchoolService) ListSchools(ctx context.Context, session *models.SessionTeacher) ([]models.School, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.workspaces.For(session).Schools.List(ctx), nil
}

// CreateSchool adds a school.
func (s *SchoolService) CreateSchool(ctx context.Context, session *models.SessionTeacher, req models.CreateSchoolRequest) (*models.School, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid school payload")
	}
	ws := s.workspaces.For(session)
	var school *models.School
	err := ws.Atomically(func() error {
		var err error
		school, err = ws.Schools.Add(ctx, req.Name)
		return err
	})
	return school, err
}

// DeleteSchool removes a school.
func (s *SchoolService) DeleteSchool(ctx context.Context, session *models.SessionTeacher, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Schools.Find(ctx, id) == nil {
			return appErrors.NotFound("school")
		}
		ws.Schools.Delete(ctx, id)
		return nil
	})
}

// ReorderSchools moves one school to another's position and returns the new order.
func (s *SchoolService) ReorderSchools(ctx context.Context, session *models.SessionTeacher, req models.ReorderRequest) ([]models.School, error) {
	if err := s.checkReorder(session, req); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var schools []models.School
	err := ws.Atomically(func() error {
		if !ws.Schools.Reorder(ctx, req.DraggedID, req.TargetID) {
			return appErrors.NotFound("school")
		}
		schools = ws.Schools.List(ctx)
		return nil
	})
	return schools, err
}

// ListClasses returns classes of a school, or all classes for an empty id.
func (s *SchoolService) ListClasses(ctx context.Context, session *models.SessionTeacher, schoolID string) ([]models.Class, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.workspaces.For(session).Classes.ListBySchool(ctx, schoolID), nil
}

// CreateClass adds a class to an existing school.
func (s *SchoolService) CreateClass(ctx context.Context, session *models.SessionTeacher, req models.CreateClassRequest) (*models.Class, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class payload")
	}
	ws := s.workspaces.For(session)
	var class *models.Class
	err := ws.Atomically(func() error {
		if ws.Schools.Find(ctx, req.SchoolID) == nil {
			return appErrors.NotFound("school")
		}
		var err error
		class, err = ws.Classes.Add(ctx, models.Class{Name: req.Name, SchoolID: req.SchoolID})
		return err
	})
	return class, err
}

// DeleteClass removes a class with its students and attendance sessions.
func (s *SchoolService) DeleteClass(ctx context.Context, session *models.SessionTeacher, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Classes.Find(ctx, id) == nil {
			return appErrors.NotFound("class")
		}
		ws.Classes.Delete(ctx, id)
		s.logger.Info("class deleted", zap.String("class_id", id), zap.String("teacher", ws.Owner()))
		return nil
	})
}

// ReorderClasses moves a class within one school's list.
func (s *SchoolService) ReorderClasses(ctx context.Context, session *models.SessionTeacher, req models.ReorderRequest) ([]models.Class, error) {
	if err := s.checkReorder(session, req); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var classes []models.Class
	err := ws.Atomically(func() error {
		if !ws.Classes.Reorder(ctx, req.SchoolID, req.DraggedID, req.TargetID) {
			return appErrors.NotFound("class")
		}
		classes = ws.Classes.ListBySchool(ctx, req.SchoolID)
		return nil
	})
	return classes, err
}

// ListSubjects returns subjects of a school, or all subjects for an empty id.
func (s *SchoolService) ListSubjects(ctx context.Context, session *models.SessionTeacher, schoolID string) ([]models.Subject, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.workspaces.For(session).Subjects.ListBySchool(ctx, schoolID), nil
}

// CreateSubject adds a subject to an existing school. Names are unique per
// school; the same name may exist in another school.
func (s *SchoolService) CreateSubject(ctx context.Context, session *models.SessionTeacher, req models.CreateSubjectRequest) (*models.Subject, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subject payload")
	}
	ws := s.workspaces.For(session)
	var subject *models.Subject
	err := ws.Atomically(func() error {
		if ws.Schools.Find(ctx, req.SchoolID) == nil {
			return appErrors.NotFound("school")
		}
		for _, existing := range ws.Subjects.ListBySchool(ctx, req.SchoolID) {
			if existing.Name == req.Name {
				return appErrors.Clone(appErrors.ErrConflict, "subject already exists in this school")
			}
		}
		var err error
		subject, err = ws.Subjects.Add(ctx, req.Name, req.SchoolID)
		return err
	})
	return subject, err
}

// DeleteSubject removes a subject; student grade records keep their copy.
func (s *SchoolService) DeleteSubject(ctx context.Context, session *models.SessionTeacher, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Subjects.Find(ctx, id) == nil {
			return appErrors.NotFound("subject")
		}
		ws.Subjects.Delete(ctx, id)
		return nil
	})
}

// ReorderSubjects moves a subject within one school's list.
func (s *SchoolService) ReorderSubjects(ctx context.Context, session *models.SessionTeacher, req models.ReorderRequest) ([]models.Subject, error) {
	if err := s.checkReorder(session, req); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var subjects []models.Subject
	err := ws.Atomically(func() error {
		if !ws.Subjects.Reorder(ctx, req.SchoolID, req.DraggedID, req.TargetID) {
			return appErrors.NotFound("subject")
		}
		subjects = ws.Subjects.ListBySchool(ctx, req.SchoolID)
		return nil
	})
	return subjects, err
}

func (s *SchoolService) checkReorder(session *models.SessionTeacher, req models.ReorderRequest) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid reorder payload")
	}
	return nil
}

// Grid returns the seating grid for a subject view.
func (s *SchoolService) Grid(ctx context.Context, session *models.SessionTeacher, subjectID string) (models.GridSettings, error) {
	if err := requireSession(session); err != nil {
		return models.GridSettings{}, err
	}
	return s.workspaces.For(session).Settings.Grid(ctx, subjectID), nil
}

// SaveGrid stores the grid for a subject, or the teacher default for an empty subject id.
func (s *SchoolService) SaveGrid(ctx context.Context, session *models.SessionTeacher, subjectID string, grid models.GridSettings) (models.GridSettings, error) {
	if err := requireSession(session); err != nil {
		return models.GridSettings{}, err
	}
	if grid.Size == 0 {
		grid.Size = models.DefaultGrid.Size
	}
	if err := s.validator.Struct(grid); err != nil {
		return models.GridSettings{}, appErrors.Validation(err, "invalid grid settings")
	}
	ws := s.workspaces.For(session)
	err := ws.Atomically(func() error {
		ws.Settings.SaveGrid(ctx, subjectID, grid)
		return nil
	})
	return grid, err
}

// Sharing returns the sharing preferences.
func (s *SchoolService) Sharing(ctx context.Context, session *models.SessionTeacher) (models.SharingSettings, error) {
	if err := requireSession(session); err != nil {
		return models.SharingSettings{}, err
	}
	return s.workspaces.For(session).Settings.Sharing(ctx), nil
}

// SaveSharing stores sharing preferences, dropping class ids the teacher does not own.
func (s *SchoolService) SaveSharing(ctx context.Context, session *models.SessionTeacher, sharing models.SharingSettings) (models.SharingSettings, error) {
	if err := requireSession(session); err != nil {
		return models.SharingSettings{}, err
	}
	ws := s.workspaces.For(session)
	err := ws.Atomically(func() error {
		known := make(map[string]struct{})
		for _, c := range ws.Classes.List(ctx) {
			known[c.ID] = struct{}{}
		}
		shared := make([]string, 0, len(sharing.SharedClasses))
		for _, id := range sharing.SharedClasses {
			if _, ok := known[id]; ok {
				shared = append(shared, id)
			}
		}
		sharing.SharedClasses = shared
		ws.Settings.SaveSharing(ctx, sharing)
		return nil
	})
	return sharing, err
}
