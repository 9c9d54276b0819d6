package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/formula"
)

// AttendanceService records roll calls for classes.
type AttendanceService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{workspaces: workspaces, validator: validate, logger: logger}
}

// Sessions lists the roll calls of a class, optionally for one subject.
func (s *AttendanceService) Sessions(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) ([]models.AttendanceSession, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	return s.workspaces.For(session).Attendance.ListByClass(ctx, classID, subjectID), nil
}

// AddSession opens a roll call and marks every student of the class present.
func (s *AttendanceService) AddSession(ctx context.Context, session *models.SessionTeacher, req models.CreateSessionRequest) (*models.AttendanceSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid session payload")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var created *models.AttendanceSession
	err := ws.Atomically(func() error {
		if ws.Classes.Find(ctx, req.ClassID) == nil {
			return appErrors.NotFound("class")
		}
		var err error
		created, err = ws.Attendance.Add(ctx, req.ClassID, req.SubjectID, req.Date)
		if err != nil {
			return err
		}
		students := ws.Students.List(ctx)
		changed := false
		for i := range students {
			if students[i].ClassID != req.ClassID {
				continue
			}
			if students[i].Attendance == nil {
				students[i].Attendance = make(map[string]string)
			}
			students[i].Attendance[created.ID] = models.StatusPresent
			changed = true
		}
		if changed {
			ws.Students.Save(ctx, students)
		}
		return nil
	})
	return created, err
}

// SetStatus records one student's status for a session.
func (s *AttendanceService) SetStatus(ctx context.Context, session *models.SessionTeacher, req models.AttendanceStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid attendance payload")
	}
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Attendance.Find(ctx, req.SessionID) == nil {
			return appErrors.NotFound("attendance session")
		}
		students := ws.Students.List(ctx)
		for i := range students {
			if students[i].ID != req.StudentID {
				continue
			}
			if students[i].Attendance == nil {
				students[i].Attendance = make(map[string]string)
			}
			students[i].Attendance[req.SessionID] = req.Status
			ws.Students.Save(ctx, students)
			return nil
		}
		return appErrors.NotFound("student")
	})
}

// UpdateDate moves a session to another day.
func (s *AttendanceService) UpdateDate(ctx context.Context, session *models.SessionTeacher, sessionID string, req models.UpdateSessionDateRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid date")
	}
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if !ws.Attendance.UpdateDate(ctx, sessionID, req.Date) {
			return appErrors.NotFound("attendance session")
		}
		return nil
	})
}

// DeleteSession removes a session and strips its status from every student.
func (s *AttendanceService) DeleteSession(ctx context.Context, session *models.SessionTeacher, sessionID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		if ws.Attendance.Find(ctx, sessionID) == nil {
			return appErrors.NotFound("attendance session")
		}
		ws.Attendance.Delete(ctx, sessionID)

		students := ws.Students.List(ctx)
		changed := false
		for i := range students {
			if _, ok := students[i].Attendance[sessionID]; ok {
				delete(students[i].Attendance, sessionID)
				changed = true
			}
		}
		if changed {
			ws.Students.Save(ctx, students)
		}
		return nil
	})
}

// ClassSummary counts statuses per student over the class sessions. A
// missing status counts as present.
func (s *AttendanceService) ClassSummary(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (*models.AttendanceSummary, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	if ws.Classes.Find(ctx, classID) == nil {
		return nil, appErrors.NotFound("class")
	}
	sessions := ws.Attendance.ListByClass(ctx, classID, subjectID)
	summary := &models.AttendanceSummary{
		ClassID:  classID,
		Sessions: len(sessions),
		Students: []models.StudentAttendance{},
	}

	var records, present int
	for _, st := range ws.Students.ListByClass(ctx, classID) {
		row := models.StudentAttendance{
			StudentID: st.ID,
			Name:      st.Name,
			Total:     len(sessions),
			Counts: map[string]int{
				models.StatusPresent:   0,
				models.StatusExcused:   0,
				models.StatusUnexcused: 0,
				models.StatusOff:       0,
			},
		}
		for _, sess := range sessions {
			status := st.Attendance[sess.ID]
			if status == "" {
				status = models.StatusPresent
			}
			row.Counts[status]++
			if status == models.StatusPresent {
				row.Present++
			}
		}
		records += row.Total
		present += row.Present
		summary.Students = append(summary.Students, row)
	}
	if records > 0 {
		summary.Rate = formula.Round1(float64(present) / float64(records) * 100)
	}
	return summary, nil
}
