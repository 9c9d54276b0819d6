package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// StudentService manages class rosters and seating.
type StudentService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{workspaces: workspaces, validator: validate, logger: logger}
}

func newStudentID() string {
	return "HS" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// List returns the students of a class, or every student for an empty class id.
func (s *StudentService) List(ctx context.Context, session *models.SessionTeacher, classID string) ([]models.Student, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	if classID == "" {
		return ws.Students.List(ctx), nil
	}
	return ws.Students.ListByClass(ctx, classID), nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, session *models.SessionTeacher, id string) (*models.Student, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	student := s.workspaces.For(session).Students.Find(ctx, id)
	if student == nil {
		return nil, appErrors.NotFound("student")
	}
	return student, nil
}

// emptyRecords builds one blank subject record per subject of the school.
func emptyRecords(subjects []models.Subject) []models.SubjectRecord {
	records := make([]models.SubjectRecord, 0, len(subjects))
	for _, sub := range subjects {
		records = append(records, models.SubjectRecord{Name: sub.Name, Assessments: []models.Assessment{}})
	}
	return records
}

// seatAllocator hands out the free seats of one class in ascending order. A
// seat held by a classmate in any subject view counts as taken, so a new base
// seat never collides with an override.
type seatAllocator struct {
	capacity int
	taken    map[int]bool
	next     int
}

func newSeatAllocator(students []models.Student, classID string, grid models.GridSettings) *seatAllocator {
	a := &seatAllocator{capacity: grid.Seats(), taken: make(map[int]bool)}
	for _, st := range students {
		if st.ClassID != classID {
			continue
		}
		a.taken[st.Seat] = true
		for _, seat := range st.SeatPositions {
			a.taken[seat] = true
		}
	}
	return a
}

func (a *seatAllocator) claim(seat int) bool {
	if seat < 0 || seat >= a.capacity || a.taken[seat] {
		return false
	}
	a.taken[seat] = true
	return true
}

func (a *seatAllocator) firstFree() (int, bool) {
	for ; a.next < a.capacity; a.next++ {
		if !a.taken[a.next] {
			a.taken[a.next] = true
			return a.next, true
		}
	}
	return -1, false
}

func (s *StudentService) classContext(ctx context.Context, ws *repository.Workspace, classID, schoolID string) (*models.Class, error) {
	class := ws.Classes.Find(ctx, classID)
	if class == nil {
		return nil, appErrors.NotFound("class")
	}
	if schoolID != "" && class.SchoolID != schoolID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class does not belong to school")
	}
	return class, nil
}

// Create adds a student to a class on the requested seat or the first free one.
func (s *StudentService) Create(ctx context.Context, session *models.SessionTeacher, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var created *models.Student
	err := ws.Atomically(func() error {
		class, err := s.classContext(ctx, ws, req.ClassID, req.SchoolID)
		if err != nil {
			return err
		}
		students := ws.Students.List(ctx)
		seats := newSeatAllocator(students, class.ID, ws.Settings.Grid(ctx, ""))

		var seat int
		var ok bool
		if req.Seat != nil {
			seat, ok = *req.Seat, seats.claim(*req.Seat)
			if !ok {
				return appErrors.Clone(appErrors.ErrConflict, "seat is taken or outside the grid")
			}
		} else if seat, ok = seats.firstFree(); !ok {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "no free seat left in the grid")
		}

		student := models.Student{
			ID:       newStudentID(),
			Name:     strings.TrimSpace(req.Name),
			DOB:      orDefault(req.DOB, models.UnknownDOB),
			Gender:   req.Gender,
			Seat:     seat,
			Avatar:   models.DefaultAvatar,
			ClassID:  class.ID,
			Subjects: emptyRecords(ws.Subjects.ListBySchool(ctx, class.SchoolID)),
			Notes:    req.Notes,
			Conduct:  models.DefaultConduct,
		}
		if req.Conduct != nil {
			student.Conduct = *req.Conduct
		}
		ws.Students.Save(ctx, append(students, student))
		created = &student
		return nil
	})
	return created, err
}

// BulkCreate imports roster lines into a class, seating each on the next
// free seat. Lines beyond the grid capacity are skipped.
func (s *StudentService) BulkCreate(ctx context.Context, session *models.SessionTeacher, req models.BulkAddStudentsRequest) (*models.BulkAddResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid roster payload")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	result := &models.BulkAddResult{Added: []models.Student{}}
	err := ws.Atomically(func() error {
		class, err := s.classContext(ctx, ws, req.ClassID, req.SchoolID)
		if err != nil {
			return err
		}
		students := ws.Students.List(ctx)
		seats := newSeatAllocator(students, class.ID, ws.Settings.Grid(ctx, ""))
		subjects := ws.Subjects.ListBySchool(ctx, class.SchoolID)

		for _, row := range req.Students {
			seat, ok := seats.firstFree()
			if !ok {
				result.Skipped++
				continue
			}
			student := models.Student{
				ID:       newStudentID(),
				Name:     strings.TrimSpace(row.Name),
				DOB:      orDefault(row.DOB, models.UnknownDOB),
				Gender:   orDefault(row.Gender, models.DefaultGender),
				Seat:     seat,
				Avatar:   models.DefaultAvatar,
				ClassID:  class.ID,
				Subjects: emptyRecords(subjects),
				Notes:    row.Notes,
				Conduct:  models.DefaultConduct,
			}
			if row.Conduct != nil {
				student.Conduct = *row.Conduct
			}
			students = append(students, student)
			result.Added = append(result.Added, student)
		}
		if len(result.Added) > 0 {
			ws.Students.Save(ctx, students)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("roster imported",
		zap.String("class_id", req.ClassID),
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// Update edits a student's profile.
func (s *StudentService) Update(ctx context.Context, session *models.SessionTeacher, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var updated *models.Student
	err := ws.Atomically(func() error {
		students := ws.Students.List(ctx)
		for i := range students {
			if students[i].ID != id {
				continue
			}
			st := &students[i]
			if req.Name != nil {
				st.Name = strings.TrimSpace(*req.Name)
			}
			if req.DOB != nil {
				st.DOB = orDefault(*req.DOB, models.UnknownDOB)
			}
			if req.Gender != nil {
				st.Gender = *req.Gender
			}
			if req.Notes != nil {
				st.Notes = *req.Notes
			}
			if req.Comments != nil {
				st.Comments = *req.Comments
			}
			if req.Conduct != nil {
				st.Conduct = *req.Conduct
			}
			if req.Avatar != nil && *req.Avatar != "" {
				st.Avatar = *req.Avatar
			}
			ws.Students.Save(ctx, students)
			found := *st
			updated = &found
			return nil
		}
		return appErrors.NotFound("student")
	})
	return updated, err
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, session *models.SessionTeacher, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	return ws.Atomically(func() error {
		students := ws.Students.List(ctx)
		kept := students[:0]
		for _, st := range students {
			if st.ID != id {
				kept = append(kept, st)
			}
		}
		if len(kept) == len(students) {
			return appErrors.NotFound("student")
		}
		ws.Students.Save(ctx, kept)
		return nil
	})
}

// setSeat writes the base seat or, with a subject id, the subject override.
func setSeat(st *models.Student, seat int, subjectID string) {
	if subjectID == "" {
		st.Seat = seat
		return
	}
	if st.SeatPositions == nil {
		st.SeatPositions = make(map[string]int)
	}
	st.SeatPositions[subjectID] = seat
}

// AssignSeat moves a student to a seat in the given subject view. A classmate
// already sitting there takes the mover's previous seat.
func (s *StudentService) AssignSeat(ctx context.Context, session *models.SessionTeacher, req models.AssignSeatRequest) ([]models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid seat payload")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	var roster []models.Student
	err := ws.Atomically(func() error {
		if grid := ws.Settings.Grid(ctx, req.SubjectID); req.Seat >= grid.Seats() {
			return appErrors.Clone(appErrors.ErrValidation, "seat is outside the grid")
		}
		students := ws.Students.List(ctx)
		mover := -1
		for i := range students {
			if students[i].ID == req.StudentID {
				mover = i
				break
			}
		}
		if mover < 0 {
			return appErrors.NotFound("student")
		}
		classID := students[mover].ClassID
		previous := students[mover].SeatFor(req.SubjectID)
		for i := range students {
			if i == mover || students[i].ClassID != classID {
				continue
			}
			if students[i].SeatFor(req.SubjectID) == req.Seat {
				setSeat(&students[i], previous, req.SubjectID)
				break
			}
		}
		setSeat(&students[mover], req.Seat, req.SubjectID)
		ws.Students.Save(ctx, students)

		roster = make([]models.Student, 0)
		for _, st := range students {
			if st.ClassID == classID {
				roster = append(roster, st)
			}
		}
		return nil
	})
	return roster, err
}

// SeatingChart maps seat index to student for a class in one subject view.
func (s *StudentService) SeatingChart(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (map[int]models.Student, models.GridSettings, error) {
	if err := requireSession(session); err != nil {
		return nil, models.GridSettings{}, err
	}
	ws := s.workspaces.For(session)
	chart := make(map[int]models.Student)
	for _, st := range ws.Students.ListByClass(ctx, classID) {
		chart[st.SeatFor(subjectID)] = st
	}
	return chart, ws.Settings.Grid(ctx, subjectID), nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
