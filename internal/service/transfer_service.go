package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

type transferMetrics interface {
	RecordTransfer(action string)
}

// TransferOptions tune how accepted transfers remap grade data.
type TransferOptions struct {
	// AdoptSoleSubject lets a student's only subject with data fill the
	// target subject when no subject name matches.
	AdoptSoleSubject bool
}

// TransferService moves classes between teachers.
type TransferService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    transferMetrics
	opts       TransferOptions
}

// NewTransferService constructs TransferService.
func NewTransferService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger, metrics transferMetrics, opts TransferOptions) *TransferService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{workspaces: workspaces, validator: validate, logger: logger, metrics: metrics, opts: opts}
}

func (s *TransferService) record(action string) {
	if s.metrics != nil {
		s.metrics.RecordTransfer(action)
	}
}

// Offer snapshots a class with its students and attendance into a pending
// transfer for another teacher, then deletes the class from the sender.
func (s *TransferService) Offer(ctx context.Context, session *models.SessionTeacher, req models.OfferTransferRequest) (*models.Transfer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "class, school, subject and recipient are required")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if storage.NormalizeEmail(req.ToEmail) == storage.NormalizeEmail(session.Email) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot transfer a class to yourself")
	}

	ws := s.workspaces.For(session)
	var offered models.Transfer
	err := ws.Atomically(func() error {
		class := ws.Classes.Find(ctx, req.ClassID)
		if class == nil {
			return appErrors.NotFound("class")
		}
		subject := ws.Subjects.Find(ctx, req.SubjectID)
		if subject == nil {
			return appErrors.NotFound("subject")
		}
		var schoolName string
		if school := ws.Schools.Find(ctx, req.SchoolID); school != nil {
			schoolName = school.Name
		}

		sessions := ws.Attendance.ListByClass(ctx, class.ID, "")
		offered = ws.Transfers.Add(ctx, models.Transfer{
			ID:                 ws.NewID("trans-"),
			FromUser:           session.Email,
			FromName:           session.Name,
			ToUser:             req.ToEmail,
			ClassName:          class.Name,
			SenderSubjectName:  subject.Name,
			SenderSchoolName:   schoolName,
			Students:           ws.Students.ListByClass(ctx, class.ID),
			AttendanceSessions: sessions,
			Date:               ws.Now().UTC().Format(time.RFC3339Nano),
		})
		ws.Classes.Delete(ctx, class.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(models.TransferOffered)
	s.logger.Info("class offered",
		zap.String("transfer_id", offered.ID),
		zap.String("from", session.Email),
		zap.String("to", offered.ToUser),
		zap.Int("students", len(offered.Students)))
	return &offered, nil
}

// Pending lists transfers addressed to the session teacher.
func (s *TransferService) Pending(ctx context.Context, session *models.SessionTeacher) ([]models.TransferSummary, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	pending := s.workspaces.For(session).Transfers.PendingFor(ctx, session.Email)
	out := make([]models.TransferSummary, 0, len(pending))
	for _, t := range pending {
		out = append(out, t.Summary())
	}
	return out, nil
}

func (s *TransferService) findOwn(ctx context.Context, ws *repository.Workspace, session *models.SessionTeacher, id string) (*models.Transfer, error) {
	transfer := ws.Transfers.Find(ctx, id)
	if transfer == nil {
		return nil, appErrors.NotFound("transfer")
	}
	if storage.NormalizeEmail(transfer.ToUser) != storage.NormalizeEmail(session.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "transfer is addressed to another teacher")
	}
	return transfer, nil
}

// Accept materialises a pending transfer as a new class in the receiver's
// school, remapping attendance sessions and grade data to the chosen subject.
func (s *TransferService) Accept(ctx context.Context, session *models.SessionTeacher, req models.AcceptTransferRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "school and subject are required to accept a class")
	}
	if err := requireSession(session); err != nil {
		return nil, err
	}

	ws := s.workspaces.For(session)
	var created *models.Class
	err := ws.Atomically(func() error {
		transfer, err := s.findOwn(ctx, ws, session, req.TransferID)
		if err != nil {
			return err
		}
		if ws.Schools.Find(ctx, req.SchoolID) == nil {
			return appErrors.NotFound("school")
		}
		target := ws.Subjects.Find(ctx, req.SubjectID)
		if target == nil {
			return appErrors.NotFound("subject")
		}

		created, err = ws.Classes.Add(ctx, models.Class{Name: transfer.ClassName, SchoolID: req.SchoolID})
		if err != nil {
			return err
		}

		sessionMap := make(map[string]string, len(transfer.AttendanceSessions))
		if len(transfer.AttendanceSessions) > 0 {
			sessions := ws.Attendance.List(ctx)
			for _, old := range transfer.AttendanceSessions {
				id := ws.NewID("att_")
				sessionMap[old.ID] = id
				sessions = append(sessions, models.AttendanceSession{
					ID:        id,
					ClassID:   created.ID,
					SubjectID: target.ID,
					Date:      old.Date,
				})
			}
			ws.Attendance.Save(ctx, sessions)
		}

		schoolSubjects := ws.Subjects.ListBySchool(ctx, req.SchoolID)
		incoming := make([]models.Student, 0, len(transfer.Students))
		for _, st := range transfer.Students {
			st.ClassID = created.ID
			st.Attendance = remapAttendance(st.Attendance, sessionMap)
			st.Subjects = s.remapSubjects(st.Subjects, schoolSubjects, transfer.SenderSubjectName, target.Name)
			incoming = append(incoming, st)
		}
		incoming = RecomputeAverages(incoming)

		students := ws.Students.List(ctx)
		ws.Students.Save(ctx, append(students, incoming...))
		ws.Transfers.Delete(ctx, transfer.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(models.TransferAccepted)
	s.logger.Info("class accepted",
		zap.String("transfer_id", req.TransferID),
		zap.String("class_id", created.ID),
		zap.String("teacher", ws.Owner()))
	return created, nil
}

func remapAttendance(attendance map[string]string, sessionMap map[string]string) map[string]string {
	if attendance == nil {
		return nil
	}
	out := make(map[string]string, len(attendance))
	for oldID, status := range attendance {
		if newID, ok := sessionMap[oldID]; ok {
			out[newID] = status
		}
	}
	return out
}

// remapSubjects rebuilds the records to the receiver's subject list and
// copies the best matching sender record into the target subject.
func (s *TransferService) remapSubjects(old []models.SubjectRecord, schoolSubjects []models.Subject, senderName, targetName string) []models.SubjectRecord {
	records := emptyRecords(schoolSubjects)
	source := s.sourceRecord(old, senderName, targetName)
	if source == nil {
		return records
	}
	for i := range records {
		if records[i].Name == targetName {
			copied := *source
			copied.Name = targetName
			if copied.Assessments == nil {
				copied.Assessments = []models.Assessment{}
			}
			records[i] = copied
			break
		}
	}
	return records
}

func (s *TransferService) sourceRecord(old []models.SubjectRecord, senderName, targetName string) *models.SubjectRecord {
	for i := range old {
		if old[i].Name == senderName {
			return &old[i]
		}
	}
	if s.opts.AdoptSoleSubject {
		var withData []int
		for i := range old {
			if old[i].HasData() {
				withData = append(withData, i)
			}
		}
		if len(withData) == 1 {
			return &old[withData[0]]
		}
	}
	for i := range old {
		if old[i].Name == targetName {
			return &old[i]
		}
	}
	return nil
}

// Reject drops a pending transfer addressed to the session teacher.
func (s *TransferService) Reject(ctx context.Context, session *models.SessionTeacher, transferID string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	ws := s.workspaces.For(session)
	err := ws.Atomically(func() error {
		if _, err := s.findOwn(ctx, ws, session, transferID); err != nil {
			return err
		}
		ws.Transfers.Delete(ctx, transferID)
		return nil
	})
	if err != nil {
		return err
	}
	s.record(models.TransferRejected)
	return nil
}

// Recipients lists the members of a group a class can be handed to,
// skipping the caller and unknown or locked teachers.
func (s *TransferService) Recipients(ctx context.Context, session *models.SessionTeacher, groupID string) ([]models.Recipient, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	group := ws.Groups.Find(ctx, groupID)
	if group == nil {
		return nil, appErrors.NotFound("group")
	}
	self := storage.NormalizeEmail(session.Email)
	out := make([]models.Recipient, 0, len(group.Members))
	for _, email := range group.Members {
		if storage.NormalizeEmail(email) == self {
			continue
		}
		teacher := ws.Directory.Find(ctx, email)
		if teacher == nil || teacher.IsLocked {
			continue
		}
		out = append(out, models.Recipient{Email: teacher.Email, Name: teacher.Name})
	}
	return out, nil
}
