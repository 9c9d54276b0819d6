package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/export"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExportService renders grade and attendance sheets to CSV or PDF.
type ExportService struct {
	workspaces workspaceProvider
	grades     *GradeService
	logger     *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(workspaces workspaceProvider, grades *GradeService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{workspaces: workspaces, grades: grades, logger: logger}
}

func formatScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

var attendanceLabels = map[string]string{
	models.StatusPresent:   "Có",
	models.StatusExcused:   "C.Phép",
	models.StatusUnexcused: "K.Phép",
	models.StatusOff:       "Nghỉ",
}

func (s *ExportService) render(format string, table export.Table, nameParts ...string) (*ExportFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Validation(err, "unsupported export format")
	}
	content, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Name:        export.FileName(renderer.Extension(), nameParts...),
		ContentType: renderer.ContentType(),
		Content:     content,
	}, nil
}

// GradeSheet renders the grade sheet of a class and subject.
func (s *ExportService) GradeSheet(ctx context.Context, session *models.SessionTeacher, classID, subjectID, format string) (*ExportFile, error) {
	sheet, err := s.grades.Sheet(ctx, session, classID, subjectID)
	if err != nil {
		return nil, err
	}
	className := classID
	if class := s.workspaces.For(session).Classes.Find(ctx, classID); class != nil {
		className = class.Name
	}

	table := export.Table{
		Title:   fmt.Sprintf("Bảng điểm lớp %s - Môn %s", className, sheet.SubjectName),
		Headers: append(append([]string{"STT", "Họ và Tên", "Ngày sinh", "Giới tính"}, sheet.Columns...), "Điểm môn", "TB chung"),
	}
	for i, row := range sheet.Rows {
		cells := []string{strconv.Itoa(i + 1), row.Name, row.DOB, row.Gender}
		for _, c := range row.Cells {
			cells = append(cells, formatScore(c.Score))
		}
		cells = append(cells, formatScore(row.SubjectScore), strconv.FormatFloat(row.AverageScore, 'f', 1, 64))
		table.Rows = append(table.Rows, cells)
	}

	file, err := s.render(format, table, "Bang_diem", className, sheet.SubjectName)
	if err != nil {
		return nil, err
	}
	s.logger.Info("grade sheet exported", zap.String("class_id", classID), zap.String("subject_id", subjectID), zap.String("file", file.Name))
	return file, nil
}

// AttendanceSheet renders attendance of a class, one column per session.
// Unset statuses count as present.
func (s *ExportService) AttendanceSheet(ctx context.Context, session *models.SessionTeacher, classID, subjectID, format string) (*ExportFile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	class := ws.Classes.Find(ctx, classID)
	if class == nil {
		return nil, appErrors.NotFound("class")
	}
	sessions := ws.Attendance.ListByClass(ctx, classID, subjectID)

	headers := []string{"STT", "Họ và Tên", "Ngày sinh", "Giới tính"}
	for _, sess := range sessions {
		headers = append(headers, sess.Date)
	}
	table := export.Table{
		Title:   "Điểm danh lớp " + class.Name,
		Headers: append(headers, "Chuyên cần", "Ghi chú"),
	}
	for i, st := range ws.Students.ListByClass(ctx, classID) {
		cells := []string{strconv.Itoa(i + 1), st.Name, st.DOB, st.Gender}
		present := 0
		for _, sess := range sessions {
			status := st.Attendance[sess.ID]
			if status == "" {
				status = models.StatusPresent
			}
			if status == models.StatusPresent {
				present++
			}
			cells = append(cells, attendanceLabels[status])
		}
		notes := st.Notes
		if notes == "" {
			notes = st.Comments
		}
		cells = append(cells, fmt.Sprintf("%d/%d", present, len(sessions)), notes)
		table.Rows = append(table.Rows, cells)
	}

	return s.render(format, table, "Diem_danh", class.Name)
}
