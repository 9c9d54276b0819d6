package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/formula"
)

const (
	rankingSize     = 5
	femaleGender    = "Nữ"
	goodSubjectMean = 8.0
	poorSubjectMean = 5.0
)

// ReportService builds class analytics from stored rosters, grades and attendance.
type ReportService struct {
	workspaces workspaceProvider
	logger     *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(workspaces workspaceProvider, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{workspaces: workspaces, logger: logger}
}

// ClassReport summarises one class: head counts, mean score, attendance,
// score rankings and the mean of every subject of the class's school.
func (s *ReportService) ClassReport(ctx context.Context, session *models.SessionTeacher, classID string) (*models.ClassReport, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	class := ws.Classes.Find(ctx, classID)
	if class == nil {
		return nil, appErrors.NotFound("class")
	}
	var students []models.Student
	for _, st := range ws.Students.List(ctx) {
		if st.ClassID == classID {
			students = append(students, st)
		}
	}

	report := &models.ClassReport{
		ClassID:      class.ID,
		ClassName:    class.Name,
		SchoolID:     class.SchoolID,
		StudentCount: len(students),
		Attendance:   attendanceSummary(students),
	}
	var sum float64
	for _, st := range students {
		switch st.Gender {
		case models.DefaultGender:
			report.MaleCount++
		case femaleGender:
			report.FemaleCount++
		}
		sum += st.AverageScore
	}
	if len(students) > 0 {
		report.AverageScore = formula.Round1(sum / float64(len(students)))
	}
	report.TopStudents = rankStudents(students, true)
	report.NeedsImprovement = rankStudents(students, false)
	report.Subjects = subjectPerformance(students, ws.Subjects.ListBySchool(ctx, class.SchoolID))

	s.logger.Debug("class report built", zap.String("class_id", classID), zap.Int("students", len(students)))
	return report, nil
}

// attendanceSummary counts recorded statuses only. Unexcused and off sessions
// are absences; excused sessions are neither present nor absent.
func attendanceSummary(students []models.Student) models.ClassAttendanceSummary {
	summary := models.ClassAttendanceSummary{Perfect: []string{}, TopAbsentees: []models.AbsenceCount{}}
	var absentees []models.AbsenceCount
	for _, st := range students {
		present, absent := 0, 0
		for _, status := range st.Attendance {
			switch status {
			case models.StatusPresent:
				present++
			case models.StatusUnexcused, models.StatusOff:
				absent++
			}
		}
		summary.Recorded += len(st.Attendance)
		summary.Present += present
		if len(st.Attendance) > 0 && present == len(st.Attendance) {
			summary.PerfectCount++
			if len(summary.Perfect) < rankingSize {
				summary.Perfect = append(summary.Perfect, st.Name)
			}
		}
		if absent > 0 {
			absentees = append(absentees, models.AbsenceCount{ID: st.ID, Name: st.Name, Absent: absent})
		}
	}
	if summary.Recorded > 0 {
		summary.Rate = formula.Round1(float64(summary.Present) / float64(summary.Recorded) * 100)
	}
	sort.SliceStable(absentees, func(i, j int) bool { return absentees[i].Absent > absentees[j].Absent })
	if len(absentees) > rankingSize {
		absentees = absentees[:rankingSize]
	}
	summary.TopAbsentees = append(summary.TopAbsentees, absentees...)
	return summary
}

// rankStudents returns up to five students by average score, highest first
// when top is set and lowest first otherwise. Ties keep roster order.
func rankStudents(students []models.Student, top bool) []models.RankedStudent {
	sorted := make([]models.Student, len(students))
	copy(sorted, students)
	sort.SliceStable(sorted, func(i, j int) bool {
		if top {
			return sorted[i].AverageScore > sorted[j].AverageScore
		}
		return sorted[i].AverageScore < sorted[j].AverageScore
	})
	if len(sorted) > rankingSize {
		sorted = sorted[:rankingSize]
	}
	out := make([]models.RankedStudent, 0, len(sorted))
	for _, st := range sorted {
		out = append(out, models.RankedStudent{ID: st.ID, Name: st.Name, AverageScore: st.AverageScore})
	}
	return out
}

func subjectPerformance(students []models.Student, subjects []models.Subject) []models.SubjectPerformance {
	out := make([]models.SubjectPerformance, 0, len(subjects))
	for _, sub := range subjects {
		perf := models.SubjectPerformance{SubjectID: sub.ID, Name: sub.Name}
		var sum float64
		for i := range students {
			idx := students[i].SubjectIndex(sub.Name)
			if idx < 0 || students[i].Subjects[idx].Score == nil {
				continue
			}
			sum += *students[i].Subjects[idx].Score
			perf.Graded++
		}
		if perf.Graded > 0 {
			mean := formula.Round1(sum / float64(perf.Graded))
			perf.Average = &mean
			switch {
			case mean >= goodSubjectMean:
				perf.Level = models.LevelGood
			case mean < poorSubjectMean:
				perf.Level = models.LevelPoor
			default:
				perf.Level = models.LevelNormal
			}
		}
		out = append(out, perf)
	}
	return out
}
