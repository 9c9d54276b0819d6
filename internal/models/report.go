package models

// Subject performance levels of a class report.
const (
	LevelGood   = "good"
	LevelNormal = "normal"
	LevelPoor   = "poor"
)

// RankedStudent is one row of a score ranking.
type RankedStudent struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AverageScore float64 `json:"averageScore"`
}

// AbsenceCount is a student with at least one unexcused or off session.
type AbsenceCount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Absent int    `json:"absent"`
}

// ClassAttendanceSummary aggregates recorded attendance of a class. Rate is the
// share of recorded statuses that are present, in percent.
type ClassAttendanceSummary struct {
	Rate         float64        `json:"rate"`
	Recorded     int            `json:"recorded"`
	Present      int            `json:"present"`
	PerfectCount int            `json:"perfectCount"`
	Perfect      []string       `json:"perfect"`
	TopAbsentees []AbsenceCount `json:"topAbsentees"`
}

// SubjectPerformance is the class mean of one subject's scores.
type SubjectPerformance struct {
	SubjectID string   `json:"subjectId"`
	Name      string   `json:"name"`
	Graded    int      `json:"graded"`
	Average   *float64 `json:"average"`
	Level     string   `json:"level,omitempty"`
}

// ClassReport is the analytics view of one class.
type ClassReport struct {
	ClassID          string                 `json:"classId"`
	ClassName        string                 `json:"className"`
	SchoolID         string                 `json:"schoolId"`
	StudentCount     int                    `json:"studentCount"`
	MaleCount        int                    `json:"maleCount"`
	FemaleCount      int                    `json:"femaleCount"`
	AverageScore     float64                `json:"averageScore"`
	Attendance       ClassAttendanceSummary `json:"attendance"`
	TopStudents      []RankedStudent        `json:"topStudents"`
	NeedsImprovement []RankedStudent        `json:"needsImprovement"`
	Subjects         []SubjectPerformance   `json:"subjects"`
}

// GradeCommentary is a written reading of a subject's grade distribution.
// Text joins every section in the order the fields are declared.
type GradeCommentary struct {
	ClassID         string   `json:"classId"`
	SubjectID       string   `json:"subjectId"`
	Graded          int      `json:"graded"`
	PassRate        *float64 `json:"passRate"`
	Overview        string   `json:"overview"`
	FocusGroup      string   `json:"focusGroup,omitempty"`
	Struggling      []string `json:"struggling"`
	Excellent       []string `json:"excellent"`
	Recommendations []string `json:"recommendations"`
	Text            string   `json:"text"`
}
