package models

// Attendance statuses recorded per session. An unset status counts as present.
const (
	StatusPresent   = "present"
	StatusExcused   = "excused"
	StatusUnexcused = "unexcused"
	StatusOff       = "off"
)

// Assessment is one named grade cell.
type Assessment struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

// SubjectRecord is a student's grades for one subject, matched by subject name.
type SubjectRecord struct {
	Name        string       `json:"name"`
	Score       *float64     `json:"score"`
	Assessments []Assessment `json:"assessments"`
}

// HasData reports whether the record carries a score or any assessment.
func (r SubjectRecord) HasData() bool {
	return r.Score != nil || len(r.Assessments) > 0
}

// Student is a learner in a class with embedded grades and attendance.
type Student struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	DOB           string            `json:"dob"`
	Gender        string            `json:"gender"`
	Seat          int               `json:"seat"`
	SeatPositions map[string]int    `json:"seatPositions,omitempty"`
	Avatar        string            `json:"avatar,omitempty"`
	ClassID       string            `json:"classId"`
	Subjects      []SubjectRecord   `json:"subjects"`
	Attendance    map[string]string `json:"attendance,omitempty"`
	Notes         string            `json:"notes"`
	Conduct       float64           `json:"conduct"`
	Comments      string            `json:"comments"`
	AverageScore  float64           `json:"averageScore"`
}

// SubjectIndex returns the position of the named subject record or -1.
func (s *Student) SubjectIndex(name string) int {
	for i := range s.Subjects {
		if s.Subjects[i].Name == name {
			return i
		}
	}
	return -1
}

// SeatFor resolves the seat shown for a subject view; an empty subject id
// or a missing override yields the base seat.
func (s *Student) SeatFor(subjectID string) int {
	if subjectID != "" {
		if seat, ok := s.SeatPositions[subjectID]; ok {
			return seat
		}
	}
	return s.Seat
}

// CreateStudentRequest payload for adding a student to a class.
type CreateStudentRequest struct {
	ClassID  string   `json:"classId" validate:"required"`
	SchoolID string   `json:"schoolId" validate:"required"`
	Name     string   `json:"name" validate:"required,max=200"`
	DOB      string   `json:"dob"`
	Gender   string   `json:"gender" validate:"omitempty,max=20"`
	Notes    string   `json:"notes"`
	Conduct  *float64 `json:"conduct" validate:"omitempty,gte=0,lte=10"`
	Seat     *int     `json:"seat" validate:"omitempty,gte=0"`
}

// UpdateStudentRequest edits a student's profile fields.
type UpdateStudentRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1,max=200"`
	DOB      *string  `json:"dob"`
	Gender   *string  `json:"gender" validate:"omitempty,max=20"`
	Notes    *string  `json:"notes"`
	Comments *string  `json:"comments"`
	Conduct  *float64 `json:"conduct" validate:"omitempty,gte=0,lte=10"`
	Avatar   *string  `json:"avatar"`
}

// AssignSeatRequest moves a student to a seat, optionally for one subject view.
type AssignSeatRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	Seat      int    `json:"seat" validate:"gte=0"`
	SubjectID string `json:"subjectId"`
}

// Defaults applied to new students.
const (
	DefaultConduct = 8.0
	DefaultGender  = "Nam"
	DefaultAvatar  = "default"
	UnknownDOB     = "Chưa cập nhật"
)

// BulkStudentRow is one imported roster line.
type BulkStudentRow struct {
	Name    string   `json:"name" validate:"required,max=200"`
	DOB     string   `json:"dob"`
	Gender  string   `json:"gender" validate:"omitempty,max=20"`
	Conduct *float64 `json:"conduct" validate:"omitempty,gte=0,lte=10"`
	Notes   string   `json:"notes"`
}

// BulkAddStudentsRequest imports a roster into a class.
type BulkAddStudentsRequest struct {
	ClassID  string           `json:"classId" validate:"required"`
	SchoolID string           `json:"schoolId" validate:"required"`
	Students []BulkStudentRow `json:"students" validate:"required,min=1,dive"`
}

// BulkAddResult reports how many roster lines were seated.
type BulkAddResult struct {
	Added   []Student `json:"added"`
	Skipped int       `json:"skipped"`
}
