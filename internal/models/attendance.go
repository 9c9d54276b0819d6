package models

// AttendanceSession is one roll call for a class, optionally bound to a subject.
type AttendanceSession struct {
	ID        string `json:"id"`
	ClassID   string `json:"classId"`
	SubjectID string `json:"subjectId,omitempty"`
	Date      string `json:"date"`
}

// AttendanceStatusRequest records one student's status for a session.
type AttendanceStatusRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present excused unexcused off"`
}

// UpdateSessionDateRequest moves a roll call to another day.
type UpdateSessionDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// CreateSessionRequest opens a roll call.
type CreateSessionRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	SubjectID string `json:"subjectId"`
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// StudentAttendance aggregates one student's statuses over a class's sessions.
type StudentAttendance struct {
	StudentID string         `json:"studentId"`
	Name      string         `json:"name"`
	Present   int            `json:"present"`
	Total     int            `json:"total"`
	Counts    map[string]int `json:"counts"`
}

// AttendanceSummary is the per-class attendance report.
type AttendanceSummary struct {
	ClassID  string              `json:"classId"`
	Sessions int                 `json:"sessions"`
	Rate     float64             `json:"rate"`
	Students []StudentAttendance `json:"students"`
}
