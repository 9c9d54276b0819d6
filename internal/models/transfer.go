package models

// Transfer is a pending class handover between two teachers.
type Transfer struct {
	ID                 string              `json:"id"`
	FromUser           string              `json:"fromUser"`
	FromName           string              `json:"fromName"`
	ToUser             string              `json:"toUser"`
	ClassName          string              `json:"className"`
	SenderSubjectName  string              `json:"senderSubjectName,omitempty"`
	SenderSchoolName   string              `json:"senderSchoolName,omitempty"`
	Students           []Student           `json:"students"`
	AttendanceSessions []AttendanceSession `json:"attendanceSessions"`
	Date               string              `json:"date"`
}

// OfferTransferRequest hands a class to another teacher.
type OfferTransferRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	SchoolID  string `json:"schoolId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	ToEmail   string `json:"toEmail" validate:"required,email"`
}

// AcceptTransferRequest materialises a transfer into the receiver's school and subject.
type AcceptTransferRequest struct {
	TransferID string `json:"transferId" validate:"required"`
	SchoolID   string `json:"schoolId" validate:"required"`
	SubjectID  string `json:"subjectId" validate:"required"`
}

// TransferSummary is the listing view of a pending transfer.
type TransferSummary struct {
	ID                string `json:"id"`
	FromUser          string `json:"fromUser"`
	FromName          string `json:"fromName"`
	ClassName         string `json:"className"`
	SenderSubjectName string `json:"senderSubjectName,omitempty"`
	SenderSchoolName  string `json:"senderSchoolName,omitempty"`
	StudentCount      int    `json:"studentCount"`
	Date              string `json:"date"`
}

// Summary builds the listing view.
func (t Transfer) Summary() TransferSummary {
	return TransferSummary{
		ID:                t.ID,
		FromUser:          t.FromUser,
		FromName:          t.FromName,
		ClassName:         t.ClassName,
		SenderSubjectName: t.SenderSubjectName,
		SenderSchoolName:  t.SenderSchoolName,
		StudentCount:      len(t.Students),
		Date:              t.Date,
	}
}

// Recipient is a teacher a class can be handed to.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Transfer actions counted by metrics.
const (
	TransferOffered  = "offered"
	TransferAccepted = "accepted"
	TransferRejected = "rejected"
)
