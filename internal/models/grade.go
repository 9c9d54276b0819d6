package models

// GradeCell is one rendered cell of the grade sheet.
type GradeCell struct {
	Column string   `json:"column"`
	Score  *float64 `json:"score"`
	// Partial marks a formula result computed with some referenced cells empty.
	Partial bool `json:"partial,omitempty"`
}

// GradeRow is one student of the grade sheet.
type GradeRow struct {
	StudentID    string      `json:"studentId"`
	Name         string      `json:"name"`
	DOB          string      `json:"dob"`
	Gender       string      `json:"gender"`
	Cells        []GradeCell `json:"cells"`
	SubjectScore *float64    `json:"subjectScore"`
	AverageScore float64     `json:"averageScore"`
}

// GradeSheet is the per class and subject grade table.
type GradeSheet struct {
	ClassID          string            `json:"classId"`
	SubjectID        string            `json:"subjectId"`
	SubjectName      string            `json:"subjectName"`
	Columns          []string          `json:"columns"`
	Formulas         map[string]string `json:"formulas"`
	DesignatedColumn string            `json:"designatedColumn,omitempty"`
	Rows             []GradeRow        `json:"rows"`
}

// ScoreEntry is one cell written by SaveScores; a nil score clears the cell.
type ScoreEntry struct {
	StudentID string   `json:"studentId" validate:"required"`
	Column    string   `json:"column" validate:"required"`
	Score     *float64 `json:"score" validate:"omitempty,gte=0,lte=10"`
}

// SaveScoresRequest writes cells for one class and subject.
type SaveScoresRequest struct {
	ClassID   string       `json:"classId" validate:"required"`
	SubjectID string       `json:"subjectId" validate:"required"`
	Columns   []string     `json:"columns" validate:"omitempty,dive,required"`
	Entries   []ScoreEntry `json:"entries" validate:"dive"`
}

// ColumnRequest addresses a column of one class and subject sheet.
type ColumnRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Column    string `json:"column" validate:"required,max=50"`
}

// RenameColumnRequest renames a column.
type RenameColumnRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Column    string `json:"column" validate:"required"`
	NewName   string `json:"newName" validate:"required,max=50"`
}

// ReorderColumnsRequest moves the column at From to To.
type ReorderColumnsRequest struct {
	ClassID   string `json:"classId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	From      int    `json:"from" validate:"gte=0"`
	To        int    `json:"to" validate:"gte=0"`
}

// FormulaRequest assigns an expression to a column.
type FormulaRequest struct {
	ClassID    string `json:"classId" validate:"required"`
	SubjectID  string `json:"subjectId" validate:"required"`
	Column     string `json:"column" validate:"required"`
	Expression string `json:"expression" validate:"required,max=500"`
}

// DistributionBand is one score range of the grade distribution.
type DistributionBand struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// GradeDistribution summarises scores of a class for one subject.
type GradeDistribution struct {
	ClassID   string             `json:"classId"`
	SubjectID string             `json:"subjectId"`
	Column    string             `json:"column,omitempty"`
	Graded    int                `json:"graded"`
	Ungraded  int                `json:"ungraded"`
	Average   *float64           `json:"average"`
	Bands     []DistributionBand `json:"bands"`
}
