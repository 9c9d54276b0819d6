package models

import "encoding/json"

// BackupVersion is stamped on every exported document.
const BackupVersion = "1.1"

// BackupTypeSingleClass marks a class export.
const BackupTypeSingleClass = "single-class"

// BackupDocument is the persisted backup layout. A full export always sets
// the settings fields, written as {} when empty; a single-class export leaves
// them nil so the keys are absent.
type BackupDocument struct {
	Schools            []School            `json:"schools"`
	Classes            []Class             `json:"classes"`
	Subjects           []Subject           `json:"subjects"`
	Students           []Student           `json:"students"`
	AttendanceSessions []AttendanceSession `json:"attendanceSessions"`
	GridSettings       GridSettings        `json:"gridSettings"`
	GradeFormulas      *GradeFormulas      `json:"gradeFormulas,omitempty"`
	DisplaySettings    *DisplaySettings    `json:"displaySettings,omitempty"`
	SharingSettings    *SharingSettings    `json:"sharingSettings,omitempty"`
	ExportDate         string              `json:"exportDate"`
	Type               string              `json:"type,omitempty"`
	Version            string              `json:"version"`
}

// BackupImport is the decoded import document. A nil field was absent and is left untouched.
type BackupImport struct {
	Schools            *[]School            `json:"schools"`
	Classes            *[]Class             `json:"classes"`
	Subjects           *[]Subject           `json:"subjects"`
	Students           *[]Student           `json:"students"`
	AttendanceSessions *[]AttendanceSession `json:"attendanceSessions"`
	GridSettings       *GridSettings        `json:"gridSettings"`
	GradeFormulas      *GradeFormulas       `json:"gradeFormulas"`
	DisplaySettings    *DisplaySettings     `json:"displaySettings"`
	SharingSettings    *SharingSettings     `json:"sharingSettings"`
	WordTemplate       json.RawMessage      `json:"wordTemplate,omitempty"`
	Version            string               `json:"version"`
}
