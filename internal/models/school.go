package models

// School groups classes and subjects for one teacher.
type School struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// Class is a roster of students inside a school.
type Class struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SchoolID string `json:"schoolId"`
}

// Subject is a named course within a school. Students refer to it by name.
type Subject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SchoolID string `json:"schoolId"`
}

// CreateSchoolRequest payload for adding a school.
type CreateSchoolRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateClassRequest payload for adding a class.
type CreateClassRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	SchoolID string `json:"schoolId" validate:"required"`
}

// CreateSubjectRequest payload for adding a subject.
type CreateSubjectRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	SchoolID string `json:"schoolId" validate:"required"`
}

// ReorderRequest moves DraggedID into TargetID's position. SchoolID scopes
// class and subject lists and is ignored for schools.
type ReorderRequest struct {
	SchoolID  string `json:"schoolId"`
	DraggedID string `json:"draggedId" validate:"required"`
	TargetID  string `json:"targetId" validate:"required"`
}
