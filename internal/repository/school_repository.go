package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// SchoolRepository manages the teacher's schools.
type SchoolRepository struct {
	w *Workspace
}

// List returns every school in insertion order.
func (r *SchoolRepository) List(ctx context.Context) []models.School {
	return load(ctx, r.w, KeySchools, []models.School{})
}

// Save overwrites the collection.
func (r *SchoolRepository) Save(ctx context.Context, schools []models.School) {
	if schools == nil {
		schools = []models.School{}
	}
	save(ctx, r.w, KeySchools, schools)
}

// Find returns the school with id or nil.
func (r *SchoolRepository) Find(ctx context.Context, id string) *models.School {
	for _, s := range r.List(ctx) {
		if s.ID == id {
			found := s
			return &found
		}
	}
	return nil
}

// Add creates a school owned by the session teacher.
func (r *SchoolRepository) Add(ctx context.Context, name string) (*models.School, error) {
	if r.w.session == nil {
		return nil, appErrors.ErrNoSession
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school name is required")
	}
	school := models.School{ID: r.w.NewID("school"), Name: name, Owner: r.w.session.Email}
	schools := r.List(ctx)
	schools = append(schools, school)
	r.Save(ctx, schools)
	return &school, nil
}

// Delete removes a school. Its classes and subjects are kept.
func (r *SchoolRepository) Delete(ctx context.Context, id string) {
	schools := r.List(ctx)
	kept := schools[:0]
	for _, s := range schools {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.Save(ctx, kept)
}

// Reorder moves a school to the target's position. It reports false when
// either id is unknown.
func (r *SchoolRepository) Reorder(ctx context.Context, draggedID, targetID string) bool {
	schools, ok := moveTo(r.List(ctx),
		func(s models.School) string { return s.ID },
		func(models.School) bool { return true },
		draggedID, targetID)
	if ok {
		r.Save(ctx, schools)
	}
	return ok
}

// ClassRepository manages classes.
type ClassRepository struct {
	w *Workspace
}

// List returns every class.
func (r *ClassRepository) List(ctx context.Context) []models.Class {
	return load(ctx, r.w, KeyClasses, []models.Class{})
}

// ListBySchool filters classes of one school; an empty id returns all.
func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID string) []models.Class {
	all := r.List(ctx)
	if schoolID == "" {
		return all
	}
	out := make([]models.Class, 0, len(all))
	for _, c := range all {
		if c.SchoolID == schoolID {
			out = append(out, c)
		}
	}
	return out
}

// Save overwrites the collection.
func (r *ClassRepository) Save(ctx context.Context, classes []models.Class) {
	if classes == nil {
		classes = []models.Class{}
	}
	save(ctx, r.w, KeyClasses, classes)
}

// Find returns the class with id or nil.
func (r *ClassRepository) Find(ctx context.Context, id string) *models.Class {
	for _, c := range r.List(ctx) {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}

// Add appends a class, assigning an id when missing.
func (r *ClassRepository) Add(ctx context.Context, class models.Class) (*models.Class, error) {
	if r.w.session == nil {
		return nil, appErrors.ErrNoSession
	}
	class.Name = strings.TrimSpace(class.Name)
	if class.Name == "" || class.SchoolID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name and school are required")
	}
	if class.ID == "" {
		class.ID = r.w.NewID("class")
	}
	classes := r.List(ctx)
	classes = append(classes, class)
	r.Save(ctx, classes)
	return &class, nil
}

// Delete removes the class together with its students and attendance sessions.
func (r *ClassRepository) Delete(ctx context.Context, id string) {
	classes := r.List(ctx)
	kept := classes[:0]
	for _, c := range classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	r.Save(ctx, kept)
	r.w.Students.DeleteByClass(ctx, id)
	r.w.Attendance.DeleteByClass(ctx, id)
}

// Reorder moves a class within its school's list; an empty school id orders
// the whole collection. Classes of other schools are untouched.
func (r *ClassRepository) Reorder(ctx context.Context, schoolID, draggedID, targetID string) bool {
	classes, ok := moveTo(r.List(ctx),
		func(c models.Class) string { return c.ID },
		func(c models.Class) bool { return schoolID == "" || c.SchoolID == schoolID },
		draggedID, targetID)
	if ok {
		r.Save(ctx, classes)
	}
	return ok
}

// SubjectRepository manages subjects.
type SubjectRepository struct {
	w *Workspace
}

// List returns every subject.
func (r *SubjectRepository) List(ctx context.Context) []models.Subject {
	return load(ctx, r.w, KeySubjects, []models.Subject{})
}

// ListBySchool filters subjects of one school; an empty id returns all.
func (r *SubjectRepository) ListBySchool(ctx context.Context, schoolID string) []models.Subject {
	all := r.List(ctx)
	if schoolID == "" {
		return all
	}
	out := make([]models.Subject, 0, len(all))
	for _, s := range all {
		if s.SchoolID == schoolID {
			out = append(out, s)
		}
	}
	return out
}

// Save overwrites the collection.
func (r *SubjectRepository) Save(ctx context.Context, subjects []models.Subject) {
	if subjects == nil {
		subjects = []models.Subject{}
	}
	save(ctx, r.w, KeySubjects, subjects)
}

// Find returns the subject with id or nil.
func (r *SubjectRepository) Find(ctx context.Context, id string) *models.Subject {
	for _, s := range r.List(ctx) {
		if s.ID == id {
			found := s
			return &found
		}
	}
	return nil
}

// Add creates a subject in a school.
func (r *SubjectRepository) Add(ctx context.Context, name, schoolID string) (*models.Subject, error) {
	if r.w.session == nil {
		return nil, appErrors.ErrNoSession
	}
	name = strings.TrimSpace(name)
	if schoolID == "" || name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject name and school are required")
	}
	subject := models.Subject{ID: r.w.NewID("sub"), Name: name, SchoolID: schoolID}
	subjects := r.List(ctx)
	subjects = append(subjects, subject)
	r.Save(ctx, subjects)
	return &subject, nil
}

// Delete removes a subject. Student records of that subject are left in place.
func (r *SubjectRepository) Delete(ctx context.Context, id string) {
	subjects := r.List(ctx)
	kept := subjects[:0]
	for _, s := range subjects {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.Save(ctx, kept)
}

// Reorder moves a subject within its school's list.
func (r *SubjectRepository) Reorder(ctx context.Context, schoolID, draggedID, targetID string) bool {
	subjects, ok := moveTo(r.List(ctx),
		func(s models.Subject) string { return s.ID },
		func(s models.Subject) bool { return schoolID == "" || s.SchoolID == schoolID },
		draggedID, targetID)
	if ok {
		r.Save(ctx, subjects)
	}
	return ok
}
