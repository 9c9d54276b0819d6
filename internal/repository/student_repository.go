package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
)

// StudentRepository manages students of every class.
type StudentRepository struct {
	w *Workspace
}

// List returns every student.
func (r *StudentRepository) List(ctx context.Context) []models.Student {
	return load(ctx, r.w, KeyStudents, []models.Student{})
}

// Save overwrites the collection.
func (r *StudentRepository) Save(ctx context.Context, students []models.Student) {
	if students == nil {
		students = []models.Student{}
	}
	save(ctx, r.w, KeyStudents, students)
}

// ListByClass filters students of one class.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) []models.Student {
	all := r.List(ctx)
	out := make([]models.Student, 0, len(all))
	for _, s := range all {
		if s.ClassID == classID {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the student with id or nil.
func (r *StudentRepository) Find(ctx context.Context, id string) *models.Student {
	for _, s := range r.List(ctx) {
		if s.ID == id {
			found := s
			return &found
		}
	}
	return nil
}

// DeleteByClass removes every student of a class.
func (r *StudentRepository) DeleteByClass(ctx context.Context, classID string) {
	students := r.List(ctx)
	kept := students[:0]
	for _, s := range students {
		if s.ClassID != classID {
			kept = append(kept, s)
		}
	}
	r.Save(ctx, kept)
}
