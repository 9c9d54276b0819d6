package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

func newTestFactory(t *testing.T) (*WorkspaceFactory, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewWorkspaceFactory(store, nil), store
}

func teacherSession(email string) *models.SessionTeacher {
	return &models.SessionTeacher{Email: email, Name: "GV " + email, Role: models.RoleTeacher}
}

type classFixture struct {
	school  models.School
	class   models.Class
	subject models.Subject
}

// seedClass creates a school with one class and one subject, plus students
// carrying the given names in that class.
func seedClass(t *testing.T, f *WorkspaceFactory, session *models.SessionTeacher, subjectName string, studentNames ...string) classFixture {
	t.Helper()
	ctx := context.Background()
	ws := f.For(session)

	school, err := ws.Schools.Add(ctx, "THPT Nguyễn Du")
	require.NoError(t, err)
	class, err := ws.Classes.Add(ctx, models.Class{Name: "10A1", SchoolID: school.ID})
	require.NoError(t, err)
	subject, err := ws.Subjects.Add(ctx, subjectName, school.ID)
	require.NoError(t, err)

	students := ws.Students.List(ctx)
	for i, name := range studentNames {
		students = append(students, models.Student{
			ID:       "st-" + name,
			Name:     name,
			ClassID:  class.ID,
			Seat:     i,
			Subjects: []models.SubjectRecord{},
		})
	}
	ws.Students.Save(ctx, students)
	return classFixture{school: *school, class: *class, subject: *subject}
}

type formulaCounter struct{ n int }

func (c *formulaCounter) RecordFormulaFailure() { c.n++ }
