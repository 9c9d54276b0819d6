package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

func TestSchoolServiceHierarchy(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	svc := NewSchoolService(factory, nil, nil)

	school, err := svc.CreateSchool(ctx, session, models.CreateSchoolRequest{Name: "THPT Lê Lợi"})
	require.NoError(t, err)

	_, err = svc.CreateClass(ctx, session, models.CreateClassRequest{Name: "11B", SchoolID: "missing"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	class, err := svc.CreateClass(ctx, session, models.CreateClassRequest{Name: "11B", SchoolID: school.ID})
	require.NoError(t, err)

	_, err = svc.CreateSubject(ctx, session, models.CreateSubjectRequest{Name: "Lý", SchoolID: school.ID})
	require.NoError(t, err)
	_, err = svc.CreateSubject(ctx, session, models.CreateSubjectRequest{Name: "Lý", SchoolID: school.ID})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.CreateSubject(ctx, session, models.CreateSubjectRequest{Name: "Hóa"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	classes, err := svc.ListClasses(ctx, session, school.ID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, class.ID, classes[0].ID)

	require.NoError(t, svc.DeleteClass(ctx, session, class.ID))
	assert.True(t, errors.Is(svc.DeleteClass(ctx, session, class.ID), appErrors.ErrNotFound))

	_, err = svc.ListSchools(ctx, nil)
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func TestSchoolServiceCreateRequiresSession(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	svc := NewSchoolService(factory, nil, nil)

	_, err := svc.CreateSchool(ctx, nil, models.CreateSchoolRequest{Name: "THPT A"})
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
	_, err = svc.CreateClass(ctx, nil, models.CreateClassRequest{Name: "10A1", SchoolID: "school1"})
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
	_, err = svc.CreateSubject(ctx, nil, models.CreateSubjectRequest{Name: "Toán", SchoolID: "school1"})
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func TestSchoolServiceSettings(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An")
	svc := NewSchoolService(factory, nil, nil)

	grid, err := svc.Grid(ctx, session, fx.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGrid, grid)

	_, err = svc.SaveGrid(ctx, session, fx.subject.ID, models.GridSettings{Rows: 5, Cols: 8})
	require.NoError(t, err)
	grid, err = svc.Grid(ctx, session, fx.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GridSettings{Rows: 5, Cols: 8, Size: 100}, grid)

	_, err = svc.SaveGrid(ctx, session, "", models.GridSettings{Rows: 0, Cols: 8})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	sharing, err := svc.SaveSharing(ctx, session, models.SharingSettings{IsEnabled: true, SharedClasses: []string{fx.class.ID, "ghost"}})
	require.NoError(t, err)
	assert.Equal(t, []string{fx.class.ID}, sharing.SharedClasses)

	stored, err := svc.Sharing(ctx, session)
	require.NoError(t, err)
	assert.True(t, stored.IsEnabled)
}

func TestSchoolServiceReorder(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	svc := NewSchoolService(factory, nil, nil)

	var schools []*models.School
	for _, name := range []string{"THPT A", "THPT B", "THPT C"} {
		school, err := svc.CreateSchool(ctx, session, models.CreateSchoolRequest{Name: name})
		require.NoError(t, err)
		schools = append(schools, school)
	}
	ordered, err := svc.ReorderSchools(ctx, session, models.ReorderRequest{DraggedID: schools[0].ID, TargetID: schools[2].ID})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"THPT B", "THPT C", "THPT A"}, []string{ordered[0].Name, ordered[1].Name, ordered[2].Name})

	// classes of two schools interleaved: A1 B1 A2 B2 A3
	addClass := func(name, schoolID string) *models.Class {
		class, err := svc.CreateClass(ctx, session, models.CreateClassRequest{Name: name, SchoolID: schoolID})
		require.NoError(t, err)
		return class
	}
	a1 := addClass("A1", schools[0].ID)
	addClass("B1", schools[1].ID)
	addClass("A2", schools[0].ID)
	addClass("B2", schools[1].ID)
	a3 := addClass("A3", schools[0].ID)

	classes, err := svc.ReorderClasses(ctx, session, models.ReorderRequest{SchoolID: schools[0].ID, DraggedID: a3.ID, TargetID: a1.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "A1", "A2"}, classNames(classes))
	all, err := svc.ListClasses(ctx, session, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A3", "B1", "A1", "B2", "A2"}, classNames(all))

	_, err = svc.ReorderClasses(ctx, session, models.ReorderRequest{SchoolID: schools[1].ID, DraggedID: a3.ID, TargetID: a1.ID})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	math, err := svc.CreateSubject(ctx, session, models.CreateSubjectRequest{Name: "Toán", SchoolID: schools[0].ID})
	require.NoError(t, err)
	physics, err := svc.CreateSubject(ctx, session, models.CreateSubjectRequest{Name: "Lý", SchoolID: schools[0].ID})
	require.NoError(t, err)
	subjects, err := svc.ReorderSubjects(ctx, session, models.ReorderRequest{SchoolID: schools[0].ID, DraggedID: physics.ID, TargetID: math.ID})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Lý", subjects[0].Name)

	_, err = svc.ReorderSchools(ctx, session, models.ReorderRequest{DraggedID: schools[0].ID})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.ReorderSchools(ctx, nil, models.ReorderRequest{DraggedID: "a", TargetID: "b"})
	assert.True(t, errors.Is(err, appErrors.ErrNoSession))
}

func classNames(classes []models.Class) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, c.Name)
	}
	return out
}
