package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestStudentServiceCreateSeatsAndDefaults(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	svc := NewStudentService(factory, nil, nil)

	st, err := svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: " Chi "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(st.ID, "HS"))
	assert.Equal(t, "Chi", st.Name)
	assert.Equal(t, 2, st.Seat)
	assert.Equal(t, models.DefaultConduct, st.Conduct)
	assert.Equal(t, models.UnknownDOB, st.DOB)
	require.Len(t, st.Subjects, 1)
	assert.Equal(t, "Toán", st.Subjects[0].Name)
	assert.Nil(t, st.Subjects[0].Score)

	_, err = svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Dũng", Seat: intPtr(0)})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	_, err = svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Dũng", Conduct: score(12)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceRejectsWhenGridFull(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	factory.For(session).Settings.SaveGrid(ctx, "", models.GridSettings{Rows: 1, Cols: 3, Size: 100})
	svc := NewStudentService(factory, nil, nil)

	_, err := svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Chi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Dũng"})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestStudentServiceBulkCreate(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An")
	factory.For(session).Settings.SaveGrid(ctx, "", models.GridSettings{Rows: 1, Cols: 3, Size: 100})
	svc := NewStudentService(factory, nil, nil)

	res, err := svc.BulkCreate(ctx, session, models.BulkAddStudentsRequest{
		ClassID:  fx.class.ID,
		SchoolID: fx.school.ID,
		Students: []models.BulkStudentRow{{Name: "Chi"}, {Name: "Dũng", Gender: "Nữ"}, {Name: "Giang"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 2)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Added[0].Seat)
	assert.Equal(t, models.DefaultGender, res.Added[0].Gender)
	assert.Equal(t, "Nữ", res.Added[1].Gender)

	roster, err := svc.List(ctx, session, fx.class.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 3)
}

// assertDistinctSeats checks that no two students of the class share a seat
// in the given subject view.
func assertDistinctSeats(t *testing.T, svc *StudentService, session *models.SessionTeacher, classID, subjectID string) {
	t.Helper()
	roster, err := svc.List(context.Background(), session, classID)
	require.NoError(t, err)
	holders := make(map[int]string, len(roster))
	for i := range roster {
		seat := roster[i].SeatFor(subjectID)
		if other, dup := holders[seat]; dup {
			t.Fatalf("seat %d in view %q held by %s and %s", seat, subjectID, other, roster[i].Name)
		}
		holders[seat] = roster[i].Name
	}
}

func TestStudentServiceCreateSkipsSubjectOverrideSeats(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	svc := NewStudentService(factory, nil, nil)

	_, err := svc.AssignSeat(ctx, session, models.AssignSeatRequest{StudentID: "st-An", Seat: 2, SubjectID: fx.subject.ID})
	require.NoError(t, err)

	chi, err := svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Chi"})
	require.NoError(t, err)
	assert.Equal(t, 3, chi.Seat)

	_, err = svc.Create(ctx, session, models.CreateStudentRequest{ClassID: fx.class.ID, SchoolID: fx.school.ID, Name: "Dũng", Seat: intPtr(2)})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	assertDistinctSeats(t, svc, session, fx.class.ID, "")
	assertDistinctSeats(t, svc, session, fx.class.ID, fx.subject.ID)
	chart, _, err := svc.SeatingChart(ctx, session, fx.class.ID, fx.subject.ID)
	require.NoError(t, err)
	assert.Len(t, chart, 3)
}

func TestStudentServiceBulkCreateSkipsSubjectOverrideSeats(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	factory.For(session).Settings.SaveGrid(ctx, "", models.GridSettings{Rows: 1, Cols: 5, Size: 100})
	svc := NewStudentService(factory, nil, nil)

	_, err := svc.AssignSeat(ctx, session, models.AssignSeatRequest{StudentID: "st-Bình", Seat: 3, SubjectID: fx.subject.ID})
	require.NoError(t, err)

	res, err := svc.BulkCreate(ctx, session, models.BulkAddStudentsRequest{
		ClassID:  fx.class.ID,
		SchoolID: fx.school.ID,
		Students: []models.BulkStudentRow{{Name: "Chi"}, {Name: "Dũng"}, {Name: "Giang"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Added, 2)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Added[0].Seat)
	assert.Equal(t, 4, res.Added[1].Seat)

	assertDistinctSeats(t, svc, session, fx.class.ID, "")
	assertDistinctSeats(t, svc, session, fx.class.ID, fx.subject.ID)
}

func TestStudentServiceAssignSeatSwaps(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	svc := NewStudentService(factory, nil, nil)

	// An on 0, Bình on 1: moving An to 1 swaps them
	_, err := svc.AssignSeat(ctx, session, models.AssignSeatRequest{StudentID: "st-An", Seat: 1})
	require.NoError(t, err)
	an, _ := svc.Get(ctx, session, "st-An")
	binh, _ := svc.Get(ctx, session, "st-Bình")
	assert.Equal(t, 1, an.Seat)
	assert.Equal(t, 0, binh.Seat)

	// subject override leaves the base seat alone
	_, err = svc.AssignSeat(ctx, session, models.AssignSeatRequest{StudentID: "st-An", Seat: 5, SubjectID: fx.subject.ID})
	require.NoError(t, err)
	chart, _, err := svc.SeatingChart(ctx, session, fx.class.ID, fx.subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "st-An", chart[5].ID)
	assert.Equal(t, "st-Bình", chart[0].ID)

	base, _, err := svc.SeatingChart(ctx, session, fx.class.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "st-An", base[1].ID)

	_, err = svc.AssignSeat(ctx, session, models.AssignSeatRequest{StudentID: "st-An", Seat: 60})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	seedClass(t, factory, session, "Toán", "An")
	svc := NewStudentService(factory, nil, nil)

	name, comments := "An Nguyễn", "Chăm chỉ"
	st, err := svc.Update(ctx, session, "st-An", models.UpdateStudentRequest{Name: &name, Comments: &comments, Conduct: score(9.5)})
	require.NoError(t, err)
	assert.Equal(t, name, st.Name)
	assert.Equal(t, 9.5, st.Conduct)
	assert.Equal(t, comments, st.Comments)

	_, err = svc.Update(ctx, session, "ghost", models.UpdateStudentRequest{Name: &name})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, session, "st-An"))
	assert.True(t, errors.Is(svc.Delete(ctx, session, "st-An"), appErrors.ErrNotFound))
}
