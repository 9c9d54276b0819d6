package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

func TestExportGradeSheetCSV(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An")
	grades := NewGradeService(factory, nil, nil, nil)
	_, err := grades.AddColumn(ctx, session, models.ColumnRequest{ClassID: fx.class.ID, SubjectID: fx.subject.ID, Column: "TX1"})
	require.NoError(t, err)
	_, err = grades.SaveScores(ctx, session, models.SaveScoresRequest{
		ClassID:   fx.class.ID,
		SubjectID: fx.subject.ID,
		Entries:   []models.ScoreEntry{{StudentID: "st-An", Column: "TX1", Score: score(8.5)}},
	})
	require.NoError(t, err)

	svc := NewExportService(factory, grades, nil)
	file, err := svc.GradeSheet(ctx, session, fx.class.ID, fx.subject.ID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Bang_diem_10A1_Toán.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	body := string(bytes.TrimPrefix(file.Content, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "STT,Họ và Tên,Ngày sinh,Giới tính,TX1,Điểm môn,TB chung\n1,An,,,8.5,8.5,8.5\n", body)

	pdf, err := svc.GradeSheet(ctx, session, fx.class.ID, fx.subject.ID, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))

	_, err = svc.GradeSheet(ctx, session, fx.class.ID, fx.subject.ID, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportAttendanceSheet(t *testing.T) {
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	session := teacherSession("gv@school.vn")
	fx := seedClass(t, factory, session, "Toán", "An", "Bình")
	ws := factory.For(session)
	sess, err := ws.Attendance.Add(ctx, fx.class.ID, fx.subject.ID, "2024-09-05")
	require.NoError(t, err)
	students := ws.Students.List(ctx)
	students[1].Attendance = map[string]string{sess.ID: models.StatusExcused}
	ws.Students.Save(ctx, students)

	svc := NewExportService(factory, NewGradeService(factory, nil, nil, nil), nil)
	file, err := svc.AttendanceSheet(ctx, session, fx.class.ID, "", "csv")
	require.NoError(t, err)
	body := string(bytes.TrimPrefix(file.Content, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, body, "STT,Họ và Tên,Ngày sinh,Giới tính,2024-09-05,Chuyên cần,Ghi chú\n")
	assert.Contains(t, body, "1,An,,,Có,1/1,\n")
	assert.Contains(t, body, "2,Bình,,,C.Phép,0/1,\n")

	_, err = svc.AttendanceSheet(ctx, session, "missing", "", "csv")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
