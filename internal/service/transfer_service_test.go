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

type transferCounter map[string]int

func (c transferCounter) RecordTransfer(action string) { c[action]++ }

type transferFixture struct {
	factory  *WorkspaceFactory
	svc      *TransferService
	counter  transferCounter
	sender   *models.SessionTeacher
	receiver *models.SessionTeacher
	from     classFixture
	toSchool models.School
	toMath   models.Subject
}

func newTransferFixture(t *testing.T, senderSubject string, opts TransferOptions) transferFixture {
	t.Helper()
	ctx := context.Background()
	factory, _ := newTestFactory(t)
	sender := teacherSession("sender@school.vn")
	receiver := teacherSession("Receiver@School.vn")

	from := seedClass(t, factory, sender, senderSubject, "An", "Bình")

	rws := factory.For(receiver)
	school, err := rws.Schools.Add(ctx, "THCS Trần Phú")
	require.NoError(t, err)
	_, err = rws.Subjects.Add(ctx, "Văn", school.ID)
	require.NoError(t, err)
	math, err := rws.Subjects.Add(ctx, "Toán", school.ID)
	require.NoError(t, err)

	counter := transferCounter{}
	return transferFixture{
		factory:  factory,
		svc:      NewTransferService(factory, nil, nil, counter, opts),
		counter:  counter,
		sender:   sender,
		receiver: receiver,
		from:     from,
		toSchool: *school,
		toMath:   *math,
	}
}

func (fx transferFixture) offer(t *testing.T) *models.Transfer {
	t.Helper()
	transfer, err := fx.svc.Offer(context.Background(), fx.sender, models.OfferTransferRequest{
		ClassID:   fx.from.class.ID,
		SchoolID:  fx.from.school.ID,
		SubjectID: fx.from.subject.ID,
		ToEmail:   "receiver@school.vn",
	})
	require.NoError(t, err)
	return transfer
}

func TestTransferRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture(t, "Toán", TransferOptions{AdoptSoleSubject: true})

	sws := fx.factory.For(fx.sender)
	sess, err := sws.Attendance.Add(ctx, fx.from.class.ID, fx.from.subject.ID, "2024-09-05")
	require.NoError(t, err)
	students := sws.Students.List(ctx)
	students[0].Attendance = map[string]string{sess.ID: models.StatusExcused, "att_stale": models.StatusOff}
	students[0].Subjects = []models.SubjectRecord{{Name: "Toán", Score: score(8.5), Assessments: []models.Assessment{{Name: "KT", Score: score(8.5)}}}}
	sws.Students.Save(ctx, students)

	transfer := fx.offer(t)
	assert.Regexp(t, `^trans-`, transfer.ID)
	assert.Equal(t, "Toán", transfer.SenderSubjectName)
	assert.Equal(t, "THPT Nguyễn Du", transfer.SenderSchoolName)
	assert.Len(t, transfer.Students, 2)
	assert.Len(t, transfer.AttendanceSessions, 1)

	// move, not copy
	assert.Empty(t, sws.Classes.List(ctx))
	assert.Empty(t, sws.Students.List(ctx))
	assert.Empty(t, sws.Attendance.List(ctx))

	pending, err := fx.svc.Pending(ctx, fx.receiver)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].StudentCount)

	class, err := fx.svc.Accept(ctx, fx.receiver, models.AcceptTransferRequest{TransferID: transfer.ID, SchoolID: fx.toSchool.ID, SubjectID: fx.toMath.ID})
	require.NoError(t, err)
	assert.Equal(t, "10A1", class.Name)
	assert.NotEqual(t, fx.from.class.ID, class.ID)

	rws := fx.factory.For(fx.receiver)
	sessions := rws.Attendance.ListByClass(ctx, class.ID, "")
	require.Len(t, sessions, 1)
	assert.NotEqual(t, sess.ID, sessions[0].ID)
	assert.Equal(t, fx.toMath.ID, sessions[0].SubjectID)
	assert.Equal(t, "2024-09-05", sessions[0].Date)

	an := rws.Students.Find(ctx, "st-An")
	require.NotNil(t, an)
	assert.Equal(t, class.ID, an.ClassID)
	assert.Equal(t, map[string]string{sessions[0].ID: models.StatusExcused}, an.Attendance)
	require.Len(t, an.Subjects, 2)
	assert.Equal(t, "Văn", an.Subjects[0].Name)
	assert.Nil(t, an.Subjects[0].Score)
	assert.Equal(t, "Toán", an.Subjects[1].Name)
	assert.Equal(t, 8.5, *an.Subjects[1].Score)
	assert.Equal(t, 8.5, an.AverageScore)

	assert.Empty(t, rws.Transfers.List(ctx))
	assert.Equal(t, 1, fx.counter[models.TransferOffered])
	assert.Equal(t, 1, fx.counter[models.TransferAccepted])
}

func TestTransferAdoptsSoleSubjectWithData(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture(t, "Math", TransferOptions{AdoptSoleSubject: true})

	sws := fx.factory.For(fx.sender)
	students := sws.Students.List(ctx)
	students[0].Subjects = []models.SubjectRecord{
		{Name: "Physics", Assessments: []models.Assessment{}},
		{Name: "Algebra", Score: score(8.5), Assessments: []models.Assessment{{Name: "HK", Score: score(8.5)}}},
	}
	sws.Students.Save(ctx, students)

	// the offered subject is "Math", which no student record carries
	transfer := fx.offer(t)
	_, err := fx.svc.Accept(ctx, fx.receiver, models.AcceptTransferRequest{TransferID: transfer.ID, SchoolID: fx.toSchool.ID, SubjectID: fx.toMath.ID})
	require.NoError(t, err)

	an := fx.factory.For(fx.receiver).Students.Find(ctx, "st-An")
	require.NotNil(t, an)
	assert.Equal(t, "Toán", an.Subjects[1].Name)
	require.NotNil(t, an.Subjects[1].Score)
	assert.Equal(t, 8.5, *an.Subjects[1].Score)
	assert.Equal(t, "HK", an.Subjects[1].Assessments[0].Name)
}

func TestTransferWithoutSoleSubjectAdoption(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture(t, "Math", TransferOptions{AdoptSoleSubject: false})

	sws := fx.factory.For(fx.sender)
	students := sws.Students.List(ctx)
	students[0].Subjects = []models.SubjectRecord{{Name: "Algebra", Score: score(8.5)}}
	sws.Students.Save(ctx, students)

	transfer := fx.offer(t)
	_, err := fx.svc.Accept(ctx, fx.receiver, models.AcceptTransferRequest{TransferID: transfer.ID, SchoolID: fx.toSchool.ID, SubjectID: fx.toMath.ID})
	require.NoError(t, err)

	an := fx.factory.For(fx.receiver).Students.Find(ctx, "st-An")
	assert.Nil(t, an.Subjects[1].Score)
	assert.Equal(t, 0.0, an.AverageScore)
}

func TestTransferValidationAndReject(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture(t, "Toán", TransferOptions{AdoptSoleSubject: true})

	_, err := fx.svc.Offer(ctx, fx.sender, models.OfferTransferRequest{ClassID: fx.from.class.ID, SchoolID: fx.from.school.ID, ToEmail: "receiver@school.vn"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = fx.svc.Offer(ctx, fx.sender, models.OfferTransferRequest{ClassID: fx.from.class.ID, SchoolID: fx.from.school.ID, SubjectID: fx.from.subject.ID, ToEmail: "SENDER@school.vn"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	transfer := fx.offer(t)

	_, err = fx.svc.Accept(ctx, fx.receiver, models.AcceptTransferRequest{TransferID: transfer.ID, SchoolID: fx.toSchool.ID})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.True(t, errors.Is(fx.svc.Reject(ctx, fx.sender, transfer.ID), appErrors.ErrForbidden))
	require.NoError(t, fx.svc.Reject(ctx, fx.receiver, transfer.ID))
	assert.True(t, errors.Is(fx.svc.Reject(ctx, fx.receiver, transfer.ID), appErrors.ErrNotFound))
	assert.Equal(t, 1, fx.counter[models.TransferRejected])
}

func TestTransferRecipients(t *testing.T) {
	ctx := context.Background()
	fx := newTransferFixture(t, "Toán", TransferOptions{})

	ws := fx.factory.Global()
	_, err := ws.Directory.Add(ctx, "receiver@school.vn", "Cô Hoa")
	require.NoError(t, err)
	_, err = ws.Directory.Add(ctx, "locked@school.vn", "")
	require.NoError(t, err)
	_, err = ws.Directory.ToggleLock(ctx, "locked@school.vn")
	require.NoError(t, err)
	groupID := ws.Groups.Add(ctx, "Tổ Toán", []string{"sender@school.vn", "receiver@school.vn", "locked@school.vn", "ghost@school.vn"})

	recipients, err := fx.svc.Recipients(ctx, fx.sender, groupID)
	require.NoError(t, err)
	assert.Equal(t, []models.Recipient{{Email: "receiver@school.vn", Name: "Cô Hoa"}}, recipients)

	_, err = fx.svc.Recipients(ctx, fx.sender, "group_missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
