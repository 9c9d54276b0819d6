package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
)

// AttendanceRepository manages attendance sessions.
type AttendanceRepository struct {
	w *Workspace
}

// List returns every session.
func (r *AttendanceRepository) List(ctx context.Context) []models.AttendanceSession {
	return load(ctx, r.w, KeyAttendanceSessions, []models.AttendanceSession{})
}

// Save overwrites the collection.
func (r *AttendanceRepository) Save(ctx context.Context, sessions []models.AttendanceSession) {
	if sessions == nil {
		sessions = []models.AttendanceSession{}
	}
	save(ctx, r.w, KeyAttendanceSessions, sessions)
}

// ListByClass filters sessions of a class, further narrowed by subject when subjectID is set.
func (r *AttendanceRepository) ListByClass(ctx context.Context, classID, subjectID string) []models.AttendanceSession {
	all := r.List(ctx)
	out := make([]models.AttendanceSession, 0, len(all))
	for _, s := range all {
		if s.ClassID != classID {
			continue
		}
		if subjectID != "" && s.SubjectID != subjectID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Find returns the session with id or nil.
func (r *AttendanceRepository) Find(ctx context.Context, id string) *models.AttendanceSession {
	for _, s := range r.List(ctx) {
		if s.ID == id {
			found := s
			return &found
		}
	}
	return nil
}

// Add opens a session dated today unless date is given.
func (r *AttendanceRepository) Add(ctx context.Context, classID, subjectID, date string) (*models.AttendanceSession, error) {
	if r.w.session == nil {
		return nil, appErrors.ErrNoSession
	}
	if date == "" {
		date = r.w.today()
	}
	session := models.AttendanceSession{ID: r.w.NewID("att_"), ClassID: classID, SubjectID: subjectID, Date: date}
	sessions := r.List(ctx)
	sessions = append(sessions, session)
	r.Save(ctx, sessions)
	return &session, nil
}

// UpdateDate changes the date of a session; reports false when it does not exist.
func (r *AttendanceRepository) UpdateDate(ctx context.Context, id, date string) bool {
	sessions := r.List(ctx)
	for i := range sessions {
		if sessions[i].ID == id {
			sessions[i].Date = date
			r.Save(ctx, sessions)
			return true
		}
	}
	return false
}

// Delete removes one session.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) {
	sessions := r.List(ctx)
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.Save(ctx, kept)
}

// DeleteByClass removes every session of a class.
func (r *AttendanceRepository) DeleteByClass(ctx context.Context, classID string) {
	sessions := r.List(ctx)
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ClassID != classID {
			kept = append(kept, s)
		}
	}
	r.Save(ctx, kept)
}
