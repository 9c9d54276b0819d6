package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

// DirectoryRepository manages the global authorized-teacher directory.
// Emails are compared in normalised form. An empty password hash means the
// teacher still uses the default password.
type DirectoryRepository struct {
	w *Workspace
}

// List returns the directory, adding the bootstrap admin when it is missing.
func (r *DirectoryRepository) List(ctx context.Context) []models.Teacher {
	teachers := load(ctx, r.w, storage.KeyAuthorizedTeachers, []models.Teacher{})
	for i := range teachers {
		if storage.NormalizeEmail(teachers[i].Email) == models.BootstrapAdminEmail {
			if teachers[i].Role != models.RoleAdmin {
				teachers[i].Role = models.RoleAdmin
				r.Save(ctx, teachers)
			}
			return teachers
		}
	}
	teachers = append(teachers, models.Teacher{
		Email: models.BootstrapAdminEmail,
		Name:  models.BootstrapAdminName,
		Role:  models.RoleAdmin,
	})
	r.Save(ctx, teachers)
	return teachers
}

// Save overwrites the directory.
func (r *DirectoryRepository) Save(ctx context.Context, teachers []models.Teacher) {
	save(ctx, r.w, storage.KeyAuthorizedTeachers, teachers)
}

// Find looks up a teacher by email.
func (r *DirectoryRepository) Find(ctx context.Context, email string) *models.Teacher {
	email = storage.NormalizeEmail(email)
	for _, t := range r.List(ctx) {
		if storage.NormalizeEmail(t.Email) == email {
			found := t
			return &found
		}
	}
	return nil
}

// Add registers a teacher with the default password.
func (r *DirectoryRepository) Add(ctx context.Context, email, name string) (*models.Teacher, error) {
	email = storage.NormalizeEmail(email)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	teachers := r.List(ctx)
	for _, t := range teachers {
		if storage.NormalizeEmail(t.Email) == email {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already authorized")
		}
	}
	if name == "" {
		name = models.DefaultTeacherName
	}
	teacher := models.Teacher{Email: email, Name: name, Role: models.RoleTeacher}
	teachers = append(teachers, teacher)
	r.Save(ctx, teachers)
	return &teacher, nil
}

// Delete removes a teacher. The bootstrap admin cannot be removed.
func (r *DirectoryRepository) Delete(ctx context.Context, email string) error {
	email = storage.NormalizeEmail(email)
	if email == models.BootstrapAdminEmail {
		return appErrors.Clone(appErrors.ErrForbidden, "the bootstrap admin cannot be removed")
	}
	teachers := r.List(ctx)
	kept := teachers[:0]
	for _, t := range teachers {
		if storage.NormalizeEmail(t.Email) != email {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(teachers) {
		return appErrors.NotFound("teacher")
	}
	r.Save(ctx, kept)
	return nil
}

// ToggleLock flips the locked flag and returns the new state.
func (r *DirectoryRepository) ToggleLock(ctx context.Context, email string) (bool, error) {
	email = storage.NormalizeEmail(email)
	if email == models.BootstrapAdminEmail {
		return false, appErrors.Clone(appErrors.ErrForbidden, "the bootstrap admin cannot be locked")
	}
	teachers := r.List(ctx)
	for i := range teachers {
		if storage.NormalizeEmail(teachers[i].Email) == email {
			teachers[i].IsLocked = !teachers[i].IsLocked
			r.Save(ctx, teachers)
			return teachers[i].IsLocked, nil
		}
	}
	return false, appErrors.NotFound("teacher")
}

// SetPasswordHash replaces a teacher's hash; an empty hash restores the default password.
func (r *DirectoryRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	email = storage.NormalizeEmail(email)
	teachers := r.List(ctx)
	for i := range teachers {
		if storage.NormalizeEmail(teachers[i].Email) == email {
			teachers[i].PasswordHash = hash
			r.Save(ctx, teachers)
			return nil
		}
	}
	return appErrors.NotFound("teacher")
}
