package repository

import (
	"context"

	"github.com/noah-isme/classroom-api/internal/models"
)

// SettingsRepository manages per-teacher preference documents.
type SettingsRepository struct {
	w *Workspace
}

// Grid returns the grid for a subject view. A subject without its own grid
// falls back to the teacher-wide grid. A stored legacy 10x10 default is
// rewritten to 10x6 the first time it is read.
func (r *SettingsRepository) Grid(ctx context.Context, subjectID string) models.GridSettings {
	if subjectID != "" {
		grid := load(ctx, r.w, SubjectGridKey(subjectID), models.GridSettings{})
		if grid.Rows > 0 && grid.Cols > 0 {
			return grid
		}
	}
	grid := load(ctx, r.w, KeyGridSettings, models.DefaultGrid)
	if grid == models.LegacyGrid {
		save(ctx, r.w, KeyGridSettings, models.DefaultGrid)
		return models.DefaultGrid
	}
	if grid.Rows <= 0 || grid.Cols <= 0 {
		return models.DefaultGrid
	}
	return grid
}

// SaveGrid stores the grid for a subject or, with an empty id, the teacher-wide default.
func (r *SettingsRepository) SaveGrid(ctx context.Context, subjectID string, grid models.GridSettings) {
	if subjectID != "" {
		save(ctx, r.w, SubjectGridKey(subjectID), grid)
		return
	}
	save(ctx, r.w, KeyGridSettings, grid)
}

// Formulas returns every stored formula.
func (r *SettingsRepository) Formulas(ctx context.Context) models.GradeFormulas {
	f := load(ctx, r.w, KeyGradeFormulas, models.GradeFormulas{})
	if f == nil {
		f = models.GradeFormulas{}
	}
	return f
}

// SaveFormulas overwrites the formula document.
func (r *SettingsRepository) SaveFormulas(ctx context.Context, formulas models.GradeFormulas) {
	if formulas == nil {
		formulas = models.GradeFormulas{}
	}
	save(ctx, r.w, KeyGradeFormulas, formulas)
}

// Display returns the designated seating-chart column per subject.
func (r *SettingsRepository) Display(ctx context.Context) models.DisplaySettings {
	d := load(ctx, r.w, KeyDisplaySettings, models.DisplaySettings{})
	if d == nil {
		d = models.DisplaySettings{}
	}
	return d
}

// SaveDisplay overwrites the display document.
func (r *SettingsRepository) SaveDisplay(ctx context.Context, display models.DisplaySettings) {
	if display == nil {
		display = models.DisplaySettings{}
	}
	save(ctx, r.w, KeyDisplaySettings, display)
}

// Sharing returns the sharing preferences.
func (r *SettingsRepository) Sharing(ctx context.Context) models.SharingSettings {
	s := load(ctx, r.w, KeySharingSettings, models.DefaultSharing())
	if s.SharedClasses == nil {
		s.SharedClasses = []string{}
	}
	return s
}

// SaveSharing overwrites the sharing preferences.
func (r *SettingsRepository) SaveSharing(ctx context.Context, sharing models.SharingSettings) {
	if sharing.SharedClasses == nil {
		sharing.SharedClasses = []string{}
	}
	save(ctx, r.w, KeySharingSettings, sharing)
}

// CustomComments returns the teacher's own comment bank entries by category.
func (r *SettingsRepository) CustomComments(ctx context.Context) models.CustomComments {
	c := load(ctx, r.w, KeyCustomComments, models.CustomComments{})
	if c == nil {
		c = models.CustomComments{}
	}
	return c
}

// SaveCustomComments overwrites the custom comment document.
func (r *SettingsRepository) SaveCustomComments(ctx context.Context, comments models.CustomComments) {
	if comments == nil {
		comments = models.CustomComments{}
	}
	save(ctx, r.w, KeyCustomComments, comments)
}
