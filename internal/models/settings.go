package models

// GridSettings describes the seating chart layout.
type GridSettings struct {
	Rows int `json:"rows" validate:"gte=1,lte=30"`
	Cols int `json:"cols" validate:"gte=1,lte=30"`
	Size int `json:"size" validate:"gte=20,lte=400"`
}

// Seats is the capacity of the grid.
func (g GridSettings) Seats() int { return g.Rows * g.Cols }

// DefaultGrid is used when no grid has been stored.
var DefaultGrid = GridSettings{Rows: 10, Cols: 6, Size: 100}

// LegacyGrid is an old stored default rewritten to DefaultGrid on read.
var LegacyGrid = GridSettings{Rows: 10, Cols: 10, Size: 100}

// GradeFormulas maps subject id to column name to expression.
type GradeFormulas map[string]map[string]string

// DisplaySettings maps subject id to the column shown on the seating chart.
type DisplaySettings map[string]string

// SharingSettings controls which classes are visible to other teachers.
type SharingSettings struct {
	IsEnabled     bool     `json:"isEnabled"`
	SharedClasses []string `json:"sharedClasses"`
}

// DefaultSharing is returned when nothing has been stored.
func DefaultSharing() SharingSettings {
	return SharingSettings{SharedClasses: []string{}}
}
