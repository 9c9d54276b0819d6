package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/repository"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/formula"
)

type formulaMetrics interface {
	RecordFormulaFailure()
}

// GradeService manages grade sheets: columns, formulas, scores and averages.
type GradeService struct {
	workspaces workspaceProvider
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    formulaMetrics
}

// NewGradeService constructs GradeService.
func NewGradeService(workspaces workspaceProvider, validate *validator.Validate, logger *zap.Logger, metrics formulaMetrics) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{workspaces: workspaces, validator: validate, logger: logger, metrics: metrics}
}

// gradeScope is the resolved state a grade operation works on.
type gradeScope struct {
	ws       *repository.Workspace
	class    models.Class
	subject  models.Subject
	students []models.Student
	columns  []string
	formulas map[string]string
}

func (s *GradeService) scope(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (*gradeScope, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	ws := s.workspaces.For(session)
	class := ws.Classes.Find(ctx, classID)
	if class == nil {
		return nil, appErrors.NotFound("class")
	}
	subject := ws.Subjects.Find(ctx, subjectID)
	if subject == nil {
		return nil, appErrors.NotFound("subject")
	}
	students := ws.Students.List(ctx)
	formulas := ws.Settings.Formulas(ctx)[subjectID]
	if formulas == nil {
		formulas = map[string]string{}
	}
	return &gradeScope{
		ws:       ws,
		class:    *class,
		subject:  *subject,
		students: students,
		columns:  columnsFor(students, classID, subject.Name),
		formulas: formulas,
	}, nil
}

// rewriteOptions describe one sheet rewrite.
type rewriteOptions struct {
	// source maps a column to the stored column its values are read from.
	source map[string]string
	// overrides maps student id to column to the new cell value.
	overrides map[string]map[string]*float64
}

// rewrite rebuilds every class student's record for the subject in column
// order, applies formulas, recomputes scores and averages, and saves.
func (s *GradeService) rewrite(ctx context.Context, sc *gradeScope, opts rewriteOptions) {
	for i := range sc.students {
		st := &sc.students[i]
		if st.ClassID != sc.class.ID {
			continue
		}
		idx := st.SubjectIndex(sc.subject.Name)
		if idx < 0 {
			st.Subjects = append(st.Subjects, models.SubjectRecord{Name: sc.subject.Name})
			idx = len(st.Subjects) - 1
		}
		rec := &st.Subjects[idx]
		stored := assessmentValues(*rec)

		values := make(map[string]*float64, len(sc.columns))
		for _, col := range sc.columns {
			src := col
			if mapped, ok := opts.source[col]; ok {
				src = mapped
			}
			values[col] = stored[src]
		}
		for col, v := range opts.overrides[st.ID] {
			values[col] = v
		}
		s.applyFormulas(st.ID, values, sc.columns, sc.formulas)

		rec.Assessments = make([]models.Assessment, len(sc.columns))
		for j, col := range sc.columns {
			rec.Assessments[j] = models.Assessment{Name: col, Score: values[col]}
		}
		rec.Score = floatPtr(SubjectScore(rec.Assessments))
	}
	sc.students = RecomputeAverages(sc.students)
	sc.ws.Students.Save(ctx, sc.students)
}

// applyFormulas evaluates formula columns in column order so later formulas
// see earlier results. A failing formula keeps the previous cell value.
func (s *GradeService) applyFormulas(studentID string, values map[string]*float64, columns []string, formulas map[string]string) map[string]bool {
	partial := make(map[string]bool)
	for _, col := range columns {
		expr, ok := formulas[col]
		if !ok || expr == "" {
			continue
		}
		res, err := formula.Evaluate(expr, columns, values)
		if err != nil {
			s.logger.Debug("formula evaluation failed",
				zap.String("student_id", studentID),
				zap.String("column", col),
				zap.String("expression", expr),
				zap.Error(err))
			if s.metrics != nil {
				s.metrics.RecordFormulaFailure()
			}
			continue
		}
		values[col] = res.Value
		partial[col] = res.Partial
	}
	return partial
}

func (s *GradeService) sheet(ctx context.Context, sc *gradeScope) *models.GradeSheet {
	sheet := &models.GradeSheet{
		ClassID:          sc.class.ID,
		SubjectID:        sc.subject.ID,
		SubjectName:      sc.subject.Name,
		Columns:          sc.columns,
		Formulas:         sc.formulas,
		DesignatedColumn: sc.ws.Settings.Display(ctx)[sc.subject.ID],
		Rows:             []models.GradeRow{},
	}
	for _, st := range sc.students {
		if st.ClassID != sc.class.ID {
			continue
		}
		row := models.GradeRow{
			StudentID:    st.ID,
			Name:         st.Name,
			DOB:          st.DOB,
			Gender:       st.Gender,
			AverageScore: st.AverageScore,
			Cells:        make([]models.GradeCell, len(sc.columns)),
		}
		values := map[string]*float64{}
		if idx := st.SubjectIndex(sc.subject.Name); idx >= 0 {
			values = assessmentValues(st.Subjects[idx])
			row.SubjectScore = st.Subjects[idx].Score
		}
		for j, col := range sc.columns {
			cell := models.GradeCell{Column: col, Score: values[col]}
			if expr, ok := sc.formulas[col]; ok && expr != "" {
				if res, err := formula.Evaluate(expr, sc.columns, values); err == nil {
					cell.Partial = res.Partial
				}
			}
			row.Cells[j] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func (s *GradeService) classHasStudents(sc *gradeScope) bool {
	for _, st := range sc.students {
		if st.ClassID == sc.class.ID {
			return true
		}
	}
	return false
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Sheet returns the grade sheet of a class for one subject.
func (s *GradeService) Sheet(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (*models.GradeSheet, error) {
	sc, err := s.scope(ctx, session, classID, subjectID)
	if err != nil {
		return nil, err
	}
	return s.sheet(ctx, sc), nil
}

// AddColumn appends an empty column to the sheet.
func (s *GradeService) AddColumn(ctx context.Context, session *models.SessionTeacher, req models.ColumnRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid column payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		if !s.classHasStudents(sc) {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "class has no students")
		}
		if indexOf(sc.columns, req.Column) >= 0 {
			return appErrors.Clone(appErrors.ErrConflict, "column already exists")
		}
		sc.columns = append(sc.columns, req.Column)
		s.rewrite(ctx, sc, rewriteOptions{})
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// RenameColumn renames a column together with its formula and display designation.
func (s *GradeService) RenameColumn(ctx context.Context, session *models.SessionTeacher, req models.RenameColumnRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid rename payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		idx := indexOf(sc.columns, req.Column)
		if idx < 0 {
			return appErrors.NotFound("column")
		}
		if req.NewName == req.Column {
			out = s.sheet(ctx, sc)
			return nil
		}
		if indexOf(sc.columns, req.NewName) >= 0 {
			return appErrors.Clone(appErrors.ErrConflict, "column already exists")
		}
		sc.columns[idx] = req.NewName

		if expr, ok := sc.formulas[req.Column]; ok {
			delete(sc.formulas, req.Column)
			sc.formulas[req.NewName] = expr
			s.saveFormulas(ctx, sc)
		}
		display := sc.ws.Settings.Display(ctx)
		if display[sc.subject.ID] == req.Column {
			display[sc.subject.ID] = req.NewName
			sc.ws.Settings.SaveDisplay(ctx, display)
		}

		s.rewrite(ctx, sc, rewriteOptions{source: map[string]string{req.NewName: req.Column}})
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// DeleteColumn removes a column, its formula and its display designation.
func (s *GradeService) DeleteColumn(ctx context.Context, session *models.SessionTeacher, req models.ColumnRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid column payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		idx := indexOf(sc.columns, req.Column)
		if idx < 0 {
			return appErrors.NotFound("column")
		}
		sc.columns = append(sc.columns[:idx:idx], sc.columns[idx+1:]...)

		if _, ok := sc.formulas[req.Column]; ok {
			delete(sc.formulas, req.Column)
			s.saveFormulas(ctx, sc)
		}
		display := sc.ws.Settings.Display(ctx)
		if display[sc.subject.ID] == req.Column {
			delete(display, sc.subject.ID)
			sc.ws.Settings.SaveDisplay(ctx, display)
		}

		s.rewrite(ctx, sc, rewriteOptions{})
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// ReorderColumns moves the column at req.From to position req.To.
func (s *GradeService) ReorderColumns(ctx context.Context, session *models.SessionTeacher, req models.ReorderColumnsRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid reorder payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		if req.From >= len(sc.columns) || req.To >= len(sc.columns) {
			return appErrors.Clone(appErrors.ErrValidation, "column index out of range")
		}
		if req.From != req.To {
			moved := sc.columns[req.From]
			rest := append(sc.columns[:req.From:req.From], sc.columns[req.From+1:]...)
			reordered := make([]string, 0, len(sc.columns))
			reordered = append(reordered, rest[:req.To]...)
			reordered = append(reordered, moved)
			reordered = append(reordered, rest[req.To:]...)
			sc.columns = reordered
			s.rewrite(ctx, sc, rewriteOptions{})
		}
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// SetFormula validates and stores a formula, then applies it to every row.
func (s *GradeService) SetFormula(ctx context.Context, session *models.SessionTeacher, req models.FormulaRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid formula payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		if indexOf(sc.columns, req.Column) < 0 {
			return appErrors.NotFound("column")
		}
		if err := formula.Validate(req.Expression, sc.columns); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInvalidFormula.Code, appErrors.ErrInvalidFormula.Status, "formula does not parse")
		}
		for _, used := range formula.UsedColumns(req.Expression, sc.columns) {
			if used == req.Column {
				return appErrors.Clone(appErrors.ErrInvalidFormula, "formula cannot reference its own column")
			}
		}
		sc.formulas[req.Column] = req.Expression
		s.saveFormulas(ctx, sc)
		s.rewrite(ctx, sc, rewriteOptions{})
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// ClearFormula removes a column's formula. Cell values are kept.
func (s *GradeService) ClearFormula(ctx context.Context, session *models.SessionTeacher, req models.ColumnRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid column payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		if _, ok := sc.formulas[req.Column]; ok {
			delete(sc.formulas, req.Column)
			s.saveFormulas(ctx, sc)
		}
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

func (s *GradeService) saveFormulas(ctx context.Context, sc *gradeScope) {
	all := sc.ws.Settings.Formulas(ctx)
	if len(sc.formulas) == 0 {
		delete(all, sc.subject.ID)
	} else {
		all[sc.subject.ID] = sc.formulas
	}
	sc.ws.Settings.SaveFormulas(ctx, all)
}

// SaveScores writes cells, re-applies every formula and recomputes averages.
func (s *GradeService) SaveScores(ctx context.Context, session *models.SessionTeacher, req models.SaveScoresRequest) (*models.GradeSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid scores payload")
	}
	var out *models.GradeSheet
	err := s.workspaces.For(session).Atomically(func() error {
		sc, err := s.scope(ctx, session, req.ClassID, req.SubjectID)
		if err != nil {
			return err
		}
		if len(req.Columns) > 0 {
			seen := make(map[string]struct{}, len(req.Columns))
			for _, c := range req.Columns {
				if _, dup := seen[c]; dup {
					return appErrors.Clone(appErrors.ErrValidation, "duplicate column "+c)
				}
				seen[c] = struct{}{}
			}
			sc.columns = append([]string(nil), req.Columns...)
		}

		inClass := make(map[string]bool)
		for _, st := range sc.students {
			if st.ClassID == sc.class.ID {
				inClass[st.ID] = true
			}
		}
		overrides := make(map[string]map[string]*float64)
		for _, e := range req.Entries {
			if !inClass[e.StudentID] {
				return appErrors.Clone(appErrors.ErrValidation, "student "+e.StudentID+" is not in the class")
			}
			if indexOf(sc.columns, e.Column) < 0 {
				return appErrors.Clone(appErrors.ErrValidation, "unknown column "+e.Column)
			}
			if overrides[e.StudentID] == nil {
				overrides[e.StudentID] = make(map[string]*float64)
			}
			overrides[e.StudentID][e.Column] = e.Score
		}

		s.rewrite(ctx, sc, rewriteOptions{overrides: overrides})
		out = s.sheet(ctx, sc)
		return nil
	})
	return out, err
}

// ToggleDesignatedColumn selects the column shown on the seating chart for a
// subject, or clears it when it is already selected. It returns the new designation.
func (s *GradeService) ToggleDesignatedColumn(ctx context.Context, session *models.SessionTeacher, subjectID, column string) (string, error) {
	if err := requireSession(session); err != nil {
		return "", err
	}
	if subjectID == "" || column == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "subject and column are required")
	}
	ws := s.workspaces.For(session)
	var designated string
	err := ws.Atomically(func() error {
		display := ws.Settings.Display(ctx)
		if display[subjectID] == column {
			delete(display, subjectID)
		} else {
			display[subjectID] = column
			designated = column
		}
		ws.Settings.SaveDisplay(ctx, display)
		return nil
	})
	return designated, err
}

var distributionBands = []models.DistributionBand{
	{Label: "Kém", Min: 0, Max: 3},
	{Label: "Yếu", Min: 3, Max: 5},
	{Label: "Trung bình", Min: 5, Max: 6.5},
	{Label: "Khá", Min: 6.5, Max: 8},
	{Label: "Giỏi", Min: 8, Max: 10},
}

// Distribution counts class scores per band, using the designated column
// when one is set and the subject score otherwise.
func (s *GradeService) Distribution(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (*models.GradeDistribution, error) {
	sc, err := s.scope(ctx, session, classID, subjectID)
	if err != nil {
		return nil, err
	}
	designated := sc.ws.Settings.Display(ctx)[subjectID]
	dist := &models.GradeDistribution{
		ClassID:   classID,
		SubjectID: subjectID,
		Column:    designated,
		Bands:     make([]models.DistributionBand, len(distributionBands)),
	}
	copy(dist.Bands, distributionBands)

	scores, ungraded := classScores(sc, designated)
	dist.Graded = len(scores)
	dist.Ungraded = ungraded
	var sum float64
	for _, ns := range scores {
		sum += ns.score
		dist.Bands[bandFor(ns.score)].Count++
	}
	if dist.Graded > 0 {
		dist.Average = floatPtr(formula.Round1(sum / float64(dist.Graded)))
	}
	return dist, nil
}

// Commentary writes a reading of the class distribution for one subject.
func (s *GradeService) Commentary(ctx context.Context, session *models.SessionTeacher, classID, subjectID string) (*models.GradeCommentary, error) {
	sc, err := s.scope(ctx, session, classID, subjectID)
	if err != nil {
		return nil, err
	}
	scores, _ := classScores(sc, sc.ws.Settings.Display(ctx)[subjectID])
	return composeCommentary(sc.class.ID, sc.subject, scores), nil
}

type namedScore struct {
	name  string
	score float64
}

// classScores resolves each class student's score in roster order. Students
// without a value count as ungraded.
func classScores(sc *gradeScope, designated string) ([]namedScore, int) {
	var scores []namedScore
	ungraded := 0
	for _, st := range sc.students {
		if st.ClassID != sc.class.ID {
			continue
		}
		var score *float64
		if idx := st.SubjectIndex(sc.subject.Name); idx >= 0 {
			rec := st.Subjects[idx]
			if designated != "" {
				score = assessmentValues(rec)[designated]
			} else {
				score = rec.Score
			}
		}
		if score == nil {
			ungraded++
			continue
		}
		scores = append(scores, namedScore{name: st.Name, score: *score})
	}
	return scores, ungraded
}

func bandFor(score float64) int {
	for i, b := range distributionBands[:len(distributionBands)-1] {
		if score < b.Max {
			return i
		}
	}
	return len(distributionBands) - 1
}

