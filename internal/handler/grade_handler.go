package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// GradeHandler exposes the grade sheet.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs a GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

type designatedColumnRequest struct {
	SubjectID string `json:"subjectId" binding:"required"`
	Column    string `json:"column" binding:"required"`
}

// Sheet godoc
// @Summary Grade sheet of a class and subject
// @Tags Grades
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades [get]
func (h *GradeHandler) Sheet(c *gin.Context) {
	sheet, err := h.grades.Sheet(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// SaveScores godoc
// @Summary Save edited scores
// @Description Formula columns are recomputed and subject averages refreshed.
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.SaveScoresRequest true "Scores payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/scores [put]
func (h *GradeHandler) SaveScores(c *gin.Context) {
	var req models.SaveScoresRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.grades.SaveScores(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

func columnMutation(c *gin.Context, apply func(ctx context.Context, session *models.SessionTeacher, req models.ColumnRequest) (*models.GradeSheet, error)) {
	var req models.ColumnRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := apply(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// AddColumn godoc
// @Summary Add an assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.ColumnRequest true "Column payload"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/columns [post]
func (h *GradeHandler) AddColumn(c *gin.Context) {
	columnMutation(c, h.grades.AddColumn)
}

// DeleteColumn godoc
// @Summary Delete an assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.ColumnRequest true "Column payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/columns/delete [post]
func (h *GradeHandler) DeleteColumn(c *gin.Context) {
	columnMutation(c, h.grades.DeleteColumn)
}

// ClearFormula godoc
// @Summary Remove a column formula
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.ColumnRequest true "Column payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/formulas/clear [post]
func (h *GradeHandler) ClearFormula(c *gin.Context) {
	columnMutation(c, h.grades.ClearFormula)
}

// RenameColumn godoc
// @Summary Rename an assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.RenameColumnRequest true "Rename payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/columns/rename [post]
func (h *GradeHandler) RenameColumn(c *gin.Context) {
	var req models.RenameColumnRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.grades.RenameColumn(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// ReorderColumns godoc
// @Summary Move an assessment column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.ReorderColumnsRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/columns/reorder [post]
func (h *GradeHandler) ReorderColumns(c *gin.Context) {
	var req models.ReorderColumnsRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.grades.ReorderColumns(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// SetFormula godoc
// @Summary Assign a formula to a column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body models.FormulaRequest true "Formula payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/formulas [put]
func (h *GradeHandler) SetFormula(c *gin.Context) {
	var req models.FormulaRequest
	if !bindJSON(c, &req) {
		return
	}
	sheet, err := h.grades.SetFormula(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet)
}

// ToggleDesignatedColumn godoc
// @Summary Toggle the column shown on the seating chart
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body designatedColumnRequest true "Column payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/designated [post]
func (h *GradeHandler) ToggleDesignatedColumn(c *gin.Context) {
	var req designatedColumnRequest
	if !bindJSON(c, &req) {
		return
	}
	column, err := h.grades.ToggleDesignatedColumn(c.Request.Context(), sessionFromContext(c), req.SubjectID, req.Column)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"subjectId": req.SubjectID, "column": column})
}

// Distribution godoc
// @Summary Score distribution of a class
// @Tags Grades
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/distribution [get]
func (h *GradeHandler) Distribution(c *gin.Context) {
	dist, err := h.grades.Distribution(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dist)
}

// Commentary godoc
// @Summary Written reading of a class score distribution
// @Tags Grades
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /grades/commentary [get]
func (h *GradeHandler) Commentary(c *gin.Context) {
	commentary, err := h.grades.Commentary(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, commentary)
}
