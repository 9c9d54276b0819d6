package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// SchoolHandler serves schools, classes, subjects and their settings.
type SchoolHandler struct {
	schools *service.SchoolService
}

// NewSchoolHandler constructs a SchoolHandler.
func NewSchoolHandler(schools *service.SchoolService) *SchoolHandler {
	return &SchoolHandler{schools: schools}
}

// ListSchools godoc
// @Summary List schools
// @Tags Schools
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /schools [get]
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	schools, err := h.schools.ListSchools(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, schools)
}

// CreateSchool godoc
// @Summary Create school
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body models.CreateSchoolRequest true "School payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /schools [post]
func (h *SchoolHandler) CreateSchool(c *gin.Context) {
	var req models.CreateSchoolRequest
	if !bindJSON(c, &req) {
		return
	}
	school, err := h.schools.CreateSchool(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, school)
}

// DeleteSchool godoc
// @Summary Delete school with its classes and subjects
// @Tags Schools
// @Param id path string true "School ID"
// @Success 204
// @Security BearerAuth
// @Router /schools/{id} [delete]
func (h *SchoolHandler) DeleteSchool(c *gin.Context) {
	if err := h.schools.DeleteSchool(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderSchools godoc
// @Summary Move a school to another's position
// @Tags Schools
// @Accept json
// @Produce json
// @Param payload body models.ReorderRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /schools/reorder [post]
func (h *SchoolHandler) ReorderSchools(c *gin.Context) {
	var req models.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.schools.ReorderSchools(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items)
}

// ListClasses godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Param schoolId query string false "Filter by school"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /classes [get]
func (h *SchoolHandler) ListClasses(c *gin.Context) {
	classes, err := h.schools.ListClasses(c.Request.Context(), sessionFromContext(c), c.Query("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes)
}

// CreateClass godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /classes [post]
func (h *SchoolHandler) CreateClass(c *gin.Context) {
	var req models.CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}
	class, err := h.schools.CreateClass(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// DeleteClass godoc
// @Summary Delete class and its students
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Security BearerAuth
// @Router /classes/{id} [delete]
func (h *SchoolHandler) DeleteClass(c *gin.Context) {
	if err := h.schools.DeleteClass(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderClasses godoc
// @Summary Move a class to another's position
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body models.ReorderRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /classes/reorder [post]
func (h *SchoolHandler) ReorderClasses(c *gin.Context) {
	var req models.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.schools.ReorderClasses(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags Subjects
// @Produce json
// @Param schoolId query string false "Filter by school"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects [get]
func (h *SchoolHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.schools.ListSubjects(c.Request.Context(), sessionFromContext(c), c.Query("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, subjects)
}

// CreateSubject godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects [post]
func (h *SchoolHandler) CreateSubject(c *gin.Context) {
	var req models.CreateSubjectRequest
	if !bindJSON(c, &req) {
		return
	}
	subject, err := h.schools.CreateSubject(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// DeleteSubject godoc
// @Summary Delete subject
// @Tags Subjects
// @Param id path string true "Subject ID"
// @Success 204
// @Security BearerAuth
// @Router /subjects/{id} [delete]
func (h *SchoolHandler) DeleteSubject(c *gin.Context) {
	if err := h.schools.DeleteSubject(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderSubjects godoc
// @Summary Move a subject to another's position
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body models.ReorderRequest true "Reorder payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/reorder [post]
func (h *SchoolHandler) ReorderSubjects(c *gin.Context) {
	var req models.ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.schools.ReorderSubjects(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, items)
}

// Grid godoc
// @Summary Seating grid of a subject
// @Tags Subjects
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/{id}/grid [get]
func (h *SchoolHandler) Grid(c *gin.Context) {
	grid, err := h.schools.Grid(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// SaveGrid godoc
// @Summary Update seating grid of a subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body models.GridSettings true "Grid payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subjects/{id}/grid [put]
func (h *SchoolHandler) SaveGrid(c *gin.Context) {
	var grid models.GridSettings
	if !bindJSON(c, &grid) {
		return
	}
	saved, err := h.schools.SaveGrid(c.Request.Context(), sessionFromContext(c), c.Param("id"), grid)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved)
}

// Sharing godoc
// @Summary Class sharing settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/sharing [get]
func (h *SchoolHandler) Sharing(c *gin.Context) {
	sharing, err := h.schools.Sharing(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sharing)
}

// SaveSharing godoc
// @Summary Update class sharing settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.SharingSettings true "Sharing payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/sharing [put]
func (h *SchoolHandler) SaveSharing(c *gin.Context) {
	var sharing models.SharingSettings
	if !bindJSON(c, &sharing) {
		return
	}
	saved, err := h.schools.SaveSharing(c.Request.Context(), sessionFromContext(c), sharing)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved)
}
