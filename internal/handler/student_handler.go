package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// StudentHandler handles roster and seating endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// seatingChart is the response body of the seating endpoint.
type seatingChart struct {
	Grid  models.GridSettings    `json:"grid"`
	Seats map[int]models.Student `json:"seats"`
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param classId query string false "Filter by class"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), sessionFromContext(c), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students)
}

// Get godoc
// @Summary Get student by id
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Add a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req models.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// BulkCreate godoc
// @Summary Add many students to the free seats of a class
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.BulkAddStudentsRequest true "Roster payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /students/bulk [post]
func (h *StudentHandler) BulkCreate(c *gin.Context) {
	var req models.BulkAddStudentsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.students.BulkCreate(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [patch]
func (h *StudentHandler) Update(c *gin.Context) {
	var req models.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete a student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Security BearerAuth
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignSeat godoc
// @Summary Move a student to a seat, swapping with its occupant
// @Tags Seating
// @Accept json
// @Produce json
// @Param payload body models.AssignSeatRequest true "Seat payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /seating/assign [post]
func (h *StudentHandler) AssignSeat(c *gin.Context) {
	var req models.AssignSeatRequest
	if !bindJSON(c, &req) {
		return
	}
	moved, err := h.students.AssignSeat(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, moved)
}

// SeatingChart godoc
// @Summary Seating chart of a class
// @Tags Seating
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string false "Subject whose grid and seats are used"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /seating [get]
func (h *StudentHandler) SeatingChart(c *gin.Context) {
	seats, grid, err := h.students.SeatingChart(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seatingChart{Grid: grid, Seats: seats})
}
