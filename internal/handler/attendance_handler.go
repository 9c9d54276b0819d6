package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// AttendanceHandler exposes roll-call endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs an AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Sessions godoc
// @Summary List roll-call sessions
// @Tags Attendance
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/sessions [get]
func (h *AttendanceHandler) Sessions(c *gin.Context) {
	sessions, err := h.attendance.Sessions(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, sessions)
}

// AddSession godoc
// @Summary Open a roll-call session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/sessions [post]
func (h *AttendanceHandler) AddSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.attendance.AddSession(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateDate godoc
// @Summary Move a session to another date
// @Tags Attendance
// @Accept json
// @Param id path string true "Session ID"
// @Param payload body models.UpdateSessionDateRequest true "Date payload"
// @Success 204
// @Security BearerAuth
// @Router /attendance/sessions/{id} [patch]
func (h *AttendanceHandler) UpdateDate(c *gin.Context) {
	var req models.UpdateSessionDateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.attendance.UpdateDate(c.Request.Context(), sessionFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteSession godoc
// @Summary Delete a session and its recorded statuses
// @Tags Attendance
// @Param id path string true "Session ID"
// @Success 204
// @Security BearerAuth
// @Router /attendance/sessions/{id} [delete]
func (h *AttendanceHandler) DeleteSession(c *gin.Context) {
	if err := h.attendance.DeleteSession(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetStatus godoc
// @Summary Record a student's status for a session
// @Tags Attendance
// @Accept json
// @Param payload body models.AttendanceStatusRequest true "Status payload"
// @Success 204
// @Security BearerAuth
// @Router /attendance/status [put]
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	var req models.AttendanceStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.attendance.SetStatus(c.Request.Context(), sessionFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Attendance totals per student
// @Tags Attendance
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string false "Subject ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, err := h.attendance.ClassSummary(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
