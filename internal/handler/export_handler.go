package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// ExportHandler renders printable sheets.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) send(c *gin.Context, file *service.ExportFile, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Name, file.ContentType, file.Content)
}

// GradeSheet godoc
// @Summary Export a grade sheet
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/grades [get]
func (h *ExportHandler) GradeSheet(c *gin.Context) {
	file, err := h.exports.GradeSheet(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"), c.Query("format"))
	h.send(c, file, err)
}

// AttendanceSheet godoc
// @Summary Export an attendance sheet
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param classId query string true "Class ID"
// @Param subjectId query string false "Subject ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /export/attendance [get]
func (h *ExportHandler) AttendanceSheet(c *gin.Context) {
	file, err := h.exports.AttendanceSheet(c.Request.Context(), sessionFromContext(c), c.Query("classId"), c.Query("subjectId"), c.Query("format"))
	h.send(c, file, err)
}
