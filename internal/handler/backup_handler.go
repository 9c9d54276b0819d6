package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/service"
	appErrors "github.com/noah-isme/classroom-api/pkg/errors"
	"github.com/noah-isme/classroom-api/pkg/response"
)

const jsonContentType = "application/json; charset=utf-8"

// BackupHandler exports and restores workspace backups.
type BackupHandler struct {
	backups *service.BackupService
	// maxImportBytes caps the accepted document size.
	maxImportBytes int64
}

// NewBackupHandler constructs a BackupHandler.
func NewBackupHandler(backups *service.BackupService, maxImportBytes int64) *BackupHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = 32 << 20
	}
	return &BackupHandler{backups: backups, maxImportBytes: maxImportBytes}
}

// Export godoc
// @Summary Download the full workspace backup
// @Tags Backup
// @Produce json
// @Success 200 {file} file
// @Security BearerAuth
// @Router /backup [get]
func (h *BackupHandler) Export(c *gin.Context) {
	body, err := h.backups.Export(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "classroom_backup.json", jsonContentType, body)
}

// ExportClass godoc
// @Summary Download a single-class backup
// @Tags Backup
// @Produce json
// @Param id path string true "Class ID"
// @Param schoolId query string false "School ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /backup/classes/{id} [get]
func (h *BackupHandler) ExportClass(c *gin.Context) {
	body, err := h.backups.ExportClass(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Query("schoolId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, fmt.Sprintf("class_backup_%s.json", c.Param("id")), jsonContentType, body)
}

// Import godoc
// @Summary Restore a backup document
// @Description Collections present in the document replace the stored ones; a malformed document changes nothing.
// @Tags Backup
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /backup [post]
func (h *BackupHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes)
	raw, err := c.GetRawData()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrImportFailed.Code, appErrors.ErrImportFailed.Status, "backup document could not be read"))
		return
	}
	imported, err := h.backups.Import(c.Request.Context(), sessionFromContext(c), raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imported": imported})
}
