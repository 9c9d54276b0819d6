package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/response"
)

// TransferHandler exposes class hand-over endpoints.
type TransferHandler struct {
	transfers *service.TransferService
}

// NewTransferHandler constructs a TransferHandler.
func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Offer godoc
// @Summary Offer a class to another teacher
// @Description The class leaves the sender's workspace immediately.
// @Tags Transfers
// @Accept json
// @Produce json
// @Param payload body models.OfferTransferRequest true "Offer payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /transfers [post]
func (h *TransferHandler) Offer(c *gin.Context) {
	var req models.OfferTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	transfer, err := h.transfers.Offer(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, transfer.Summary())
}

// Pending godoc
// @Summary Transfers waiting for the current teacher
// @Tags Transfers
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /transfers [get]
func (h *TransferHandler) Pending(c *gin.Context) {
	pending, err := h.transfers.Pending(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, pending)
}

// Accept godoc
// @Summary Accept a transfer into one of the teacher's schools
// @Tags Transfers
// @Accept json
// @Produce json
// @Param id path string true "Transfer ID"
// @Param payload body models.AcceptTransferRequest true "Accept payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /transfers/{id}/accept [post]
func (h *TransferHandler) Accept(c *gin.Context) {
	var req models.AcceptTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	req.TransferID = c.Param("id")
	class, err := h.transfers.Accept(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Reject godoc
// @Summary Reject a transfer
// @Tags Transfers
// @Param id path string true "Transfer ID"
// @Success 204
// @Security BearerAuth
// @Router /transfers/{id} [delete]
func (h *TransferHandler) Reject(c *gin.Context) {
	if err := h.transfers.Reject(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Recipients godoc
// @Summary Teachers of a group a class can be handed to
// @Tags Transfers
// @Produce json
// @Param groupId query string true "Group ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /transfers/recipients [get]
func (h *TransferHandler) Recipients(c *gin.Context) {
	recipients, err := h.transfers.Recipients(c.Request.Context(), sessionFromContext(c), c.Query("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recipients)
}
