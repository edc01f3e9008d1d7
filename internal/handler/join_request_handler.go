package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/middleware"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

type joinRequestWorkflow interface {
	FetchAll(ctx context.Context) models.ActionResult
	Approve(ctx context.Context, id string) models.ActionResult
	Reject(ctx context.Context, id string) models.ActionResult
	Delete(ctx context.Context, id string) models.ActionResult
	Entities() []models.JoinRequest
	InFlightID() string
}

// JoinRequestHandler exposes the join request workflow.
type JoinRequestHandler struct {
	workflow joinRequestWorkflow
}

// NewJoinRequestHandler constructs the handler.
func NewJoinRequestHandler(workflow joinRequestWorkflow) *JoinRequestHandler {
	return &JoinRequestHandler{workflow: workflow}
}

// List godoc
// @Summary List join requests
// @Description Returns the current list, newest first. refresh=true reloads it from the server first.
// @Tags JoinRequests
// @Produce json
// @Param refresh query bool false "Reload from the server"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /join-requests [get]
func (h *JoinRequestHandler) List(c *gin.Context) {
	if wantsRefresh(c) {
		if result := h.workflow.FetchAll(c.Request.Context()); !result.Success {
			response.Failure(c, failureBody(result))
			return
		}
	}
	middleware.SetMeta(c, "inFlightId", h.workflow.InFlightID())
	response.JSON(c, http.StatusOK, h.workflow.Entities(), middleware.ExtractMeta(c))
}

// Approve godoc
// @Summary Approve a pending join request
// @Tags JoinRequests
// @Produce json
// @Param id path string true "Join request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /join-requests/{id}/approve [post]
func (h *JoinRequestHandler) Approve(c *gin.Context) {
	writeResult(c, h.workflow.Approve(c.Request.Context(), c.Param("id")))
}

// Reject godoc
// @Summary Reject a pending join request
// @Tags JoinRequests
// @Produce json
// @Param id path string true "Join request ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /join-requests/{id}/reject [post]
func (h *JoinRequestHandler) Reject(c *gin.Context) {
	writeResult(c, h.workflow.Reject(c.Request.Context(), c.Param("id")))
}

// Delete godoc
// @Summary Delete a join request or member
// @Tags JoinRequests
// @Produce json
// @Param id path string true "Join request ID"
// @Success 200 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /join-requests/{id} [delete]
func (h *JoinRequestHandler) Delete(c *gin.Context) {
	writeResult(c, h.workflow.Delete(c.Request.Context(), c.Param("id")))
}
