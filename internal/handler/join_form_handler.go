package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

type joinSubmitter interface {
	Submit(ctx context.Context, submission dto.JoinRequestSubmission) (string, error)
}

// JoinFormHandler accepts public volunteer sign-ups.
type JoinFormHandler struct {
	submitter joinSubmitter
}

// NewJoinFormHandler constructs the handler.
func NewJoinFormHandler(submitter joinSubmitter) *JoinFormHandler {
	return &JoinFormHandler{submitter: submitter}
}

// Submit godoc
// @Summary Submit the public join form
// @Tags JoinForm
// @Accept json
// @Produce json
// @Param payload body dto.JoinRequestSubmission true "Join form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /join [post]
func (h *JoinFormHandler) Submit(c *gin.Context) {
	var req dto.JoinRequestSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Local(appErrors.ErrValidation, "invalid join request payload"))
		return
	}
	message, err := h.submitter.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ActionResponse{Message: message})
}
