package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

type sessionManager interface {
	SignIn(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SessionHandler stores or drops the admin bearer token issued by the remote API.
type SessionHandler struct {
	session     sessionManager
	afterSignIn func(ctx context.Context)
}

// NewSessionHandler constructs the handler. afterSignIn, when set, runs once a token is stored.
func NewSessionHandler(session sessionManager, afterSignIn func(ctx context.Context)) *SessionHandler {
	return &SessionHandler{session: session, afterSignIn: afterSignIn}
}

// SignIn godoc
// @Summary Store the admin token
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.SessionRequest true "Bearer token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /session [put]
func (h *SessionHandler) SignIn(c *gin.Context) {
	var req dto.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Local(appErrors.ErrValidation, "token is required"))
		return
	}
	if err := h.session.SignIn(c.Request.Context(), req.Token); err != nil {
		response.Error(c, err)
		return
	}
	if h.afterSignIn != nil {
		h.afterSignIn(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, gin.H{"signedIn": true})
}

// SignOut godoc
// @Summary Drop the admin token
// @Tags Session
// @Success 204
// @Router /session [delete]
func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.session.Clear(c.Request.Context()); err != nil {
		appErr := appErrors.Local(appErrors.ErrServer, "failed to clear session")
		appErr.Err = err
		response.Error(c, appErr)
		return
	}
	response.NoContent(c)
}
