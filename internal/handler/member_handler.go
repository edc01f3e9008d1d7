package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/middleware"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

type memberDirectory interface {
	List(ctx context.Context) ([]models.JoinRequest, bool, error)
	Get(ctx context.Context, id string) (*models.JoinRequest, bool, error)
}

// MemberHandler serves the approved member directory.
type MemberHandler struct {
	members memberDirectory
}

// NewMemberHandler constructs the handler.
func NewMemberHandler(members memberDirectory) *MemberHandler {
	return &MemberHandler{members: members}
}

// List godoc
// @Summary List approved members
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, cacheHit, err := h.members.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, members, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, cacheHit, err := h.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, member, middleware.ExtractMeta(c))
}
