package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/middleware"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/response"
)

// ActionResponse is the success payload of a console action.
type ActionResponse struct {
	Message      string `json:"message"`
	AccountEmail string `json:"accountEmail,omitempty"`
}

// writeResult renders an action result: the envelope on success, the mapped failure otherwise.
func writeResult(c *gin.Context, result models.ActionResult) {
	if !result.Success {
		response.Failure(c, failureBody(result))
		return
	}
	response.JSON(c, http.StatusOK, ActionResponse{Message: result.Message, AccountEmail: result.AccountEmail}, middleware.ExtractMeta(c))
}

func failureBody(result models.ActionResult) response.ErrorBody {
	return response.ErrorBody{
		Code:           result.ErrorCode,
		Message:        result.Message,
		Kind:           result.Kind,
		MessageKey:     result.MessageKey,
		Status:         result.Status,
		Local:          result.Local,
		ReauthRequired: result.ReauthRequired,
	}
}

// wantsRefresh reads a boolean query flag; anything unparseable is false.
func wantsRefresh(c *gin.Context) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query("refresh")))
	return err == nil && v
}
