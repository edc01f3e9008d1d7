package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *ErrorBody             `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// ErrorBody is the failure shape the dashboard renders as a toast.
type ErrorBody struct {
	Code           string         `json:"code"`
	Message        string         `json:"message"`
	Kind           appErrors.Kind `json:"kind"`
	MessageKey     string         `json:"messageKey,omitempty"`
	Status         int            `json:"status"`
	Local          bool           `json:"local"`
	ReauthRequired bool           `json:"reauthRequired,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
// Untyped errors are console faults, never upstream ones.
func Error(c *gin.Context, err error) {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		appErr = appErrors.Local(appErrors.ErrServer, "")
		appErr.Err = err
	}
	Failure(c, ErrorBody{
		Code:           appErr.Code,
		Message:        appErr.Message,
		Kind:           appErr.Kind,
		MessageKey:     appErr.MessageKey,
		Status:         appErr.Status,
		Local:          appErr.Local,
		ReauthRequired: appErr.Kind == appErrors.KindAuth,
	})
}

// Failure writes body with the console status derived from its kind.
func Failure(c *gin.Context, body ErrorBody) {
	noStore(c)
	c.JSON(StatusFor(body.Kind, body.Local, body.Status), Envelope{Error: &body})
}

// StatusFor maps a failure kind to the console's HTTP status. Upstream server and transport
// failures become gateway errors so they are not mistaken for console bugs.
func StatusFor(kind appErrors.Kind, local bool, status int) int {
	switch kind {
	case appErrors.KindValidation:
		return http.StatusBadRequest
	case appErrors.KindAuth, appErrors.KindNoCredential:
		return http.StatusUnauthorized
	case appErrors.KindNotFound:
		return http.StatusNotFound
	case appErrors.KindConflict:
		return http.StatusConflict
	case appErrors.KindBusy:
		return http.StatusTooManyRequests
	case appErrors.KindConnectivity:
		return http.StatusBadGateway
	default:
		if local && status >= http.StatusInternalServerError {
			return status
		}
		if local {
			return http.StatusInternalServerError
		}
		return http.StatusBadGateway
	}
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
