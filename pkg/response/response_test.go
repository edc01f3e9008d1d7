package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name   string
		kind   appErrors.Kind
		local  bool
		status int
		want   int
	}{
		{"validation", appErrors.KindValidation, true, 400, http.StatusBadRequest},
		{"auth", appErrors.KindAuth, false, 401, http.StatusUnauthorized},
		{"no credential", appErrors.KindNoCredential, true, 401, http.StatusUnauthorized},
		{"not found", appErrors.KindNotFound, false, 404, http.StatusNotFound},
		{"conflict", appErrors.KindConflict, false, 400, http.StatusConflict},
		{"busy", appErrors.KindBusy, true, 429, http.StatusTooManyRequests},
		{"connectivity", appErrors.KindConnectivity, false, 0, http.StatusBadGateway},
		{"upstream server", appErrors.KindServer, false, 500, http.StatusBadGateway},
		{"closed", appErrors.KindServer, true, 503, http.StatusServiceUnavailable},
		{"local server", appErrors.KindServer, true, 0, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.kind, tc.local, tc.status))
		})
	}
}

func TestErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, appErrors.Local(appErrors.ErrBusy, ""))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrBusy.Code, env.Error.Code)
	assert.True(t, env.Error.Local)
}

func TestErrorWrapsUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
