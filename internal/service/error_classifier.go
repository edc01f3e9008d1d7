package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/repository"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

// Application codes the remote API embeds in error bodies, folded to upper snake case.
var codeOverrides = map[string]*appErrors.Error{
	"ALREADY_PROCESSED":         appErrors.ErrProcessed,
	"REQUEST_ALREADY_PROCESSED": appErrors.ErrProcessed,
	"DUPLICATE_EMAIL":           appErrors.ErrDuplicate,
	"EMAIL_EXISTS":              appErrors.ErrDuplicate,
	"INVALID_EMAIL":             appErrors.ErrInvalidEmail,
	"MAIL_CONFIG_MISSING":       appErrors.ErrMailConfig,
	"MISSING_MAIL_CONFIG":       appErrors.ErrMailConfig,
}

var processedPhrases = []string{"already processed", "already approved", "already rejected"}

// ClassifyError maps any failure into a typed, user-facing error. It never returns nil for a non-nil err.
//
// Transport status decides the kind; an application code in the body then overrides the message,
// and for duplicate-state codes the kind as well.
func ClassifyError(err error) *appErrors.Error {
	if err == nil {
		return nil
	}

	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}

	var apiErr *repository.APIError
	if !errors.As(err, &apiErr) {
		if isTimeout(err) {
			return appErrors.Wrap(err, appErrors.ErrConnectivity, "")
		}
		return appErrors.Wrap(err, appErrors.ErrServer, "")
	}

	base := classifyStatus(apiErr)
	if override, ok := codeOverrides[foldCode(apiErr.Code)]; ok && base.Kind != appErrors.KindConnectivity && base.Kind != appErrors.KindAuth {
		out := appErrors.Wrap(err, override, "")
		out.Status = apiErr.Status
		return out
	}
	if base.Kind == appErrors.KindValidation && apiErr.Code == "" && mentionsProcessed(apiErr.Message) {
		out := appErrors.Wrap(err, appErrors.ErrProcessed, apiErr.Message)
		out.Status = apiErr.Status
		return out
	}
	return base
}

func classifyStatus(apiErr *repository.APIError) *appErrors.Error {
	switch status := apiErr.Status; {
	case status == 0:
		return appErrors.Wrap(apiErr, appErrors.ErrConnectivity, "")
	case status == http.StatusUnauthorized:
		return appErrors.Wrap(apiErr, appErrors.ErrAuthExpired, "")
	case status == http.StatusNotFound:
		return appErrors.Wrap(apiErr, appErrors.ErrNotFound, "")
	case status == http.StatusBadRequest:
		return appErrors.Wrap(apiErr, appErrors.ErrValidation, apiErr.Message)
	case status == http.StatusConflict:
		return appErrors.Wrap(apiErr, appErrors.ErrConflict, apiErr.Message)
	default:
		out := appErrors.Wrap(apiErr, appErrors.ErrServer, "")
		if status >= 400 {
			out.Status = status
		}
		return out
	}
}

func foldCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("-", "_", " ", "_").Replace(code)
}

func mentionsProcessed(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range processedPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}

// recoverFailure is the boundary every controller action fails through.
func recoverFailure(ctx context.Context, session CredentialProvider, metrics *MetricsService, logger *zap.Logger, op string, err error) models.ActionResult {
	return models.FailureResult(classifyAndRecord(ctx, session, metrics, logger, op, err))
}

// classifyAndRecord classifies err, counts and logs it, and clears the session when the server
// rejected the credential.
func classifyAndRecord(ctx context.Context, session CredentialProvider, metrics *MetricsService, logger *zap.Logger, op string, err error) *appErrors.Error {
	classified := ClassifyError(err)
	metrics.RecordFailure(classified)
	if classified.Kind == appErrors.KindAuth && session != nil {
		if clearErr := session.Clear(ctx); clearErr != nil {
			logger.Warn("failed to clear session", zap.Error(clearErr))
		}
	}
	fields := []zap.Field{
		zap.String("action", op),
		zap.String("error_code", classified.Code),
		zap.String("kind", string(classified.Kind)),
		zap.Bool("local", classified.Local),
	}
	if classified.Local {
		logger.Debug("action refused", fields...)
	} else {
		logger.Warn("action failed", append(fields, zap.Error(err))...)
	}
	return classified
}
