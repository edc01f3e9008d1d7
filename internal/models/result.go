package models

import appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"

// ActionResult is what every controller operation hands back to presentation code.
// Failures are values, never panics or bare errors.
type ActionResult struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	ErrorCode  string         `json:"errorCode,omitempty"`
	Status     int            `json:"status,omitempty"`
	Kind       appErrors.Kind `json:"kind,omitempty"`
	MessageKey string         `json:"messageKey,omitempty"`
	Local      bool           `json:"local,omitempty"`
	// ReauthRequired tells the caller to send the admin back to the login page.
	ReauthRequired bool `json:"reauthRequired,omitempty"`
	// AccountEmail is the login generated by the server on approval.
	AccountEmail string `json:"accountEmail,omitempty"`
}

// SuccessResult builds a successful result with the server's message.
func SuccessResult(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

// FailureResult flattens a classified error.
func FailureResult(err *appErrors.Error) ActionResult {
	if err == nil {
		err = appErrors.ErrServer
	}
	return ActionResult{
		Success:        false,
		Message:        err.Message,
		ErrorCode:      err.Code,
		Status:         err.Status,
		Kind:           err.Kind,
		MessageKey:     err.MessageKey,
		Local:          err.Local,
		ReauthRequired: err.Kind == appErrors.KindAuth,
	}
}

// Failed reports whether the result carries the given kind.
func (r ActionResult) Failed(kind appErrors.Kind) bool {
	return !r.Success && r.Kind == kind
}
