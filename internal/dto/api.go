package dto

// ErrorBody is the error payload the remote API sends with non-2xx responses.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	// ErrorCode is an older spelling some endpoints still use.
	ErrorCode string `json:"errorCode"`
}

// ApproveResponse is returned by the approve endpoint.
type ApproveResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// MessageResponse is returned by the reject endpoint.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeleteResponse is returned by the delete endpoint.
type DeleteResponse struct {
	Message        string    `json:"message"`
	DeletedRequest RawRecord `json:"deletedRequest,omitempty"`
}

// MemberEnvelope wraps a single member.
type MemberEnvelope struct {
	Success bool      `json:"success"`
	Member  RawRecord `json:"member"`
	Message string    `json:"message"`
}

// LowLectureReportResponse wraps the weekly low-lecture report.
type LowLectureReportResponse struct {
	Success bool                   `json:"success"`
	Members []RawRecord            `json:"members"`
	Debug   map[string]interface{} `json:"debug,omitempty"`
	Message string                 `json:"message"`
}

// SuccessMessageResponse is returned by the remove-from-report endpoint.
type SuccessMessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
