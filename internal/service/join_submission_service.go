package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/validate"
)

// JoinSubmissionAPI posts the public join form.
type JoinSubmissionAPI interface {
	SubmitJoinRequest(ctx context.Context, submission dto.JoinRequestSubmission) (*dto.MessageResponse, error)
}

// JoinSubmissionService validates and forwards volunteer sign-ups. No credential is involved.
type JoinSubmissionService struct {
	api       JoinSubmissionAPI
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewJoinSubmissionService constructs the service. A nil validator falls back to the shared one.
func NewJoinSubmissionService(api JoinSubmissionAPI, v *validator.Validate, metrics *MetricsService, logger *zap.Logger) *JoinSubmissionService {
	if v == nil {
		v = validate.Validator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JoinSubmissionService{api: api, validator: v, metrics: metrics, logger: logger.With(zap.String("component", "join_form"))}
}

// Submit sends the form and returns the server's acknowledgement.
func (s *JoinSubmissionService) Submit(ctx context.Context, submission dto.JoinRequestSubmission) (string, error) {
	submission = trimSubmission(submission)
	if err := s.validator.Struct(submission); err != nil {
		return "", s.fail(ctx, validationFailure(err))
	}
	resp, err := s.api.SubmitJoinRequest(ctx, submission)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	s.logger.Info("join request submitted", zap.Int("students", submission.NumberOfStudents()))
	return resp.Message, nil
}

func (s *JoinSubmissionService) fail(ctx context.Context, err error) error {
	return classifyAndRecord(ctx, nil, s.metrics, s.logger, "submit", err)
}

// validationFailure reports a malformed email with its own code so the form can point at the field.
func validationFailure(err error) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "basicemail" {
				out := appErrors.Local(appErrors.ErrInvalidEmail, "")
				out.Err = err
				return out
			}
		}
	}
	out := appErrors.Local(appErrors.ErrValidation, "invalid join request payload")
	out.Err = err
	return out
}

func trimSubmission(in dto.JoinRequestSubmission) dto.JoinRequestSubmission {
	out := in
	out.Name = strings.TrimSpace(in.Name)
	out.Email = strings.TrimSpace(in.Email)
	out.Phone = strings.TrimSpace(in.Phone)
	out.AcademicSpecialization = strings.TrimSpace(in.AcademicSpecialization)
	out.Address = strings.TrimSpace(in.Address)
	out.Subjects = make([]string, 0, len(in.Subjects))
	for _, subject := range in.Subjects {
		if subject = strings.TrimSpace(subject); subject != "" {
			out.Subjects = append(out.Subjects, subject)
		}
	}
	out.Students = make([]dto.StudentSubmission, len(in.Students))
	for i, student := range in.Students {
		student.Name = strings.TrimSpace(student.Name)
		student.Email = strings.TrimSpace(student.Email)
		student.Phone = strings.TrimSpace(student.Phone)
		student.Grade = strings.TrimSpace(student.Grade)
		student.Subjects = append([]dto.SubjectSubmission(nil), student.Subjects...)
		for j := range student.Subjects {
			student.Subjects[j].Name = strings.TrimSpace(student.Subjects[j].Name)
		}
		out.Students[i] = student
	}
	return out
}
