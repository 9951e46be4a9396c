package contact

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/pkg/utils"
	"go.uber.org/zap"
)

// Banners shown above the form when submission fails
const (
	BannerCorrectErrors = "Please correct the errors below."
	BannerServer        = "Server error. Please try again later."
	BannerNetwork       = "Network error. Please check your connection and try again."
	BannerFailed        = "Failed to send message. Please try again."
	BannerUnexpected    = "An unexpected error occurred. Please try again."
)

// SubmitError carries per-field errors and/or a banner for the form
type SubmitError struct {
	Banner string
	Fields FieldErrors
	Err    error
}

func (e *SubmitError) Error() string {
	if e.Banner != "" {
		return e.Banner
	}
	return "contact form has invalid fields"
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// Submitter posts a normalized submission to the backend
type Submitter interface {
	SubmitContact(ctx context.Context, sub *models.ContactSubmission) (*models.ContactResponse, error)
}

// Service runs the contact form pipeline
type Service struct {
	submitter Submitter
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewService creates a contact service
func NewService(submitter Submitter, logger *zap.Logger) *Service {
	return &Service{
		submitter: submitter,
		validate:  utils.NewValidator(),
		logger:    logger,
	}
}

// Validate checks the form without submitting it
func (s *Service) Validate(form *models.ContactForm) FieldErrors {
	return Validate(s.validate, form)
}

// Submit validates, normalizes and sends the form. Invalid forms never
// reach the network.
func (s *Service) Submit(ctx context.Context, form *models.ContactForm) (*models.ContactResponse, error) {
	if fields := s.Validate(form); len(fields) > 0 {
		return nil, &SubmitError{Fields: fields}
	}

	sub := Transform(form)
	resp, err := s.submitter.SubmitContact(ctx, sub)
	if err != nil {
		serr := classify(err)
		s.logger.Warn("Contact submission failed",
			zap.String("banner", serr.Banner),
			zap.Int("field_errors", len(serr.Fields)),
			zap.Error(err))
		return nil, serr
	}

	s.logger.Info("Contact inquiry sent",
		zap.String("inquiry_id", resp.InquiryID),
		zap.String("inquiry_type", sub.InquiryType))
	return resp, nil
}

func classify(err error) *SubmitError {
	var nerr *api.NetworkError
	if errors.As(err, &nerr) || errors.Is(err, context.DeadlineExceeded) {
		return &SubmitError{Banner: BannerNetwork, Err: err}
	}

	var herr *api.HTTPError
	if !errors.As(err, &herr) {
		return &SubmitError{Banner: BannerUnexpected, Err: err}
	}

	body := api.ParseErrorBody(herr.Body)
	switch {
	case herr.StatusCode == http.StatusUnprocessableEntity && len(body.Errors) > 0:
		return &SubmitError{Banner: BannerCorrectErrors, Fields: FieldErrors(body.Errors), Err: err}
	case herr.StatusCode == http.StatusUnprocessableEntity && len(body.DetailList) > 0:
		fields := FieldErrors{}
		for _, d := range body.DetailList {
			if len(d.Loc) == 0 {
				continue
			}
			if name, ok := d.Loc[len(d.Loc)-1].(string); ok {
				fields[name] = d.Msg
			}
		}
		return &SubmitError{Banner: BannerCorrectErrors, Fields: fields, Err: err}
	case herr.StatusCode >= 500:
		return &SubmitError{Banner: BannerServer, Err: err}
	case body.ErrorMessage != "":
		return &SubmitError{Banner: body.ErrorMessage, Err: err}
	case body.Message != "":
		return &SubmitError{Banner: body.Message, Err: err}
	default:
		return &SubmitError{Banner: BannerFailed, Err: err}
	}
}
