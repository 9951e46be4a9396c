// Package contact validates, normalizes and submits the contact form.
package contact

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/pkg/utils"
)

// FieldErrors maps a form field (JSON name) to a user-facing message
type FieldErrors map[string]string

var messages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
		"max":      "Name must be 100 characters or less",
	},
	"email": {
		"required":     "Email is required",
		"contactemail": "Please enter a valid email address",
	},
	"company": {
		"required": "Company is required",
		"max":      "Company name must be 200 characters or less",
	},
	"subject": {
		"required": "Subject is required",
		"max":      "Subject must be 200 characters or less",
	},
	"message": {
		"required": "Message is required",
		"min":      "Message must be at least 10 characters",
		"max":      "Message must be 2000 characters or less",
	},
	"phone": {
		"max": "Phone number must be 20 characters or less",
	},
	"position": {
		"max": "Position must be 100 characters or less",
	},
	"inquiryType": {
		"oneof": "Please choose a valid inquiry type",
	},
}

// NewForm returns an empty form with the default inquiry type
func NewForm() *models.ContactForm {
	return &models.ContactForm{
		InquiryType: models.InquiryConsultation,
		Services:    []string{},
	}
}

// Validate checks the form and returns one message per invalid field.
// Name, company, subject and message are measured after trimming; email,
// phone and position are checked as typed.
func Validate(v *validator.Validate, form *models.ContactForm) FieldErrors {
	checked := *form
	checked.Name = strings.TrimSpace(form.Name)
	checked.Company = strings.TrimSpace(form.Company)
	checked.Subject = strings.TrimSpace(form.Subject)
	checked.Message = strings.TrimSpace(form.Message)
	if strings.TrimSpace(form.Email) == "" {
		checked.Email = ""
	}

	out := FieldErrors{}
	err := v.Struct(&checked)
	if err == nil {
		return out
	}
	for field, tag := range utils.FieldErrors(err) {
		msg, ok := messages[field][tag]
		if !ok {
			msg = "Invalid value"
		}
		out[field] = msg
	}
	return out
}

// Transform normalizes a validated form into the submission body
func Transform(form *models.ContactForm) *models.ContactSubmission {
	inquiry := form.InquiryType
	if inquiry == "" {
		inquiry = models.InquiryConsultation
	}
	services := form.Services
	if services == nil {
		services = []string{}
	}

	return &models.ContactSubmission{
		Name:               strings.TrimSpace(form.Name),
		Email:              strings.ToLower(strings.TrimSpace(form.Email)),
		Phone:              optional(strings.TrimSpace(form.Phone)),
		Company:            strings.TrimSpace(form.Company),
		Position:           optional(strings.TrimSpace(form.Position)),
		Subject:            strings.TrimSpace(form.Subject),
		Message:            strings.TrimSpace(form.Message),
		InquiryType:        inquiry,
		BudgetRange:        optional(form.Budget),
		Timeline:           optional(form.Timeline),
		ServicesInterested: append([]string{}, services...),
		MarketingConsent:   form.MarketingConsent,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
