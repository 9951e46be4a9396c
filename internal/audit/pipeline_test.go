package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
)

func exampleDraft() *models.AuditDraft {
	return &models.AuditDraft{
		Industry:       "SaaS",
		CompanySize:    "Small (11-50)",
		PainPoints:     []string{"Manual processes"},
		CurrentSystems: []string{"Spreadsheets"},
		KPIs:           []string{"Cost reduction"},
		ContactInfo:    models.ContactInfo{Email: "a@b.com"},
	}
}

func TestTransform_FillsSentinels(t *testing.T) {
	req := Transform(exampleDraft())

	assert.Equal(t, &models.AuditSubmissionRequest{
		CompanyName:      "Not specified",
		Industry:         "SaaS",
		CompanySize:      "Small (11-50)",
		CurrentProcesses: []string{"Spreadsheets"},
		PainPoints:       []string{"Manual processes"},
		AutomationGoals:  []string{"Cost reduction"},
		ContactEmail:     "a@b.com",
		ContactName:      "Anonymous",
		ContactPhone:     nil,
	}, req)
	assert.NoError(t, ValidateRequest(req))
}

func TestTransform_TrimsAndKeepsPhone(t *testing.T) {
	d := exampleDraft()
	d.ContactInfo = models.ContactInfo{
		Name:    "  Ada Lovelace ",
		Email:   " ada@example.com ",
		Company: "   ",
		Phone:   " +44 20 7946 0000 ",
	}

	req := Transform(d)

	assert.Equal(t, "Ada Lovelace", req.ContactName)
	assert.Equal(t, "ada@example.com", req.ContactEmail)
	assert.Equal(t, models.DefaultCompanyName, req.CompanyName)
	require.NotNil(t, req.ContactPhone)
	assert.Equal(t, "+44 20 7946 0000", *req.ContactPhone)
}

func TestTransform_DoesNotAliasDraft(t *testing.T) {
	d := exampleDraft()
	req := Transform(d)
	d.PainPoints[0] = "changed"

	assert.Equal(t, "Manual processes", req.PainPoints[0])
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *models.AuditDraft)
		message string
	}{
		{"complete", func(d *models.AuditDraft) {}, ""},
		{"no industry", func(d *models.AuditDraft) { d.Industry = "" }, "Industry is required"},
		{"no size", func(d *models.AuditDraft) { d.CompanySize = "" }, "Company size is required"},
		{"no pain points", func(d *models.AuditDraft) { d.PainPoints = nil }, "At least one pain point is required"},
		{"no systems", func(d *models.AuditDraft) { d.CurrentSystems = []string{} }, "At least one current system is required"},
		{"no kpis", func(d *models.AuditDraft) { d.KPIs = nil }, "At least one KPI is required"},
		{"no email", func(d *models.AuditDraft) { d.ContactInfo.Email = "" }, "Email is required"},
		{"bad email", func(d *models.AuditDraft) { d.ContactInfo.Email = "nobody" }, "Valid email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := exampleDraft()
			tt.mutate(d)

			err := ValidateDraft(d)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestValidateRequest_RejectsBlankName(t *testing.T) {
	req := Transform(exampleDraft())
	req.ContactName = "  "

	err := ValidateRequest(req)
	require.Error(t, err)
	assert.Equal(t, "Contact name is required", err.Error())
}

func TestCheckAccepted(t *testing.T) {
	assert.NoError(t, CheckAccepted(&models.AuditSubmitResponse{AuditID: "a1", Status: "processing"}))
	assert.NoError(t, CheckAccepted(&models.AuditSubmitResponse{AuditID: "a1", Status: "submitted"}))

	err := CheckAccepted(&models.AuditSubmitResponse{AuditID: "a1", Status: "queued"})
	assert.ErrorIs(t, err, api.ErrUnexpectedResponse)

	err = CheckAccepted(&models.AuditSubmitResponse{Status: "processing", Message: "no id"})
	assert.ErrorIs(t, err, api.ErrUnexpectedResponse)
	assert.Contains(t, err.Error(), "no id")

	assert.ErrorIs(t, CheckAccepted(nil), api.ErrUnexpectedResponse)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"client validation", invalid("industry", "Industry is required"), "Industry is required"},
		{"network", &api.NetworkError{Err: errors.New("connection refused")}, MsgNetwork},
		{"deadline", fmt.Errorf("submit: %w", context.DeadlineExceeded), MsgNetwork},
		{
			"422 detail list",
			&api.HTTPError{StatusCode: 422, StatusText: "Unprocessable Entity", Body: []byte(
				`{"detail":[{"loc":["body","contact_email"],"msg":"value is not a valid email address"},{"loc":["body","pain_points",0],"msg":"field required"}]}`,
			)},
			"Validation error: body.contact_email - value is not a valid email address, body.pain_points.0 - field required",
		},
		{
			"422 detail string",
			&api.HTTPError{StatusCode: 422, Body: []byte(`{"detail":"industry unknown"}`)},
			"Validation error: industry unknown",
		},
		{"422 no body", &api.HTTPError{StatusCode: 422}, MsgValidation},
		{"500", &api.HTTPError{StatusCode: 500, StatusText: "Internal Server Error"}, MsgServer},
		{"503", &api.HTTPError{StatusCode: 503, Body: []byte(`{"detail":"down"}`)}, MsgServer},
		{"400 detail", &api.HTTPError{StatusCode: 400, Body: []byte(`{"detail":"bad input"}`)}, "bad input"},
		{"404 message", &api.HTTPError{StatusCode: 404, Body: []byte(`{"message":"gone"}`)}, "gone"},
		{"409 bare", &api.HTTPError{StatusCode: 409, StatusText: "Conflict"}, "HTTP 409: Conflict"},
		{"shape", fmt.Errorf("%w: missing audit_id", api.ErrUnexpectedResponse), MsgServer},
		{"other", errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
