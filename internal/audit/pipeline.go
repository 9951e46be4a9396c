package audit

import (
	"fmt"
	"strings"

	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/models"
)

// ValidationError is a client-side rejection carrying a user-facing message
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateDraft checks that every required answer is present. The first
// problem found is returned.
func ValidateDraft(d *models.AuditDraft) error {
	switch {
	case d.Industry == "":
		return invalid(StepIndustry, "Industry is required")
	case d.CompanySize == "":
		return invalid(StepCompanySize, "Company size is required")
	case len(d.PainPoints) == 0:
		return invalid(StepPainPoints, "At least one pain point is required")
	case len(d.CurrentSystems) == 0:
		return invalid(StepCurrentSystems, "At least one current system is required")
	case len(d.KPIs) == 0:
		return invalid(StepKPIs, "At least one KPI is required")
	case d.ContactInfo.Email == "":
		return invalid(StepContact, "Email is required")
	case !strings.Contains(d.ContactInfo.Email, "@"):
		return invalid(StepContact, "Valid email is required")
	}
	return nil
}

// Transform maps a draft onto the backend's field names. Blank company and
// contact names are replaced by sentinels and a blank phone is omitted.
func Transform(d *models.AuditDraft) *models.AuditSubmissionRequest {
	req := &models.AuditSubmissionRequest{
		CompanyName:      strings.TrimSpace(d.ContactInfo.Company),
		Industry:         strings.TrimSpace(d.Industry),
		CompanySize:      strings.TrimSpace(d.CompanySize),
		CurrentProcesses: append([]string(nil), d.CurrentSystems...),
		PainPoints:       append([]string(nil), d.PainPoints...),
		AutomationGoals:  append([]string(nil), d.KPIs...),
		ContactEmail:     strings.TrimSpace(d.ContactInfo.Email),
		ContactName:      strings.TrimSpace(d.ContactInfo.Name),
	}
	if req.CompanyName == "" {
		req.CompanyName = models.DefaultCompanyName
	}
	if req.ContactName == "" {
		req.ContactName = models.DefaultContactName
	}
	if phone := strings.TrimSpace(d.ContactInfo.Phone); phone != "" {
		req.ContactPhone = &phone
	}
	return req
}

// ValidateRequest re-checks the transformed request before it leaves the client
func ValidateRequest(r *models.AuditSubmissionRequest) error {
	switch {
	case strings.TrimSpace(r.CompanyName) == "":
		return invalid("company_name", "Company name is required")
	case strings.TrimSpace(r.Industry) == "":
		return invalid("industry", "Industry is required")
	case strings.TrimSpace(r.CompanySize) == "":
		return invalid("company_size", "Company size is required")
	case len(r.CurrentProcesses) == 0:
		return invalid("current_processes", "At least one current process/system is required")
	case len(r.PainPoints) == 0:
		return invalid("pain_points", "At least one pain point is required")
	case len(r.AutomationGoals) == 0:
		return invalid("automation_goals", "At least one automation goal/KPI is required")
	case !strings.Contains(r.ContactEmail, "@"):
		return invalid("contact_email", "Valid contact email is required")
	case strings.TrimSpace(r.ContactName) == "":
		return invalid("contact_name", "Contact name is required")
	}
	return nil
}

// CheckAccepted verifies a submit response carries an audit id and a
// recognized status
func CheckAccepted(resp *models.AuditSubmitResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", api.ErrUnexpectedResponse)
	}
	if resp.AuditID == "" || (resp.Status != models.AuditStatusProcessing && resp.Status != models.AuditStatusSubmitted) {
		reason := resp.Message
		if reason == "" {
			reason = "Missing audit_id or invalid status"
		}
		return fmt.Errorf("%w: %s", api.ErrUnexpectedResponse, reason)
	}
	return nil
}
