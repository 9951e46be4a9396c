package models

import "time"

// Audit status tokens reported by the backend
const (
	AuditStatusSubmitted  = "submitted"
	AuditStatusProcessing = "processing"
	AuditStatusCompleted  = "completed"
	AuditStatusFailed     = "failed"
)

// Sentinel values substituted for optional contact fields at submit time
const (
	DefaultCompanyName = "Not specified"
	DefaultContactName = "Anonymous"
)

// ContactInfo is the contact block collected on the last audit step
type ContactInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// AuditDraft holds in-progress wizard answers. It is owned by the wizard
// and discarded after a successful submission.
type AuditDraft struct {
	Industry       string      `json:"industry"`
	CompanySize    string      `json:"companySize"`
	PainPoints     []string    `json:"painPoints"`
	CurrentSystems []string    `json:"currentSystems"`
	KPIs           []string    `json:"kpis"`
	ContactInfo    ContactInfo `json:"contactInfo"`
}

// AuditSubmissionRequest is the body of POST /api/audit/submit
type AuditSubmissionRequest struct {
	CompanyName      string   `json:"company_name"`
	Industry         string   `json:"industry"`
	CompanySize      string   `json:"company_size"`
	CurrentProcesses []string `json:"current_processes"`
	PainPoints       []string `json:"pain_points"`
	AutomationGoals  []string `json:"automation_goals"`
	ContactEmail     string   `json:"contact_email"`
	ContactName      string   `json:"contact_name"`
	ContactPhone     *string  `json:"contact_phone,omitempty"`
}

// AuditSubmitResponse is the success body of POST /api/audit/submit
type AuditSubmitResponse struct {
	AuditID string `json:"audit_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AuditStatus is returned by GET /api/audit/status/{id}
type AuditStatus struct {
	AuditID   string    `json:"audit_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditResult is the server-owned read model returned by
// GET /api/audit/results/{id}. The client never mutates it.
type AuditResult struct {
	AuditID                string             `json:"audit_id"`
	CompanyName            string             `json:"company_name"`
	MaturityScore          float64            `json:"maturity_score"`
	AutomationPotential    float64            `json:"automation_potential"`
	ROIProjection          float64            `json:"roi_projection"`
	ImplementationTimeline string             `json:"implementation_timeline"`
	Strengths              []string           `json:"strengths"`
	Weaknesses             []string           `json:"weaknesses"`
	Opportunities          []string           `json:"opportunities"`
	Recommendations        []string           `json:"recommendations"`
	ProcessScores          map[string]float64 `json:"process_scores"`
	PriorityAreas          []string           `json:"priority_areas"`
	EstimatedSavings       *float64           `json:"estimated_savings,omitempty"`
	ImplementationCost     *float64           `json:"implementation_cost,omitempty"`
	PaybackPeriod          *float64           `json:"payback_period,omitempty"`
	PDFReportURL           string             `json:"pdf_report_url,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	Status                 string             `json:"status"`
}

// AuditRecord is a locally remembered submission
type AuditRecord struct {
	AuditID     string    `json:"audit_id"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}
