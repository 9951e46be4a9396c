package models

// LoginRequest is the body of POST /api/admin/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body of POST /api/admin/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Activity is one entry of the dashboard activity feed
type Activity struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// DashboardStats is returned by GET /api/admin/dashboard
type DashboardStats struct {
	TotalAudits       int        `json:"total_audits"`
	AuditsThisMonth   int        `json:"audits_this_month"`
	TotalContacts     int        `json:"total_contacts"`
	ContactsThisMonth int        `json:"contacts_this_month"`
	TotalBlogPosts    int        `json:"total_blog_posts"`
	PublishedPosts    int        `json:"published_posts"`
	AverageAuditScore float64    `json:"average_audit_score"`
	ConversionRate    float64    `json:"conversion_rate"`
	RecentActivities  []Activity `json:"recent_activities"`
}

// AuditSubmission is one row of GET /api/admin/audits
type AuditSubmission struct {
	AuditID       string   `json:"audit_id"`
	CompanyName   string   `json:"company_name"`
	ContactName   string   `json:"contact_name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	SubmittedAt   string   `json:"submitted_at"`
	Status        string   `json:"status"`
	MaturityScore *float64 `json:"maturity_score"`
	EstimatedROI  *float64 `json:"estimated_roi"`
	Industry      string   `json:"industry"`
	CompanySize   string   `json:"company_size"`
}

// ContactInquiry is one row of GET /api/admin/contacts
type ContactInquiry struct {
	InquiryID    string `json:"inquiry_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	InquiryType  string `json:"inquiry_type"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	CreatedAt    string `json:"created_at"`
	ResponseSent bool   `json:"response_sent"`
}

// NotificationSettings is part of the audit configuration
type NotificationSettings struct {
	EmailOnCompletion  *bool `json:"email_on_completion,omitempty" yaml:"email_on_completion,omitempty"`
	SlackNotifications *bool `json:"slack_notifications,omitempty" yaml:"slack_notifications,omitempty"`
	NewSubmissions     *bool `json:"new_submissions,omitempty" yaml:"new_submissions,omitempty"`
	WeeklyReports      *bool `json:"weekly_reports,omitempty" yaml:"weekly_reports,omitempty"`
	CompletionAlerts   *bool `json:"completion_alerts,omitempty" yaml:"completion_alerts,omitempty"`
}

// AuditConfiguration is read and written at /api/admin/configuration
type AuditConfiguration struct {
	AIModel                      string               `json:"ai_model" yaml:"ai_model"`
	AnalysisDepth                string               `json:"analysis_depth" yaml:"analysis_depth"`
	IncludeROIAnalysis           bool                 `json:"include_roi_analysis" yaml:"include_roi_analysis"`
	IncludeRiskAssessment        bool                 `json:"include_risk_assessment" yaml:"include_risk_assessment"`
	IncludeImplementationRoadmap bool                 `json:"include_implementation_roadmap" yaml:"include_implementation_roadmap"`
	PDFTemplate                  string               `json:"pdf_template" yaml:"pdf_template"`
	AutoGeneratePDF              bool                 `json:"auto_generate_pdf" yaml:"auto_generate_pdf"`
	PDFGenerationEnabled         bool                 `json:"pdf_generation_enabled" yaml:"pdf_generation_enabled"`
	AutoSendReports              bool                 `json:"auto_send_reports" yaml:"auto_send_reports"`
	NotificationSettings         NotificationSettings `json:"notification_settings" yaml:"notification_settings"`
	CustomPrompts                map[string]string    `json:"custom_prompts,omitempty" yaml:"custom_prompts,omitempty"`
}
