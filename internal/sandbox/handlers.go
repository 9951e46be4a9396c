package sandbox

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/xteampro/funnel/internal/admin"
	"github.com/xteampro/funnel/internal/api"
	"github.com/xteampro/funnel/internal/calculator"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/internal/report"
	"github.com/xteampro/funnel/pkg/utils"
	"go.uber.org/zap"
)

// auditSubmitBody mirrors models.AuditSubmissionRequest with server-side rules
type auditSubmitBody struct {
	CompanyName      string   `json:"company_name" validate:"required"`
	Industry         string   `json:"industry" validate:"required"`
	CompanySize      string   `json:"company_size" validate:"required"`
	CurrentProcesses []string `json:"current_processes" validate:"required,min=1"`
	PainPoints       []string `json:"pain_points" validate:"required,min=1"`
	AutomationGoals  []string `json:"automation_goals" validate:"required,min=1"`
	ContactEmail     string   `json:"contact_email" validate:"required,contactemail"`
	ContactName      string   `json:"contact_name" validate:"required"`
	ContactPhone     *string  `json:"contact_phone,omitempty"`
}

// contactBody mirrors models.ContactSubmission with server-side rules
type contactBody struct {
	Name               string   `json:"name" validate:"required,max=100"`
	Email              string   `json:"email" validate:"required,contactemail"`
	Phone              *string  `json:"phone" validate:"omitempty,max=20"`
	Company            string   `json:"company" validate:"required,max=200"`
	Position           *string  `json:"position" validate:"omitempty,max=100"`
	Subject            string   `json:"subject" validate:"required,max=200"`
	Message            string   `json:"message" validate:"required,min=10,max=2000"`
	InquiryType        string   `json:"inquiry_type" validate:"omitempty,oneof=consultation demo partnership support other"`
	BudgetRange        *string  `json:"budget_range"`
	Timeline           *string  `json:"timeline"`
	ServicesInterested []string `json:"services_interested"`
	MarketingConsent   bool     `json:"marketing_consent"`
}

var detailMessages = map[string]string{
	"required":     "field required",
	"min":          "ensure this value has at least the minimum length",
	"max":          "ensure this value does not exceed the maximum length",
	"contactemail": "value is not a valid email address",
	"oneof":        "unexpected value",
}

var budgetMidpoints = map[string]float64{
	"under-25k": 20000,
	"25k-50k":   37500,
	"50k-100k":  75000,
	"100k-250k": 175000,
	"over-250k": 300000,
}

// Handlers contains the sandbox HTTP request handlers
type Handlers struct {
	state    *State
	validate *validator.Validate
	username string
	password string
	logger   *zap.Logger
}

// NewHandlers creates the handlers
func NewHandlers(state *State, username, password string, logger *zap.Logger) *Handlers {
	return &Handlers{
		state:    state,
		validate: utils.NewValidator(),
		username: username,
		password: password,
		logger:   logger,
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// SubmitAudit handles POST /api/audit/submit
func (h *Handlers) SubmitAudit(c *gin.Context) {
	var body auditSubmitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.validate.Struct(&body); err != nil {
		details := make([]api.ValidationDetail, 0)
		for field, tag := range utils.FieldErrors(err) {
			details = append(details, api.ValidationDetail{
				Loc: []interface{}{"body", field},
				Msg: detailMessages[tag],
			})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
		return
	}

	status := h.state.SubmitAudit(models.AuditSubmissionRequest(body))
	h.logger.Info("Audit received",
		zap.String("audit_id", status.AuditID),
		zap.String("company", body.CompanyName))

	c.JSON(http.StatusOK, models.AuditSubmitResponse{
		AuditID: status.AuditID,
		Status:  status.Status,
		Message: "Audit submitted successfully",
	})
}

// AuditStatus handles GET /api/audit/status/:id
func (h *Handlers) AuditStatus(c *gin.Context) {
	status, ok := h.state.AuditStatus(c.Param("id"))
	if !ok {
		detail(c, http.StatusNotFound, "Audit not found")
		return
	}
	c.JSON(http.StatusOK, status)
}

// AuditResults handles GET /api/audit/results/:id. Unfinished audits answer 202.
func (h *Handlers) AuditResults(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.state.AuditResult(id)
	if !ok {
		detail(c, http.StatusNotFound, "Audit not found")
		return
	}
	if result == nil {
		status, _ := h.state.AuditStatus(id)
		c.JSON(http.StatusAccepted, gin.H{"audit_id": id, "status": status.Status})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DownloadReport handles GET /api/audit/download/:id
func (h *Handlers) DownloadReport(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.state.AuditResult(id)
	if !ok || result == nil {
		detail(c, http.StatusNotFound, "Report not available")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName(id)))
	c.Data(http.StatusOK, "application/pdf", report.Render(result))
}

// SubmitContact handles POST /api/contact/contact-submit
func (h *Handlers) SubmitContact(c *gin.Context) {
	var body contactBody
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body.Message = utils.SanitizeString(body.Message)

	if err := h.validate.Struct(&body); err != nil {
		errs := make(map[string]string)
		for field, tag := range utils.FieldErrors(err) {
			errs[field] = detailMessages[tag]
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}
	if body.InquiryType == "" {
		body.InquiryType = models.InquiryConsultation
	}

	inq := h.state.AddContact(models.ContactSubmission(body))
	h.logger.Info("Contact inquiry received",
		zap.String("inquiry_id", inq.InquiryID),
		zap.String("inquiry_type", inq.InquiryType))

	responseTime := "24 hours"
	if inq.Priority == "high" {
		responseTime = "4 hours"
	}
	c.JSON(http.StatusOK, models.ContactResponse{
		InquiryID:             inq.InquiryID,
		Status:                "received",
		Message:               "Thank you for contacting us. We will get back to you soon.",
		EstimatedResponseTime: responseTime,
	})
}

// CalculateROI handles POST /api/calculator/roi
func (h *Handlers) CalculateROI(c *gin.Context) {
	var req models.ROICalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EmployeeCount <= 0 || req.AnnualRevenue <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []api.ValidationDetail{{
			Loc: []interface{}{"body", "employee_count"},
			Msg: "ensure this value is greater than 0",
		}}})
		return
	}

	c.JSON(http.StatusOK, roiResponse(&req))
}

func roiResponse(req *models.ROICalculationRequest) *models.ROICalculationResponse {
	investment, ok := budgetMidpoints[req.BudgetRange]
	if !ok {
		investment = calculator.ImplementationCost
	}

	efficiency := req.AnnualRevenue * req.ExpectedEfficiencyGain / 100 * 0.5
	errorSavings := req.AnnualRevenue * 0.02
	annual := efficiency + errorSavings
	maintenance := investment * req.MaintenanceBudgetPercentage / 100

	net := annual - maintenance
	payback := 0.0
	if net > 0 {
		payback = investment / (net / 12)
	}

	return &models.ROICalculationResponse{
		InitialInvestment:   investment,
		AnnualSavings:       annual,
		ROIPercentage:       (net*3 - investment) / investment * 100,
		PaybackPeriodMonths: payback,
		NPV3Years:           net*2.5 - investment,
		IRRPercentage:       net / investment * 100,
		CostBreakdown: map[string]float64{
			"implementation": investment,
			"maintenance":    maintenance,
		},
		SavingsBreakdown: map[string]float64{
			"process_efficiency_savings": efficiency,
			"error_reduction_savings":    errorSavings,
		},
		RiskFactors: map[string]float64{
			"technical_complexity": float64(req.TechnicalComplexity) / 10,
			"change_management":    1 - float64(req.ChangeManagementReadiness)/10,
		},
		AIRecommendations: []string{
			"Start with " + strings.ToLower(firstOr(req.ProcessesToAutomate, "the highest volume process")),
			"Plan a " + strconv.Itoa(req.ImplementationTimeline) + " month rollout with monthly reviews",
		},
		ConfidenceScore: 0.75,
		Assumptions:     []string{"Sandbox estimate based on the submitted profile"},
	}
}

func firstOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return items[0]
}

// Login handles POST /api/admin/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username != h.username || req.Password != h.password {
		h.logger.Warn("Admin login rejected", zap.String("username", req.Username))
		detail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{AccessToken: h.state.IssueToken(), TokenType: "bearer"})
}

// RequireToken rejects admin requests without a sandbox-issued bearer token
func (h *Handlers) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || !h.state.ValidToken(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		c.Next()
	}
}

// Dashboard handles GET /api/admin/dashboard
func (h *Handlers) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Dashboard())
}

// ListAudits handles GET /api/admin/audits
func (h *Handlers) ListAudits(c *gin.Context) {
	filter := api.AuditFilter{
		Status: c.Query("status_filter"),
		Search: c.Query("search"),
	}
	c.JSON(http.StatusOK, admin.FilterSubmissions(h.state.Submissions(), filter))
}

// ListContacts handles GET /api/admin/contacts
func (h *Handlers) ListContacts(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Contacts())
}

// GetConfiguration handles GET /api/admin/configuration
func (h *Handlers) GetConfiguration(c *gin.Context) {
	c.JSON(http.StatusOK, h.state.Configuration())
}

// UpdateConfiguration handles PUT /api/admin/configuration
func (h *Handlers) UpdateConfiguration(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		detail(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.state.PatchConfiguration(patch); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated"})
}

// DeleteSubmission handles DELETE /api/admin/submissions/:id
func (h *Handlers) DeleteSubmission(c *gin.Context) {
	id := c.Param("id")
	if !h.state.DeleteAudit(id) {
		detail(c, http.StatusNotFound, "Submission not found")
		return
	}
	h.logger.Info("Submission deleted", zap.String("audit_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Submission deleted"})
}

// Export handles GET /api/admin/export
func (h *Handlers) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" {
		detail(c, http.StatusBadRequest, "Unsupported export format: "+format)
		return
	}

	data, err := submissionsCSV(h.state.Submissions())
	if err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		detail(c, http.StatusInternalServerError, "Export failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="submissions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

func submissionsCSV(rows []models.AuditSubmission) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"audit_id", "company_name", "contact_name", "email", "industry", "company_size", "status", "maturity_score", "submitted_at"})
	for _, r := range rows {
		score := ""
		if r.MaturityScore != nil {
			score = strconv.FormatFloat(*r.MaturityScore, 'f', -1, 64)
		}
		_ = w.Write([]string{r.AuditID, r.CompanyName, r.ContactName, r.Email, r.Industry, r.CompanySize, r.Status, score, r.SubmittedAt})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
