package sandbox

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xteampro/funnel/internal/models"
)

const recentActivityLimit = 5

type auditEntry struct {
	id          string
	req         models.AuditSubmissionRequest
	status      string
	submittedAt time.Time
	updatedAt   time.Time
	readyAt     time.Time
	result      *models.AuditResult
}

// State is the sandbox's in-memory backend data
type State struct {
	mu       sync.RWMutex
	audits   map[string]*auditEntry
	order    []string
	contacts []models.ContactInquiry
	config   models.AuditConfiguration
	tokens   map[string]struct{}
	delay    time.Duration
	now      func() time.Time
}

// NewState creates empty backend data. Audits become due for scoring
// delay after submission.
func NewState(delay time.Duration) *State {
	return &State{
		audits: make(map[string]*auditEntry),
		tokens: make(map[string]struct{}),
		config: defaultConfiguration(),
		delay:  delay,
		now:    time.Now,
	}
}

func defaultConfiguration() models.AuditConfiguration {
	on := true
	off := false
	return models.AuditConfiguration{
		AIModel:                      "gpt-4",
		AnalysisDepth:                "comprehensive",
		IncludeROIAnalysis:           true,
		IncludeRiskAssessment:        true,
		IncludeImplementationRoadmap: true,
		PDFTemplate:                  "professional",
		AutoGeneratePDF:              true,
		PDFGenerationEnabled:         true,
		NotificationSettings: models.NotificationSettings{
			EmailOnCompletion:  &on,
			SlackNotifications: &off,
			NewSubmissions:     &on,
			WeeklyReports:      &off,
			CompletionAlerts:   &on,
		},
	}
}

// SubmitAudit records a submission and returns its accepted status
func (s *State) SubmitAudit(req models.AuditSubmissionRequest) models.AuditStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := &auditEntry{
		id:          uuid.NewString(),
		req:         req,
		status:      models.AuditStatusProcessing,
		submittedAt: now,
		updatedAt:   now,
		readyAt:     now.Add(s.delay),
	}
	s.audits[e.id] = e
	s.order = append(s.order, e.id)
	return e.statusView()
}

func (e *auditEntry) statusView() models.AuditStatus {
	return models.AuditStatus{
		AuditID:   e.id,
		Status:    e.status,
		CreatedAt: e.submittedAt,
		UpdatedAt: e.updatedAt,
	}
}

// AuditStatus returns the status of an audit
func (s *State) AuditStatus(id string) (models.AuditStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.audits[id]
	if !ok {
		return models.AuditStatus{}, false
	}
	return e.statusView(), true
}

// AuditResult returns the audit's result, nil while it is still processing
func (s *State) AuditResult(id string) (*models.AuditResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.audits[id]
	if !ok {
		return nil, false
	}
	if e.result == nil {
		return nil, true
	}
	out := *e.result
	return &out, true
}

// Due returns the processing audits whose delay has passed at now
func (s *State) Due(now time.Time) map[string]models.AuditSubmissionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make(map[string]models.AuditSubmissionRequest)
	for id, e := range s.audits {
		if e.status == models.AuditStatusProcessing && !now.Before(e.readyAt) {
			due[id] = e.req
		}
	}
	return due
}

// Complete stores a result and marks the audit completed
func (s *State) Complete(id string, result *models.AuditResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.audits[id]
	if !ok || e.status != models.AuditStatusProcessing {
		return false
	}
	e.result = result
	e.status = models.AuditStatusCompleted
	e.updatedAt = s.now()
	return true
}

// Fail marks a processing audit as failed
func (s *State) Fail(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.audits[id]
	if !ok || e.status != models.AuditStatusProcessing {
		return false
	}
	e.status = models.AuditStatusFailed
	e.updatedAt = s.now()
	return true
}

// Submissions lists audits newest first in the admin row shape
func (s *State) Submissions() []models.AuditSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditSubmission, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		e := s.audits[s.order[i]]
		row := models.AuditSubmission{
			AuditID:     e.id,
			CompanyName: e.req.CompanyName,
			ContactName: e.req.ContactName,
			Email:       e.req.ContactEmail,
			SubmittedAt: e.submittedAt.UTC().Format(time.RFC3339),
			Status:      e.status,
			Industry:    e.req.Industry,
			CompanySize: e.req.CompanySize,
		}
		if e.req.ContactPhone != nil {
			row.Phone = *e.req.ContactPhone
		}
		if e.result != nil {
			score := e.result.MaturityScore
			roi := e.result.ROIProjection
			row.MaturityScore = &score
			row.EstimatedROI = &roi
		}
		out = append(out, row)
	}
	return out
}

// DeleteAudit removes an audit
func (s *State) DeleteAudit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.audits[id]; !ok {
		return false
	}
	delete(s.audits, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// AddContact records a contact inquiry
func (s *State) AddContact(sub models.ContactSubmission) models.ContactInquiry {
	s.mu.Lock()
	defer s.mu.Unlock()

	priority := "medium"
	switch sub.InquiryType {
	case models.InquiryDemo, models.InquiryConsultation:
		priority = "high"
	case models.InquiryOther:
		priority = "low"
	}

	inq := models.ContactInquiry{
		InquiryID:   uuid.NewString(),
		Name:        sub.Name,
		Email:       sub.Email,
		Company:     sub.Company,
		InquiryType: sub.InquiryType,
		Subject:     sub.Subject,
		Status:      "new",
		Priority:    priority,
		CreatedAt:   s.now().UTC().Format(time.RFC3339),
	}
	s.contacts = append(s.contacts, inq)
	return inq
}

// Contacts lists inquiries newest first
func (s *State) Contacts() []models.ContactInquiry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContactInquiry, 0, len(s.contacts))
	for i := len(s.contacts) - 1; i >= 0; i-- {
		out = append(out, s.contacts[i])
	}
	return out
}

// Configuration returns the audit configuration
func (s *State) Configuration() models.AuditConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// PatchConfiguration merges a partial update into the configuration.
// Unknown keys are ignored.
func (s *State) PatchConfiguration(patch map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := json.Marshal(s.config)
	if err != nil {
		return err
	}
	var merged map[string]interface{}
	if err := json.Unmarshal(current, &merged); err != nil {
		return err
	}
	mergeInto(merged, patch)

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	var next models.AuditConfiguration
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	s.config = next
	return nil
}

// mergeInto applies patch onto dst, descending into nested objects
func mergeInto(dst, patch map[string]interface{}) {
	for k, v := range patch {
		sub, isMap := v.(map[string]interface{})
		existing, hasMap := dst[k].(map[string]interface{})
		if isMap && hasMap {
			mergeInto(existing, sub)
			continue
		}
		dst[k] = v
	}
}

// IssueToken creates a bearer token for an admin session
func (s *State) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = struct{}{}
	return token
}

// ValidToken reports whether token was issued by this sandbox
func (s *State) ValidToken(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok
}

// Dashboard summarizes the stored data
func (s *State) Dashboard() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := models.DashboardStats{
		TotalAudits:   len(s.audits),
		TotalContacts: len(s.contacts),
	}

	var scoreSum float64
	var completed int
	var activities []models.Activity
	for _, e := range s.audits {
		if !e.submittedAt.Before(monthStart) {
			stats.AuditsThisMonth++
		}
		if e.result != nil {
			completed++
			scoreSum += e.result.MaturityScore
		}
		activities = append(activities, models.Activity{
			Type:        "audit",
			Description: "Audit submitted by " + e.req.CompanyName,
			Timestamp:   e.submittedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, c := range s.contacts {
		if created, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil && !created.Before(monthStart) {
			stats.ContactsThisMonth++
		}
		activities = append(activities, models.Activity{
			Type:        "contact",
			Description: "Contact inquiry from " + c.Name,
			Timestamp:   c.CreatedAt,
		})
	}

	if completed > 0 {
		stats.AverageAuditScore = scoreSum / float64(completed)
	}
	if stats.TotalAudits > 0 {
		stats.ConversionRate = float64(completed) / float64(stats.TotalAudits) * 100
	}

	sort.Slice(activities, func(i, j int) bool { return activities[i].Timestamp > activities[j].Timestamp })
	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}
	stats.RecentActivities = activities
	return stats
}
