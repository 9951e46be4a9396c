package audit

import (
	"strings"

	"github.com/xteampro/funnel/internal/models"
)

// StepKind selects how a step collects its answer
type StepKind int

const (
	KindSelect StepKind = iota
	KindMultiSelect
	KindContact
)

func (k StepKind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindMultiSelect:
		return "multiselect"
	case KindContact:
		return "contact"
	default:
		return "unknown"
	}
}

// Step IDs, in wizard order
const (
	StepIndustry       = "industry"
	StepCompanySize    = "companySize"
	StepPainPoints     = "painPoints"
	StepCurrentSystems = "currentSystems"
	StepKPIs           = "kpis"
	StepContact        = "contact"
)

// Step describes one question of the audit wizard
type Step struct {
	ID          string
	Title       string
	Description string
	Kind        StepKind
	Options     []string
	Required    bool
}

// DefaultSteps returns the audit questionnaire in order
func DefaultSteps() []Step {
	return []Step{
		{
			ID:          StepIndustry,
			Title:       "What industry are you in?",
			Description: "This helps us benchmark you against similar businesses.",
			Kind:        KindSelect,
			Required:    true,
			Options: []string{
				"E-commerce", "SaaS", "Manufacturing", "Healthcare",
				"Finance", "Retail", "Consulting", "Other",
			},
		},
		{
			ID:          StepCompanySize,
			Title:       "How large is your company?",
			Description: "Headcount across all locations.",
			Kind:        KindSelect,
			Required:    true,
			Options: []string{
				"Startup (1-10)", "Small (11-50)", "Medium (51-200)",
				"Large (201-1000)", "Enterprise (1000+)",
			},
		},
		{
			ID:          StepPainPoints,
			Title:       "Where does it hurt most?",
			Description: "Pick every challenge that slows your team down.",
			Kind:        KindMultiSelect,
			Required:    true,
			Options: []string{
				"Manual processes", "Data analysis", "Customer service",
				"Inventory management", "Quality control", "Cost reduction",
				"Scaling issues", "Competitive advantage",
			},
		},
		{
			ID:          StepCurrentSystems,
			Title:       "Which systems do you use today?",
			Description: "Select all tools your processes rely on.",
			Kind:        KindMultiSelect,
			Required:    true,
			Options: []string{
				"Spreadsheets", "CRM", "ERP", "Accounting software",
				"Helpdesk", "E-commerce platform", "Custom software", "None",
			},
		},
		{
			ID:          StepKPIs,
			Title:       "What should automation improve?",
			Description: "Choose the goals you will measure success by.",
			Kind:        KindMultiSelect,
			Required:    true,
			Options: []string{
				"Cost reduction", "Faster turnaround", "Fewer errors",
				"Customer satisfaction", "Revenue growth", "Employee productivity",
			},
		},
		{
			ID:          StepContact,
			Title:       "Where should we send your report?",
			Description: "Only the email address is required.",
			Kind:        KindContact,
			Required:    true,
		},
	}
}

// Valid reports whether the draft answers this step well enough to move on
func (s Step) Valid(d *models.AuditDraft) bool {
	if !s.Required {
		return true
	}

	switch s.Kind {
	case KindMultiSelect:
		return len(multiAnswer(d, s.ID)) > 0
	case KindContact:
		return d.ContactInfo.Email != "" && strings.Contains(d.ContactInfo.Email, "@")
	default:
		return singleAnswer(d, s.ID) != ""
	}
}

// HasOption reports whether value is one of the step's fixed options
func (s Step) HasOption(value string) bool {
	for _, o := range s.Options {
		if o == value {
			return true
		}
	}
	return false
}

func singleAnswer(d *models.AuditDraft, id string) string {
	switch id {
	case StepIndustry:
		return d.Industry
	case StepCompanySize:
		return d.CompanySize
	}
	return ""
}

func multiAnswer(d *models.AuditDraft, id string) []string {
	switch id {
	case StepPainPoints:
		return d.PainPoints
	case StepCurrentSystems:
		return d.CurrentSystems
	case StepKPIs:
		return d.KPIs
	}
	return nil
}

func multiAnswerRef(d *models.AuditDraft, id string) *[]string {
	switch id {
	case StepPainPoints:
		return &d.PainPoints
	case StepCurrentSystems:
		return &d.CurrentSystems
	case StepKPIs:
		return &d.KPIs
	}
	return nil
}
