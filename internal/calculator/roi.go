// Package calculator estimates automation ROI, remotely when the backend is
// reachable and with a local formula otherwise.
package calculator

import (
	"context"
	"errors"
	"strings"

	"github.com/xteampro/funnel/internal/models"
	"go.uber.org/zap"
)

// Fallback model constants
const (
	WorkWeeksPerYear   = 52
	HoursPerWeek       = 40
	TimeEfficiencyGain = 0.6
	ErrorReduction     = 0.8
	ImplementationCost = 75000.0

	// MaintenanceBudgetPercentage is sent with every remote request
	MaintenanceBudgetPercentage = 15.0
)

var (
	// CurrentProcesses is the process list sent with every remote request
	CurrentProcesses = []string{
		"Manual data entry",
		"Email-based approvals",
		"Spreadsheet reporting",
		"Paper document handling",
	}

	// ProcessesToAutomate is the target list sent with every remote request
	ProcessesToAutomate = []string{
		"Data entry and validation",
		"Approval workflows",
		"Report generation",
		"Document processing",
	}
)

// ErrInvalidInput is wrapped by every validation failure
var ErrInvalidInput = errors.New("invalid ROI input")

// InputError lists every failed input rule
type InputError struct {
	Problems []string
}

func (e *InputError) Error() string {
	return strings.Join(e.Problems, ", ")
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DefaultInput returns the calculator's starting values
func DefaultInput() models.ROIInput {
	return models.ROIInput{
		CurrentCosts:     50000,
		EmployeeCount:    10,
		AvgSalary:        75000,
		TimeSpentOnTasks: 30,
		ErrorRate:        5,
	}
}

// DefaultProfile returns the calculator's starting business profile
func DefaultProfile() models.ROIProfile {
	return models.ROIProfile{
		CompanySize:               "medium",
		Industry:                  "technology",
		AutomationReadiness:       7,
		ChangeManagementReadiness: 6,
		TechnicalComplexity:       5,
		BudgetRange:               "50k-100k",
		ImplementationTimeline:    12,
		ExpectedEfficiencyGain:    40,
		RegulatoryRequirements:    false,
	}
}

// Validate checks the inputs and reports every problem at once
func Validate(in models.ROIInput, p models.ROIProfile) error {
	var problems []string
	if in.CurrentCosts <= 0 {
		problems = append(problems, "Current costs must be greater than 0")
	}
	if in.EmployeeCount <= 0 {
		problems = append(problems, "Employee count must be greater than 0")
	}
	if in.AvgSalary <= 0 {
		problems = append(problems, "Average salary must be greater than 0")
	}
	if in.TimeSpentOnTasks < 0 || in.TimeSpentOnTasks > 100 {
		problems = append(problems, "Time spent on manual tasks must be between 0 and 100%")
	}
	if in.ErrorRate < 0 || in.ErrorRate > 100 {
		problems = append(problems, "Error rate must be between 0 and 100%")
	}
	if p.ImplementationTimeline < 1 || p.ImplementationTimeline > 36 {
		problems = append(problems, "Implementation timeline must be between 1 and 36 months")
	}
	if p.ExpectedEfficiencyGain < 0 || p.ExpectedEfficiencyGain > 100 {
		problems = append(problems, "Expected efficiency gain must be between 0 and 100%")
	}
	if len(problems) > 0 {
		return &InputError{Problems: problems}
	}
	return nil
}

// Transform builds the remote calculation request. Annual revenue is
// estimated as four times current costs.
func Transform(in models.ROIInput, p models.ROIProfile) *models.ROICalculationRequest {
	return &models.ROICalculationRequest{
		CompanySize:                 p.CompanySize,
		Industry:                    p.Industry,
		AnnualRevenue:               in.CurrentCosts * 4,
		CurrentProcesses:            append([]string(nil), CurrentProcesses...),
		EmployeeCount:               in.EmployeeCount,
		AutomationReadiness:         p.AutomationReadiness,
		ProcessesToAutomate:         append([]string(nil), ProcessesToAutomate...),
		ExpectedEfficiencyGain:      p.ExpectedEfficiencyGain,
		ImplementationTimeline:      p.ImplementationTimeline,
		BudgetRange:                 p.BudgetRange,
		MaintenanceBudgetPercentage: MaintenanceBudgetPercentage,
		ChangeManagementReadiness:   p.ChangeManagementReadiness,
		TechnicalComplexity:         p.TechnicalComplexity,
		RegulatoryRequirements:      p.RegulatoryRequirements,
	}
}

// FromResponse maps a remote calculation onto the displayed projection
func FromResponse(resp *models.ROICalculationResponse) *models.ROIProjection {
	npv := resp.NPV3Years
	irr := resp.IRRPercentage
	return &models.ROIProjection{
		CurrentWaste:    resp.InitialInvestment,
		AnnualSavings:   resp.AnnualSavings,
		MonthlyROI:      resp.AnnualSavings / 12,
		PaybackPeriod:   resp.PaybackPeriodMonths,
		ThreeYearROI:    resp.ROIPercentage,
		TimeSavings:     resp.SavingsBreakdown["process_efficiency_savings"],
		ErrorSavings:    resp.SavingsBreakdown["error_reduction_savings"],
		NPV:             &npv,
		IRR:             &irr,
		Recommendations: resp.AIRecommendations,
	}
}

// Estimate is the local fallback formula
func Estimate(in models.ROIInput) *models.ROIProjection {
	hourlyRate := in.AvgSalary / (WorkWeeksPerYear * HoursPerWeek)
	wastedHours := in.TimeSpentOnTasks / 100 * float64(in.EmployeeCount) * HoursPerWeek * WorkWeeksPerYear
	timeCost := wastedHours * hourlyRate
	errorCost := in.ErrorRate / 100 * in.CurrentCosts

	timeSavings := timeCost * TimeEfficiencyGain
	errorSavings := errorCost * ErrorReduction
	annualSavings := timeSavings + errorSavings

	return &models.ROIProjection{
		CurrentWaste:  timeCost + errorCost,
		AnnualSavings: annualSavings,
		MonthlyROI:    (annualSavings - ImplementationCost) / 12,
		PaybackPeriod: ImplementationCost / (annualSavings / 12),
		ThreeYearROI:  (annualSavings*3 - ImplementationCost) / ImplementationCost * 100,
		TimeSavings:   timeSavings,
		ErrorSavings:  errorSavings,
		Fallback:      true,
	}
}

// Remote performs the backend calculation
type Remote interface {
	CalculateROI(ctx context.Context, req *models.ROICalculationRequest) (*models.ROICalculationResponse, error)
}

// Calculator combines the remote calculation with the local fallback
type Calculator struct {
	remote Remote
	logger *zap.Logger
}

// New creates a calculator. remote may be nil for offline estimates.
func New(remote Remote, logger *zap.Logger) *Calculator {
	return &Calculator{remote: remote, logger: logger}
}

// Calculate validates the inputs and returns a projection. Invalid inputs
// yield an *InputError and no projection. Otherwise the projection is
// always non-nil: when the remote call fails the fallback estimate is
// returned together with the remote error for display.
func (c *Calculator) Calculate(ctx context.Context, in models.ROIInput, p models.ROIProfile) (*models.ROIProjection, error) {
	if err := Validate(in, p); err != nil {
		return nil, err
	}

	if c.remote == nil {
		return Estimate(in), nil
	}

	resp, err := c.remote.CalculateROI(ctx, Transform(in, p))
	if err != nil {
		c.logger.Warn("ROI calculation failed, using local estimate", zap.Error(err))
		return Estimate(in), err
	}

	return FromResponse(resp), nil
}
