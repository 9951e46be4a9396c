package models

// ROIInput carries the basic operating metrics typed by the user
type ROIInput struct {
	CurrentCosts     float64 `json:"currentCosts"`
	EmployeeCount    int     `json:"employeeCount"`
	AvgSalary        float64 `json:"avgSalary"`
	TimeSpentOnTasks float64 `json:"timeSpentOnTasks"` // percent of working time
	ErrorRate        float64 `json:"errorRate"`        // percent
}

// ROIProfile carries the extended business profile sent to the calculator
type ROIProfile struct {
	CompanySize               string  `json:"companySize"`
	Industry                  string  `json:"industry"`
	AutomationReadiness       int     `json:"automationReadiness"`
	ChangeManagementReadiness int     `json:"changeManagementReadiness"`
	TechnicalComplexity       int     `json:"technicalComplexity"`
	BudgetRange               string  `json:"budgetRange"`
	ImplementationTimeline    int     `json:"implementationTimeline"` // months
	ExpectedEfficiencyGain    float64 `json:"expectedEfficiencyGain"` // percent
	RegulatoryRequirements    bool    `json:"regulatoryRequirements"`
}

// ROICalculationRequest is the body of POST /api/calculator/roi
type ROICalculationRequest struct {
	CompanySize                 string   `json:"company_size"`
	Industry                    string   `json:"industry"`
	AnnualRevenue               float64  `json:"annual_revenue"`
	CurrentProcesses            []string `json:"current_processes"`
	EmployeeCount               int      `json:"employee_count"`
	AutomationReadiness         int      `json:"automation_readiness"`
	ProcessesToAutomate         []string `json:"processes_to_automate"`
	ExpectedEfficiencyGain      float64  `json:"expected_efficiency_gain"`
	ImplementationTimeline      int      `json:"implementation_timeline"`
	BudgetRange                 string   `json:"budget_range"`
	MaintenanceBudgetPercentage float64  `json:"maintenance_budget_percentage"`
	ChangeManagementReadiness   int      `json:"change_management_readiness"`
	TechnicalComplexity         int      `json:"technical_complexity"`
	RegulatoryRequirements      bool     `json:"regulatory_requirements"`
}

// ROICalculationResponse is the success body of POST /api/calculator/roi
type ROICalculationResponse struct {
	InitialInvestment   float64            `json:"initial_investment"`
	AnnualSavings       float64            `json:"annual_savings"`
	ROIPercentage       float64            `json:"roi_percentage"`
	PaybackPeriodMonths float64            `json:"payback_period_months"`
	NPV3Years           float64            `json:"npv_3_years"`
	IRRPercentage       float64            `json:"irr_percentage"`
	CostBreakdown       map[string]float64 `json:"cost_breakdown"`
	SavingsBreakdown    map[string]float64 `json:"savings_breakdown"`
	RiskFactors         map[string]float64 `json:"risk_factors"`
	AIRecommendations   []string           `json:"ai_recommendations"`
	ConfidenceScore     float64            `json:"confidence_score"`
	Assumptions         []string           `json:"assumptions"`
}

// ROIProjection is the financial projection shown to the user, either
// mapped from the remote response or computed by the local fallback.
type ROIProjection struct {
	CurrentWaste    float64  `json:"current_waste"`
	AnnualSavings   float64  `json:"annual_savings"`
	MonthlyROI      float64  `json:"monthly_roi"`
	PaybackPeriod   float64  `json:"payback_period"` // months
	ThreeYearROI    float64  `json:"three_year_roi"` // percent
	TimeSavings     float64  `json:"time_savings"`
	ErrorSavings    float64  `json:"error_savings"`
	NPV             *float64 `json:"npv,omitempty"`
	IRR             *float64 `json:"irr,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Fallback        bool     `json:"fallback"`
}
