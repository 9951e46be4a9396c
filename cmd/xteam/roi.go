package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/calculator"
	"github.com/xteampro/funnel/internal/models"
)

func newROICmd(a *app) *cobra.Command {
	in := calculator.DefaultInput()
	profile := calculator.DefaultProfile()
	var offline bool

	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Estimate the return on automating manual work",
		Long: `Sends the inputs to the backend calculator. When the backend cannot be
reached the local estimate is shown instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var remote calculator.Remote
			if !offline {
				remote = a.client
			}
			proj, err := calculator.New(remote, a.logger).Calculate(cmd.Context(), in, profile)
			if errors.Is(err, calculator.ErrInvalidInput) {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Calculator unavailable (%v), showing a local estimate.\n", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProjection(proj))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&in.CurrentCosts, "costs", in.CurrentCosts, "current annual process costs ($)")
	fl.IntVar(&in.EmployeeCount, "employees", in.EmployeeCount, "employees doing the manual work")
	fl.Float64Var(&in.AvgSalary, "salary", in.AvgSalary, "average annual salary ($)")
	fl.Float64Var(&in.TimeSpentOnTasks, "manual-time", in.TimeSpentOnTasks, "share of time spent on manual tasks (%)")
	fl.Float64Var(&in.ErrorRate, "error-rate", in.ErrorRate, "error rate (%)")
	fl.StringVar(&profile.CompanySize, "company-size", profile.CompanySize, "company size")
	fl.StringVar(&profile.Industry, "industry", profile.Industry, "industry")
	fl.IntVar(&profile.AutomationReadiness, "readiness", profile.AutomationReadiness, "automation readiness (1-10)")
	fl.IntVar(&profile.ChangeManagementReadiness, "change-readiness", profile.ChangeManagementReadiness, "change management readiness (1-10)")
	fl.IntVar(&profile.TechnicalComplexity, "complexity", profile.TechnicalComplexity, "technical complexity (1-10)")
	fl.StringVar(&profile.BudgetRange, "budget", profile.BudgetRange, "budget range")
	fl.IntVar(&profile.ImplementationTimeline, "timeline", profile.ImplementationTimeline, "implementation timeline (months)")
	fl.Float64Var(&profile.ExpectedEfficiencyGain, "efficiency", profile.ExpectedEfficiencyGain, "expected efficiency gain (%)")
	fl.BoolVar(&profile.RegulatoryRequirements, "regulated", profile.RegulatoryRequirements, "subject to regulatory requirements")
	fl.BoolVar(&offline, "offline", false, "skip the backend and use the local estimate")
	return cmd
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

func renderProjection(p *models.ROIProjection) string {
	payback := fmt.Sprintf("%.1f months", p.PaybackPeriod)
	if math.IsInf(p.PaybackPeriod, 0) || math.IsNaN(p.PaybackPeriod) || p.PaybackPeriod <= 0 {
		payback = "never"
	}

	t := table.New().Headers("METRIC", "VALUE")
	t.Row("Current waste", money(p.CurrentWaste))
	t.Row("Annual savings", money(p.AnnualSavings))
	t.Row("Monthly ROI", money(p.MonthlyROI))
	t.Row("Payback period", payback)
	t.Row("3-year ROI", fmt.Sprintf("%.0f%%", p.ThreeYearROI))
	t.Row("Time savings", money(p.TimeSavings))
	t.Row("Error savings", money(p.ErrorSavings))
	if p.NPV != nil {
		t.Row("NPV (3 years)", money(*p.NPV))
	}
	if p.IRR != nil {
		t.Row("IRR", fmt.Sprintf("%.1f%%", *p.IRR))
	}

	out := t.Render()
	if p.Fallback {
		out += "\nLocal estimate."
	}
	for _, r := range p.Recommendations {
		out += "\n• " + r
	}
	return out
}
