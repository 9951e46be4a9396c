package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/audit"
	"github.com/xteampro/funnel/internal/domain/workflow"
	"github.com/xteampro/funnel/internal/models"
	"github.com/xteampro/funnel/internal/report"
	"github.com/xteampro/funnel/internal/tui"
	"github.com/xteampro/funnel/internal/worker"
	"go.uber.org/zap"
)

type auditFlags struct {
	industry string
	size     string
	pains    []string
	systems  []string
	kpis     []string
	contact  models.ContactInfo
	noWait   bool
	plain    bool
}

func (f *auditFlags) scripted() bool {
	return f.industry != "" || f.contact.Email != ""
}

func newAuditCmd(a *app) *cobra.Command {
	f := &auditFlags{}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the automation audit questionnaire",
		Long: `Without flags the questionnaire runs interactively. Passing --industry or
--email answers every step from flags instead, which is useful in scripts.
After submission the results are followed until ready unless --no-wait is set.`,
		Example: `  xteam audit
  xteam audit --industry SaaS --size "Small (11-50)" --pain "Manual processes" \
    --system CRM --kpi "Cost reduction" --email ops@acme.io --no-wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAudit(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.industry, "industry", "", "industry option")
	fl.StringVar(&f.size, "size", "", "company size option")
	fl.StringSliceVar(&f.pains, "pain", nil, "pain point option (repeatable)")
	fl.StringSliceVar(&f.systems, "system", nil, "current system option (repeatable)")
	fl.StringSliceVar(&f.kpis, "kpi", nil, "KPI option (repeatable)")
	fl.StringVar(&f.contact.Name, "name", "", "contact name")
	fl.StringVar(&f.contact.Email, "email", "", "contact email")
	fl.StringVar(&f.contact.Company, "company", "", "company name")
	fl.StringVar(&f.contact.Phone, "phone", "", "contact phone")
	fl.BoolVar(&f.noWait, "no-wait", false, "exit after submission instead of following the results")
	fl.BoolVar(&f.plain, "plain", false, "print progress lines instead of the interactive view")

	cmd.AddCommand(
		newAuditResultsCmd(a),
		newAuditHistoryCmd(a),
		newAuditReportCmd(a),
		newAuditOptionsCmd(),
	)
	return cmd
}

func (a *app) newWizard() *audit.Wizard {
	return audit.NewWizard(a.client, a.store, a.cfg.WizardConfig(), a.logger)
}

func (a *app) runAudit(cmd *cobra.Command, f *auditFlags) error {
	ctx := cmd.Context()
	wiz := a.newWizard()

	var auditID string
	if f.scripted() {
		id, err := submitScripted(ctx, wiz, f)
		if err != nil {
			return err
		}
		auditID = id
		fmt.Fprintf(cmd.OutOrStdout(), "Audit submitted: %s\n", auditID)
	} else {
		final, err := tea.NewProgram(tui.NewWizardModel(ctx, wiz), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("audit wizard: %w", err)
		}
		m := final.(tui.WizardModel)
		if m.AuditID() == "" {
			return nil
		}
		auditID = m.AuditID()
	}

	if f.noWait {
		return nil
	}
	return a.followResults(cmd, auditID, f.plain, false)
}

// submitScripted answers every step from flags and submits
func submitScripted(ctx context.Context, wiz *audit.Wizard, f *auditFlags) (string, error) {
	answers := []error{
		wiz.Choose(audit.StepIndustry, f.industry),
		wiz.Choose(audit.StepCompanySize, f.size),
		wiz.Select(audit.StepPainPoints, f.pains),
		wiz.Select(audit.StepCurrentSystems, f.systems),
		wiz.Select(audit.StepKPIs, f.kpis),
		wiz.SetContact(f.contact),
	}
	if err := errors.Join(answers...); err != nil {
		return "", err
	}

	for {
		step := wiz.Current()
		view, err := wiz.Next(ctx)
		if errors.Is(err, audit.ErrStepIncomplete) {
			return "", fmt.Errorf("%q is not answered: %w", step.Title, err)
		}
		switch view.Phase {
		case workflow.StateCompleted:
			return view.AuditID, nil
		case workflow.StateError:
			return "", errors.New(view.Message)
		}
		if err != nil {
			return "", err
		}
	}
}

func newAuditOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the questionnaire steps and their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, step := range audit.DefaultSteps() {
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, step.Title, step.Kind)
				for _, opt := range step.Options {
					fmt.Fprintf(out, "   - %s\n", opt)
				}
			}
			return nil
		},
	}
}

func newAuditResultsCmd(a *app) *cobra.Command {
	var plain, asJSON bool
	cmd := &cobra.Command{
		Use:   "results <audit-id>",
		Short: "Follow an audit until its results are ready and show them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.followResults(cmd, args[0], plain || asJSON, asJSON)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print progress lines instead of the interactive view")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) followResults(cmd *cobra.Command, auditID string, plain, asJSON bool) error {
	ctx := cmd.Context()
	poller := worker.NewResultsPoller(a.client, a.cfg.PollerConfig(), a.logger)
	handle := poller.Start(ctx, auditID)
	defer handle.Stop()

	var final worker.PollUpdate
	if plain {
		final = printUpdates(cmd.ErrOrStderr(), handle.Updates())
	} else {
		model := tui.NewResultsModel(auditID, handle.Updates(), handle.Stop)
		out, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("results view: %w", err)
		}
		final = out.(tui.ResultsModel).Final()
	}

	switch final.Phase {
	case worker.PhaseCompleted:
		if err := a.store.UpdateAuditStatus(ctx, auditID, models.AuditStatusCompleted); err != nil {
			a.logger.Warn("Failed to update local audit status", zap.Error(err))
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(final.Result)
		}
		if plain {
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderResult(final.Result, tui.DefaultStyles()))
		}
		return nil
	case worker.PhaseFailed:
		if errors.Is(final.Err, worker.ErrAuditNotFound) {
			if err := a.store.UpdateAuditStatus(ctx, auditID, models.AuditStatusFailed); err != nil {
				a.logger.Warn("Failed to update local audit status", zap.Error(err))
			}
		}
		return errors.New(final.Message)
	default:
		// stopped by the user or the context
		return ctx.Err()
	}
}

func printUpdates(w io.Writer, updates <-chan worker.PollUpdate) worker.PollUpdate {
	var last worker.PollUpdate
	for u := range updates {
		if u.Phase != last.Phase || u.Progress != last.Progress {
			switch u.Phase {
			case worker.PhaseLoading:
				fmt.Fprintln(w, "Loading audit results...")
			case worker.PhaseProcessing:
				fmt.Fprintf(w, "Analyzing... %3.0f%%\n", u.Progress)
			}
		}
		last = u
	}
	return last
}

func newAuditHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List audits submitted from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.store.ListAudits(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audits submitted yet.")
				return nil
			}

			t := table.New().Headers("AUDIT ID", "COMPANY", "EMAIL", "STATUS", "SUBMITTED")
			for _, r := range recs {
				t.Row(r.AuditID, r.CompanyName, r.Email, r.Status, r.SubmittedAt.Local().Format(time.DateTime))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum rows")
	return cmd
}

func newAuditReportCmd(a *app) *cobra.Command {
	var outDir string
	var text bool
	var pages int
	cmd := &cobra.Command{
		Use:   "report <audit-id>",
		Short: "Download the PDF report of a finished audit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			result, err := a.client.AuditResults(ctx, args[0])
			if err != nil {
				return fmt.Errorf("audit %s has no results yet: %w", args[0], err)
			}

			fetcher := report.NewFetcher(a.client, a.logger)
			path, err := fetcher.Save(ctx, result, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)

			if !text {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			extracted, err := report.ExtractText(data, pages)
			if err != nil {
				return err
			}
			for _, p := range extracted {
				fmt.Fprintf(cmd.OutOrStdout(), "\n--- page %d ---\n%s\n", p.Number, strings.TrimSpace(p.Text))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to save the report in")
	cmd.Flags().BoolVar(&text, "text", false, "also print the report text")
	cmd.Flags().IntVar(&pages, "pages", 2, "pages of text to print (0 for all)")
	return cmd
}
