package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/admin"
	"github.com/xteampro/funnel/internal/api"
	"gopkg.in/yaml.v3"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage submissions, inquiries and audit configuration",
		Long: `Admin commands need a token: run "xteam admin login" first, or set
XTEAM_ADMIN_TOKEN. A rejected token logs you out.`,
	}
	cmd.AddCommand(
		newAdminLoginCmd(a),
		newAdminLogoutCmd(a),
		newAdminDashboardCmd(a),
		newAdminAuditsCmd(a),
		newAdminContactsCmd(a),
		newAdminConfigCmd(a),
		newAdminDeleteCmd(a),
		newAdminExportCmd(a),
	)
	return cmd
}

func newAdminLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("XTEAM_ADMIN_PASSWORD")
			}
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Login(cmd.Context(), username, password); err != nil {
				if api.IsStatus(err, 401) {
					return fmt.Errorf("invalid username or password")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password (default $XTEAM_ADMIN_PASSWORD)")
	return cmd
}

func newAdminLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newAdminDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show headline statistics and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			snap, err := svc.LoadAll(cmd.Context(), api.AuditFilter{})
			if err != nil {
				return err
			}

			s := snap.Stats
			out := cmd.OutOrStdout()
			t := table.New().Headers("METRIC", "VALUE")
			t.Row("Total audits", strconv.Itoa(s.TotalAudits))
			t.Row("Audits this month", strconv.Itoa(s.AuditsThisMonth))
			t.Row("Total contacts", strconv.Itoa(s.TotalContacts))
			t.Row("Contacts this month", strconv.Itoa(s.ContactsThisMonth))
			t.Row("Average audit score", fmt.Sprintf("%.1f", s.AverageAuditScore))
			t.Row("Conversion rate", fmt.Sprintf("%.1f%%", s.ConversionRate))
			fmt.Fprintln(out, t.Render())

			if len(s.RecentActivities) > 0 {
				fmt.Fprintln(out, "\nRecent activity")
				for _, act := range s.RecentActivities {
					fmt.Fprintf(out, "  %s  %s\n", act.Timestamp, act.Description)
				}
			}
			fmt.Fprintf(out, "\n%d submissions, %d inquiries. Analysis depth: %s\n",
				len(snap.Submissions), len(snap.Contacts), snap.Configuration.AnalysisDepth)
			return nil
		},
	}
}

func newAdminAuditsCmd(a *app) *cobra.Command {
	var filter api.AuditFilter
	cmd := &cobra.Command{
		Use:   "audits",
		Short: "List audit submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			subs, err := svc.Submissions(cmd.Context(), filter)
			if err != nil {
				return err
			}

			t := table.New().Headers("AUDIT ID", "COMPANY", "EMAIL", "INDUSTRY", "STATUS", "SCORE", "SUBMITTED")
			for _, s := range subs {
				score := "-"
				if s.MaturityScore != nil {
					score = fmt.Sprintf("%.0f", *s.MaturityScore)
				}
				t.Row(s.AuditID, s.CompanyName, s.Email, s.Industry, s.Status, score, s.SubmittedAt)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Status, "status", "all", "status filter")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "search company, email or industry")
	return cmd
}

func newAdminContactsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "contacts",
		Short: "List contact inquiries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			inqs, err := svc.Contacts(cmd.Context())
			if err != nil {
				return err
			}

			t := table.New().Headers("INQUIRY ID", "NAME", "EMAIL", "TYPE", "SUBJECT", "PRIORITY", "STATUS")
			for _, c := range inqs {
				t.Row(c.InquiryID, c.Name, c.Email, c.InquiryType, c.Subject, c.Priority, c.Status)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newAdminConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the audit configuration",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the audit configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			conf, err := svc.Configuration(cmd.Context())
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(conf); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	set := &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Update configuration fields",
		Long: `Each argument sets one field. Nested fields use dots and values are read
as YAML scalars, so true, 3 and "text" keep their types.`,
		Example: `  xteam admin config set analysis_depth=quick notification_settings.weekly_reports=true`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(args)
			if err != nil {
				return err
			}
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.UpdateConfiguration(cmd.Context(), patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated.")
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

// parseAssignments turns key=value arguments into a nested patch
func parseAssignments(args []string) (map[string]interface{}, error) {
	patch := make(map[string]interface{})
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}

		var value interface{}
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}

		parts := strings.Split(key, ".")
		node := patch
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]interface{})
			if !ok {
				child = make(map[string]interface{})
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return patch, nil
}

func newAdminDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <audit-id>",
		Short: "Delete an audit submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteSubmission(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}

func newAdminExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q (csv or xlsx)", format)
			}
			svc, err := a.adminService(cmd.Context())
			if err != nil {
				return err
			}
			data, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}

			if format == "xlsx" {
				var buf bytes.Buffer
				if err := admin.CSVToXLSX(data, &buf); err != nil {
					return err
				}
				data = buf.Bytes()
			}
			if out == "" {
				out = "submissions." + format
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default submissions.<format>)")
	return cmd
}
