package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/contact"
)

func newContactCmd(a *app) *cobra.Command {
	form := contact.NewForm()
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a contact inquiry",
		Example: `  xteam contact --name "Ada Lovelace" --email ada@example.com --company Engines \
    --subject "Invoice automation" --message "We process 2k invoices a month."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := contact.NewService(a.client, a.logger)
			resp, err := svc.Submit(cmd.Context(), form)

			var serr *contact.SubmitError
			if errors.As(err, &serr) {
				printFieldErrors(cmd, serr.Fields)
				if serr.Banner == "" {
					return errors.New("the form has invalid fields")
				}
				return errors.New(serr.Banner)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Message sent. Thank you!")
			if resp.Message != "" {
				fmt.Fprintln(out, resp.Message)
			}
			fmt.Fprintf(out, "Inquiry ID: %s\n", resp.InquiryID)
			if resp.EstimatedResponseTime != "" {
				fmt.Fprintf(out, "Expected response within %s\n", resp.EstimatedResponseTime)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&form.Name, "name", "", "your name")
	fl.StringVar(&form.Email, "email", "", "your email")
	fl.StringVar(&form.Company, "company", "", "company name")
	fl.StringVar(&form.Phone, "phone", "", "phone number")
	fl.StringVar(&form.Position, "position", "", "your position")
	fl.StringVar(&form.Subject, "subject", "", "subject")
	fl.StringVar(&form.Message, "message", "", "message (10 to 2000 characters)")
	fl.StringVar(&form.InquiryType, "type", form.InquiryType, "consultation, demo, partnership, support or other")
	fl.StringVar(&form.Budget, "budget", "", "budget range")
	fl.StringVar(&form.Timeline, "timeline", "", "project timeline")
	fl.StringSliceVar(&form.Services, "service", nil, "service of interest (repeatable)")
	fl.BoolVar(&form.MarketingConsent, "marketing", false, "agree to receive marketing emails")
	return cmd
}

func printFieldErrors(cmd *cobra.Command, fields contact.FieldErrors) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", name, fields[name])
	}
}
