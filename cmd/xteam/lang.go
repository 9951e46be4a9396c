package main

import (
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"github.com/xteampro/funnel/internal/store"
)

var langTag = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

func newLangCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or set the preferred response language",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the preferred language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, ok, err := a.store.Get(cmd.Context(), store.KeyLanguage)
			if err != nil {
				return err
			}
			if !ok {
				lang = a.cfg.Language
			}
			fmt.Fprintln(cmd.OutOrStdout(), lang)
			return nil
		},
	}, &cobra.Command{
		Use:   "set <tag>",
		Short: "Set the preferred language, e.g. en, ru or uk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !langTag.MatchString(args[0]) {
				return fmt.Errorf("%q is not a language tag", args[0])
			}
			if err := a.store.Set(cmd.Context(), store.KeyLanguage, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Language set to %s\n", args[0])
			return nil
		},
	})
	return cmd
}
