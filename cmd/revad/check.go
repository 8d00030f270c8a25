package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/gradcheck"
)

func newCheckCmd(a *app) *cobra.Command {
	set := gradcheck.DefaultSettings()
	var filter string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare every operation's gradient with finite differences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := autodiff.NewStack(a.cfg.StackOptions(a.log)...)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EXPRESSION\tMAX ERROR\tSTATUS")

			var failed []string
			for _, e := range gradcheck.Expressions() {
				if filter != "" && !strings.Contains(e.Name, filter) {
					continue
				}
				res, err := gradcheck.Check(s, e.F, e.X, &set)
				status := "ok"
				if err != nil {
					status = "FAIL"
					failed = append(failed, e.Name)
					a.log.Warn("gradient mismatch", "expression", e.Name, "err", err)
				}
				fmt.Fprintf(tw, "%s\t%.3g\t%s\n", e.Name, res.MaxErr, status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if len(failed) > 0 {
				return fmt.Errorf("%d expressions failed (%s): %w",
					len(failed), strings.Join(failed, ", "), gradcheck.ErrMismatch)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&set.Tol, "tol", set.Tol, "allowed error relative to 1+|numeric|")
	cmd.Flags().Float64Var(&set.Step, "step", set.Step, "finite-difference step")
	cmd.Flags().StringVar(&filter, "filter", "", "only check expressions whose name contains this text")
	return cmd
}

// isMismatch reports whether err came from a failed check.
func isMismatch(err error) bool {
	return errors.Is(err, gradcheck.ErrMismatch)
}
