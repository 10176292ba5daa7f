package main

import (
	"fmt"
	"strings"

	"thgletter/internal/wizard"

	"github.com/spf13/cobra"
)

func newCountiesCmd(a *app) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "counties",
		Short: "List the supported states and counties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if state == "" {
				for _, s := range wizard.States {
					fmt.Fprintf(w, "%s  %-10s %d counties\n", s.Code, s.Label, len(wizard.Counties(s.Code)))
				}
				return nil
			}

			code := strings.ToUpper(state)
			list := wizard.Counties(code)
			if len(list) == 0 {
				return fmt.Errorf("unknown state %q", state)
			}
			for _, c := range list {
				fmt.Fprintln(w, c)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "list the counties of one state")
	return cmd
}
