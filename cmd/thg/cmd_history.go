package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"thgletter/internal/letter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently generated letters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := a.openHistory()
			if h == nil {
				return errors.New("letter history is unavailable")
			}
			letters, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(letters) == 0 {
				fmt.Fprintln(w, "No letters yet.")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GENERATED\tCLIENT\tPARCEL\tFEE\tEMAILED\tFILE")
			for _, l := range letters {
				emailed := "-"
				if l.EmailedTo != "" {
					emailed = l.EmailedTo
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					humanize.Time(l.GeneratedAt), l.ClientName, l.ParcelID, letter.FormatCurrency(l.Fee), emailed, l.FileName)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of letters to show")
	return cmd
}
