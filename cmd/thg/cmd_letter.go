package main

import (
	"errors"
	"fmt"
	"strings"

	"thgletter/internal/shell"
	"thgletter/internal/wizard"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// resolveCounty accepts a full county label ("Shelby County, TN") or a short
// name ("Shelby", "Shelby County") and returns the label the backend expects.
func resolveCounty(state, county string) (string, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	county = strings.TrimSpace(county)
	if len(wizard.Counties(state)) == 0 {
		return "", fmt.Errorf("unknown state %q", state)
	}
	if county == "" {
		return "", errors.New("county is required (--county)")
	}
	candidates := []string{
		county,
		county + ", " + state,
		county + " County, " + state,
	}
	for _, c := range candidates {
		if wizard.HasCounty(state, c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown county %q in %s; see 'thg counties --state %s'", county, state, state)
}

// statusError turns the shell's error banner into a command error.
func statusError(sh *shell.Shell, err error) error {
	if st := sh.Status(); st.Kind == shell.StatusError && st.Message != "" {
		return errors.New(st.Message)
	}
	return err
}

// fetchParcel runs one parcel lookup to completion.
func fetchParcel(sh *shell.Shell) error {
	task, err := sh.StartFetchParcel()
	if err != nil {
		return statusError(sh, err)
	}
	sh.ApplyFetchParcel(task())
	if sh.Status().Kind == shell.StatusError {
		return statusError(sh, nil)
	}
	return nil
}

func newParcelCmd(a *app) *cobra.Command {
	var address, state, county string

	cmd := &cobra.Command{
		Use:   "parcel",
		Short: "Look up the parcel id for an address",
		Long: `Asks the backend's parcel bot for the parcel id of an address.

Example:
  thg parcel --address "100 Main St, Memphis, TN" --county Shelby`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			label, err := resolveCounty(state, county)
			if err != nil {
				return err
			}

			sh := a.newShell("")
			defer sh.Close()
			f := sh.Form()
			f.SetState(strings.ToUpper(state))
			f.SetCounty(label)
			f.Address = address

			if err := fetchParcel(sh); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.Parcel)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "full property address")
	cmd.Flags().StringVar(&state, "state", wizard.DefaultState, "state code")
	cmd.Flags().StringVar(&county, "county", "", "county name")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		name, email, address, property string
		state, county, parcel          string
		fee, signing, completion, date string
		out                            string
		send                           bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an engagement letter PDF",
		Long: `Generates the engagement letter and saves the PDF in the download
directory (or --out). The parcel id is looked up first when --parcel is
omitted. With --send the letter is then emailed to --email.

Example:
  thg generate --name "Jane Doe" --address "100 Main St, Memphis, TN" \
    --county Shelby --property "Single family residence" --fee 450`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			label, err := resolveCounty(state, county)
			if err != nil {
				return err
			}

			sh := a.newShell(out)
			defer sh.Close()

			f := sh.Form()
			f.Name = name
			f.CustomerEmail = email
			f.Address = address
			f.PropertyUnderAppraisal = property
			f.SetState(strings.ToUpper(state))
			f.SetCounty(label)
			f.Parcel = parcel
			f.Fee = fee
			f.SetDueSigning(signing)
			f.SetDueCompletion(completion)
			if date != "" {
				f.ReportDate = date
			}

			if f.Parcel == "" {
				if err := fetchParcel(sh); err != nil {
					return err
				}
				a.logger.Debug("parcel fetched", zap.String("parcel", f.Parcel))
			}

			task, err := sh.StartGenerate()
			if err != nil {
				return statusError(sh, err)
			}
			sh.ApplyGenerate(task())
			if sh.Status().Kind == shell.StatusError {
				return statusError(sh, nil)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, sh.Status().Message)
			fmt.Fprintf(w, "File:     %s\n", f.GeneratedFile)
			fmt.Fprintf(w, "Saved to: %s\n", f.SavedPath)

			if !send {
				return nil
			}
			return sendEmail(cmd, sh)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "client name")
	flags.StringVar(&email, "email", "", "customer email")
	flags.StringVar(&address, "address", "", "property address")
	flags.StringVar(&property, "property", "", "property under appraisal")
	flags.StringVar(&state, "state", wizard.DefaultState, "state code")
	flags.StringVar(&county, "county", "", "county name")
	flags.StringVar(&parcel, "parcel", "", "parcel id (looked up when omitted)")
	flags.StringVar(&fee, "fee", "", "appraisal fee in dollars")
	flags.StringVar(&signing, "signing", wizard.DefaultDue, "percent due at signing")
	flags.StringVar(&completion, "completion", wizard.DefaultDue, "percent due at completion")
	flags.StringVar(&date, "date", "", "report date, YYYY-MM-DD (default today)")
	flags.StringVar(&out, "out", "", "directory for the PDF (default paths.download_dir)")
	flags.BoolVar(&send, "send", false, "email the letter to --email afterwards")
	return cmd
}

func newSendCmd(a *app) *cobra.Command {
	var file, email, name, address string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Email a generated letter to the customer",
		Long: `Asks the backend to email a letter it generated earlier. --file is the
letter's file name as reported by 'thg generate'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sh := a.newShell("")
			defer sh.Close()

			f := sh.Form()
			f.GeneratedFile = file
			f.CustomerEmail = email
			f.Name = name
			f.Address = address
			return sendEmail(cmd, sh)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "generated letter file name")
	cmd.Flags().StringVar(&email, "email", "", "customer email")
	cmd.Flags().StringVar(&name, "name", "", "client name")
	cmd.Flags().StringVar(&address, "address", "", "property address")
	return cmd
}

func sendEmail(cmd *cobra.Command, sh *shell.Shell) error {
	task, err := sh.StartSendEmail()
	if err != nil {
		return statusError(sh, err)
	}
	sh.ApplySendEmail(task())
	if sh.EmailStatus() != shell.MsgEmailSent {
		return statusError(sh, errors.New(shell.MsgEmailFailedState))
	}
	fmt.Fprintln(cmd.OutOrStdout(), sh.Status().Message)
	return nil
}
