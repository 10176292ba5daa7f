package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in; run 'thg login' first")

func newLoginCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the THG backend",
		Long: `Signs in and stores the session under the state directory, where the
interactive wizard picks it up.

The password is prompted for when -p is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("username is required (-u)")
			}
			if !cmd.Flags().Changed("password") {
				pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = pw
			}

			sh := a.newShell("")
			defer sh.Close()

			task, err := sh.StartLogin(username, password)
			if err != nil {
				return err
			}
			sh.ApplyLogin(task())
			if !sh.Authenticated() {
				a.logger.Debug("login failed", zap.String("user", username))
				return errors.New(sh.LoginError())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as: %s\n", sh.Session().CurrentUser)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Long:  `Removes the stored session. An open wizard returns to the login screen.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prev := a.sessions.Load()
			a.sessions.Clear()
			if prev.Valid() {
				a.logger.Debug("logged out", zap.String("user", prev.CurrentUser))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.sessions.Load()
			if !s.Valid() {
				return errNotLoggedIn
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.CurrentUser)
			return nil
		},
	}
}

// requireSession fails unless a stored session exists.
func (a *app) requireSession() error {
	if !a.sessions.Load().Valid() {
		return errNotLoggedIn
	}
	return nil
}

// promptPassword reads a password, without echo when in is a terminal.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
