package main

import (
	"context"
	"errors"

	"thgletter/cmd/thg/ui"
	"thgletter/internal/logging"
	"thgletter/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// runInteractive runs the wizard until the user quits. A session watcher runs
// beside it so a logout from another terminal returns the wizard to the login
// screen.
func runInteractive(ctx context.Context, a *app) error {
	sh := a.newShell("")
	defer sh.Close()

	p := tea.NewProgram(
		ui.New(sh, ui.DefaultStyles()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)

	g.Go(func() error {
		defer stop()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	w, err := session.NewWatcher(a.kv, func() { p.Send(ui.SessionChangedMsg{}) })
	if err != nil {
		logging.Get(logging.CategoryUI).Warn("session watcher unavailable: %v", err)
	} else {
		g.Go(func() error {
			// the wizard works without live logout detection
			if err := w.Run(gctx); err != nil {
				logging.Get(logging.CategoryUI).Warn("session watcher stopped: %v", err)
			}
			return nil
		})
	}

	logging.UI("wizard started as %q", sh.Session().CurrentUser)
	return g.Wait()
}
