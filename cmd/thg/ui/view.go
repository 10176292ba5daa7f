package ui

import (
	"fmt"
	"strings"
	"time"

	"thgletter/internal/letter"
	"thgletter/internal/shell"
	"thgletter/internal/wizard"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// previewRenderer renders the letter preview markdown, caching the last result.
type previewRenderer struct {
	renderer *glamour.TermRenderer
	lastSrc  string
	lastOut  string
}

func newPreviewRenderer(dark bool, width int) *previewRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &previewRenderer{renderer: r}
}

func (p *previewRenderer) Render(src string) string {
	if p == nil || p.renderer == nil {
		return src
	}
	if src == p.lastSrc && p.lastOut != "" {
		return p.lastOut
	}
	out, err := p.renderer.Render(src)
	if err != nil {
		return src
	}
	p.lastSrc, p.lastOut = src, out
	return out
}

// View renders the login gate or the wizard.
func (m Model) View() string {
	if !m.shell.Authenticated() {
		return m.viewLogin()
	}
	return m.viewWizard()
}

func (m Model) viewLogin() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(Logo(s))
	b.WriteString("\n")
	b.WriteString(s.Title.Render("THG Engagement Letters"))
	b.WriteString("\n")
	b.WriteString(s.Subtitle.Render("Sign in to continue"))
	b.WriteString("\n\n")
	b.WriteString(m.loginUser.View())
	b.WriteString("\n")
	b.WriteString(m.loginPass.View())
	b.WriteString("\n\n")

	switch {
	case m.shell.LoggingIn():
		b.WriteString(m.spinner.View() + " " + s.Muted.Render("Signing in…"))
	case m.shell.LoginError() != "":
		b.WriteString(s.Error.Render(m.shell.LoginError()))
	}
	b.WriteString("\n\n")
	b.WriteString(s.Footer.Render("enter sign in • tab switch field • ctrl+c quit"))
	return b.String()
}

func (m Model) viewWizard() string {
	s := m.styles
	step := m.shell.Step()
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Header.Render("Logged in as: "+m.shell.Session().CurrentUser),
		s.Muted.Render("  (ctrl+l logout)"),
	)
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(s.RenderDivider(max(min(m.width, 80), 20)))
	b.WriteString("\n")

	if banner := m.viewStatus(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%s  %s\n", s.Muted.Render(step.String()), s.Title.UnsetMarginBottom().Render(step.Title())))
	b.WriteString(m.progress.ViewAs(step.Progress()))
	b.WriteString("\n\n")

	var panel string
	switch step {
	case wizard.StepClientProperty:
		panel = m.viewStep1()
	case wizard.StepParcel:
		panel = m.viewStep2()
	case wizard.StepAgreement:
		panel = m.viewStep3()
	case wizard.StepEmail:
		panel = m.viewStep4()
	}
	b.WriteString(s.Panel.Render(panel))
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m Model) viewStatus() string {
	st := m.shell.Status()
	if st.Message == "" {
		return ""
	}
	s := m.styles
	style := s.Info
	switch st.Kind {
	case shell.StatusError:
		style = s.Error
	case shell.StatusSuccess:
		style = s.Success
	}
	msg := st.Message
	if m.shell.Busy() {
		msg = m.spinner.View() + " " + msg
	}
	return s.Banner.BorderForeground(style.GetForeground()).Render(style.Render(msg))
}

// row renders one field of the current step.
func (m Model) row(idx int, f field) string {
	s := m.styles
	focused := idx == m.focus
	label := s.Label.Render(f.label)
	if focused {
		label = s.FocusedLabel.Render(f.label)
	}

	switch f.kind {
	case kindText:
		return label + m.inputs[f.id].View()
	case kindSelect:
		value := formValue(m.shell.Form(), f.id)
		if f.id == fieldState {
			value = fmt.Sprintf("%s (%s)", wizard.StateLabel(value), value)
		}
		if value == "" {
			value = "—"
		}
		if focused {
			return label + s.Prompt.Render("‹ ") + s.Body.Render(value) + s.Prompt.Render(" ›")
		}
		return label + "  " + s.Body.Render(value)
	case kindButton:
		return m.button(f.label, focused, m.buttonEnabled(f.id))
	}
	return ""
}

func (m Model) button(label string, focused, enabled bool) string {
	s := m.styles
	switch {
	case !enabled:
		return s.ButtonOff.Render(label)
	case focused:
		return s.ButtonActive.Render(label)
	}
	return s.Button.Render(label)
}

func (m Model) buttonEnabled(id fieldID) bool {
	f := m.shell.Form()
	switch id {
	case fieldFetch:
		return !m.shell.FetchingParcel()
	case fieldGenerate:
		return !m.shell.Generating()
	case fieldSend:
		return !m.shell.Sending() && f.Step4Valid()
	}
	return true
}

func (m Model) rows(step wizard.Step) []string {
	fields := stepFields[step]
	out := make([]string, 0, len(fields))
	for i, f := range fields {
		out = append(out, m.row(i, f))
	}
	return out
}

func (m Model) viewStep1() string {
	return strings.Join(m.rows(wizard.StepClientProperty), "\n")
}

func (m Model) viewStep2() string {
	s := m.styles
	lines := m.rows(wizard.StepParcel)
	if m.shell.FetchingParcel() {
		lines[len(lines)-1] += "  " + m.spinner.View() + s.Muted.Render(" looking up parcel…")
	}
	lines = append(lines, "", s.Muted.Render(fmt.Sprintf("%s • %s", m.shell.Form().Address, m.shell.Form().County)))
	return strings.Join(lines, "\n")
}

func (m Model) viewStep3() string {
	s := m.styles
	form := m.shell.Form()
	lines := m.rows(wizard.StepAgreement)

	if hint := form.Step3Hint(); hint != "" {
		lines = append(lines, "", s.Error.Render(hint))
	}
	if m.shell.Generating() {
		lines = append(lines, "", m.spinner.View()+s.Muted.Render(" generating PDF…"))
	}
	lines = append(lines, "", m.preview.Render(letter.Preview(form.Terms(), time.Now())))
	return strings.Join(lines, "\n")
}

func (m Model) viewStep4() string {
	s := m.styles
	form := m.shell.Form()
	lines := m.rows(wizard.StepEmail)

	if form.GeneratedFile != "" {
		lines = append(lines, "", s.Muted.Render("Letter: ")+s.Body.Render(form.GeneratedFile))
		if form.SavedPath != "" {
			lines = append(lines, s.Muted.Render("Saved to: ")+s.Body.Render(form.SavedPath))
		}
	} else {
		lines = append(lines, "", s.Muted.Render("No letter generated yet."))
	}

	if es := m.shell.EmailStatus(); es != "" {
		style := s.Info
		switch es {
		case shell.MsgEmailSent:
			style = s.Success
		case shell.MsgEmailFailed:
			style = s.Error
		}
		lines = append(lines, "", style.Render(es))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewFooter() string {
	s := m.styles
	step := m.shell.Step()

	back := m.button("◂ Back", false, step > wizard.StepClientProperty && !m.shell.Busy())
	next := m.button("Next ▸", false, m.shell.CanAdvance())
	nav := lipgloss.JoinHorizontal(lipgloss.Center, back, " ", next)

	keys := []string{"tab move", "ctrl+b back", "ctrl+n next"}
	switch step {
	case wizard.StepClientProperty:
		keys = append(keys, "←/→ state & county")
	case wizard.StepParcel:
		keys = append(keys, "ctrl+f fetch")
	case wizard.StepAgreement:
		keys = append(keys, "ctrl+g generate")
	case wizard.StepEmail:
		keys = append(keys, "ctrl+s send")
	}
	keys = append(keys, "ctrl+c quit")
	return nav + "\n" + s.Footer.Render(strings.Join(keys, " • "))
}
