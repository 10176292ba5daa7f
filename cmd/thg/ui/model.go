package ui

import (
	"thgletter/internal/logging"
	"thgletter/internal/shell"
	"thgletter/internal/wizard"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Results of remote actions, delivered back to the loop.
type (
	loginDoneMsg    struct{ r shell.LoginResult }
	parcelDoneMsg   struct{ r shell.ParcelResult }
	generateDoneMsg struct{ r shell.GenerateResult }
	emailDoneMsg    struct{ r shell.EmailResult }
)

// SessionChangedMsg tells the model the stored session changed on disk.
type SessionChangedMsg struct{}

// Model is the wizard's bubbletea model.
type Model struct {
	shell  *shell.Shell
	styles Styles

	inputs map[fieldID]*textinput.Model
	focus  int

	loginUser  textinput.Model
	loginPass  textinput.Model
	loginFocus int

	spinner  spinner.Model
	progress progress.Model
	preview  *previewRenderer

	width  int
	height int
}

// New returns a model driving sh.
func New(sh *shell.Shell, styles Styles) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	pb := progress.New(
		progress.WithSolidFill(string(styles.Theme.Accent)),
		progress.WithoutPercentage(),
		progress.WithWidth(60),
	)
	pb.EmptyColor = string(styles.Theme.Track)

	user := textinput.New()
	user.Placeholder = "Username"
	user.Prompt = "› "
	user.PromptStyle = styles.Prompt
	user.Width = 32
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.Prompt = "› "
	pass.PromptStyle = styles.Prompt
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.Width = 32

	m := Model{
		shell:     sh,
		styles:    styles,
		inputs:    newInputs(styles),
		loginUser: user,
		loginPass: pass,
		spinner:   sp,
		progress:  pb,
		preview:   newPreviewRenderer(styles.Theme.IsDark, 76),
		width:     80,
		height:    24,
	}
	m.syncStep()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w := msg.Width - 8
		if w < 40 {
			w = 40
		}
		m.progress.Width = w
		m.preview = newPreviewRenderer(m.styles.Theme.IsDark, w)
		return m, nil

	case spinner.TickMsg:
		if !m.shell.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		m.shell.ApplyLogin(msg.r)
		if m.shell.Authenticated() {
			m.resetLogin()
			m.syncStep()
		}
		return m, nil

	case parcelDoneMsg:
		m.shell.ApplyFetchParcel(msg.r)
		m.syncInputs()
		return m, nil

	case generateDoneMsg:
		before := m.shell.Step()
		m.shell.ApplyGenerate(msg.r)
		if m.shell.Step() != before {
			m.syncStep()
		}
		return m, nil

	case emailDoneMsg:
		m.shell.ApplySendEmail(msg.r)
		return m, nil

	case SessionChangedMsg:
		if m.shell.SessionChanged() {
			logging.UI("session changed on disk; authenticated=%v", m.shell.Authenticated())
			m.resetLogin()
			m.syncStep()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.shell.Authenticated() {
			return m.updateLogin(msg)
		}
		return m.updateWizard(msg)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setLoginFocus(1 - m.loginFocus)
		return m, nil
	case "enter":
		if m.loginFocus == 0 {
			m.setLoginFocus(1)
			return m, nil
		}
		task, err := m.shell.StartLogin(m.loginUser.Value(), m.loginPass.Value())
		if err != nil {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return loginDoneMsg{task()} })
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.loginUser, cmd = m.loginUser.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	return m, cmd
}

func (m *Model) setLoginFocus(i int) {
	m.loginFocus = i
	if i == 0 {
		m.loginUser.Focus()
		m.loginPass.Blur()
	} else {
		m.loginUser.Blur()
		m.loginPass.Focus()
	}
}

func (m *Model) resetLogin() {
	m.loginUser.SetValue("")
	m.loginPass.SetValue("")
	m.setLoginFocus(0)
}

func (m Model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.shell.Step()
	fields := stepFields[step]
	if m.focus >= len(fields) {
		m.focus = 0
	}
	current := fields[m.focus]

	switch msg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil

	case "ctrl+n":
		if err := m.shell.Next(); err == nil {
			m.syncStep()
		}
		return m, nil
	case "ctrl+b":
		if err := m.shell.Back(); err == nil {
			m.syncStep()
		}
		return m, nil

	case "ctrl+l":
		m.shell.Logout()
		m.resetLogin()
		m.syncStep()
		return m, nil

	case "ctrl+f":
		if step == wizard.StepParcel {
			return m.startFetch()
		}
		return m, nil
	case "ctrl+g":
		if step == wizard.StepAgreement {
			return m.startGenerate()
		}
		return m, nil
	case "ctrl+s":
		if step == wizard.StepEmail {
			return m.startSend()
		}
		return m, nil

	case "left", "right":
		if current.kind == kindSelect {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			m.cycleSelect(current.id, delta)
			return m, nil
		}

	case "enter":
		switch {
		case current.kind == kindButton:
			return m.activate(current.id)
		case m.focus == len(fields)-1 && step == wizard.StepClientProperty:
			if err := m.shell.Next(); err == nil {
				m.syncStep()
			}
			return m, nil
		default:
			m.moveFocus(1)
			return m, nil
		}
	}

	if current.kind != kindText {
		return m, nil
	}
	in := m.inputs[current.id]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	form := m.shell.Form()
	setFormValue(form, current.id, in.Value())
	if stored := formValue(form, current.id); stored != in.Value() {
		in.SetValue(stored)
	}
	return m, cmd
}

func (m Model) activate(id fieldID) (tea.Model, tea.Cmd) {
	switch id {
	case fieldFetch:
		return m.startFetch()
	case fieldGenerate:
		return m.startGenerate()
	case fieldSend:
		return m.startSend()
	}
	return m, nil
}

func (m Model) startFetch() (tea.Model, tea.Cmd) {
	task, err := m.shell.StartFetchParcel()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return parcelDoneMsg{task()} })
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	task, err := m.shell.StartGenerate()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return generateDoneMsg{task()} })
}

func (m Model) startSend() (tea.Model, tea.Cmd) {
	task, err := m.shell.StartSendEmail()
	if err != nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return emailDoneMsg{task()} })
}

func (m *Model) cycleSelect(id fieldID, delta int) {
	form := m.shell.Form()
	switch id {
	case fieldState:
		form.SetState(cycle(stateCodes(), form.StateCode, delta))
	case fieldCounty:
		form.SetCounty(cycle(wizard.Counties(form.StateCode), form.County, delta))
	}
}

func (m *Model) moveFocus(delta int) {
	n := len(stepFields[m.shell.Step()])
	m.focus = ((m.focus+delta)%n + n) % n
	m.focusInputs()
}

// syncStep resets focus for the current step and reloads its inputs.
func (m *Model) syncStep() {
	m.focus = 0
	m.syncInputs()
	m.focusInputs()
}

func (m *Model) syncInputs() {
	form := m.shell.Form()
	for id, in := range m.inputs {
		if v := formValue(form, id); v != in.Value() {
			in.SetValue(v)
		}
	}
}

func (m *Model) focusInputs() {
	fields := stepFields[m.shell.Step()]
	for _, in := range m.inputs {
		in.Blur()
	}
	if m.focus < len(fields) && fields[m.focus].kind == kindText {
		m.inputs[fields[m.focus].id].Focus()
	}
}
