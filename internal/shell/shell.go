// Package shell is the application core behind both the terminal wizard and
// the one-shot commands. It owns the session, the form and the action slots.
//
// Remote actions come in two halves. Start… runs on the caller's loop: it
// validates, claims the action's slot, updates status and returns a task.
// The task does the network call and touches nothing else. Apply… runs back
// on the loop with the task's result and drops it unless it is still the
// latest for its slot. Only Apply… changes state or writes files.
package shell

import (
	"context"
	"errors"
	"time"

	"thgletter/internal/api"
	"thgletter/internal/letter"
	"thgletter/internal/logging"
	"thgletter/internal/session"
	"thgletter/internal/store"
	"thgletter/internal/wizard"
)

// ErrBusy is returned when an action or navigation is refused because
// another action is still running.
var ErrBusy = errors.New("another action is in progress")

// ErrInvalid is returned by Start… when local validation failed. The
// reason is already in Status.
var ErrInvalid = errors.New("input incomplete")

// Backend is the remote service. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, username, password string) (api.LoginResult, error)
	FetchParcel(ctx context.Context, fullAddress, countyName string) (string, error)
	GenerateReport(ctx context.Context, r api.ReportRequest) (*letter.Artifact, error)
	SendEmail(ctx context.Context, r api.EmailRequest) (api.EmailResult, error)
}

// Recorder logs generated and sent letters. *store.History implements it.
type Recorder interface {
	Record(ctx context.Context, l store.Letter) (store.Letter, error)
	MarkEmailed(ctx context.Context, fileName, email string, at time.Time) (bool, error)
}

// StatusKind selects how the status banner is drawn.
type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusError   StatusKind = "error"
	StatusSuccess StatusKind = "success"
)

// Status is the global banner.
type Status struct {
	Kind    StatusKind
	Message string
}

// Options configure a Shell.
type Options struct {
	Backend     Backend
	Sessions    *session.Manager
	History     Recorder // optional
	DownloadDir string
	Now         func() time.Time
}

// Shell is the wizard's state. It is not safe for concurrent use: every
// method except the returned tasks must be called from one loop.
type Shell struct {
	backend     Backend
	sessions    *session.Manager
	history     Recorder
	downloadDir string
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	session    session.Session
	step       wizard.Step
	form       *wizard.Form
	status     Status
	emailState string
	loginError string

	parcelSlot   wizard.Slot
	generateSlot wizard.Slot
	sending      bool
	loggingIn    bool

	// epoch advances on logout so late login and email results are dropped.
	epoch uint64
}

// New builds a Shell and restores any saved session.
func New(opts Options) *Shell {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Shell{
		backend:     opts.Backend,
		sessions:    opts.Sessions,
		history:     opts.History,
		downloadDir: opts.DownloadDir,
		now:         now,
		ctx:         ctx,
		cancel:      cancel,
		step:        wizard.StepClientProperty,
		form:        wizard.NewForm(now()),
		status:      Status{Kind: StatusInfo},
	}
	if s.sessions != nil {
		s.session = s.sessions.Load()
	}
	return s
}

// Close cancels every pending action. The shell must not be used afterwards.
func (s *Shell) Close() {
	s.parcelSlot.Cancel()
	s.generateSlot.Cancel()
	s.cancel()
}

// Session returns the current login.
func (s *Shell) Session() session.Session { return s.session }

// Authenticated reports whether a user is signed in.
func (s *Shell) Authenticated() bool { return s.session.Authenticated }

// Step returns the current wizard step.
func (s *Shell) Step() wizard.Step { return s.step }

// Form returns the live form. Views edit it directly.
func (s *Shell) Form() *wizard.Form { return s.form }

// Status returns the global banner.
func (s *Shell) Status() Status { return s.status }

// EmailStatus returns the step 4 status line.
func (s *Shell) EmailStatus() string { return s.emailState }

// LoginError returns the message shown under the login form.
func (s *Shell) LoginError() string { return s.loginError }

// FetchingParcel reports whether a parcel lookup is pending.
func (s *Shell) FetchingParcel() bool { return s.parcelSlot.Busy() }

// Generating reports whether letter generation is pending.
func (s *Shell) Generating() bool { return s.generateSlot.Busy() }

// Sending reports whether an email send is pending.
func (s *Shell) Sending() bool { return s.sending }

// LoggingIn reports whether a login is pending.
func (s *Shell) LoggingIn() bool { return s.loggingIn }

// Busy reports whether any action is pending.
func (s *Shell) Busy() bool {
	return s.FetchingParcel() || s.Generating() || s.sending || s.loggingIn
}

// CanAdvance reports whether Next would succeed.
func (s *Shell) CanAdvance() bool {
	return !s.Busy() && s.step < wizard.StepEmail && s.form.StepValid(s.step)
}

func (s *Shell) setStatus(kind StatusKind, msg string) {
	s.status = Status{Kind: kind, Message: msg}
}

// Next moves forward when the current step validates.
func (s *Shell) Next() error {
	if s.Busy() {
		return ErrBusy
	}
	next, err := s.form.Advance(s.step)
	if err != nil {
		return err
	}
	logging.Wizard("step %d -> %d", s.step, next)
	s.step = next
	return nil
}

// Back moves to the previous step.
func (s *Shell) Back() error {
	if s.Busy() {
		return ErrBusy
	}
	s.step = s.step.Back()
	return nil
}

// Logout cancels pending lookups and generation, then forgets the session
// and the generated letter. Form fields other than the letter are kept.
func (s *Shell) Logout() {
	s.parcelSlot.Cancel()
	s.generateSlot.Cancel()
	s.epoch++
	s.sending = false
	s.loggingIn = false

	if s.session.Authenticated {
		logging.Wizard("logout %s", s.session.CurrentUser)
	}
	s.session = session.Session{}
	if s.sessions != nil {
		s.sessions.Clear()
	}

	s.step = wizard.StepClientProperty
	s.setStatus(StatusInfo, "")
	s.emailState = ""
	s.loginError = ""
	s.form.ClearArtifact()
}

// SessionChanged re-reads the stored session after another process changed
// it. It returns true when the visible login changed.
func (s *Shell) SessionChanged() bool {
	if s.sessions == nil {
		return false
	}
	stored := s.sessions.Peek()
	if stored == s.session {
		return false
	}
	if !stored.Valid() {
		logging.Wizard("session removed externally")
		s.Logout()
		return true
	}
	s.session = s.sessions.Load()
	return true
}
