package shell

import (
	"strings"

	"thgletter/internal/api"
	"thgletter/internal/letter"
	"thgletter/internal/logging"
	"thgletter/internal/session"
	"thgletter/internal/store"
	"thgletter/internal/wizard"
)

// User-facing messages.
const (
	MsgInvalidLogin     = "Invalid username or password."
	MsgServerError      = "Server error."
	MsgNeedAddress      = "Enter address and county."
	MsgFetchingParcel   = "Fetching parcel…"
	MsgParcelFetched    = "Parcel fetched successfully."
	MsgParcelFailed     = "Bot error."
	MsgNeedSteps12      = "Complete steps 1 and 2 before generating the letter."
	MsgNeedStep3        = "Check Step 3: Fee must be a positive number and Signing + Completion must equal 100%."
	MsgGenerating       = "Generating PDF…"
	MsgGenerated        = "Engagement letter generated and downloaded."
	MsgGenerateFailed   = "Error generating report."
	MsgNeedEmail        = "Enter customer email."
	MsgNeedLetter       = "Generate the engagement letter first."
	MsgSending          = "Sending…"
	MsgEmailSent        = "Email sent successfully ✔"
	MsgEmailSentStatus  = "Email sent."
	MsgEmailFailed      = "Failed to send email ❌"
	MsgEmailFailedState = "Failed to send email."
)

// LoginResult is the outcome of a login task.
type LoginResult struct {
	epoch    uint64
	username string
	Result   api.LoginResult
	Err      error
}

// StartLogin submits credentials.
func (s *Shell) StartLogin(username, password string) (func() LoginResult, error) {
	if s.loggingIn {
		return nil, ErrBusy
	}
	s.loginError = ""
	s.setStatus(StatusInfo, "")
	s.loggingIn = true

	ctx, epoch, backend := s.ctx, s.epoch, s.backend
	return func() LoginResult {
		res, err := backend.Login(ctx, username, password)
		return LoginResult{epoch: epoch, username: username, Result: res, Err: err}
	}, nil
}

// ApplyLogin establishes the session on success.
func (s *Shell) ApplyLogin(r LoginResult) {
	if r.epoch != s.epoch {
		return
	}
	s.loggingIn = false

	switch {
	case api.IsCanceled(r.Err):
		return
	case r.Err != nil:
		s.loginError = api.Message(r.Err, MsgServerError)
		logging.Wizard("login error: %v", r.Err)
	case !r.Result.Success:
		s.loginError = MsgInvalidLogin
		logging.Wizard("login rejected for %s", r.username)
	default:
		user := r.Result.User
		if user == "" {
			user = r.username
		}
		s.session = session.Session{Authenticated: true, CurrentUser: user, Token: r.Result.Token}
		if s.sessions != nil {
			s.sessions.Save(s.session)
		}
		s.loginError = ""
		s.step = wizard.StepClientProperty
		logging.Wizard("login ok for %s", user)
	}
}

// ParcelResult is the outcome of a parcel lookup task.
type ParcelResult struct {
	ticket   wizard.Ticket
	ParcelID string
	Err      error
}

// StartFetchParcel looks up the parcel for the form's address and county,
// replacing any lookup still in flight.
func (s *Shell) StartFetchParcel() (func() ParcelResult, error) {
	address, county := s.form.Address, s.form.County
	if address == "" || county == "" {
		s.setStatus(StatusError, MsgNeedAddress)
		return nil, ErrInvalid
	}

	ticket := s.parcelSlot.Begin(s.ctx)
	s.setStatus(StatusInfo, MsgFetchingParcel)
	logging.Wizard("fetch parcel for %q in %q", address, county)

	backend := s.backend
	return func() ParcelResult {
		id, err := backend.FetchParcel(ticket.Context(), address, county)
		return ParcelResult{ticket: ticket, ParcelID: id, Err: err}
	}, nil
}

// ApplyFetchParcel stores the parcel id unless a newer lookup or a logout
// superseded this one.
func (s *Shell) ApplyFetchParcel(r ParcelResult) {
	if !s.parcelSlot.Finish(r.ticket) {
		logging.Get(logging.CategoryWizard).Debug("stale parcel result dropped")
		return
	}
	if api.IsCanceled(r.Err) {
		return
	}
	if r.Err != nil {
		s.setStatus(StatusError, api.Message(r.Err, MsgParcelFailed))
		return
	}
	s.form.Parcel = r.ParcelID
	s.setStatus(StatusSuccess, MsgParcelFetched)
}

// GenerateResult is the outcome of a letter generation task.
type GenerateResult struct {
	ticket   wizard.Ticket
	request  api.ReportRequest
	Artifact *letter.Artifact
	Err      error
}

// StartGenerate asks the backend for the letter, replacing any generation
// still in flight.
func (s *Shell) StartGenerate() (func() GenerateResult, error) {
	s.emailState = ""
	s.setStatus(StatusInfo, "")

	f := s.form
	if !f.Step1Valid() || !f.Step2Valid() {
		s.setStatus(StatusError, MsgNeedSteps12)
		return nil, ErrInvalid
	}
	if !f.Step3Valid() {
		s.setStatus(StatusError, MsgNeedStep3)
		return nil, ErrInvalid
	}

	req := api.ReportRequest{
		Name:                   f.Name,
		Address:                f.Address,
		PropertyUnderAppraisal: f.PropertyUnderAppraisal,
		ParcelID:               f.Parcel,
		Fee:                    f.Fee,
		DueSigning:             f.DueSigning,
		DueCompletion:          f.DueCompletion,
		ReportDate:             f.ReportDate,
	}

	ticket := s.generateSlot.Begin(s.ctx)
	s.setStatus(StatusInfo, MsgGenerating)
	logging.Wizard("generate letter for %q", req.Name)

	backend := s.backend
	return func() GenerateResult {
		art, err := backend.GenerateReport(ticket.Context(), req)
		return GenerateResult{ticket: ticket, request: req, Artifact: art, Err: err}
	}, nil
}

// ApplyGenerate saves the letter, records it and moves to step 4. A result
// from a superseded or logged-out generation is dropped without touching disk.
func (s *Shell) ApplyGenerate(r GenerateResult) {
	if !s.generateSlot.Finish(r.ticket) {
		logging.Get(logging.CategoryWizard).Debug("stale report result dropped")
		return
	}
	if api.IsCanceled(r.Err) {
		return
	}
	if r.Err != nil {
		s.setStatus(StatusError, api.Message(r.Err, MsgGenerateFailed))
		return
	}
	if r.Artifact == nil {
		s.setStatus(StatusError, MsgGenerateFailed)
		return
	}

	path, err := letter.Save(s.downloadDir, r.Artifact)
	if err != nil {
		logging.Get(logging.CategoryWizard).Error("save letter: %v", err)
		s.setStatus(StatusError, api.Message(err, MsgGenerateFailed))
		return
	}

	s.form.GeneratedFile = r.Artifact.FileName
	s.form.SavedPath = path

	if s.history != nil {
		_, err := s.history.Record(s.ctx, store.Letter{
			FileName:    r.Artifact.FileName,
			ClientName:  r.request.Name,
			Address:     r.request.Address,
			ParcelID:    r.request.ParcelID,
			Fee:         r.request.Fee,
			SavedPath:   path,
			GeneratedBy: s.session.CurrentUser,
			GeneratedAt: s.now(),
		})
		if err != nil {
			logging.Get(logging.CategoryHistory).Warn("record letter: %v", err)
		}
	}

	s.setStatus(StatusSuccess, MsgGenerated)
	s.step = wizard.StepEmail
	logging.Wizard("letter saved to %s", path)
}

// EmailResult is the outcome of a send task.
type EmailResult struct {
	epoch   uint64
	request api.EmailRequest
	Result  api.EmailResult
	Err     error
}

// StartSendEmail sends the generated letter to the customer. Only one send
// runs at a time.
func (s *Shell) StartSendEmail() (func() EmailResult, error) {
	if s.sending {
		return nil, ErrBusy
	}
	s.setStatus(StatusInfo, "")

	f := s.form
	if f.CustomerEmail == "" {
		s.emailState = ""
		s.setStatus(StatusError, MsgNeedEmail)
		return nil, ErrInvalid
	}
	if f.GeneratedFile == "" {
		s.emailState = ""
		s.setStatus(StatusError, MsgNeedLetter)
		return nil, ErrInvalid
	}

	req := api.EmailRequest{
		PDFPath:       f.GeneratedFile,
		CustomerEmail: f.CustomerEmail,
		ClientName:    f.Name,
		Address:       f.Address,
	}
	s.sending = true
	s.emailState = MsgSending

	ctx, epoch, backend := s.ctx, s.epoch, s.backend
	return func() EmailResult {
		res, err := backend.SendEmail(ctx, req)
		return EmailResult{epoch: epoch, request: req, Result: res, Err: err}
	}, nil
}

// ApplySendEmail reports the send outcome on the email status line.
func (s *Shell) ApplySendEmail(r EmailResult) {
	if r.epoch != s.epoch {
		return
	}
	s.sending = false

	if api.IsCanceled(r.Err) {
		s.emailState = ""
		return
	}
	if r.Err != nil {
		s.emailState = MsgEmailFailed
		s.setStatus(StatusError, api.Message(r.Err, MsgEmailFailedState))
		return
	}

	s.emailState = MsgEmailSent
	msg := MsgEmailSentStatus
	if w := strings.TrimSpace(r.Result.Warning); w != "" {
		msg += " " + w
	}
	s.setStatus(StatusSuccess, msg)

	if s.history != nil {
		if _, err := s.history.MarkEmailed(s.ctx, r.request.PDFPath, r.request.CustomerEmail, s.now()); err != nil {
			logging.Get(logging.CategoryHistory).Warn("mark emailed: %v", err)
		}
	}
}
