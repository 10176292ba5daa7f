package ui

import (
	"thgletter/internal/wizard"

	"github.com/charmbracelet/bubbles/textinput"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindSelect
	kindButton
)

type fieldID int

const (
	fieldName fieldID = iota
	fieldEmail
	fieldAddress
	fieldState
	fieldCounty
	fieldProperty
	fieldParcel
	fieldFetch
	fieldFee
	fieldDueSigning
	fieldDueCompletion
	fieldReportDate
	fieldGenerate
	fieldSendTo
	fieldSend
)

type field struct {
	id          fieldID
	kind        fieldKind
	label       string
	placeholder string
}

// stepFields lists each step's focusable fields in tab order.
var stepFields = map[wizard.Step][]field{
	wizard.StepClientProperty: {
		{id: fieldName, kind: kindText, label: "Client name", placeholder: "Full name"},
		{id: fieldEmail, kind: kindText, label: "Customer email", placeholder: "name@example.com"},
		{id: fieldAddress, kind: kindText, label: "Property address", placeholder: "Street, City, State"},
		{id: fieldState, kind: kindSelect, label: "State"},
		{id: fieldCounty, kind: kindSelect, label: "County"},
		{id: fieldProperty, kind: kindText, label: "Property under appraisal", placeholder: "e.g. Single family residence"},
	},
	wizard.StepParcel: {
		{id: fieldParcel, kind: kindText, label: "Parcel ID", placeholder: "Fetched or typed"},
		{id: fieldFetch, kind: kindButton, label: "Fetch parcel"},
	},
	wizard.StepAgreement: {
		{id: fieldFee, kind: kindText, label: "Appraisal fee ($)", placeholder: "500"},
		{id: fieldDueSigning, kind: kindText, label: "Due at signing (%)"},
		{id: fieldDueCompletion, kind: kindText, label: "Due at completion (%)"},
		{id: fieldReportDate, kind: kindText, label: "Report date", placeholder: "YYYY-MM-DD"},
		{id: fieldGenerate, kind: kindButton, label: "Generate letter"},
	},
	wizard.StepEmail: {
		{id: fieldSendTo, kind: kindText, label: "Customer email", placeholder: "name@example.com"},
		{id: fieldSend, kind: kindButton, label: "Send email"},
	},
}

func newInputs(s Styles) map[fieldID]*textinput.Model {
	inputs := make(map[fieldID]*textinput.Model)
	for _, fields := range stepFields {
		for _, f := range fields {
			if f.kind != kindText {
				continue
			}
			ti := textinput.New()
			ti.Placeholder = f.placeholder
			ti.Prompt = "› "
			ti.CharLimit = 256
			ti.Width = 48
			ti.PromptStyle = s.Prompt
			ti.TextStyle = s.Body
			inputs[f.id] = &ti
		}
	}
	return inputs
}

func formValue(f *wizard.Form, id fieldID) string {
	switch id {
	case fieldName:
		return f.Name
	case fieldEmail, fieldSendTo:
		return f.CustomerEmail
	case fieldAddress:
		return f.Address
	case fieldState:
		return f.StateCode
	case fieldCounty:
		return f.County
	case fieldProperty:
		return f.PropertyUnderAppraisal
	case fieldParcel:
		return f.Parcel
	case fieldFee:
		return f.Fee
	case fieldDueSigning:
		return f.DueSigning
	case fieldDueCompletion:
		return f.DueCompletion
	case fieldReportDate:
		return f.ReportDate
	}
	return ""
}

func setFormValue(f *wizard.Form, id fieldID, v string) {
	switch id {
	case fieldName:
		f.Name = v
	case fieldEmail, fieldSendTo:
		f.CustomerEmail = v
	case fieldAddress:
		f.Address = v
	case fieldProperty:
		f.PropertyUnderAppraisal = v
	case fieldParcel:
		f.Parcel = v
	case fieldFee:
		f.Fee = v
	case fieldDueSigning:
		f.SetDueSigning(v)
	case fieldDueCompletion:
		f.SetDueCompletion(v)
	case fieldReportDate:
		f.ReportDate = v
	}
}

// cycle returns the option delta steps away from current, wrapping around.
// An unknown current value starts from the first option.
func cycle(options []string, current string, delta int) string {
	if len(options) == 0 {
		return ""
	}
	idx := -1
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}

func stateCodes() []string {
	codes := make([]string, len(wizard.States))
	for i, s := range wizard.States {
		codes[i] = s.Code
	}
	return codes
}
