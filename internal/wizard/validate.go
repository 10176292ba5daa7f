package wizard

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrStepInvalid is returned when moving forward from a step whose fields do
// not validate.
var ErrStepInvalid = errors.New("current step is incomplete")

// Step 3 hints.
const (
	HintNumericPercent = "Enter numeric percentages."
	HintPercentSum     = "Signing + Completion must equal 100%."
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// toNumber reads s the way the browser form's Number() does: surrounding
// space is ignored, blank input is 0, and 0x/0o/0b integers are accepted.
// Anything else that is not a finite decimal is not a number.
func toNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN(), false
			}
			return float64(v), true
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

// Step1Valid: name, address, property, state and county are all set.
func (f *Form) Step1Valid() bool {
	return f.Name != "" && f.Address != "" && f.PropertyUnderAppraisal != "" &&
		f.StateCode != "" && f.County != ""
}

// Step2Valid: a parcel id is present.
func (f *Form) Step2Valid() bool {
	return f.Parcel != ""
}

// Step3Valid: a parcel is present, the fee is a non-blank positive number and
// both percentages are non-negative numbers summing to exactly 100. A blank
// percentage counts as 0.
func (f *Form) Step3Valid() bool {
	if f.Parcel == "" {
		return false
	}
	if f.Fee == "" {
		return false
	}
	fee, ok := toNumber(f.Fee)
	if !ok || fee <= 0 {
		return false
	}
	signing, ok1 := toNumber(f.DueSigning)
	completion, ok2 := toNumber(f.DueCompletion)
	if !ok1 || !ok2 || signing < 0 || completion < 0 {
		return false
	}
	return signing+completion == 100
}

// Step4Valid: there is a recipient and a generated letter to send.
func (f *Form) Step4Valid() bool {
	return f.CustomerEmail != "" && f.GeneratedFile != ""
}

// StepValid reports whether step s validates.
func (f *Form) StepValid(s Step) bool {
	switch s {
	case StepClientProperty:
		return f.Step1Valid()
	case StepParcel:
		return f.Step2Valid()
	case StepAgreement:
		return f.Step3Valid()
	case StepEmail:
		return f.Step4Valid()
	}
	return false
}

// Step3Hint explains what blocks the percentage split, or "" when it is fine.
func (f *Form) Step3Hint() string {
	signing, ok1 := toNumber(f.DueSigning)
	completion, ok2 := toNumber(f.DueCompletion)
	switch {
	case !ok1 || !ok2:
		return HintNumericPercent
	case signing+completion != 100:
		return HintPercentSum
	}
	return ""
}

// Advance moves forward from s when s validates.
func (f *Form) Advance(s Step) (Step, error) {
	if !f.StepValid(s) {
		return s, ErrStepInvalid
	}
	return s.Next(), nil
}
