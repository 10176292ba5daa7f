package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func completeForm() *Form {
	f := NewForm(fixedNow)
	f.Name = "Jane Doe"
	f.Address = "100 Main St, Memphis, TN"
	f.PropertyUnderAppraisal = "Single family residence"
	f.Parcel = "044 012 00021"
	f.Fee = "500"
	return f
}

func TestNewForm_Defaults(t *testing.T) {
	f := NewForm(fixedNow)
	assert.Equal(t, "TN", f.StateCode)
	assert.Equal(t, "Shelby County, TN", f.County)
	assert.Equal(t, "50", f.DueSigning)
	assert.Equal(t, "50", f.DueCompletion)
	assert.Equal(t, "2025-03-14", f.ReportDate)
	assert.Empty(t, f.GeneratedFile)
}

func TestStep_Navigation(t *testing.T) {
	assert.Equal(t, StepParcel, StepClientProperty.Next())
	assert.Equal(t, StepEmail, StepEmail.Next(), "next clamps at 4")
	assert.Equal(t, StepClientProperty, StepClientProperty.Back(), "back clamps at 1")
	assert.Equal(t, StepAgreement, StepEmail.Back())
	assert.Equal(t, StepClientProperty, Step(0).Clamp())
	assert.Equal(t, StepEmail, Step(9).Clamp())
	assert.Equal(t, "Agreement Details", StepAgreement.Title())
	assert.Equal(t, "Step 2 of 4", StepParcel.String())
	assert.InDelta(t, 0.75, StepAgreement.Progress(), 1e-9)
}

func TestClampPercent(t *testing.T) {
	tests := map[string]string{
		"50":     "50",
		"50%":    "50",
		"-10":    "10",
		"12.5":   "12.5",
		"1e2":    "12",
		" 3 0 ":  "30",
		"abc":    "",
		"1.2.3":  "1.2.3",
		"٣٠":     "",
		"100.00": "100.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, ClampPercent(in), "ClampPercent(%q)", in)
	}

	f := NewForm(fixedNow)
	f.SetDueSigning("60%")
	f.SetDueCompletion("4x0")
	assert.Equal(t, "60", f.DueSigning)
	assert.Equal(t, "40", f.DueCompletion)
}

func TestStep3Validity_Scenarios(t *testing.T) {
	f := completeForm()
	f.DueSigning, f.DueCompletion = "50", "50"
	assert.True(t, f.Step3Valid())

	f.DueSigning, f.DueCompletion = "60", "50"
	assert.False(t, f.Step3Valid(), "sum 110")
}

func TestStep3Validity_PercentInputs(t *testing.T) {
	tests := []struct {
		signing, completion string
		want                bool
	}{
		{"50", "50", true},
		{"", "100", true},
		{"100", "", true},
		{"", "", false},
		{" 50 ", "50", true},
		{"33.5", "66.5", true},
		{"1e2", "0", true},
		{"0x10", "84", true},
		{".5", "99.5", true},
		{"50.", "50", true},
		{".", "100", false},
		{"1.2.3", "50", false},
		{"Inf", "50", false},
		{"Infinity", "0", false},
		{"NaN", "100", false},
		{"x", "100", false},
		{"-5", "105", false},
		{"60", "50", false},
		{"0x", "100", false},
		{"1_0", "90", false},
	}
	for _, tt := range tests {
		f := completeForm()
		f.DueSigning, f.DueCompletion = tt.signing, tt.completion
		assert.Equal(t, tt.want, f.Step3Valid(), "signing=%q completion=%q", tt.signing, tt.completion)
	}
}

func TestStep3Validity_FeeInputs(t *testing.T) {
	tests := []struct {
		fee  string
		want bool
	}{
		{"500", true},
		{"0.01", true},
		{" 450 ", true},
		{"0x10", true},
		{"", false},
		{" ", false},
		{"0", false},
		{"-1", false},
		{"abc", false},
		{".", false},
		{"Inf", false},
	}
	for _, tt := range tests {
		f := completeForm()
		f.Fee = tt.fee
		assert.Equal(t, tt.want, f.Step3Valid(), "fee=%q", tt.fee)
	}
}

func TestStep3Validity_RequiresParcel(t *testing.T) {
	f := completeForm()
	f.Parcel = ""
	assert.False(t, f.Step3Valid())
}

func TestStep3Hint(t *testing.T) {
	f := completeForm()
	assert.Empty(t, f.Step3Hint())

	f.DueSigning, f.DueCompletion = "", "100"
	assert.Empty(t, f.Step3Hint(), "a blank percentage counts as 0")

	f.DueSigning, f.DueCompletion = "", "50"
	assert.Equal(t, HintPercentSum, f.Step3Hint())

	f.DueCompletion = "50"
	f.DueSigning = "1.2.3"
	assert.Equal(t, HintNumericPercent, f.Step3Hint())

	f.DueSigning = "70"
	assert.Equal(t, HintPercentSum, f.Step3Hint())
}

func TestStepValidity(t *testing.T) {
	f := NewForm(fixedNow)
	assert.False(t, f.Step1Valid())
	assert.False(t, f.Step2Valid())
	assert.False(t, f.Step4Valid())

	f = completeForm()
	assert.True(t, f.StepValid(StepClientProperty))
	assert.True(t, f.StepValid(StepParcel))
	assert.True(t, f.StepValid(StepAgreement))
	assert.False(t, f.StepValid(StepEmail))

	f.CustomerEmail = "jane@example.com"
	assert.False(t, f.Step4Valid(), "needs a generated letter")
	f.GeneratedFile = "Engagement_Letter_Jane_Doe.pdf"
	assert.True(t, f.Step4Valid())

	f.County = ""
	assert.False(t, f.Step1Valid())
}

func TestAdvance(t *testing.T) {
	f := NewForm(fixedNow)
	s, err := f.Advance(StepClientProperty)
	assert.ErrorIs(t, err, ErrStepInvalid)
	assert.Equal(t, StepClientProperty, s)

	f = completeForm()
	s, err = f.Advance(StepClientProperty)
	require.NoError(t, err)
	assert.Equal(t, StepParcel, s)
}

func TestSetState_ResetsCounty(t *testing.T) {
	f := NewForm(fixedNow)

	f.SetState("GA")
	assert.Equal(t, "Catoosa County, GA", f.County, "TN county is not in the GA list")

	f.SetCounty("Walker County, GA")
	f.SetState("GA")
	assert.Equal(t, "Walker County, GA", f.County, "county kept when still valid")

	f.SetState("VA")
	assert.Equal(t, "Bristill City, VA", f.County)

	f.SetState("ZZ")
	assert.Empty(t, f.County, "unknown state has no counties")
}

func TestCountyCatalogue(t *testing.T) {
	assert.Len(t, Counties("TN"), 95)
	assert.Len(t, Counties("GA"), 6)
	assert.Len(t, Counties("VA"), 6)
	assert.Nil(t, Counties("XX"))
	assert.Contains(t, Counties("TN"), DefaultCounty)
	assert.Equal(t, "Virginia", StateLabel("VA"))
	assert.Equal(t, "XX", StateLabel("XX"))

	list := Counties("GA")
	list[0] = "mutated"
	assert.Equal(t, "Catoosa County, GA", Counties("GA")[0], "Counties returns a copy")
}

func TestSlot_ReplaceCancelsPrevious(t *testing.T) {
	var s Slot
	first := s.Begin(context.Background())
	assert.True(t, s.Current(first))
	assert.True(t, s.Busy())

	second := s.Begin(context.Background())
	assert.False(t, s.Current(first))
	assert.ErrorIs(t, first.Context().Err(), context.Canceled)
	assert.True(t, s.Current(second))

	assert.False(t, s.Finish(first), "stale ticket may not apply")
	assert.True(t, s.Busy(), "stale finish leaves the newer action alone")

	assert.True(t, s.Finish(second))
	assert.False(t, s.Busy())
	assert.False(t, s.Finish(second), "finish is one-shot")
}

func TestSlot_Cancel(t *testing.T) {
	var s Slot
	tk := s.Begin(context.Background())
	s.Cancel()

	assert.False(t, s.Current(tk))
	assert.False(t, s.Finish(tk))
	assert.False(t, s.Busy())
	assert.Error(t, tk.Context().Err())

	s.Cancel() // idle cancel is harmless
}

func TestSlot_ParentCancellation(t *testing.T) {
	var s Slot
	parent, cancel := context.WithCancel(context.Background())
	tk := s.Begin(parent)
	cancel()

	assert.False(t, s.Current(tk))
	assert.False(t, s.Finish(tk), "a canceled action never applies")
	assert.False(t, s.Busy())
}
