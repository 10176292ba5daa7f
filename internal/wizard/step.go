// Package wizard holds the engagement-letter form and its four-step flow.
//
// Nothing here does I/O. The shell drives remote actions and feeds their
// results back into the form.
package wizard

import "fmt"

// Step is a wizard position, 1 through 4.
type Step int

const (
	StepClientProperty Step = iota + 1
	StepParcel
	StepAgreement
	StepEmail
)

// StepCount is the number of wizard steps.
const StepCount = 4

var stepTitles = map[Step]string{
	StepClientProperty: "Client & Property Information",
	StepParcel:         "Parcel Information",
	StepAgreement:      "Agreement Details",
	StepEmail:          "Send Agreement",
}

// Title returns the heading shown above the step.
func (s Step) Title() string {
	if t, ok := stepTitles[s]; ok {
		return t
	}
	return ""
}

func (s Step) String() string {
	return fmt.Sprintf("Step %d of %d", int(s), StepCount)
}

// Clamp forces s into [1, StepCount].
func (s Step) Clamp() Step {
	switch {
	case s < StepClientProperty:
		return StepClientProperty
	case s > StepEmail:
		return StepEmail
	}
	return s
}

// Next returns the following step, staying on the last one.
func (s Step) Next() Step {
	return (s + 1).Clamp()
}

// Back returns the previous step, staying on the first one.
func (s Step) Back() Step {
	return (s - 1).Clamp()
}

// Progress is the fraction of the wizard reached at s, for the progress bar.
func (s Step) Progress() float64 {
	return float64(s.Clamp()) / StepCount
}
