package wizard

import (
	"strings"
	"time"

	"thgletter/internal/letter"
)

// Form defaults.
const (
	DefaultState  = "TN"
	DefaultCounty = "Shelby County, TN"
	DefaultDue    = "50"
)

// Form is the wizard's data. Fields are edited directly by the views except
// where a setter enforces an invariant.
type Form struct {
	Name                   string
	CustomerEmail          string
	Address                string
	StateCode              string
	County                 string
	PropertyUnderAppraisal string
	Parcel                 string
	Fee                    string
	DueSigning             string
	DueCompletion          string
	ReportDate             string

	// GeneratedFile is the backend's name for the last generated letter; it is
	// what send_email refers to. SavedPath is where the local copy landed.
	GeneratedFile string
	SavedPath     string
}

// NewForm returns a form with the default state, county, split and date.
func NewForm(now time.Time) *Form {
	return &Form{
		StateCode:     DefaultState,
		County:        DefaultCounty,
		DueSigning:    DefaultDue,
		DueCompletion: DefaultDue,
		ReportDate:    now.Format(letter.DateLayout),
	}
}

// ClampPercent drops every character that is not a digit or '.'.
// Range is enforced by validation, not here.
func ClampPercent(v string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, v)
}

// SetDueSigning stores the signing percentage after ClampPercent.
func (f *Form) SetDueSigning(v string) {
	f.DueSigning = ClampPercent(v)
}

// SetDueCompletion stores the completion percentage after ClampPercent.
func (f *Form) SetDueCompletion(v string) {
	f.DueCompletion = ClampPercent(v)
}

// SetState selects a state and keeps the county consistent with it: a
// county outside the new list becomes the list's first entry, or "" when the
// state has no counties.
func (f *Form) SetState(code string) {
	f.StateCode = code
	f.syncCounty()
}

// SetCounty stores any county value; views only offer the current list.
func (f *Form) SetCounty(county string) {
	f.County = county
}

func (f *Form) syncCounty() {
	list := counties[f.StateCode]
	if len(list) == 0 {
		f.County = ""
		return
	}
	if !HasCounty(f.StateCode, f.County) {
		f.County = list[0]
	}
}

// ClearArtifact forgets the generated letter.
func (f *Form) ClearArtifact() {
	f.GeneratedFile = ""
	f.SavedPath = ""
}

// Terms returns the fields the letter preview shows.
func (f *Form) Terms() letter.Terms {
	return letter.Terms{
		ClientName:    f.Name,
		Address:       f.Address,
		Property:      f.PropertyUnderAppraisal,
		ParcelID:      f.Parcel,
		Fee:           f.Fee,
		DueSigning:    f.DueSigning,
		DueCompletion: f.DueCompletion,
		ReportDate:    f.ReportDate,
	}
}
