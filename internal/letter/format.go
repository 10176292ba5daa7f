package letter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

// FormatCurrency renders "$1,250" for whole amounts and "$1,250.50" otherwise.
// Unparseable input renders as "".
func FormatCurrency(value string) string {
	v, ok := parseFinite(value)
	if !ok {
		return ""
	}
	// Fractional amounts stay below 2^53, inside FormatFloat's int64 range.
	if v == math.Trunc(v) {
		return "$" + humanize.Commaf(v+0)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPercent renders the integer part followed by "%".
func FormatPercent(value string) string {
	v, ok := parseFinite(value)
	if !ok {
		return ""
	}
	return strconv.FormatFloat(math.Trunc(v)+0, 'f', 0, 64) + "%"
}

// FormatDate renders a YYYY-MM-DD date as "January 02, 2006", using now on parse failure.
func FormatDate(value string, now time.Time) string {
	const out = "January 02, 2006"
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return now.Format(out)
	}
	return t.Format(out)
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Terms are the agreement fields shown in the letter.
type Terms struct {
	ClientName    string
	Address       string
	Property      string
	ParcelID      string
	Fee           string
	DueSigning    string
	DueCompletion string
	ReportDate    string
}

// Preview renders the terms as markdown for display before and after generation.
func Preview(t Terms, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("## Engagement Letter\n\n")
	sb.WriteString(fmt.Sprintf("**Date:** %s\n\n", FormatDate(t.ReportDate, now)))

	sb.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) {
		if v == "" {
			v = "—"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", k, escapeCell(v)))
	}
	row("Client", t.ClientName)
	row("Address", t.Address)
	row("Property under appraisal", t.Property)
	row("Parcel ID", t.ParcelID)
	row("Fee", FormatCurrency(t.Fee))
	row("Due at signing", withAmount(t.Fee, t.DueSigning))
	row("Due at completion", withAmount(t.Fee, t.DueCompletion))

	sb.WriteString(fmt.Sprintf("\nFile: `%s`\n", SuggestedFileName(t.ClientName)))
	return sb.String()
}

func withAmount(fee, pct string) string {
	p := FormatPercent(pct)
	if p == "" {
		return ""
	}
	f, okF := parseFinite(fee)
	v, okP := parseFinite(pct)
	if !okF || !okP || f <= 0 {
		return p
	}
	amount := math.Round(f*v) / 100
	return fmt.Sprintf("%s (%s)", p, FormatCurrency(strconv.FormatFloat(amount, 'f', -1, 64)))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
