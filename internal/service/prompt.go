package service

import (
	"strings"
	"time"

	"billwise/internal/models"
)

const DefaultLanguage = "English"

// PreviousBill is the earlier bill a comparative prompt contrasts against.
type PreviousBill struct {
	Text   string
	Period string // e.g. "March 2025"
}

// PreviousBillFrom labels a stored report with the month it was created in.
func PreviousBillFrom(report *models.Report) *PreviousBill {
	if report == nil {
		return nil
	}
	return &PreviousBill{
		Text:   report.Bill,
		Period: periodLabel(report.CreatedAt),
	}
}

// The output schema shared by both prompt modes after the first section.
const sharedSections = `2) Recurring Subscriptions:
   - …
3) Cost-Saving Tips:
   - …
4) Category Breakdown:
   • Essential: $XXX (YY%)
   • Sneaky: $XXX (YY%)
   • Optional: $XXX (YY%)
`

// ComposePrompt builds the generation prompt. With a previous bill it asks for
// a month-over-month comparison, otherwise for a standalone analysis. Inputs
// are interpolated verbatim.
func ComposePrompt(billText, language string, previous *PreviousBill) string {
	var b strings.Builder

	b.WriteString("You are a helpful financial assistant. Respond in ")
	b.WriteString(language)
	b.WriteString(".\n")

	if previous != nil {
		b.WriteString("Compare last month's bill (from ")
		b.WriteString(previous.Period)
		b.WriteString(") with this month's.\n\n")
		b.WriteString("Last bill text:\n")
		b.WriteString(previous.Text)
		b.WriteString("\n\nThis bill text:\n")
		b.WriteString(billText)
		b.WriteString("\n\nOutput:\n")
		b.WriteString("1) Comparison Summary:\n   - One sentence comparing totals.\n")
		b.WriteString(sharedSections)
		return b.String()
	}

	b.WriteString("Analyze this bill and output:\n\n")
	b.WriteString("1) Summary:\n   - One-sentence overview.\n")
	b.WriteString(sharedSections)
	b.WriteString("\nBill text:\n")
	b.WriteString(billText)
	b.WriteString("\n")
	return b.String()
}

func periodLabel(t time.Time) string {
	return t.UTC().Format("January 2006")
}
