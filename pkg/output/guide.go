package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var checklist = []string{
	"Confirm visa or residence requirements for your stay length",
	"Arrange health insurance that covers you from day one",
	"Book the first weeks of housing before arrival",
	"Set up a local SIM or eSIM and a low-fee bank card",
	"Keep a buffer of at least one extra month of costs",
}

// RenderGuide writes the plain-text relocation guide delivered when a lead is
// captured.
func RenderGuide(w io.Writer, e Estimate) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	title := "Relocation Plan: " + placeName(e)
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)) + "\n\n")

	_, _ = p.Fprintf(&b, "Lifestyle:     %s\n", e.Request.Lifestyle)
	_, _ = p.Fprintf(&b, "Stay length:   %d months\n", e.Request.StayLength)
	_, _ = p.Fprintf(&b, "Housing:       %s\n", e.Request.Housing)
	_, _ = p.Fprintf(&b, "Travelers:     %s\n", e.Request.Traveler)
	_, _ = p.Fprintf(&b, "Work style:    %s\n", e.Request.WorkStyle)
	_, _ = p.Fprintf(&b, "Confidence:    %s\n\n", e.Result.Confidence)

	b.WriteString("Monthly breakdown\n")
	b.WriteString("-----------------\n")
	for _, s := range e.Result.Shares() {
		_, _ = p.Fprintf(&b, "%-18s $%8d  %3d%%\n", s.Label, s.Amount, s.Percent)
	}
	_, _ = p.Fprintf(&b, "%-18s $%8d\n\n", "Total", e.Result.Total)

	months := int64(e.Request.StayLength)
	_, _ = p.Fprintf(&b, "Estimated cost for the whole stay: $%d\n", e.Result.Total*months)
	if e.Request.StayLength <= constants.ShortStayMaxMonths {
		b.WriteString("Rent includes a short-stay premium; stays longer than ")
		_, _ = p.Fprintf(&b, "%d months usually rent cheaper.\n", constants.ShortStayMaxMonths)
	}
	if e.Request.Traveler == estimator.Couple {
		b.WriteString("Food, fun and transport are scaled for two people.\n")
	}

	b.WriteString("\nBefore you go\n")
	b.WriteString("-------------\n")
	for i, item := range checklist {
		_, _ = p.Fprintf(&b, "%d. %s\n", i+1, item)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing guide: %w", err)
	}
	return nil
}

// Guide returns RenderGuide's output as a string.
func Guide(e Estimate) string {
	var b strings.Builder
	_ = RenderGuide(&b, e)
	return b.String()
}
