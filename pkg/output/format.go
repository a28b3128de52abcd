// Package output provides utilities for formatting and displaying estimate results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/pkg/format"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorText   = lipgloss.Color("#FFFCF0")
	colorGreen  = lipgloss.Color("#879A39")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen).Padding(0, 1).Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorText)
)

// Estimate pairs a result with the request and display name that produced it.
type Estimate struct {
	Destination string            `json:"destination"`
	Request     estimator.Request `json:"request"`
	Result      estimator.Result  `json:"result"`
}

// PrettyFormat writes a bordered breakdown table.
func PrettyFormat(w io.Writer, e Estimate) error {
	shares := e.Result.Shares()
	rows := make([][]string, 0, len(shares)+1)
	for _, s := range shares {
		rows = append(rows, []string{s.Label, format.Currency(s.Amount), format.Percent(s.Percent)})
	}
	rows = append(rows, []string{"Total", format.Currency(e.Result.Total), ""})
	totalRow := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Category", "Monthly", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == totalRow && col == 1:
				return totalStyle
			case col > 0:
				return amountStyle
			default:
				return cellStyle
			}
		})

	title := fmt.Sprintf("%s, %s, %s, %s, %d months (confidence %s)",
		placeName(e), e.Request.Lifestyle, e.Request.Housing, e.Request.Traveler,
		e.Request.StayLength, e.Result.Confidence)

	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(title), t.String())
	return err
}

// JSONFormat writes the estimate as indented JSON.
func JSONFormat(w io.Writer, e Estimate) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// CsvFormat writes one row per category with whole-dollar amounts.
func CsvFormat(w io.Writer, e Estimate) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"category", "amount", "percent"}}
	for _, s := range e.Result.Shares() {
		records = append(records, []string{string(s.Category), strconv.FormatInt(s.Amount, 10), strconv.FormatInt(s.Percent, 10)})
	}
	records = append(records, []string{"total", strconv.FormatInt(e.Result.Total, 10), ""})
	return cw.WriteAll(records)
}

func placeName(e Estimate) string {
	name := e.Destination
	if name == "" {
		name = e.Request.Destination
	}
	if e.Request.City != "" {
		return e.Request.City + ", " + name
	}
	return name
}
