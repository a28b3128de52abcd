package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/iwvelando/cost-estimator/internal/estimator"
)

// PrettyDestinations writes the supported destinations as a bordered table.
func PrettyDestinations(w io.Writer, list []estimator.Destination) error {
	rows := make([][]string, 0, len(list))
	for _, d := range list {
		rows = append(rows, []string{d.Key, d.Name, d.Code, string(d.Confidence)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Key", "Name", "Code", "Confidence").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// JSONDestinations writes the destinations as an indented JSON array.
func JSONDestinations(w io.Writer, list []estimator.Destination) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
