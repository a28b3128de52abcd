package leads

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// createdAtLayout is ISO 8601 UTC with millisecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// CSVHeader is the column order of exported leads.
var CSVHeader = []string{
	"email", "consent", "country", "city", "lifestyle",
	"stayLength", "housingType", "travelerType", "workStyle",
	"totalCost", "breakdown", "createdAt",
}

// WriteCSV writes list in the given order with a header row. The breakdown
// column holds the category amounts as a JSON object.
func WriteCSV(w io.Writer, list []Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, lead := range list {
		breakdown, err := json.Marshal(lead.Breakdown)
		if err != nil {
			return fmt.Errorf("encoding breakdown of lead %s: %w", lead.ID, err)
		}
		record := []string{
			lead.Email,
			strconv.FormatBool(lead.Consent),
			lead.Destination,
			lead.City,
			string(lead.Lifestyle),
			strconv.Itoa(lead.StayLength),
			string(lead.Housing),
			string(lead.Traveler),
			string(lead.WorkStyle),
			strconv.FormatInt(lead.TotalCost, 10),
			string(breakdown),
			lead.CreatedAt.UTC().Format(createdAtLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing lead %s: %w", lead.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
