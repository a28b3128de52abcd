// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/cost-estimator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatJSON, constants.OutputFormatCSV:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatJSON, constants.OutputFormatCSV, format)
}
