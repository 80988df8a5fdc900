package viz

import (
	"fmt"
	"reflect"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// MaxRenderableRows is the final hard cap on chart data, independent
// of the earlier eligibility checks.
const MaxRenderableRows = 365

var allowedChartTypes = map[models.ChartType]bool{
	models.ChartLine:          true,
	models.ChartArea:          true,
	models.ChartBar:           true,
	models.ChartHorizontalBar: true,
	models.ChartDonut:         true,
	models.ChartHistogram:     true,
}

// ChartValidationOutcome reports whether a generated spec exactly
// reflects the executed result.
type ChartValidationOutcome struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func chartInvalid(format string, args ...any) ChartValidationOutcome {
	return ChartValidationOutcome{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// ValidateSpec is the closing integrity check before a chart spec may
// leave the system: the spec must reference resolvable fields, carry a
// whitelisted chart type, and hold exactly the data the query produced.
func ValidateSpec(spec *models.ChartSpec, result models.ShapedResult) ChartValidationOutcome {
	var warnings []string

	if spec == nil {
		return chartInvalid("chart spec is nil")
	}

	if !allowedChartTypes[spec.ChartType] {
		return chartInvalid("invalid chart type: %s", spec.ChartType)
	}

	if len(spec.Data) == 0 {
		return chartInvalid("chart spec has no data")
	}
	if len(spec.Data) > MaxRenderableRows {
		return chartInvalid("too many rows (%d) for chart rendering", len(spec.Data))
	}

	first := spec.Data[0]
	if spec.XAxis.Field != "" {
		if _, ok := first[spec.XAxis.Field]; !ok {
			return chartInvalid("x-axis field %q not found in data", spec.XAxis.Field)
		}
	}
	if spec.YAxis.Field != "" {
		if _, ok := first[spec.YAxis.Field]; !ok {
			return chartInvalid("y-axis field %q not found in data", spec.YAxis.Field)
		}
	}

	if spec.YAxis.Type == models.AxisNumeric && spec.YAxis.Field != "" {
		if _, ok := asFloat(first[spec.YAxis.Field]); !ok {
			warnings = append(warnings, fmt.Sprintf(
				"y-axis expects numeric but field %q is not", spec.YAxis.Field))
		}
	}

	original := result.Rows()
	if len(spec.Data) != len(original) {
		return chartInvalid("chart data row count does not match the executed result")
	}

	// Spot-check the first record for pass-through integrity: any
	// shared field whose value differs means something transformed the
	// data after execution.
	origFirst := original[0]
	for field, specValue := range first {
		origValue, ok := origFirst[field]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(specValue, origValue) {
			return chartInvalid("data mismatch detected for field %q", field)
		}
	}

	if spec.UIHints == (models.UIHints{}) {
		warnings = append(warnings, "chart spec missing UI hints")
	} else if spec.UIHints.MaxTicks < 2 || spec.UIHints.MaxTicks > 20 {
		warnings = append(warnings, fmt.Sprintf("unusual max_ticks value: %d", spec.UIHints.MaxTicks))
	}

	return ChartValidationOutcome{Valid: true, Warnings: warnings}
}
