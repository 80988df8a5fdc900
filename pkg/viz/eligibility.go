package viz

import (
	"fmt"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// Eligibility thresholds. Horizontal bars stay readable up to 30 items;
// line charts can carry up to a year of daily points.
const (
	MinDataPoints     = 2
	MaxRankingItems   = 30
	MaxBreakdownItems = 30
	MaxTimeSeriesRows = 365
	MaxChartRows      = 100
)

// CheckEligibility decides whether a shaped result may be charted at
// all, and if so as which visualization shape family. Deterministic
// rule set, first matching rule wins; never fails.
func CheckEligibility(result models.ShapedResult, metadata models.ResultMetadata) models.EligibilityResult {
	switch result.Type() {
	case models.ResultScalar:
		return ineligible("single value results are displayed as text")
	case models.ResultEmpty:
		return ineligible("no data to visualize")
	}

	rowCount := metadata.RowCount
	if rowCount < MinDataPoints {
		return ineligible(fmt.Sprintf("need at least %d data points for visualization", MinDataPoints))
	}

	maxRows := MaxChartRows
	if result.Type() == models.ResultTimeSeries {
		maxRows = MaxTimeSeriesRows
	}
	if rowCount > maxRows {
		return ineligible(fmt.Sprintf("too many data points (%d) for clear visualization", rowCount))
	}

	if len(metadata.Columns) == 0 {
		return ineligible("no analyzable columns in result")
	}
	if len(metadata.NumericColumns()) == 0 {
		return ineligible("no numeric data to visualize")
	}

	switch result.Type() {
	case models.ResultTimeSeries:
		// A time-like result without a recognizable time column is
		// still a meaningful composition chart.
		if len(metadata.TimeColumns()) == 0 {
			return eligible(models.VizBreakdown)
		}
		return eligible(models.VizTimeSeries)

	case models.ResultRanking:
		if rowCount > MaxRankingItems {
			return ineligible(fmt.Sprintf("too many items (%d) for ranking chart", rowCount))
		}
		return eligible(models.VizRanking)

	case models.ResultBreakdown:
		if rowCount > MaxBreakdownItems {
			return ineligible(fmt.Sprintf("too many categories (%d) for breakdown chart", rowCount))
		}
		return eligible(models.VizBreakdown)

	case models.ResultTable:
		// A two-column table of one categorical/time field and one
		// numeric field is effectively an aggregation; anything else
		// renders as text.
		if len(metadata.Columns) == 2 && rowCount <= MaxBreakdownItems {
			hasLabel := false
			hasMetric := false
			for _, col := range metadata.Columns {
				switch col.Role {
				case models.RoleCategorical, models.RoleTime:
					hasLabel = true
				case models.RoleNumeric:
					hasMetric = true
				}
			}
			if hasLabel && hasMetric {
				return eligible(models.VizBreakdown)
			}
		}
		return ineligible("table results are displayed as text")
	}

	return ineligible(fmt.Sprintf("unsupported result type: %s", result.Type()))
}

func eligible(shape models.VizShape) models.EligibilityResult {
	return models.EligibilityResult{Eligible: true, Shape: shape}
}

func ineligible(reason string) models.EligibilityResult {
	return models.EligibilityResult{Eligible: false, Reason: reason}
}
