package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// checkResultInvariants runs the post-execution sanity checks: every
// numeric value must be finite, and any count-derived value must stay
// within [0, totalRows]. A violation is fatal to the request - it
// indicates an engine defect or a shape misclassification, not bad
// input.
func checkResultInvariants(result models.ShapedResult, totalRows int64) error {
	switch r := result.(type) {
	case *models.ScalarResult:
		value, ok := toFloat(r.Value)
		if !ok {
			return nil
		}
		if !isFinite(value) {
			return fmt.Errorf("scalar result is not a finite number")
		}
		if strings.Contains(strings.ToLower(r.Aggregation), "count") {
			if value > float64(totalRows) {
				return fmt.Errorf("count result (%g) exceeds total rows (%d)", value, totalRows)
			}
			if value < 0 {
				return fmt.Errorf("count result (%g) cannot be negative", value)
			}
		}

	case *models.TimeSeriesResult:
		countLike := strings.Contains(strings.ToLower(r.MetricColumn), "count")
		for _, p := range r.Data {
			if err := checkMetricValue(p.Value, countLike, totalRows); err != nil {
				return err
			}
		}

	case *models.RankingResult:
		countLike := strings.Contains(strings.ToLower(r.MetricColumn), "count")
		for _, g := range r.Data {
			if err := checkMetricValue(g.Value, countLike, totalRows); err != nil {
				return err
			}
		}

	case *models.BreakdownResult:
		countLike := strings.Contains(strings.ToLower(r.MetricColumn), "count")
		for _, g := range r.Data {
			if err := checkMetricValue(g.Value, countLike, totalRows); err != nil {
				return err
			}
		}

	case *models.TableResult:
		for _, row := range r.Data {
			for col, v := range row {
				if f, ok := toFloat(v); ok && !isFinite(f) {
					return fmt.Errorf("column %q contains a non-finite number", col)
				}
			}
		}

	case *models.EmptyResult:
		// Nothing to check.
	}

	return nil
}

func checkMetricValue(value float64, countLike bool, totalRows int64) error {
	if !isFinite(value) {
		return fmt.Errorf("result contains a non-finite number")
	}
	if countLike {
		if value > float64(totalRows) {
			return fmt.Errorf("count value (%g) exceeds total rows (%d)", value, totalRows)
		}
		if value < 0 {
			return fmt.Errorf("count value (%g) cannot be negative", value)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
