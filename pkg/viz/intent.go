package viz

import "github.com/PranavZagade/Lumora/pkg/models"

// Chart type selection thresholds.
const (
	MaxItemsForVerticalBar = 12
	MaxLabelLength         = 15
)

// ChartIntent maps a visualization shape to its intent and the chart
// types allowed for it.
type ChartIntent struct {
	Intent        string
	AllowedTypes  []models.ChartType
	PreferredType models.ChartType
	Description   string
}

var intentMap = map[models.VizShape]ChartIntent{
	models.VizTimeSeries: {
		Intent:        "trend",
		AllowedTypes:  []models.ChartType{models.ChartLine, models.ChartArea},
		PreferredType: models.ChartLine,
		Description:   "Show change over time",
	},
	models.VizRanking: {
		Intent:        "ranking",
		AllowedTypes:  []models.ChartType{models.ChartHorizontalBar, models.ChartBar},
		PreferredType: models.ChartHorizontalBar,
		Description:   "Compare items by value (sorted)",
	},
	models.VizBreakdown: {
		Intent:        "composition",
		AllowedTypes:  []models.ChartType{models.ChartBar, models.ChartHorizontalBar, models.ChartDonut},
		PreferredType: models.ChartBar,
		Description:   "Show distribution across categories",
	},
}

// IntentFor returns the chart intent for a visualization shape.
func IntentFor(shape models.VizShape) (ChartIntent, bool) {
	intent, ok := intentMap[shape]
	return intent, ok
}

// SelectChartType picks the chart type for a shape deterministically:
//
//   - time_series: always line
//   - ranking: always horizontal_bar, for label readability
//   - breakdown: horizontal_bar when the item count or label length
//     would crowd a vertical axis, else bar
//
// Donut is deliberately never auto-selected: accuracy over aesthetics.
func SelectChartType(shape models.VizShape, rowCount int, hasLongLabels bool) models.ChartType {
	switch shape {
	case models.VizTimeSeries:
		return models.ChartLine
	case models.VizRanking:
		return models.ChartHorizontalBar
	case models.VizBreakdown:
		if rowCount > MaxItemsForVerticalBar || hasLongLabels {
			return models.ChartHorizontalBar
		}
		return models.ChartBar
	default:
		return models.ChartBar
	}
}
