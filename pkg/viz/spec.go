package viz

import (
	"math"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/PranavZagade/Lumora/pkg/models"
)

// UI safety thresholds for readable axes.
const (
	MaxXTicks              = 12
	LabelRotationThreshold = 8
)

// axisBinding names the data fields a chart binds to.
type axisBinding struct {
	groupField  string // categorical or time field in the data records
	metricField string // numeric field in the data records
	groupLabel  string // source column name for the group axis label
	metricLabel string // source column name for the metric axis label
}

// GenerateSpec deterministically maps an eligible shaped result to a
// complete chart specification. Returns nil when called despite an
// ineligible result or when there is nothing to draw.
//
// The spec's Data is the exact record sequence of the result: no
// aggregation, filtering, reordering, or value transformation happens
// here. That pass-through is what makes the closing validator
// meaningful.
func GenerateSpec(result models.ShapedResult, metadata models.ResultMetadata, eligibility models.EligibilityResult) *models.ChartSpec {
	if !eligibility.Eligible {
		return nil
	}

	rows := result.Rows()
	if len(rows) == 0 {
		return nil
	}

	binding, ok := bindFields(result, metadata)
	if !ok {
		return nil
	}

	hasLongLabels := detectLongLabels(rows, binding.groupField)
	chartType := SelectChartType(eligibility.Shape, metadata.RowCount, hasLongLabels)
	intent, _ := IntentFor(eligibility.Shape)

	xAxis, yAxis := bindAxes(eligibility.Shape, chartType, binding)

	return &models.ChartSpec{
		ChartType: chartType,
		Intent:    intent.Intent,
		Title:     buildTitle(eligibility.Shape, binding),
		XAxis:     xAxis,
		YAxis:     yAxis,
		Data:      rows,
		UIHints:   buildUIHints(metadata.RowCount, chartType, hasLongLabels),
	}
}

// bindFields resolves the group and metric fields of the result's
// records. Shaped variants carry fixed field names; a table result
// charted as a breakdown keeps its original column names, resolved
// through the metadata roles.
func bindFields(result models.ShapedResult, metadata models.ResultMetadata) (axisBinding, bool) {
	switch r := result.(type) {
	case *models.TimeSeriesResult:
		return axisBinding{
			groupField:  "time",
			metricField: "value",
			groupLabel:  r.TimeColumn,
			metricLabel: r.MetricColumn,
		}, true
	case *models.RankingResult:
		return axisBinding{
			groupField:  "group",
			metricField: "value",
			groupLabel:  r.GroupColumn,
			metricLabel: r.MetricColumn,
		}, true
	case *models.BreakdownResult:
		return axisBinding{
			groupField:  "group",
			metricField: "value",
			groupLabel:  r.GroupColumn,
			metricLabel: r.MetricColumn,
		}, true
	case *models.TableResult:
		var binding axisBinding
		for name, col := range metadata.Columns {
			switch col.Role {
			case models.RoleNumeric:
				if binding.metricField == "" {
					binding.metricField = name
					binding.metricLabel = name
				}
			case models.RoleCategorical, models.RoleTime:
				if binding.groupField == "" {
					binding.groupField = name
					binding.groupLabel = name
				}
			}
		}
		return binding, binding.groupField != "" && binding.metricField != ""
	default:
		return axisBinding{}, false
	}
}

// bindAxes assigns axis fields for the chosen chart type. A horizontal
// bar swaps the conventional roles so the metric sits on the numeric
// axis and the group on the categorical one.
func bindAxes(shape models.VizShape, chartType models.ChartType, b axisBinding) (models.AxisSpec, models.AxisSpec) {
	groupAxisType := models.AxisCategorical
	if shape == models.VizTimeSeries {
		groupAxisType = models.AxisTime
	}

	groupAxis := models.AxisSpec{Field: b.groupField, Label: humanize(b.groupLabel), Type: groupAxisType}
	metricAxis := models.AxisSpec{Field: b.metricField, Label: humanize(b.metricLabel), Type: models.AxisNumeric}

	if chartType == models.ChartHorizontalBar {
		return metricAxis, groupAxis
	}
	return groupAxis, metricAxis
}

func buildTitle(shape models.VizShape, b axisBinding) string {
	metric := humanize(b.metricLabel)
	group := humanize(b.groupLabel)
	if metric == "" {
		metric = "Value"
	}
	if group == "" {
		group = "Category"
	}

	if shape == models.VizRanking {
		return "Top " + inflection.Plural(group) + " by " + metric
	}
	return metric + " by " + group
}

func buildUIHints(rowCount int, chartType models.ChartType, hasLongLabels bool) models.UIHints {
	tickInterval := 1
	if rowCount > MaxXTicks {
		tickInterval = int(math.Ceil(float64(rowCount) / float64(MaxXTicks)))
	}

	horizontalLayout := chartType == models.ChartHorizontalBar || chartType == models.ChartDonut
	rotation := 0
	if rowCount > LabelRotationThreshold && !horizontalLayout {
		rotation = -45
	}

	showGrid := false
	switch chartType {
	case models.ChartLine, models.ChartArea, models.ChartBar, models.ChartHorizontalBar:
		showGrid = true
	}

	return models.UIHints{
		MaxTicks:       MaxXTicks,
		TickInterval:   tickInterval,
		LabelRotation:  rotation,
		TruncateLabels: hasLongLabels,
		MaxLabelLength: MaxLabelLength,
		ShowLegend:     chartType == models.ChartDonut,
		ShowGrid:       showGrid,
		Animate:        true,
	}
}

func detectLongLabels(rows []models.Row, labelField string) bool {
	for _, row := range rows {
		if label, ok := row[labelField].(string); ok && len(label) > MaxLabelLength {
			return true
		}
	}
	return false
}

// humanize turns a column name into display text: underscores become
// spaces, words are title-cased.
func humanize(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
