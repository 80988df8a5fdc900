package viz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PranavZagade/Lumora/pkg/models"
)

func generateFor(t *testing.T, result models.ShapedResult) *models.ChartSpec {
	t.Helper()
	metadata := BuildMetadata(result)
	eligibility := CheckEligibility(result, metadata)
	require.True(t, eligibility.Eligible, eligibility.Reason)
	return GenerateSpec(result, metadata, eligibility)
}

func TestGenerateSpec_IneligibleReturnsNil(t *testing.T) {
	scalar := &models.ScalarResult{Value: 42.0}
	metadata := BuildMetadata(scalar)
	eligibility := CheckEligibility(scalar, metadata)

	assert.Nil(t, GenerateSpec(scalar, metadata, eligibility))
}

func TestGenerateSpec_TimeSeriesIsLine(t *testing.T) {
	result := &models.TimeSeriesResult{
		Data: []models.TimePoint{
			{Time: "2019", Value: 1},
			{Time: "2020", Value: 2},
			{Time: "2021", Value: 3},
		},
		TimeColumn:   "release_year",
		MetricColumn: "count",
	}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartLine, spec.ChartType)
	assert.Equal(t, "time", spec.XAxis.Field)
	assert.Equal(t, models.AxisTime, spec.XAxis.Type)
	assert.Equal(t, "value", spec.YAxis.Field)
	assert.Equal(t, "Count by Release Year", spec.Title)
}

func TestGenerateSpec_RankingIsHorizontalBar(t *testing.T) {
	result := rankingOfSize(5)

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartHorizontalBar, spec.ChartType)
	// Horizontal layout puts the metric on the x axis.
	assert.Equal(t, "value", spec.XAxis.Field)
	assert.Equal(t, "group", spec.YAxis.Field)
	assert.Equal(t, "Top Genres by Count", spec.Title)
}

func TestGenerateSpec_SmallBreakdownIsVerticalBar(t *testing.T) {
	result := &models.BreakdownResult{
		Data: []models.GroupValue{
			{Group: "Drama", Value: 7.5},
			{Group: "Comedy", Value: 6.8},
			{Group: "Action", Value: 7.0},
		},
		GroupColumn:  "genre",
		MetricColumn: "avg_rating",
	}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartBar, spec.ChartType)
	assert.Equal(t, "Avg Rating by Genre", spec.Title)
}

func TestGenerateSpec_ManyItemBreakdownGoesHorizontal(t *testing.T) {
	data := make([]models.GroupValue, 15)
	for i := range data {
		data[i] = models.GroupValue{Group: fmt.Sprintf("g%d", i), Value: float64(i)}
	}
	result := &models.BreakdownResult{Data: data, GroupColumn: "genre", MetricColumn: "count"}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartHorizontalBar, spec.ChartType)
}

func TestGenerateSpec_LongLabelsGoHorizontal(t *testing.T) {
	result := &models.BreakdownResult{
		Data: []models.GroupValue{
			{Group: "a genre name well past fifteen characters", Value: 3},
			{Group: "short", Value: 2},
		},
		GroupColumn:  "genre",
		MetricColumn: "count",
	}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartHorizontalBar, spec.ChartType)
	assert.True(t, spec.UIHints.TruncateLabels)
}

func TestGenerateSpec_DataIsPassThrough(t *testing.T) {
	result := rankingOfSize(8)

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	require.Len(t, spec.Data, 8)
	for i, row := range spec.Data {
		assert.Equal(t, result.Data[i].Group, row["group"])
		assert.Equal(t, result.Data[i].Value, row["value"])
		assert.Equal(t, result.Data[i].Rank, row["rank"])
	}
}

func TestGenerateSpec_TickIntervalThinsCrowdedAxes(t *testing.T) {
	data := make([]models.TimePoint, 30)
	for i := range data {
		data[i] = models.TimePoint{Time: fmt.Sprintf("2020-%02d", i+1), Value: float64(i)}
	}
	result := &models.TimeSeriesResult{Data: data, TimeColumn: "month", MetricColumn: "count"}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	assert.Equal(t, 3, spec.UIHints.TickInterval) // ceil(30/12)
	assert.Equal(t, MaxXTicks, spec.UIHints.MaxTicks)
}

func TestGenerateSpec_RotationOnlyForVerticalLayouts(t *testing.T) {
	// 10 items on a vertical bar get rotated labels.
	data := make([]models.GroupValue, 10)
	for i := range data {
		data[i] = models.GroupValue{Group: fmt.Sprintf("g%d", i), Value: float64(i)}
	}
	vertical := &models.BreakdownResult{Data: data, GroupColumn: "genre", MetricColumn: "count"}
	spec := generateFor(t, vertical)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartBar, spec.ChartType)
	assert.Equal(t, -45, spec.UIHints.LabelRotation)

	// The same count on a horizontal bar needs no rotation.
	ranking := rankingOfSize(10)
	spec = generateFor(t, ranking)
	require.NotNil(t, spec)
	assert.Equal(t, models.ChartHorizontalBar, spec.ChartType)
	assert.Equal(t, 0, spec.UIHints.LabelRotation)
}

func TestGenerateSpec_TableBreakdownBindsOriginalColumns(t *testing.T) {
	result := &models.TableResult{
		Data: []models.Row{
			{"genre": "Drama", "avg_rating": 7.5},
			{"genre": "Comedy", "avg_rating": 6.8},
			{"genre": "Action", "avg_rating": 7.0},
		},
		Columns: []string{"genre", "avg_rating"},
	}

	spec := generateFor(t, result)
	require.NotNil(t, spec)
	fields := []string{spec.XAxis.Field, spec.YAxis.Field}
	assert.Contains(t, fields, "genre")
	assert.Contains(t, fields, "avg_rating")
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Release Year", humanize("release_year"))
	assert.Equal(t, "Count", humanize("count"))
	assert.Equal(t, "Ärzte Anzahl", humanize("ärzte_anzahl"))
	assert.Equal(t, "", humanize(""))
}
