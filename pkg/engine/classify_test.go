package engine

import (
	"math/big"
	"testing"
	"time"

	duckdb "github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PranavZagade/Lumora/pkg/models"
)

func TestClassify_Empty(t *testing.T) {
	result, err := Classify(RawResult{Columns: []string{"count"}}, "SELECT COUNT(*) FROM data WHERE 1=0")
	require.NoError(t, err)

	empty, ok := result.(*models.EmptyResult)
	require.True(t, ok, "expected EmptyResult, got %T", result)
	assert.Equal(t, models.ResultEmpty, empty.Type())
}

func TestClassify_ScalarAggregations(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantAgg   string
		wantValue float64
	}{
		{"count", "SELECT COUNT(*) as count FROM data", "count", 42},
		{"average", "SELECT AVG(rating) FROM data", "mean", 42},
		{"sum", "SELECT SUM(revenue) FROM data", "sum", 42},
		{"minimum", "SELECT MIN(rating) FROM data", "min", 42},
		{"maximum", "SELECT MAX(rating) FROM data", "max", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawResult{
				Columns: []string{"result"},
				Rows:    []models.Row{{"result": float64(42)}},
			}
			result, err := Classify(raw, tt.query)
			require.NoError(t, err)

			scalar, ok := result.(*models.ScalarResult)
			require.True(t, ok, "expected ScalarResult, got %T", result)
			assert.Equal(t, tt.wantAgg, scalar.Aggregation)
			assert.Equal(t, tt.wantValue, scalar.Value)
		})
	}
}

func TestClassify_CountBeatsOtherTokens(t *testing.T) {
	// COUNT has the highest precedence even when other aggregation
	// tokens appear in the same query.
	raw := RawResult{
		Columns: []string{"n"},
		Rows:    []models.Row{{"n": int64(7)}},
	}
	result, err := Classify(raw, "SELECT COUNT(*) as n FROM data WHERE rating > (SELECT AVG(rating) FROM data)")
	require.NoError(t, err)

	scalar := result.(*models.ScalarResult)
	assert.Equal(t, "count", scalar.Aggregation)
}

func TestClassify_HugeintScalar(t *testing.T) {
	// DuckDB returns SUM over integer columns as HUGEINT, scanned as
	// *big.Int. The cell must survive as its numeric value.
	raw := RawResult{
		Columns: []string{"total"},
		Rows:    []models.Row{{"total": big.NewInt(60)}},
	}
	result, err := Classify(raw, "SELECT SUM(quantity) AS total FROM data")
	require.NoError(t, err)

	scalar, ok := result.(*models.ScalarResult)
	require.True(t, ok, "expected ScalarResult, got %T", result)
	assert.Equal(t, "sum", scalar.Aggregation)
	assert.Equal(t, 60.0, scalar.Value)
}

func TestClassify_DecimalScalar(t *testing.T) {
	// DECIMAL columns scan as duckdb.Decimal. 123.45 with scale 2.
	dec := duckdb.Decimal{Width: 10, Scale: 2, Value: big.NewInt(12345)}
	raw := RawResult{
		Columns: []string{"total"},
		Rows:    []models.Row{{"total": dec}},
	}
	result, err := Classify(raw, "SELECT SUM(price) AS total FROM data")
	require.NoError(t, err)

	scalar := result.(*models.ScalarResult)
	assert.Equal(t, "sum", scalar.Aggregation)
	assert.InDelta(t, 123.45, scalar.Value, 1e-9)
}

func TestClassify_NonNumericAggregateIsError(t *testing.T) {
	// An aggregation query whose cell cannot be read as a number must
	// fail loudly, never report zero.
	raw := RawResult{
		Columns: []string{"total"},
		Rows:    []models.Row{{"total": struct{ X int }{60}}},
	}
	_, err := Classify(raw, "SELECT SUM(quantity) AS total FROM data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-numeric value")
}

func TestClassify_TimeSeries(t *testing.T) {
	raw := RawResult{
		Columns: []string{"release_year", "count"},
		Rows: []models.Row{
			{"release_year": int64(2020), "count": int64(10)},
			{"release_year": int64(2021), "count": int64(15)},
		},
	}
	result, err := Classify(raw, "SELECT release_year, COUNT(*) as count FROM data GROUP BY release_year")
	require.NoError(t, err)

	ts, ok := result.(*models.TimeSeriesResult)
	require.True(t, ok, "expected TimeSeriesResult, got %T", result)
	assert.Equal(t, "release_year", ts.TimeColumn)
	assert.Equal(t, "count", ts.MetricColumn)
	require.Len(t, ts.Data, 2)
	assert.Equal(t, "2020", ts.Data[0].Time)
	assert.Equal(t, 10.0, ts.Data[0].Value)
}

func TestClassify_Ranking(t *testing.T) {
	raw := RawResult{
		Columns: []string{"genre", "count"},
		Rows: []models.Row{
			{"genre": "Drama", "count": int64(30)},
			{"genre": "Comedy", "count": int64(20)},
			{"genre": "Action", "count": int64(10)},
		},
	}
	result, err := Classify(raw, "SELECT genre, COUNT(*) as count FROM data GROUP BY genre ORDER BY count DESC LIMIT 3")
	require.NoError(t, err)

	ranking, ok := result.(*models.RankingResult)
	require.True(t, ok, "expected RankingResult, got %T", result)
	require.Len(t, ranking.Data, 3)
	assert.Equal(t, "Drama", ranking.Data[0].Group)
	assert.Equal(t, 1, ranking.Data[0].Rank)
	assert.Equal(t, 3, ranking.Data[2].Rank)
}

func TestClassify_RankingHugeintMetric(t *testing.T) {
	// Grouped SUM metrics also come back as *big.Int and must keep
	// their real values.
	raw := RawResult{
		Columns: []string{"item", "total"},
		Rows: []models.Row{
			{"item": "widget", "total": big.NewInt(30)},
			{"item": "gadget", "total": big.NewInt(20)},
			{"item": "gizmo", "total": big.NewInt(10)},
		},
	}
	result, err := Classify(raw, "SELECT item, SUM(quantity) AS total FROM data GROUP BY item ORDER BY total DESC")
	require.NoError(t, err)

	ranking, ok := result.(*models.RankingResult)
	require.True(t, ok, "expected RankingResult, got %T", result)
	require.Len(t, ranking.Data, 3)
	assert.Equal(t, 30.0, ranking.Data[0].Value)
	assert.Equal(t, 20.0, ranking.Data[1].Value)
	assert.Equal(t, 10.0, ranking.Data[2].Value)
}

func TestClassify_TimeColumnWinsOverRanking(t *testing.T) {
	// A first column named like time claims the result even when the
	// query also has ORDER BY ... DESC.
	raw := RawResult{
		Columns: []string{"year", "count"},
		Rows: []models.Row{
			{"year": int64(2021), "count": int64(5)},
			{"year": int64(2020), "count": int64(3)},
		},
	}
	result, err := Classify(raw, "SELECT year, COUNT(*) as count FROM data GROUP BY year ORDER BY count DESC")
	require.NoError(t, err)

	assert.Equal(t, models.ResultTimeSeries, result.Type())
}

func TestClassify_Breakdown(t *testing.T) {
	raw := RawResult{
		Columns: []string{"genre", "avg_rating"},
		Rows: []models.Row{
			{"genre": "Drama", "avg_rating": 7.5},
			{"genre": "Comedy", "avg_rating": 6.8},
		},
	}
	result, err := Classify(raw, "SELECT genre, AVG(rating) as avg_rating FROM data GROUP BY genre")
	require.NoError(t, err)

	breakdown, ok := result.(*models.BreakdownResult)
	require.True(t, ok, "expected BreakdownResult, got %T", result)
	assert.Equal(t, "Drama", breakdown.Data[0].Group)
	assert.Equal(t, 7.5, breakdown.Data[0].Value)
}

func TestClassify_Table(t *testing.T) {
	raw := RawResult{
		Columns: []string{"title", "genre", "rating"},
		Rows: []models.Row{
			{"title": "A", "genre": "Drama", "rating": 7.1},
			{"title": "B", "genre": "Comedy", "rating": 6.2},
		},
	}
	result, err := Classify(raw, "SELECT title, genre, rating FROM data LIMIT 2")
	require.NoError(t, err)

	table, ok := result.(*models.TableResult)
	require.True(t, ok, "expected TableResult, got %T", result)
	assert.Equal(t, []string{"title", "genre", "rating"}, table.Columns)
	assert.Len(t, table.Data, 2)
}

func TestClassify_SingleBooleanCellIsNotNumeric(t *testing.T) {
	raw := RawResult{
		Columns: []string{"flag"},
		Rows:    []models.Row{{"flag": true}},
	}
	result, err := Classify(raw, "SELECT flag FROM data LIMIT 1")
	require.NoError(t, err)

	scalar := result.(*models.ScalarResult)
	assert.Equal(t, "true", scalar.Value)
}

func TestFormatCell(t *testing.T) {
	midnight := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	afternoon := time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC)

	assert.Equal(t, "2021-03-14", formatCell(midnight))
	assert.Equal(t, "2021-03-14T15:09:26Z", formatCell(afternoon))
	assert.Equal(t, "2020", formatCell(float64(2020)))
	assert.Equal(t, "7.5", formatCell(7.5))
	assert.Equal(t, "", formatCell(nil))
}
