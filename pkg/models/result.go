// Package models defines the shared types that flow through the
// question-answering pipeline: dataset schemas, shaped query results,
// result metadata, and chart specifications.
package models

import "encoding/json"

// ResultType identifies the structural shape of an executed query result.
type ResultType string

const (
	ResultScalar     ResultType = "scalar"
	ResultTimeSeries ResultType = "time_series"
	ResultRanking    ResultType = "ranking"
	ResultBreakdown  ResultType = "breakdown"
	ResultTable      ResultType = "table"
	ResultEmpty      ResultType = "empty"
)

// Row is a single record of a tabular result, keyed by field name.
type Row map[string]any

// ShapedResult is the tagged union over the possible result shapes.
// Exactly one concrete type implements each shape; consumers switch on
// Type() and can rely on the set being closed.
type ShapedResult interface {
	// Type returns the shape tag.
	Type() ResultType

	// Rows returns the result records as generic rows for the
	// visualization stages. Scalar and Empty results return nil.
	// The slice is built once per result and reused, so the chart
	// pipeline carries the same records through unchanged.
	Rows() []Row
}

// ScalarResult is a single aggregated value (one row, one column).
type ScalarResult struct {
	Value       any    `json:"value"`
	Aggregation string `json:"aggregation,omitempty"`
	ColumnName  string `json:"column_name,omitempty"`
}

func (*ScalarResult) Type() ResultType { return ResultScalar }
func (*ScalarResult) Rows() []Row      { return nil }

// TimePoint is one observation of a time series.
type TimePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// TimeSeriesResult is an ordered sequence of time/value pairs.
type TimeSeriesResult struct {
	Data         []TimePoint `json:"data"`
	TimeColumn   string      `json:"time_column"`
	MetricColumn string      `json:"metric_column,omitempty"`

	rows []Row
}

func (*TimeSeriesResult) Type() ResultType { return ResultTimeSeries }

func (r *TimeSeriesResult) Rows() []Row {
	if r.rows == nil {
		r.rows = make([]Row, len(r.Data))
		for i, p := range r.Data {
			r.rows[i] = Row{"time": p.Time, "value": p.Value}
		}
	}
	return r.rows
}

// RankedGroup is one entry of a ranking, with its 1-based rank.
type RankedGroup struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"`
}

// RankingResult is an ordered comparison of groups by a metric.
type RankingResult struct {
	Data         []RankedGroup `json:"data"`
	GroupColumn  string        `json:"group_column"`
	MetricColumn string        `json:"metric_column,omitempty"`

	rows []Row
}

func (*RankingResult) Type() ResultType { return ResultRanking }

func (r *RankingResult) Rows() []Row {
	if r.rows == nil {
		r.rows = make([]Row, len(r.Data))
		for i, g := range r.Data {
			r.rows[i] = Row{"group": g.Group, "value": g.Value, "rank": g.Rank}
		}
	}
	return r.rows
}

// GroupValue is one entry of a breakdown.
type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// BreakdownResult is an unordered composition of groups and values.
type BreakdownResult struct {
	Data         []GroupValue `json:"data"`
	GroupColumn  string       `json:"group_column"`
	MetricColumn string       `json:"metric_column,omitempty"`

	rows []Row
}

func (*BreakdownResult) Type() ResultType { return ResultBreakdown }

func (r *BreakdownResult) Rows() []Row {
	if r.rows == nil {
		r.rows = make([]Row, len(r.Data))
		for i, g := range r.Data {
			r.rows[i] = Row{"group": g.Group, "value": g.Value}
		}
	}
	return r.rows
}

// TableResult is a raw tabular result that matched no other shape.
type TableResult struct {
	Data    []Row    `json:"data"`
	Columns []string `json:"columns"`
}

func (*TableResult) Type() ResultType { return ResultTable }
func (r *TableResult) Rows() []Row    { return r.Data }

// EmptyResult is a result with no rows.
type EmptyResult struct {
	Message string `json:"message"`
}

func (*EmptyResult) Type() ResultType { return ResultEmpty }
func (*EmptyResult) Rows() []Row      { return nil }

// MarshalResult serializes a shaped result with its "type" tag included,
// matching the wire format consumed by the frontend.
func MarshalResult(r ShapedResult) (json.RawMessage, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typeTag, err := json.Marshal(r.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeTag

	return json.Marshal(fields)
}
