package models

// ColumnRole classifies a result field for visualization purposes.
// Derived from the returned values, not the source schema, so synthetic
// fields produced by the query (EXTRACT(YEAR ...), aliases) classify
// the same way as real columns.
type ColumnRole string

const (
	RoleTime        ColumnRole = "time"
	RoleNumeric     ColumnRole = "numeric"
	RoleCategorical ColumnRole = "categorical"
)

// ColumnMeta holds per-field metadata inferred from a shaped result.
type ColumnMeta struct {
	Role        ColumnRole `json:"role"`
	Cardinality int        `json:"cardinality"`
	Sparsity    float64    `json:"sparsity"`
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
}

// ResultMetadata is derived from a shaped result per request; it is
// never persisted.
type ResultMetadata struct {
	Columns    map[string]ColumnMeta `json:"columns"`
	RowCount   int                   `json:"row_count"`
	ResultType ResultType            `json:"result_type"`
}

// NumericColumns returns the names of fields with a numeric role.
func (m ResultMetadata) NumericColumns() []string {
	var names []string
	for name, meta := range m.Columns {
		if meta.Role == RoleNumeric {
			names = append(names, name)
		}
	}
	return names
}

// TimeColumns returns the names of fields with a time role.
func (m ResultMetadata) TimeColumns() []string {
	var names []string
	for name, meta := range m.Columns {
		if meta.Role == RoleTime {
			names = append(names, name)
		}
	}
	return names
}

// VizShape is the visualization shape family a result maps to. Distinct
// from ResultType: a table result can still chart as a breakdown.
type VizShape string

const (
	VizTimeSeries VizShape = "time_series"
	VizRanking    VizShape = "ranking"
	VizBreakdown  VizShape = "breakdown"
)

// EligibilityResult is the gate decision on whether a result may be
// charted, and if so as which shape family.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reason   string   `json:"reason,omitempty"`
	Shape    VizShape `json:"shape,omitempty"`
}

// ChartType is a renderer-agnostic chart kind.
type ChartType string

const (
	ChartLine          ChartType = "line"
	ChartArea          ChartType = "area"
	ChartBar           ChartType = "bar"
	ChartHorizontalBar ChartType = "horizontal_bar"
	ChartDonut         ChartType = "donut"
	ChartHistogram     ChartType = "histogram"
)

// AxisType describes what kind of values an axis carries.
type AxisType string

const (
	AxisTime        AxisType = "time"
	AxisNumeric     AxisType = "numeric"
	AxisCategorical AxisType = "categorical"
)

// AxisSpec binds an axis to a data field.
type AxisSpec struct {
	Field string   `json:"field"`
	Label string   `json:"label"`
	Type  AxisType `json:"type"`
}

// UIHints carries rendering safety hints: tick sampling, label
// truncation and rotation. Hints never change the data.
type UIHints struct {
	MaxTicks       int  `json:"max_ticks"`
	TickInterval   int  `json:"tick_interval"`
	LabelRotation  int  `json:"label_rotation"`
	TruncateLabels bool `json:"truncate_labels"`
	MaxLabelLength int  `json:"max_label_length"`
	ShowLegend     bool `json:"show_legend"`
	ShowGrid       bool `json:"show_grid"`
	Animate        bool `json:"animate"`
}

// ChartSpec is a complete, renderer-agnostic chart description. Data is
// the exact record sequence of the shaped result it was built from;
// the chart validator enforces that, it is not merely a convention.
type ChartSpec struct {
	ChartType ChartType `json:"chart_type"`
	Intent    string    `json:"intent"`
	Title     string    `json:"title"`
	XAxis     AxisSpec  `json:"x_axis"`
	YAxis     AxisSpec  `json:"y_axis"`
	Data      []Row     `json:"data"`
	UIHints   UIHints   `json:"ui_hints"`
}
