package kpicsv

// Kind is the visualization family of a KPI.
type Kind string

const (
	KindNumber Kind = "number"
	KindText   Kind = "text"
	KindChart  Kind = "chart"
)

// Subtype is the concrete chart shape carried when Kind is KindChart.
type Subtype string

const (
	SubtypeLine          Subtype = "line"
	SubtypeArea          Subtype = "area"
	SubtypeBar           Subtype = "bar"
	SubtypePie           Subtype = "pie"
	SubtypeDonut         Subtype = "donut"
	SubtypeRadar         Subtype = "radar"
	SubtypeRadialBar     Subtype = "radialBar"
	SubtypeScatter       Subtype = "scatter"
	SubtypeHeatmap       Subtype = "heatmap"
	SubtypeMultiAxisLine Subtype = "multiAxisLine"
	SubtypeSankey        Subtype = "sankey"
)

// IsCategorical reports whether points of this subtype are keyed by category
// label rather than by date. Categorical charts keep insertion order.
func (s Subtype) IsCategorical() bool {
	switch s {
	case SubtypeBar, SubtypePie, SubtypeDonut, SubtypeRadar, SubtypeRadialBar:
		return true
	}
	return false
}

// IsTimeSeries reports whether points of this subtype are keyed by date and
// compared chronologically.
func (s Subtype) IsTimeSeries() bool {
	switch s {
	case SubtypeLine, SubtypeArea, SubtypeScatter, SubtypeHeatmap, SubtypeMultiAxisLine:
		return true
	}
	return false
}

// ValueRecord is the canonical key→value map of a KPI. Keys are unique; a
// later entry for the same key overwrites the earlier one. Values are float64
// for numeric entries and string for text entries (scalar key "0" only).
type ValueRecord map[string]interface{}

// LabeledValue is an optional per-point breakdown entry.
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Point is one historical or categorical datapoint. Date holds a normalized
// date string for time-series points and the category label for categorical
// points.
type Point struct {
	Date          string         `json:"date"`
	Value         float64        `json:"value"`
	Color         string         `json:"color,omitempty"`
	LabeledValues []LabeledValue `json:"labeledValues,omitempty"`
}

// ChartSettings carries presentation overrides copied verbatim from the
// input. Absent settings stay nil so consumers apply their own defaults.
type ChartSettings struct {
	StrokeWidth    *float64 `json:"strokeWidth,omitempty"`
	StrokeColor    *string  `json:"strokeColor,omitempty"`
	StrokeOpacity  *float64 `json:"strokeOpacity,omitempty"`
	ShowLegend     *bool    `json:"showLegend,omitempty"`
	ShowGridLines  *bool    `json:"showGridLines,omitempty"`
	ShowDataLabels *bool    `json:"showDataLabels,omitempty"`
}

func (cs *ChartSettings) isEmpty() bool {
	return cs.StrokeWidth == nil && cs.StrokeColor == nil && cs.StrokeOpacity == nil &&
		cs.ShowLegend == nil && cs.ShowGridLines == nil && cs.ShowDataLabels == nil
}

// ParsedKPI is the transient record produced for one distinct KPI name
// within a single import. It is reconciled into persisted rows and discarded.
type ParsedKPI struct {
	Name          string         `json:"name"`
	Subtitle      string         `json:"subtitle,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	SectionName   string         `json:"section,omitempty"`
	AssignedTo    []string       `json:"assignedTo,omitempty"`
	Prefix        string         `json:"prefix,omitempty"`
	Suffix        string         `json:"suffix,omitempty"`
	ReverseTrend  bool           `json:"reverseTrend,omitempty"`
	Kind          Kind           `json:"visualizationType"`
	ChartType     Subtype        `json:"chartType,omitempty"`
	Value         ValueRecord    `json:"value"`
	DataPoints    []Point        `json:"dataPoints"`
	TrendValue    *float64       `json:"trendValue,omitempty"`
	LatestDate    string         `json:"latestDate,omitempty"`
	ChartSettings *ChartSettings `json:"chartSettings,omitempty"`
}

// ParseResult is the outcome of the parse phase. Success is false only when
// zero KPIs were produced; per-row problems never abort the whole parse.
type ParseResult struct {
	Success bool        `json:"success"`
	KPIs    []ParsedKPI `json:"kpis"`
	Errors  []string    `json:"errors"`
}
