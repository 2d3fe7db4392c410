package kpicsv

import (
	"fmt"
	"strings"
)

// Semantic fields a header column can resolve to.
const (
	ColName              = "name"
	ColSubtitle          = "subtitle"
	ColValue             = "value"
	ColDate              = "date"
	ColNotes             = "notes"
	ColVisualizationType = "visualizationType"
	ColChartType         = "chartType"
	ColCategory          = "category"
	ColSection           = "section"
	ColAssignment        = "assignment"
	ColPrefix            = "prefix"
	ColSuffix            = "suffix"
	ColReverseTrend      = "reverseTrend"
	ColStrokeWidth       = "strokeWidth"
	ColStrokeColor       = "strokeColor"
	ColStrokeOpacity     = "strokeOpacity"
	ColShowLegend        = "showLegend"
	ColShowGridLines     = "showGridLines"
	ColShowDataLabels    = "showDataLabels"
)

// ColumnMap maps semantic fields to the column index they resolved to.
// Fields that did not resolve are absent from the map.
type ColumnMap map[string]int

// Index returns the resolved column index for a field, or -1.
func (cm ColumnMap) Index(field string) int {
	if i, ok := cm[field]; ok {
		return i
	}
	return -1
}

// Cell returns the trimmed cell of row at the field's column, or "" when the
// field is unresolved or the row is short.
func (cm ColumnMap) Cell(row []string, field string) string {
	i := cm.Index(field)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

type columnSpec struct {
	field    string
	contains []string
	excludes []string
}

// Resolution order matters: the first header satisfying a spec wins for that
// field, and specs are checked independently so one header can serve several
// fields only if no earlier header matched.
var columnSpecs = []columnSpec{
	{ColName, []string{"name"}, []string{"section"}},
	{ColSubtitle, []string{"subtitle"}, nil},
	{ColValue, []string{"value"}, nil},
	{ColDate, []string{"date"}, nil},
	{ColNotes, []string{"note"}, nil},
	{ColVisualizationType, []string{"visual"}, nil},
	{ColChartType, []string{"chart"}, []string{"setting"}},
	{ColCategory, []string{"categor"}, nil},
	{ColSection, []string{"section"}, nil},
	{ColAssignment, []string{"assign"}, nil},
	{ColPrefix, []string{"prefix"}, nil},
	{ColSuffix, []string{"suffix"}, nil},
	{ColReverseTrend, []string{"reverse"}, nil},
	{ColStrokeWidth, []string{"stroke", "width"}, nil},
	{ColStrokeColor, []string{"stroke", "color"}, nil},
	{ColStrokeOpacity, []string{"stroke", "opacity"}, nil},
	{ColShowLegend, []string{"legend"}, nil},
	{ColShowGridLines, []string{"grid"}, nil},
	{ColShowDataLabels, []string{"label"}, nil},
}

// ResolveColumns maps a header row to semantic fields by substring matching
// on lower-cased headers. Column order and extra columns do not matter.
// Missing name or value columns is a hard parse failure; everything else is
// optional.
func ResolveColumns(header []string) (ColumnMap, error) {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cm := make(ColumnMap, len(columnSpecs))
	for _, spec := range columnSpecs {
		for i, h := range lowered {
			if h == "" || !containsAll(h, spec.contains) || containsAny(h, spec.excludes) {
				continue
			}
			cm[spec.field] = i
			break
		}
	}

	for _, required := range []string{ColName, ColValue} {
		if _, ok := cm[required]; !ok {
			return nil, fmt.Errorf("required column %q not found in header row", required)
		}
	}
	return cm, nil
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
