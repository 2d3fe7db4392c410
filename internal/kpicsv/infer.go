package kpicsv

import "strings"

// Keyword sets for normalizing explicit visualization-type cells.
var (
	textKeywords   = []string{"text", "note", "status"}
	chartKeywords  = []string{"chart", "graph", "visual"}
	numberKeywords = []string{"number", "metric", "value"}
)

// subtypeKeywords maps chart-type cell keywords to subtypes. Checked in
// order so that compound names win over their substrings (multiAxisLine
// before line, radialBar before bar and radar).
var subtypeKeywords = []struct {
	keyword string
	subtype Subtype
}{
	{"multiaxis", SubtypeMultiAxisLine},
	{"multi-axis", SubtypeMultiAxisLine},
	{"multi axis", SubtypeMultiAxisLine},
	{"radialbar", SubtypeRadialBar},
	{"radial", SubtypeRadialBar},
	{"sankey", SubtypeSankey},
	{"heatmap", SubtypeHeatmap},
	{"heat map", SubtypeHeatmap},
	{"scatter", SubtypeScatter},
	{"doughnut", SubtypeDonut},
	{"donut", SubtypeDonut},
	{"pie", SubtypePie},
	{"radar", SubtypeRadar},
	{"area", SubtypeArea},
	{"column", SubtypeBar},
	{"bar", SubtypeBar},
	{"line", SubtypeLine},
}

func matchSubtype(s string) (Subtype, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	for _, sk := range subtypeKeywords {
		if strings.Contains(s, sk.keyword) {
			return sk.subtype, true
		}
	}
	return "", false
}

func matchesAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// firstCell returns the first non-empty cell of a field across the group.
func firstCell(g KPIGroup, cm ColumnMap, field string) string {
	for _, row := range g.Rows {
		if v := cm.Cell(row, field); v != "" {
			return v
		}
	}
	return ""
}

// An inference rule inspects the group and either claims it or passes.
type inferenceRule struct {
	name  string
	apply func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool)
}

// The cascade below is a fixed decision list, not nested conditionals: the
// first rule that claims a group wins, and rule order is load-bearing for
// compatibility with existing spreadsheet exports. An explicit visualization
// type always beats chart-type hints, which beat the category heuristic,
// which beats the numeric-vs-text fallback.
var inferenceRules = []inferenceRule{
	{"explicit visualization type", func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool) {
		cell := strings.ToLower(firstCell(g, cm, ColVisualizationType))
		if cell == "" {
			return "", "", false
		}
		switch {
		case matchesAny(cell, textKeywords):
			return KindText, "", true
		case matchesAny(cell, chartKeywords):
			return KindChart, groupSubtype(g, cm), true
		case matchesAny(cell, numberKeywords):
			return KindNumber, "", true
		}
		return "", "", false
	}},
	{"explicit chart type keyword", func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool) {
		cell := strings.ToLower(firstCell(g, cm, ColChartType))
		if cell == "" {
			return "", "", false
		}
		switch {
		case matchesAny(cell, numberKeywords):
			return KindNumber, "", true
		case matchesAny(cell, textKeywords):
			return KindText, "", true
		}
		if st, ok := matchSubtype(cell); ok {
			return KindChart, st, true
		}
		return "", "", false
	}},
	{"chart type present", func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool) {
		if firstCell(g, cm, ColChartType) == "" {
			return "", "", false
		}
		return KindChart, groupSubtype(g, cm), true
	}},
	{"category column populated", func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool) {
		if firstCell(g, cm, ColCategory) == "" {
			return "", "", false
		}
		return KindChart, SubtypeBar, true
	}},
	{"value cell fallback", func(g KPIGroup, cm ColumnMap) (Kind, Subtype, bool) {
		for _, row := range g.Rows {
			cell := cm.Cell(row, ColValue)
			if cell == "" {
				continue
			}
			if _, ok := parseNumericCell(cell); !ok {
				return KindText, "", true
			}
		}
		return KindNumber, "", true
	}},
}

// groupSubtype resolves the subtype for a group already known to be a chart:
// the chart-type cell's keyword when recognized, line otherwise.
func groupSubtype(g KPIGroup, cm ColumnMap) Subtype {
	if st, ok := matchSubtype(firstCell(g, cm, ColChartType)); ok {
		return st
	}
	return SubtypeLine
}

// InferKind decides a group's visualization kind, and subtype when the kind
// is chart, by running the rule cascade in order.
func InferKind(g KPIGroup, cm ColumnMap) (Kind, Subtype) {
	for _, rule := range inferenceRules {
		if kind, subtype, ok := rule.apply(g, cm); ok {
			return kind, subtype
		}
	}
	// The fallback rule always claims the group; this is unreachable.
	return KindNumber, ""
}
