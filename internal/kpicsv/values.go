package kpicsv

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseNumericCell parses a numeric spreadsheet cell. Exported cells often
// carry thousands separators, a currency prefix or a trailing percent sign;
// all are tolerated. Parsing goes through decimal so "1,234.56" survives
// intact before narrowing to float64.
func parseNumericCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£₹")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func parseBoolCell(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on":
		return true, true
	case "false", "no", "n", "0", "off":
		return false, true
	}
	return false, false
}

// inlinePairs splits a cell written as whitespace-separated label:number
// pairs ("North:45000 South:38000"). Every token must contain a colon with a
// numeric right-hand side for the cell to count as inline syntax.
func inlinePairs(cell string) ([]LabeledValue, bool) {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return nil, false
	}
	pairs := make([]LabeledValue, 0, len(fields))
	for _, tok := range fields {
		colon := strings.Index(tok, ":")
		if colon <= 0 {
			return nil, false
		}
		v, ok := parseNumericCell(tok[colon+1:])
		if !ok {
			return nil, false
		}
		pairs = append(pairs, LabeledValue{Label: tok[:colon], Value: v})
	}
	return pairs, true
}

// FormatInlineValues renders categorical points back into the inline
// label:number syntax, preserving point order.
func FormatInlineValues(points []Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, p.Date+":"+strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// extractChartSettings copies presentation columns into ChartSettings,
// taking the first populated cell per column across the group. Returns nil
// when no settings column had a value, so absent settings stay absent.
func extractChartSettings(g KPIGroup, cm ColumnMap) *ChartSettings {
	cs := &ChartSettings{}
	if v, ok := parseNumericCell(firstCell(g, cm, ColStrokeWidth)); ok {
		cs.StrokeWidth = &v
	}
	if c := firstCell(g, cm, ColStrokeColor); c != "" {
		cs.StrokeColor = &c
	}
	if v, ok := parseNumericCell(firstCell(g, cm, ColStrokeOpacity)); ok {
		cs.StrokeOpacity = &v
	}
	if b, ok := parseBoolCell(firstCell(g, cm, ColShowLegend)); ok {
		cs.ShowLegend = &b
	}
	if b, ok := parseBoolCell(firstCell(g, cm, ColShowGridLines)); ok {
		cs.ShowGridLines = &b
	}
	if b, ok := parseBoolCell(firstCell(g, cm, ColShowDataLabels)); ok {
		cs.ShowDataLabels = &b
	}
	if cs.isEmpty() {
		return nil
	}
	return cs
}

// BuildValue constructs the canonical value map and ordered point list for a
// group whose kind is already inferred. Rows whose value cell cannot be
// parsed under the active kind are skipped silently so one malformed row
// does not abort an otherwise valid multi-row KPI.
func BuildValue(g KPIGroup, kind Kind, subtype Subtype, cm ColumnMap) (ValueRecord, []Point, *float64, string) {
	switch {
	case kind == KindChart && subtype.IsCategorical():
		value, points := buildCategorical(g, cm)
		return value, points, nil, ""
	case kind == KindChart:
		return buildTimeSeries(g, cm)
	default:
		return buildScalar(g, kind, cm)
	}
}

// buildScalar handles number and text KPIs: key "0" holds the latest value
// (last row wins), and each numeric row with a date becomes a history point.
// Trend is last minus second-to-last numeric point, number KPIs only.
func buildScalar(g KPIGroup, kind Kind, cm ColumnMap) (ValueRecord, []Point, *float64, string) {
	value := ValueRecord{}
	var points []Point
	latestDate := ""

	for _, row := range g.Rows {
		cell := cm.Cell(row, ColValue)
		if cell == "" {
			continue
		}
		v, numeric := parseNumericCell(cell)
		if numeric {
			value["0"] = v
			date := NormalizeDate(cm.Cell(row, ColDate))
			points = append(points, Point{Date: date, Value: v})
			if date != "" {
				latestDate = date
			}
		} else if kind == KindText {
			value["0"] = cell
		}
	}

	var trend *float64
	if kind == KindNumber && len(points) >= 2 {
		t := points[len(points)-1].Value - points[len(points)-2].Value
		trend = &t
	}
	return value, points, trend, latestDate
}

// buildTimeSeries keys each row's value by its normalized date. The most
// recent row's date becomes the KPI's latest date.
func buildTimeSeries(g KPIGroup, cm ColumnMap) (ValueRecord, []Point, *float64, string) {
	value := ValueRecord{}
	var points []Point
	latestDate := ""

	for _, row := range g.Rows {
		v, ok := parseNumericCell(cm.Cell(row, ColValue))
		if !ok {
			continue
		}
		date := NormalizeDate(cm.Cell(row, ColDate))
		value[date] = v
		points = append(points, Point{
			Date:  date,
			Value: v,
			Color: cm.Cell(row, ColStrokeColor),
		})
		latestDate = date
	}
	return value, points, nil, latestDate
}

// buildCategorical keys values by category label, in insertion order. A row
// can either carry the whole KPI in inline label:number syntax or supply a
// single category from the category column.
func buildCategorical(g KPIGroup, cm ColumnMap) (ValueRecord, []Point) {
	value := ValueRecord{}
	var points []Point

	upsert := func(label string, v float64, color string) {
		if _, seen := value[label]; seen {
			// Colliding key inside one import: later row overwrites, the
			// point list keeps one entry per label.
			for i := range points {
				if points[i].Date == label {
					points[i].Value = v
					if color != "" {
						points[i].Color = color
					}
					break
				}
			}
			value[label] = v
			return
		}
		value[label] = v
		points = append(points, Point{Date: label, Value: v, Color: color})
	}

	for _, row := range g.Rows {
		cell := cm.Cell(row, ColValue)
		if pairs, ok := inlinePairs(cell); ok {
			for _, p := range pairs {
				upsert(p.Label, p.Value, "")
			}
			continue
		}
		category := cm.Cell(row, ColCategory)
		if category == "" {
			continue
		}
		v, ok := parseNumericCell(cell)
		if !ok {
			continue
		}
		upsert(category, v, cm.Cell(row, ColStrokeColor))
	}
	return value, points
}
