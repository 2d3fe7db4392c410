package kpicsv

import "strings"

// Parse runs the whole pipeline on a raw CSV blob: tokenize, resolve the
// header, group rows by KPI name, infer each group's kind, and build its
// value model. Success is false only when zero KPIs were produced; row-level
// problems never abort the parse.
func Parse(text string) ParseResult {
	return ParseFromRows(ParseRows(text))
}

// ParseFromRows runs the pipeline on pre-tokenized rows. Spreadsheet uploads
// (xlsx, xls) land here after their own cell extraction; the first row is the
// header.
func ParseFromRows(rows [][]string) ParseResult {
	if len(rows) < 1 {
		return ParseResult{Success: false, KPIs: []ParsedKPI{}, Errors: []string{"input contains no rows"}}
	}

	cm, err := ResolveColumns(rows[0])
	if err != nil {
		return ParseResult{Success: false, KPIs: []ParsedKPI{}, Errors: []string{err.Error()}}
	}

	groups := GroupRows(rows[1:], cm)
	kpis := make([]ParsedKPI, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		kind, subtype := InferKind(*g, cm)
		if !(kind == KindChart && subtype.IsCategorical()) {
			sortGroupByDate(g, cm)
		}
		value, points, trend, latestDate := BuildValue(*g, kind, subtype, cm)
		if len(value) == 0 && len(points) == 0 {
			// Every row of the group was unusable; drop the KPI, keep going.
			continue
		}

		kpi := ParsedKPI{
			Name:          g.Name,
			Subtitle:      firstCell(*g, cm, ColSubtitle),
			Notes:         firstCell(*g, cm, ColNotes),
			SectionName:   firstCell(*g, cm, ColSection),
			AssignedTo:    splitAssignees(firstCell(*g, cm, ColAssignment)),
			Prefix:        firstCell(*g, cm, ColPrefix),
			Suffix:        firstCell(*g, cm, ColSuffix),
			Kind:          kind,
			ChartType:     subtype,
			Value:         value,
			DataPoints:    points,
			TrendValue:    trend,
			LatestDate:    latestDate,
			ChartSettings: extractChartSettings(*g, cm),
		}
		if b, ok := parseBoolCell(firstCell(*g, cm, ColReverseTrend)); ok {
			kpi.ReverseTrend = b
		}
		kpis = append(kpis, kpi)
	}

	result := ParseResult{Success: len(kpis) > 0, KPIs: kpis, Errors: []string{}}
	if !result.Success {
		result.Errors = append(result.Errors, "no KPIs could be parsed from the input")
	}
	return result
}

// splitAssignees splits an assignment cell on commas or semicolons.
func splitAssignees(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeName is the dedup normalization applied at every comparison site
// where KPI or section names are matched: trim then lowercase. Both halves
// matter; dropping the trim silently creates duplicate sections.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
