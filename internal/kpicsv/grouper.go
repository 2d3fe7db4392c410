package kpicsv

import "sort"

// KPIGroup holds every raw data row sharing one KPI name, in input order.
type KPIGroup struct {
	Name string
	Rows [][]string
}

// GroupRows groups data rows by their KPI name cell, preserving the
// first-seen order of distinct names. Rows with an empty name cell are
// skipped. Rows are kept in input order here; the parser re-sorts a group
// chronologically only after kind inference, because category order inside
// categorical groups is meaningful to the user and must not be disturbed.
func GroupRows(rows [][]string, cm ColumnMap) []KPIGroup {
	var groups []KPIGroup
	index := make(map[string]int)
	for _, row := range rows {
		name := cm.Cell(row, ColName)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			groups[i].Rows = append(groups[i].Rows, row)
			continue
		}
		index[name] = len(groups)
		groups = append(groups, KPIGroup{Name: name, Rows: [][]string{row}})
	}
	return groups
}

// sortGroupByDate orders a group's rows ascending by parsed date. Rows whose
// date cell does not parse sort after every parsed date, keeping their
// relative input order (the sort is stable).
func sortGroupByDate(g *KPIGroup, cm ColumnMap) {
	if cm.Index(ColDate) < 0 || len(g.Rows) < 2 {
		return
	}
	sort.SliceStable(g.Rows, func(i, j int) bool {
		ti, oki := ParseDate(cm.Cell(g.Rows[i], ColDate))
		tj, okj := ParseDate(cm.Cell(g.Rows[j], ColDate))
		if oki && okj {
			return ti.Before(tj)
		}
		return oki && !okj
	})
}
