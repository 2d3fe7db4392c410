package kpicsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// header layout used across inference tests:
// name, value, date, visualization type, chart type, category
func inferColumns(t *testing.T) ColumnMap {
	t.Helper()
	cm, err := ResolveColumns([]string{"Name", "Value", "Date", "Visualization Type", "Chart Type", "Category"})
	require.NoError(t, err)
	return cm
}

func TestInferKind(t *testing.T) {
	cm := inferColumns(t)

	tests := []struct {
		name        string
		rows        [][]string
		wantKind    Kind
		wantSubtype Subtype
	}{
		{
			name:     "explicit visualization type beats chart type hint",
			rows:     [][]string{{"Uptime", "99.9", "2024-01-01", "number", "bar", ""}},
			wantKind: KindNumber,
		},
		{
			name:     "visualization type text keywords",
			rows:     [][]string{{"Status", "All good", "", "status", "", ""}},
			wantKind: KindText,
		},
		{
			name:        "visualization chart with chart type subtype",
			rows:        [][]string{{"Sales", "100", "2024-01-01", "graph", "area", ""}},
			wantKind:    KindChart,
			wantSubtype: SubtypeArea,
		},
		{
			name:        "visualization chart without chart type defaults to line",
			rows:        [][]string{{"Sales", "100", "2024-01-01", "chart", "", ""}},
			wantKind:    KindChart,
			wantSubtype: SubtypeLine,
		},
		{
			name:     "chart type number keyword forces number",
			rows:     [][]string{{"Headcount", "42", "", "", "metric", ""}},
			wantKind: KindNumber,
		},
		{
			name:        "chart type column alias maps to bar",
			rows:        [][]string{{"Mix", "A:1 B:2", "", "", "column", ""}},
			wantKind:    KindChart,
			wantSubtype: SubtypeBar,
		},
		{
			name:        "radialbar not swallowed by bar or radar",
			rows:        [][]string{{"Goal", "75", "", "", "radialBar", "Progress"}},
			wantKind:    KindChart,
			wantSubtype: SubtypeRadialBar,
		},
		{
			name:        "multi axis line not swallowed by line",
			rows:        [][]string{{"Pair", "10", "2024-01-01", "", "multiAxisLine", ""}},
			wantKind:    KindChart,
			wantSubtype: SubtypeMultiAxisLine,
		},
		{
			name:        "unrecognized chart type still means chart with line default",
			rows:        [][]string{{"Trendy", "10", "2024-01-01", "", "spiral", ""}},
			wantKind:    KindChart,
			wantSubtype: SubtypeLine,
		},
		{
			name:        "populated category implies bar chart",
			rows:        [][]string{{"Regions", "10", "", "", "", "North"}},
			wantKind:    KindChart,
			wantSubtype: SubtypeBar,
		},
		{
			name:     "non numeric value falls back to text",
			rows:     [][]string{{"Motto", "Ship it", "", "", "", ""}},
			wantKind: KindText,
		},
		{
			name:     "numeric values fall back to number",
			rows:     [][]string{{"Revenue", "100", "2024-01-01", "", "", ""}, {"Revenue", "110", "2024-01-08", "", "", ""}},
			wantKind: KindNumber,
		},
		{
			name:     "currency formatted value still numeric",
			rows:     [][]string{{"ARR", "$1,250,000", "", "", "", ""}},
			wantKind: KindNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := KPIGroup{Name: tt.rows[0][0], Rows: tt.rows}
			kind, subtype := InferKind(g, cm)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantSubtype, subtype)
		})
	}
}
