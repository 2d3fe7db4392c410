package kpicsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueColumns(t *testing.T) ColumnMap {
	t.Helper()
	cm, err := ResolveColumns([]string{"Name", "Value", "Date", "Category", "Stroke Color"})
	require.NoError(t, err)
	return cm
}

func TestBuildValueScalar(t *testing.T) {
	cm := valueColumns(t)

	t.Run("last row wins with trend", func(t *testing.T) {
		g := KPIGroup{Name: "Revenue", Rows: [][]string{
			{"Revenue", "100", "2024-01-01", "", ""},
			{"Revenue", "110", "2024-01-08", "", ""},
			{"Revenue", "120", "2024-01-15", "", ""},
		}}
		value, points, trend, latest := BuildValue(g, KindNumber, "", cm)

		assert.Equal(t, ValueRecord{"0": 120.0}, value)
		require.Len(t, points, 3)
		assert.Equal(t, "2024-01-15", points[2].Date)
		require.NotNil(t, trend)
		assert.InDelta(t, 10.0, *trend, 1e-9)
		assert.Equal(t, "2024-01-15", latest)
	})

	t.Run("single point has no trend", func(t *testing.T) {
		g := KPIGroup{Name: "Uptime", Rows: [][]string{{"Uptime", "99.9", "2024-01-01", "", ""}}}
		_, _, trend, _ := BuildValue(g, KindNumber, "", cm)
		assert.Nil(t, trend)
	})

	t.Run("text keeps literal cell", func(t *testing.T) {
		g := KPIGroup{Name: "Status", Rows: [][]string{
			{"Status", "On track", "2024-01-01", "", ""},
			{"Status", "At risk", "2024-01-08", "", ""},
		}}
		value, points, trend, _ := BuildValue(g, KindText, "", cm)
		assert.Equal(t, ValueRecord{"0": "At risk"}, value)
		assert.Empty(t, points)
		assert.Nil(t, trend)
	})

	t.Run("unparseable numeric row skipped silently", func(t *testing.T) {
		g := KPIGroup{Name: "Revenue", Rows: [][]string{
			{"Revenue", "100", "2024-01-01", "", ""},
			{"Revenue", "n/a", "2024-01-08", "", ""},
			{"Revenue", "120", "2024-01-15", "", ""},
		}}
		value, points, _, _ := BuildValue(g, KindNumber, "", cm)
		assert.Equal(t, ValueRecord{"0": 120.0}, value)
		assert.Len(t, points, 2)
	})
}

func TestBuildValueTimeSeries(t *testing.T) {
	cm := valueColumns(t)

	g := KPIGroup{Name: "Signups", Rows: [][]string{
		{"Signups", "5", "01/01/2024", "", ""},
		{"Signups", "8", "2024-01-08", "", ""},
		{"Signups", "bad", "2024-01-15", "", ""},
	}}
	value, points, trend, latest := BuildValue(g, KindChart, SubtypeLine, cm)

	// Dates normalize to ISO regardless of input spelling; the bad row is
	// dropped without failing the group.
	assert.Equal(t, ValueRecord{"2024-01-01": 5.0, "2024-01-08": 8.0}, value)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Nil(t, trend)
	assert.Equal(t, "2024-01-08", latest)
}

func TestBuildValueCategorical(t *testing.T) {
	cm := valueColumns(t)

	t.Run("inline syntax describes whole kpi in one row", func(t *testing.T) {
		g := KPIGroup{Name: "Regions", Rows: [][]string{
			{"Regions", "North:10 South:20", "2024-01-01", "", ""},
		}}
		value, points, _, _ := BuildValue(g, KindChart, SubtypeBar, cm)
		assert.Equal(t, ValueRecord{"North": 10.0, "South": 20.0}, value)
		require.Len(t, points, 2)
		assert.Equal(t, "North", points[0].Date)
		assert.Equal(t, "South", points[1].Date)
	})

	t.Run("one row per category preserves insertion order", func(t *testing.T) {
		g := KPIGroup{Name: "Channels", Rows: [][]string{
			{"Channels", "45000", "", "Web", "#4F46E5"},
			{"Channels", "38000", "", "Mobile", ""},
			{"Channels", "12000", "", "Partners", ""},
		}}
		value, points, _, _ := BuildValue(g, KindChart, SubtypePie, cm)
		assert.Equal(t, ValueRecord{"Web": 45000.0, "Mobile": 38000.0, "Partners": 12000.0}, value)
		require.Len(t, points, 3)
		assert.Equal(t, []string{"Web", "Mobile", "Partners"}, []string{points[0].Date, points[1].Date, points[2].Date})
		assert.Equal(t, "#4F46E5", points[0].Color)
	})

	t.Run("colliding category key overwrites earlier row", func(t *testing.T) {
		g := KPIGroup{Name: "Channels", Rows: [][]string{
			{"Channels", "100", "", "Web", ""},
			{"Channels", "150", "", "Web", ""},
		}}
		value, points, _, _ := BuildValue(g, KindChart, SubtypeBar, cm)
		assert.Equal(t, ValueRecord{"Web": 150.0}, value)
		assert.Len(t, points, 1)
	})

	t.Run("inline round trip", func(t *testing.T) {
		g := KPIGroup{Name: "Regions", Rows: [][]string{
			{"Regions", "A:1 B:2", "", "", ""},
		}}
		value, points, _, _ := BuildValue(g, KindChart, SubtypeBar, cm)

		serialized := FormatInlineValues(points)
		assert.Equal(t, "A:1 B:2", serialized)

		g2 := KPIGroup{Name: "Regions", Rows: [][]string{{"Regions", serialized, "", "", ""}}}
		value2, _, _, _ := BuildValue(g2, KindChart, SubtypeBar, cm)
		assert.Equal(t, value, value2)
	})
}

func TestExtractChartSettings(t *testing.T) {
	cm, err := ResolveColumns([]string{"Name", "Value", "Stroke Width", "Stroke Color", "Show Legend"})
	require.NoError(t, err)

	t.Run("present settings copied", func(t *testing.T) {
		g := KPIGroup{Rows: [][]string{{"K", "1", "2.5", "#FF0000", "yes"}}}
		cs := extractChartSettings(g, cm)
		require.NotNil(t, cs)
		require.NotNil(t, cs.StrokeWidth)
		assert.InDelta(t, 2.5, *cs.StrokeWidth, 1e-9)
		require.NotNil(t, cs.StrokeColor)
		assert.Equal(t, "#FF0000", *cs.StrokeColor)
		require.NotNil(t, cs.ShowLegend)
		assert.True(t, *cs.ShowLegend)
		// Columns absent from the input stay nil, not defaulted.
		assert.Nil(t, cs.StrokeOpacity)
		assert.Nil(t, cs.ShowGridLines)
	})

	t.Run("no settings yields nil", func(t *testing.T) {
		g := KPIGroup{Rows: [][]string{{"K", "1", "", "", ""}}}
		assert.Nil(t, extractChartSettings(g, cm))
	})
}
