package kpicsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns(t *testing.T) {
	t.Run("standard header", func(t *testing.T) {
		header := []string{"KPI Name", "Subtitle", "Value", "Date", "Notes", "Visualization Type", "Chart Type", "Category", "Section Name", "Assigned To"}
		cm, err := ResolveColumns(header)
		require.NoError(t, err)

		assert.Equal(t, 0, cm.Index(ColName))
		assert.Equal(t, 1, cm.Index(ColSubtitle))
		assert.Equal(t, 2, cm.Index(ColValue))
		assert.Equal(t, 3, cm.Index(ColDate))
		assert.Equal(t, 4, cm.Index(ColNotes))
		assert.Equal(t, 5, cm.Index(ColVisualizationType))
		assert.Equal(t, 6, cm.Index(ColChartType))
		assert.Equal(t, 7, cm.Index(ColCategory))
		assert.Equal(t, 8, cm.Index(ColSection))
		assert.Equal(t, 9, cm.Index(ColAssignment))
	})

	t.Run("reordered and extra columns", func(t *testing.T) {
		header := []string{"Ignore Me", "Current Value", "Metric Name"}
		cm, err := ResolveColumns(header)
		require.NoError(t, err)
		assert.Equal(t, 2, cm.Index(ColName))
		assert.Equal(t, 1, cm.Index(ColValue))
		assert.Equal(t, -1, cm.Index(ColDate))
	})

	t.Run("section name column does not satisfy kpi name", func(t *testing.T) {
		_, err := ResolveColumns([]string{"Section Name", "Value"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("missing value column fails", func(t *testing.T) {
		_, err := ResolveColumns([]string{"Name", "Date"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "value")
	})

	t.Run("first satisfying column wins", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Name", "Value", "Old Value"})
		require.NoError(t, err)
		assert.Equal(t, 1, cm.Index(ColValue))
	})

	t.Run("stroke settings columns", func(t *testing.T) {
		cm, err := ResolveColumns([]string{"Name", "Value", "Stroke Width", "Stroke Color", "Stroke Opacity", "Show Legend", "Show Grid Lines", "Show Data Labels"})
		require.NoError(t, err)
		assert.Equal(t, 2, cm.Index(ColStrokeWidth))
		assert.Equal(t, 3, cm.Index(ColStrokeColor))
		assert.Equal(t, 4, cm.Index(ColStrokeOpacity))
		assert.Equal(t, 5, cm.Index(ColShowLegend))
		assert.Equal(t, 6, cm.Index(ColShowGridLines))
		assert.Equal(t, 7, cm.Index(ColShowDataLabels))
	})
}
