package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseboardSaaS/internal/kpicsv"
)

func TestMergeRenamedKPICategoricalLastWriteWins(t *testing.T) {
	target := KPIRecord{
		ID:                "t1",
		KPIName:           "Regions",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypeBar),
		DataPoints: []kpicsv.Point{
			{Date: "North", Value: 10},
			{Date: "South", Value: 20},
		},
	}
	source := KPIRecord{
		ID:                "s1",
		KPIName:           "Areas",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypeBar),
		DataPoints: []kpicsv.Point{
			{Date: "North", Value: 99},
			{Date: "East", Value: 5},
		},
	}

	merged := MergeRenamedKPI(target, source)

	// Source's North replaces target's; history is gone.
	require.Len(t, merged.DataPoints, 3)
	assert.Equal(t, 99.0, merged.Value["North"])
	assert.Equal(t, 20.0, merged.Value["South"])
	assert.Equal(t, 5.0, merged.Value["East"])

	// Category order is first appearance in the pooled list.
	assert.Equal(t, "North", merged.DataPoints[0].Date)
	assert.Equal(t, "South", merged.DataPoints[1].Date)
	assert.Equal(t, "East", merged.DataPoints[2].Date)

	// The survivor keeps its identity.
	assert.Equal(t, "t1", merged.ID)
	assert.Equal(t, "Regions", merged.KPIName)
}

func TestMergeRenamedKPITimeSeriesKeepsDuplicateDates(t *testing.T) {
	target := KPIRecord{
		ID:                "t1",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypeLine),
		DataPoints: []kpicsv.Point{
			{Date: "2024-01-01", Value: 10},
			{Date: "2024-03-01", Value: 30},
		},
	}
	source := KPIRecord{
		ID:                "s1",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypeLine),
		DataPoints: []kpicsv.Point{
			{Date: "2024-01-01", Value: 11},
			{Date: "2024-02-01", Value: 20},
		},
	}

	merged := MergeRenamedKPI(target, source)

	// Concatenated and sorted, duplicates for 2024-01-01 both survive.
	require.Len(t, merged.DataPoints, 4)
	assert.Equal(t, "2024-01-01", merged.DataPoints[0].Date)
	assert.Equal(t, "2024-01-01", merged.DataPoints[1].Date)
	assert.Equal(t, "2024-02-01", merged.DataPoints[2].Date)
	assert.Equal(t, "2024-03-01", merged.DataPoints[3].Date)

	// Stable sort keeps target's point ahead of source's on the shared date.
	assert.Equal(t, 10.0, merged.DataPoints[0].Value)
	assert.Equal(t, 11.0, merged.DataPoints[1].Value)

	assert.Equal(t, "2024-03-01", merged.LatestDate)
	assert.Equal(t, 30.0, merged.Value["2024-03-01"])
}

func TestMergeRenamedKPIScalarTakesLatestValue(t *testing.T) {
	target := KPIRecord{
		ID:                "t1",
		VisualizationType: string(kpicsv.KindNumber),
		Value:             kpicsv.ValueRecord{"0": 100.0},
		DataPoints: []kpicsv.Point{
			{Date: "2024-01-01", Value: 100},
		},
	}
	source := KPIRecord{
		ID:                "s1",
		VisualizationType: string(kpicsv.KindNumber),
		DataPoints: []kpicsv.Point{
			{Date: "2024-02-01", Value: 120},
		},
	}

	merged := MergeRenamedKPI(target, source)
	require.Len(t, merged.DataPoints, 2)
	assert.Equal(t, 120.0, merged.Value["0"])
}

func TestMergeRenamedKPIPieMergesLikeTimeSeries(t *testing.T) {
	// Pie is categorical on import but not in the rename merge rule.
	target := KPIRecord{
		ID:                "t1",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypePie),
		DataPoints:        []kpicsv.Point{{Date: "A", Value: 1}},
	}
	source := KPIRecord{
		ID:                "s1",
		VisualizationType: string(kpicsv.KindChart),
		ChartType:         string(kpicsv.SubtypePie),
		DataPoints:        []kpicsv.Point{{Date: "A", Value: 2}},
	}

	merged := MergeRenamedKPI(target, source)
	assert.Len(t, merged.DataPoints, 2, "pie keeps both points instead of collapsing by category")
}

func TestMergesByCategory(t *testing.T) {
	assert.True(t, mergesByCategory(string(kpicsv.SubtypeBar)))
	assert.True(t, mergesByCategory(string(kpicsv.SubtypeRadar)))
	assert.True(t, mergesByCategory(string(kpicsv.SubtypeRadialBar)))
	assert.False(t, mergesByCategory(string(kpicsv.SubtypePie)))
	assert.False(t, mergesByCategory(string(kpicsv.SubtypeDonut)))
	assert.False(t, mergesByCategory(string(kpicsv.SubtypeLine)))
}
