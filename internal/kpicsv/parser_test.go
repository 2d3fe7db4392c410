package kpicsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("revenue scenario", func(t *testing.T) {
		csv := "Name,Value,Date\n" +
			"Revenue,100,2024-01-01\n" +
			"Revenue,110,2024-01-08\n" +
			"Revenue,120,2024-01-15\n"
		res := Parse(csv)

		require.True(t, res.Success)
		require.Len(t, res.KPIs, 1)
		kpi := res.KPIs[0]
		assert.Equal(t, "Revenue", kpi.Name)
		assert.Equal(t, KindNumber, kpi.Kind)
		assert.Equal(t, ValueRecord{"0": 120.0}, kpi.Value)
		require.NotNil(t, kpi.TrendValue)
		assert.InDelta(t, 10.0, *kpi.TrendValue, 1e-9)
	})

	t.Run("regions single row bar chart", func(t *testing.T) {
		csv := "Name,Subtitle,Value,Date,Notes,Visualization Type,Chart Type\n" +
			`Regions,,North:10 South:20,2024-01-01,,,bar` + "\n"
		res := Parse(csv)

		require.True(t, res.Success)
		require.Len(t, res.KPIs, 1)
		kpi := res.KPIs[0]
		assert.Equal(t, KindChart, kpi.Kind)
		assert.Equal(t, SubtypeBar, kpi.ChartType)
		assert.Equal(t, ValueRecord{"North": 10.0, "South": 20.0}, kpi.Value)
	})

	t.Run("explicit visualization type wins over chart type", func(t *testing.T) {
		csv := "Name,Value,Date,Visualization Type,Chart Type\n" +
			"Uptime,99.9,2024-01-01,number,bar\n"
		res := Parse(csv)

		require.True(t, res.Success)
		require.Len(t, res.KPIs, 1)
		assert.Equal(t, KindNumber, res.KPIs[0].Kind)
		assert.Empty(t, res.KPIs[0].ChartType)
	})

	t.Run("missing name column", func(t *testing.T) {
		res := Parse("Value,Date\n100,2024-01-01\n")
		assert.False(t, res.Success)
		assert.Empty(t, res.KPIs)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "name")
	})

	t.Run("first seen kpi order preserved", func(t *testing.T) {
		csv := "Name,Value,Date\n" +
			"Churn,1,2024-01-01\n" +
			"Revenue,100,2024-01-01\n" +
			"Churn,2,2024-01-08\n" +
			"NPS,40,2024-01-01\n" +
			"Revenue,110,2024-01-08\n"
		res := Parse(csv)

		require.True(t, res.Success)
		require.Len(t, res.KPIs, 3)
		assert.Equal(t, "Churn", res.KPIs[0].Name)
		assert.Equal(t, "Revenue", res.KPIs[1].Name)
		assert.Equal(t, "NPS", res.KPIs[2].Name)
	})

	t.Run("out of order dates sorted before building", func(t *testing.T) {
		csv := "Name,Value,Date\n" +
			"Revenue,120,2024-01-15\n" +
			"Revenue,100,2024-01-01\n" +
			"Revenue,110,2024-01-08\n"
		res := Parse(csv)

		require.True(t, res.Success)
		kpi := res.KPIs[0]
		assert.Equal(t, ValueRecord{"0": 120.0}, kpi.Value)
		require.NotNil(t, kpi.TrendValue)
		assert.InDelta(t, 10.0, *kpi.TrendValue, 1e-9)
		assert.Equal(t, "2024-01-15", kpi.LatestDate)
	})

	t.Run("section assignment and metadata carried", func(t *testing.T) {
		csv := "Name,Value,Date,Section Name,Assigned To,Prefix,Suffix,Reverse Trend\n" +
			"Costs,500,2024-01-01,Finance,\"ava@example.com; bo@example.com\",$,,yes\n"
		res := Parse(csv)

		require.True(t, res.Success)
		kpi := res.KPIs[0]
		assert.Equal(t, "Finance", kpi.SectionName)
		assert.Equal(t, []string{"ava@example.com", "bo@example.com"}, kpi.AssignedTo)
		assert.Equal(t, "$", kpi.Prefix)
		assert.True(t, kpi.ReverseTrend)
	})

	t.Run("rows with empty name skipped", func(t *testing.T) {
		csv := "Name,Value,Date\n" +
			",55,2024-01-01\n" +
			"Revenue,100,2024-01-01\n"
		res := Parse(csv)

		require.True(t, res.Success)
		require.Len(t, res.KPIs, 1)
		assert.Equal(t, "Revenue", res.KPIs[0].Name)
	})

	t.Run("zero usable kpis reported as failure", func(t *testing.T) {
		res := Parse("Name,Value,Date\n")
		assert.False(t, res.Success)
		assert.Empty(t, res.KPIs)
		assert.NotEmpty(t, res.Errors)
	})

	t.Run("categorical group keeps category order despite date column", func(t *testing.T) {
		csv := "Name,Value,Date,Category,Chart Type\n" +
			"Mix,30,2024-03-01,Zeta,pie\n" +
			"Mix,70,2024-01-01,Alpha,pie\n"
		res := Parse(csv)

		require.True(t, res.Success)
		kpi := res.KPIs[0]
		require.Len(t, kpi.DataPoints, 2)
		assert.Equal(t, "Zeta", kpi.DataPoints[0].Date)
		assert.Equal(t, "Alpha", kpi.DataPoints[1].Date)
	})
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "revenue", NormalizeName("  Revenue "))
	assert.Equal(t, NormalizeName("MRR Growth"), NormalizeName(" mrr growth"))
}
