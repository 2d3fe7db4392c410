package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUploadCSV(t *testing.T) {
	csv := "KPI Name,Value,Date\nRevenue,100,2024-01-01\nRevenue,110,2024-02-01\n"
	result, err := parseUpload("metrics.csv", []byte(csv))
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.KPIs, 1)
	assert.Equal(t, "Revenue", result.KPIs[0].Name)
}

func TestParseUploadExtensionlessFallsBackToCSV(t *testing.T) {
	csv := "KPI Name,Value\nUptime,99.9\n"
	result, err := parseUpload("upload", []byte(csv))
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestParseUploadUnsupportedExtension(t *testing.T) {
	_, err := parseUpload("metrics.pdf", []byte("whatever"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestParseUploadBadXLSX(t *testing.T) {
	_, err := parseUpload("metrics.xlsx", []byte("not a zip archive"))
	require.Error(t, err)
}
