package config

const (
	DefaultTimeZone = "UTC"

	// Service ports (overridable per service via services.yaml)
	GatewayPort   = 8081
	ScorecardPort = 6143
	DashPort      = 4143

	// Import limits
	MaxUploadBytes  = 32 << 20
	ImportBatchSize = 500

	// Section defaults applied when an import creates a section
	DefaultSectionOpacity = 100

	// Cron Configuration Constants
	DefaultStaleKPISchedule  = "0 2 * * *" // nightly stale-KPI audit
	DefaultRetentionSchedule = "30 2 * * *"
	DefaultStaleAfterDays    = 30
	DefaultMaxPointsPerKPI   = 0 // 0 disables the retention sweep
)

// SectionPalette is assigned round-robin by display order to sections the
// importer creates.
var SectionPalette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// SectionColor returns the palette color for a section's display order.
func SectionColor(displayOrder int) string {
	if displayOrder < 0 {
		displayOrder = 0
	}
	return SectionPalette[displayOrder%len(SectionPalette)]
}
