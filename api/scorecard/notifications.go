package scorecard

import (
	"fmt"
	"net/http"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/internal/dashboard"
	"PulseboardSaaS/internal/logger"
	"PulseboardSaaS/internal/notification"
)

// notifyImport records one import batch in the notification feed and pushes
// an SSE event to connected dashboards.
func notifyImport(summary *ImportSummary, by, fingerprint string) {
	msg := fmt.Sprintf("%s imported %d new and %d updated KPIs (%d datapoints)",
		by, summary.KPIsCreated, summary.KPIsUpdated, summary.DatapointsUpserted)
	notification.Notify(notification.Notification{ScorecardID: summary.ScorecardID, Message: msg})
	dashboard.BroadcastGlobal(dashboard.Event{Type: "import", ScorecardID: summary.ScorecardID, Payload: summary})
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("import %s scorecard=%s %s", fingerprint, summary.ScorecardID, msg))
	}
}

// notifyMerge records a rename that collapsed two KPIs into one.
func notifyMerge(scorecardID, oldName, newName, by string) {
	msg := fmt.Sprintf("%s renamed KPI %q to %q, merging it into the existing KPI", by, oldName, newName)
	notification.Notify(notification.Notification{ScorecardID: scorecardID, Message: msg})
	dashboard.BroadcastGlobal(dashboard.Event{
		Type:        "kpi_merged",
		ScorecardID: scorecardID,
		Payload:     map[string]string{"old_name": oldName, "new_name": newName},
	})
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("merge scorecard=%s %s", scorecardID, msg))
	}
}

// GetNotifications drains and returns all pending notifications.
func GetNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := notification.DrainGlobal()
		if pending == nil {
			pending = []notification.Notification{}
		}
		api.RespondWithPayload(w, true, "", pending)
	}
}
