package dash

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/internal/config"
)

func StartDashService(pgxPool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dash/hello", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello from Dashboard Service"))
	})

	mux.Handle("/dash/overview", GetOverview(pgxPool))
	mux.Handle("/dash/assigned", GetAssignedKPIs(pgxPool))

	addr := fmt.Sprintf(":%d", config.DashPort)
	log.Println("Dashboard Service started on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Dashboard Service failed: %v", err)
	}
}

// GetOverview returns landing-page totals across all scorecards.
func GetOverview(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var overview struct {
			Scorecards int `json:"scorecards"`
			Sections   int `json:"sections"`
			KPIs       int `json:"kpis"`
			Hidden     int `json:"hidden_kpis"`
			Datapoints int `json:"datapoints"`
		}
		err := pgxPool.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM scorecards),
				(SELECT COUNT(*) FROM scorecard_sections),
				(SELECT COUNT(*) FROM scorecard_kpis),
				(SELECT COUNT(*) FROM scorecard_kpis WHERE NOT visible),
				(SELECT COUNT(*) FROM kpi_datapoints)
		`).Scan(&overview.Scorecards, &overview.Sections, &overview.KPIs, &overview.Hidden, &overview.Datapoints)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", overview)
	}
}

// GetAssignedKPIs lists KPIs assigned to the given owner name across all
// scorecards.
func GetAssignedKPIs(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID string `json:"user_id"`
			Owner  string `json:"owner"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Owner == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		rows, err := pgxPool.Query(ctx, `
			SELECT k.id, k.scorecard_id, s.name, k.kpi_name, k.visualization_type,
			       k.chart_type, k.latest_date, k.visible
			FROM scorecard_kpis k
			JOIN scorecards s ON s.id = k.scorecard_id
			WHERE $1 = ANY(k.assigned_to)
			ORDER BY s.name, k.display_order
		`, req.Owner)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		out := []map[string]interface{}{}
		for rows.Next() {
			var id, scorecardID, scorecardName, kpiName, visType, chartType, latestDate string
			var visible bool
			if err := rows.Scan(&id, &scorecardID, &scorecardName, &kpiName, &visType, &chartType, &latestDate, &visible); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			out = append(out, map[string]interface{}{
				"kpi_id":             id,
				"scorecard_id":       scorecardID,
				"scorecard_name":     scorecardName,
				"kpi_name":           kpiName,
				"visualization_type": visType,
				"chart_type":         chartType,
				"latest_date":        latestDate,
				"visible":            visible,
			})
		}
		api.RespondWithPayload(w, true, "", out)
	}
}
