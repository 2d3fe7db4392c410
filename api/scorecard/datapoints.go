package scorecard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/internal/kpicsv"
)

// GetDatapoints lists a KPI's history in date order.
func GetDatapoints(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]

		rows, err := pgxPool.Query(ctx, `
			SELECT kpi_id, date, value, COALESCE(color, '')
			FROM kpi_datapoints
			WHERE kpi_id = $1
			ORDER BY date
		`, kpiID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		out := []DatapointRecord{}
		for rows.Next() {
			var d DatapointRecord
			if err := rows.Scan(&d.KPIID, &d.Date, &d.Value, &d.Color); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			out = append(out, d)
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

// AddDatapoint upserts a single point by (kpi_id, date). The KPI's value
// model and latest date are refreshed when the new point is the newest.
func AddDatapoint(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]
		var req struct {
			UserID string  `json:"user_id"`
			Date   string  `json:"date"`
			Value  float64 `json:"value"`
			Color  string  `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		date := kpicsv.NormalizeDate(req.Date)

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)
		txa := &pgxImportTx{tx: tx}

		kpi, err := scanKPIRecord(tx.QueryRow(ctx, `
			SELECT id, scorecard_id, section_id, kpi_name, subtitle, notes,
			       visualization_type, chart_type, value, data_points, chart_settings,
			       assigned_to, prefix, suffix, reverse_trend, trend_value, latest_date,
			       visible, display_order
			FROM scorecard_kpis WHERE id = $1
		`, kpiID))
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrKPINotFound)
			return
		}

		dp := DatapointRecord{KPIID: kpiID, Date: date, Value: req.Value, Color: req.Color}
		if err := txa.UpsertDatapoint(ctx, dp); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}

		// Mirror the point into the KPI's embedded model.
		replaced := false
		for i := range kpi.DataPoints {
			if kpicsv.NormalizeDate(kpi.DataPoints[i].Date) == date {
				kpi.DataPoints[i].Value = req.Value
				if req.Color != "" {
					kpi.DataPoints[i].Color = req.Color
				}
				replaced = true
				break
			}
		}
		if !replaced {
			kpi.DataPoints = append(kpi.DataPoints, kpicsv.Point{Date: date, Value: req.Value, Color: req.Color})
		}
		if kpi.Value == nil {
			kpi.Value = kpicsv.ValueRecord{}
		}
		if kpi.VisualizationType == string(kpicsv.KindChart) {
			kpi.Value[date] = req.Value
		} else {
			kpi.Value["0"] = req.Value
		}
		prev, prevOK := kpicsv.ParseDate(kpi.LatestDate)
		next, nextOK := kpicsv.ParseDate(date)
		if kpi.LatestDate == "" || (prevOK && nextOK && !next.Before(prev)) {
			kpi.LatestDate = date
		}

		if err := txa.UpdateKPI(ctx, kpi); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", dp)
	}
}

// DeleteDatapoint removes one point by date.
func DeleteDatapoint(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]
		var req struct {
			UserID string `json:"user_id"`
			Date   string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		tag, err := pgxPool.Exec(ctx, `
			DELETE FROM kpi_datapoints WHERE kpi_id = $1 AND date = $2
		`, kpiID, kpicsv.NormalizeDate(req.Date))
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, "datapoint not found")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
