package scorecard

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/internal/kpicsv"
)

// CreateKPI inserts a single KPI, typically one added by hand rather than
// through an import.
func CreateKPI(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		scorecardID := mux.Vars(r)["id"]
		var req struct {
			UserID            string                `json:"user_id"`
			SectionID         *string               `json:"section_id"`
			KPIName           string                `json:"kpi_name"`
			Subtitle          string                `json:"subtitle"`
			Notes             string                `json:"notes"`
			VisualizationType string                `json:"visualization_type"`
			ChartType         string                `json:"chart_type"`
			Value             kpicsv.ValueRecord    `json:"value"`
			DataPoints        []kpicsv.Point        `json:"data_points"`
			ChartSettings     *kpicsv.ChartSettings `json:"chart_settings"`
			AssignedTo        []string              `json:"assigned_to"`
			Prefix            string                `json:"prefix"`
			Suffix            string                `json:"suffix"`
			ReverseTrend      bool                  `json:"reverse_trend"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.KPIName == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.VisualizationType == "" {
			req.VisualizationType = string(kpicsv.KindNumber)
		}

		var order int
		if err := pgxPool.QueryRow(ctx, `
			SELECT COUNT(*) FROM scorecard_kpis WHERE scorecard_id = $1
		`, scorecardID).Scan(&order); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}

		record := KPIRecord{
			ID:                uuid.New().String(),
			ScorecardID:       scorecardID,
			SectionID:         req.SectionID,
			KPIName:           req.KPIName,
			Subtitle:          req.Subtitle,
			Notes:             req.Notes,
			VisualizationType: req.VisualizationType,
			ChartType:         req.ChartType,
			Value:             req.Value,
			DataPoints:        req.DataPoints,
			ChartSettings:     req.ChartSettings,
			AssignedTo:        req.AssignedTo,
			Prefix:            req.Prefix,
			Suffix:            req.Suffix,
			ReverseTrend:      req.ReverseTrend,
			Visible:           true,
			DisplayOrder:      order,
		}
		if record.Value == nil {
			record.Value = kpicsv.ValueRecord{}
		}
		if len(record.DataPoints) > 0 {
			record.LatestDate = record.DataPoints[len(record.DataPoints)-1].Date
		}

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)
		txa := &pgxImportTx{tx: tx}
		if err := txa.InsertKPI(ctx, record); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		for _, p := range record.DataPoints {
			dp := DatapointRecord{KPIID: record.ID, Date: kpicsv.NormalizeDate(p.Date), Value: p.Value, Color: p.Color}
			if err := txa.UpsertDatapoint(ctx, dp); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", record)
	}
}

// PatchKPI updates metadata and presentation fields of one KPI. Name changes
// go through RenameKPI instead so collisions merge.
func PatchKPI(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]
		var req struct {
			UserID        string                `json:"user_id"`
			SectionID     *string               `json:"section_id"`
			Subtitle      *string               `json:"subtitle"`
			Notes         *string               `json:"notes"`
			ChartType     *string               `json:"chart_type"`
			ChartSettings *kpicsv.ChartSettings `json:"chart_settings"`
			Prefix        *string               `json:"prefix"`
			Suffix        *string               `json:"suffix"`
			ReverseTrend  *bool                 `json:"reverse_trend"`
			DisplayOrder  *int                  `json:"display_order"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		var csJSON []byte
		if req.ChartSettings != nil {
			var err error
			if csJSON, err = json.Marshal(req.ChartSettings); err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
				return
			}
		}

		tag, err := pgxPool.Exec(ctx, `
			UPDATE scorecard_kpis SET
				section_id = CASE WHEN $2::uuid IS NULL THEN section_id ELSE $2 END,
				subtitle = COALESCE($3, subtitle),
				notes = COALESCE($4, notes),
				chart_type = COALESCE($5, chart_type),
				chart_settings = COALESCE($6, chart_settings),
				prefix = COALESCE($7, prefix),
				suffix = COALESCE($8, suffix),
				reverse_trend = COALESCE($9, reverse_trend),
				display_order = COALESCE($10, display_order),
				updated_at = now()
			WHERE id = $1
		`, kpiID, req.SectionID, req.Subtitle, req.Notes, req.ChartType, csJSON,
			req.Prefix, req.Suffix, req.ReverseTrend, req.DisplayOrder)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrKPINotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// ToggleKPIVisibility flips or sets the visible flag.
func ToggleKPIVisibility(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]
		var req struct {
			UserID  string `json:"user_id"`
			Visible *bool  `json:"visible"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		var tag string
		query := `UPDATE scorecard_kpis SET visible = NOT visible, updated_at = now() WHERE id = $1 RETURNING id`
		args := []interface{}{kpiID}
		if req.Visible != nil {
			query = `UPDATE scorecard_kpis SET visible = $2, updated_at = now() WHERE id = $1 RETURNING id`
			args = append(args, *req.Visible)
		}
		if err := pgxPool.QueryRow(ctx, query, args...).Scan(&tag); err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrKPINotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// AssignKPIOwners replaces the assigned_to list.
func AssignKPIOwners(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]
		var req struct {
			UserID     string   `json:"user_id"`
			AssignedTo []string `json:"assigned_to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.AssignedTo == nil {
			req.AssignedTo = []string{}
		}

		tag, err := pgxPool.Exec(ctx, `
			UPDATE scorecard_kpis SET assigned_to = $2, updated_at = now() WHERE id = $1
		`, kpiID, req.AssignedTo)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrKPINotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// DeleteKPI removes a KPI and its datapoint history.
func DeleteKPI(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		kpiID := mux.Vars(r)["kpiId"]

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM kpi_datapoints WHERE kpi_id = $1`, kpiID); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		tag, err := tx.Exec(ctx, `DELETE FROM scorecard_kpis WHERE id = $1`, kpiID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrKPINotFound)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
