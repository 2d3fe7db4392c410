package scorecard

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/internal/config"
)

// CreateSection adds a section to a scorecard. Color and opacity fall back
// to the palette defaults when omitted.
func CreateSection(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		scorecardID := mux.Vars(r)["id"]
		var req struct {
			UserID  string `json:"user_id"`
			Name    string `json:"name"`
			Color   string `json:"color"`
			Opacity *int   `json:"opacity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		var order int
		if err := pgxPool.QueryRow(ctx, `
			SELECT COUNT(*) FROM scorecard_sections WHERE scorecard_id = $1
		`, scorecardID).Scan(&order); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}

		section := SectionRecord{
			ID:           uuid.New().String(),
			ScorecardID:  scorecardID,
			Name:         req.Name,
			DisplayOrder: order,
			Color:        req.Color,
			Opacity:      config.DefaultSectionOpacity,
		}
		if section.Color == "" {
			section.Color = config.SectionColor(order)
		}
		if req.Opacity != nil {
			section.Opacity = *req.Opacity
		}

		_, err := pgxPool.Exec(ctx, `
			INSERT INTO scorecard_sections (id, scorecard_id, name, display_order, color, opacity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, section.ID, section.ScorecardID, section.Name, section.DisplayOrder, section.Color, section.Opacity)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", section)
	}
}

// GetSections lists a scorecard's sections in display order.
func GetSections(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		scorecardID := mux.Vars(r)["id"]

		rows, err := pgxPool.Query(ctx, `
			SELECT id, scorecard_id, name, display_order, color, opacity
			FROM scorecard_sections
			WHERE scorecard_id = $1
			ORDER BY display_order
		`, scorecardID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		out := []SectionRecord{}
		for rows.Next() {
			var s SectionRecord
			if err := rows.Scan(&s.ID, &s.ScorecardID, &s.Name, &s.DisplayOrder, &s.Color, &s.Opacity); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			out = append(out, s)
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

// UpdateSection patches name, color, opacity or display order. Only the
// fields present in the body change.
func UpdateSection(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sectionID := mux.Vars(r)["sectionId"]
		var req struct {
			UserID       string  `json:"user_id"`
			Name         *string `json:"name"`
			Color        *string `json:"color"`
			Opacity      *int    `json:"opacity"`
			DisplayOrder *int    `json:"display_order"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		tag, err := pgxPool.Exec(ctx, `
			UPDATE scorecard_sections SET
				name = COALESCE($2, name),
				color = COALESCE($3, color),
				opacity = COALESCE($4, opacity),
				display_order = COALESCE($5, display_order)
			WHERE id = $1
		`, sectionID, req.Name, req.Color, req.Opacity, req.DisplayOrder)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrSectionNotFound)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// DeleteSection removes a section. Its KPIs survive as sectionless rows.
func DeleteSection(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sectionID := mux.Vars(r)["sectionId"]

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `
			UPDATE scorecard_kpis SET section_id = NULL, updated_at = now() WHERE section_id = $1
		`, sectionID); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		tag, err := tx.Exec(ctx, `DELETE FROM scorecard_sections WHERE id = $1`, sectionID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrSectionNotFound)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
