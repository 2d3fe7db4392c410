package scorecard

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/api/constants"
	"PulseboardSaaS/api/utils"
)

// ScorecardRecord mirrors one scorecards row.
type ScorecardRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
	CreatedAt string `json:"created_at"`
}

// CreateScorecard inserts a new empty scorecard owned by the requesting user.
func CreateScorecard(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID string `json:"user_id"`
			Name   string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		id := uuid.New().String()
		_, err := pgxPool.Exec(ctx, `
			INSERT INTO scorecards (id, name, created_by, created_at)
			VALUES ($1, $2, $3, now())
		`, id, req.Name, req.UserID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", map[string]interface{}{"id": id, "name": req.Name})
	}
}

// GetScorecards lists scorecards, newest first, paginated.
func GetScorecards(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		page, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		total, err := utils.CountTotal(ctx, pgxPool, `SELECT COUNT(*) FROM scorecards`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		page.SetPaginationStats(total)

		rows, err := pgxPool.Query(ctx, `
			SELECT id, name, created_by, created_at::text
			FROM scorecards
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, page.Limit, page.Offset)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		out := []ScorecardRecord{}
		for rows.Next() {
			var s ScorecardRecord
			if err := rows.Scan(&s.ID, &s.Name, &s.CreatedBy, &s.CreatedAt); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
				return
			}
			out = append(out, s)
		}
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"scorecards": out,
			"pagination": page,
		})
	}
}

// sectionView is one section of the dashboard read model, its KPIs in
// display order.
type sectionView struct {
	SectionRecord
	KPIs []KPIRecord `json:"kpis"`
}

type scorecardView struct {
	ScorecardRecord
	Sections       []sectionView `json:"sections"`
	UnsectionedKPI []KPIRecord   `json:"unsectioned_kpis"`
}

// GetScorecardFull returns a scorecard with its sections and ordered KPIs,
// shaped for chart rendering.
func GetScorecardFull(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		var sc ScorecardRecord
		err := pgxPool.QueryRow(ctx, `
			SELECT id, name, created_by, created_at::text FROM scorecards WHERE id = $1
		`, id).Scan(&sc.ID, &sc.Name, &sc.CreatedBy, &sc.CreatedAt)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrScorecardNotFound)
			return
		}

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)
		txa := &pgxImportTx{tx: tx}

		sections, err := txa.SectionsByScorecard(ctx, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		kpis, err := txa.KPIsByScorecard(ctx, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}

		view := scorecardView{ScorecardRecord: sc, Sections: []sectionView{}, UnsectionedKPI: []KPIRecord{}}
		bySection := make(map[string]int, len(sections))
		for _, s := range sections {
			bySection[s.ID] = len(view.Sections)
			view.Sections = append(view.Sections, sectionView{SectionRecord: s, KPIs: []KPIRecord{}})
		}
		for _, k := range kpis {
			if k.SectionID != nil {
				if idx, ok := bySection[*k.SectionID]; ok {
					view.Sections[idx].KPIs = append(view.Sections[idx].KPIs, k)
					continue
				}
			}
			view.UnsectionedKPI = append(view.UnsectionedKPI, k)
		}
		api.RespondWithPayload(w, true, "", view)
	}
}

// DeleteScorecard removes a scorecard and everything under it.
func DeleteScorecard(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		tx, err := pgxPool.Begin(ctx)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxStartFailed+err.Error())
			return
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `
			DELETE FROM kpi_datapoints WHERE kpi_id IN (SELECT id FROM scorecard_kpis WHERE scorecard_id = $1)
		`, id); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if _, err := tx.Exec(ctx, `DELETE FROM scorecard_kpis WHERE scorecard_id = $1`, id); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if _, err := tx.Exec(ctx, `DELETE FROM scorecard_sections WHERE scorecard_id = $1`, id); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		tag, err := tx.Exec(ctx, `DELETE FROM scorecards WHERE id = $1`, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed+err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrScorecardNotFound)
			return
		}
		if err := tx.Commit(ctx); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTxCommitFailed+err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
