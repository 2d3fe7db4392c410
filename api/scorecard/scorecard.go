package scorecard

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	api "PulseboardSaaS/api"
	"PulseboardSaaS/internal/config"
	"PulseboardSaaS/internal/dashboard"
)

func StartScorecardService(pgxPool *pgxpool.Pool) {
	r := mux.NewRouter()
	r.Use(api.SessionMiddleware)
	r.HandleFunc("/scorecard/hello", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("Hello from Scorecard Service"))
	})

	sse := dashboard.NewSSEServer()

	// Scorecards
	r.Handle("/scorecard", CreateScorecard(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard", GetScorecards(pgxPool)).Methods(http.MethodGet)
	r.Handle("/scorecard/notifications", GetNotifications()).Methods(http.MethodGet)
	r.HandleFunc("/scorecard/stream", sse.HandleSSE).Methods(http.MethodGet)
	r.Handle("/scorecard/{id}/full", GetScorecardFull(pgxPool)).Methods(http.MethodGet)
	r.Handle("/scorecard/{id}", DeleteScorecard(pgxPool)).Methods(http.MethodDelete)

	// Import
	r.Handle("/scorecard/{id}/import", UploadScorecardData(pgxPool)).Methods(http.MethodPost)

	// Sections
	r.Handle("/scorecard/{id}/sections", CreateSection(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard/{id}/sections", GetSections(pgxPool)).Methods(http.MethodGet)
	r.Handle("/scorecard/sections/{sectionId}", UpdateSection(pgxPool)).Methods(http.MethodPut)
	r.Handle("/scorecard/sections/{sectionId}", DeleteSection(pgxPool)).Methods(http.MethodDelete)

	// KPIs
	r.Handle("/scorecard/{id}/kpis", CreateKPI(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard/kpis/{kpiId}", PatchKPI(pgxPool)).Methods(http.MethodPut)
	r.Handle("/scorecard/kpis/{kpiId}", DeleteKPI(pgxPool)).Methods(http.MethodDelete)
	r.Handle("/scorecard/kpis/{kpiId}/visibility", ToggleKPIVisibility(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard/kpis/{kpiId}/assign", AssignKPIOwners(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard/kpis/rename", RenameKPI(pgxPool)).Methods(http.MethodPost)

	// Datapoints
	r.Handle("/scorecard/kpis/{kpiId}/datapoints", GetDatapoints(pgxPool)).Methods(http.MethodGet)
	r.Handle("/scorecard/kpis/{kpiId}/datapoints", AddDatapoint(pgxPool)).Methods(http.MethodPost)
	r.Handle("/scorecard/kpis/{kpiId}/datapoints", DeleteDatapoint(pgxPool)).Methods(http.MethodDelete)

	addr := fmt.Sprintf(":%d", config.ScorecardPort)
	log.Println("Scorecard Service started on", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("Scorecard Service failed: %v", err)
	}
}
