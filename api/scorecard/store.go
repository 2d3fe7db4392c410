package scorecard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"PulseboardSaaS/internal/kpicsv"
)

// SectionRecord mirrors one scorecard_sections row.
type SectionRecord struct {
	ID           string `json:"id"`
	ScorecardID  string `json:"scorecard_id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	Color        string `json:"color"`
	Opacity      int    `json:"opacity"`
}

// KPIRecord mirrors one scorecard_kpis row.
type KPIRecord struct {
	ID                string                `json:"id"`
	ScorecardID       string                `json:"scorecard_id"`
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
	TrendValue        *float64              `json:"trend_value"`
	LatestDate        string                `json:"latest_date"`
	Visible           bool                  `json:"visible"`
	DisplayOrder      int                   `json:"display_order"`
}

// DatapointRecord mirrors one kpi_datapoints row, unique on (kpi_id, date).
type DatapointRecord struct {
	KPIID string  `json:"kpi_id"`
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// ImportTx is the set of store operations the reconciler composes inside one
// transaction.
type ImportTx interface {
	SectionsByScorecard(ctx context.Context, scorecardID string) ([]SectionRecord, error)
	InsertSection(ctx context.Context, s SectionRecord) error
	KPIsByScorecard(ctx context.Context, scorecardID string) ([]KPIRecord, error)
	InsertKPI(ctx context.Context, k KPIRecord) error
	UpdateKPI(ctx context.Context, k KPIRecord) error
	UpsertDatapoint(ctx context.Context, d DatapointRecord) error
}

// ImportStore is the unit-of-work boundary for imports: the scorecard
// pre-flight check runs outside the transaction, everything else inside it.
// A returned error from fn rolls the whole transaction back.
type ImportStore interface {
	ScorecardExists(ctx context.Context, scorecardID string) (bool, error)
	RunInTransaction(ctx context.Context, fn func(tx ImportTx) error) error
}

// pgxImportStore backs ImportStore with a pgx pool.
type pgxImportStore struct {
	pool *pgxpool.Pool
}

// NewImportStore wraps a pgx pool in the ImportStore contract.
func NewImportStore(pool *pgxpool.Pool) ImportStore {
	return &pgxImportStore{pool: pool}
}

func (s *pgxImportStore) ScorecardExists(ctx context.Context, scorecardID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scorecards WHERE id = $1)`, scorecardID).Scan(&exists)
	return exists, err
}

func (s *pgxImportStore) RunInTransaction(ctx context.Context, fn func(tx ImportTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(&pgxImportTx{tx: tx}); err != nil {
		tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type pgxImportTx struct {
	tx pgx.Tx
}

func (t *pgxImportTx) SectionsByScorecard(ctx context.Context, scorecardID string) ([]SectionRecord, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, scorecard_id, name, display_order, color, opacity
		FROM scorecard_sections
		WHERE scorecard_id = $1
		ORDER BY display_order
	`, scorecardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []SectionRecord
	for rows.Next() {
		var s SectionRecord
		if err := rows.Scan(&s.ID, &s.ScorecardID, &s.Name, &s.DisplayOrder, &s.Color, &s.Opacity); err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func (t *pgxImportTx) InsertSection(ctx context.Context, s SectionRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO scorecard_sections (id, scorecard_id, name, display_order, color, opacity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.ScorecardID, s.Name, s.DisplayOrder, s.Color, s.Opacity)
	return err
}

func (t *pgxImportTx) KPIsByScorecard(ctx context.Context, scorecardID string) ([]KPIRecord, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, scorecard_id, section_id, kpi_name, subtitle, notes,
		       visualization_type, chart_type, value, data_points, chart_settings,
		       assigned_to, prefix, suffix, reverse_trend, trend_value, latest_date,
		       visible, display_order
		FROM scorecard_kpis
		WHERE scorecard_id = $1
		ORDER BY display_order
	`, scorecardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kpis []KPIRecord
	for rows.Next() {
		k, err := scanKPIRecord(rows)
		if err != nil {
			return nil, err
		}
		kpis = append(kpis, k)
	}
	return kpis, rows.Err()
}

func scanKPIRecord(row pgx.Row) (KPIRecord, error) {
	var k KPIRecord
	var valueJSON, pointsJSON, csJSON []byte
	if err := row.Scan(
		&k.ID, &k.ScorecardID, &k.SectionID, &k.KPIName, &k.Subtitle, &k.Notes,
		&k.VisualizationType, &k.ChartType, &valueJSON, &pointsJSON, &csJSON,
		&k.AssignedTo, &k.Prefix, &k.Suffix, &k.ReverseTrend, &k.TrendValue,
		&k.LatestDate, &k.Visible, &k.DisplayOrder,
	); err != nil {
		return k, err
	}
	if len(valueJSON) > 0 {
		if err := json.Unmarshal(valueJSON, &k.Value); err != nil {
			return k, err
		}
	}
	if len(pointsJSON) > 0 {
		if err := json.Unmarshal(pointsJSON, &k.DataPoints); err != nil {
			return k, err
		}
	}
	if len(csJSON) > 0 {
		if err := json.Unmarshal(csJSON, &k.ChartSettings); err != nil {
			return k, err
		}
	}
	return k, nil
}

func kpiJSONColumns(k KPIRecord) ([]byte, []byte, []byte, error) {
	valueJSON, err := json.Marshal(k.Value)
	if err != nil {
		return nil, nil, nil, err
	}
	pointsJSON, err := json.Marshal(k.DataPoints)
	if err != nil {
		return nil, nil, nil, err
	}
	var csJSON []byte
	if k.ChartSettings != nil {
		if csJSON, err = json.Marshal(k.ChartSettings); err != nil {
			return nil, nil, nil, err
		}
	}
	return valueJSON, pointsJSON, csJSON, nil
}

func (t *pgxImportTx) InsertKPI(ctx context.Context, k KPIRecord) error {
	valueJSON, pointsJSON, csJSON, err := kpiJSONColumns(k)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO scorecard_kpis (
			id, scorecard_id, section_id, kpi_name, subtitle, notes,
			visualization_type, chart_type, value, data_points, chart_settings,
			assigned_to, prefix, suffix, reverse_trend, trend_value, latest_date,
			visible, display_order, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, now(), now()
		)
	`, k.ID, k.ScorecardID, k.SectionID, k.KPIName, k.Subtitle, k.Notes,
		k.VisualizationType, k.ChartType, valueJSON, pointsJSON, csJSON,
		k.AssignedTo, k.Prefix, k.Suffix, k.ReverseTrend, k.TrendValue,
		k.LatestDate, k.Visible, k.DisplayOrder)
	return err
}

func (t *pgxImportTx) UpdateKPI(ctx context.Context, k KPIRecord) error {
	valueJSON, pointsJSON, csJSON, err := kpiJSONColumns(k)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		UPDATE scorecard_kpis SET
			section_id = $2, kpi_name = $3, subtitle = $4, notes = $5,
			visualization_type = $6, chart_type = $7, value = $8, data_points = $9,
			chart_settings = $10, assigned_to = $11, prefix = $12, suffix = $13,
			reverse_trend = $14, trend_value = $15, latest_date = $16,
			visible = $17, updated_at = now()
		WHERE id = $1
	`, k.ID, k.SectionID, k.KPIName, k.Subtitle, k.Notes,
		k.VisualizationType, k.ChartType, valueJSON, pointsJSON, csJSON,
		k.AssignedTo, k.Prefix, k.Suffix, k.ReverseTrend, k.TrendValue,
		k.LatestDate, k.Visible)
	return err
}

func (t *pgxImportTx) UpsertDatapoint(ctx context.Context, d DatapointRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO kpi_datapoints (kpi_id, date, value, color)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (kpi_id, date) DO UPDATE SET value = EXCLUDED.value, color = EXCLUDED.color
	`, d.KPIID, d.Date, d.Value, d.Color)
	return err
}
