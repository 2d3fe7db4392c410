package scorecard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"PulseboardSaaS/internal/config"
	"PulseboardSaaS/internal/kpicsv"
)

// ErrScorecardMissing is returned by ReconcileImport when the target
// scorecard does not exist. It is detected before the transaction opens and
// maps to a 404, not a transaction failure.
var ErrScorecardMissing = errors.New("scorecard not found")

// ImportSummary reports what one import changed.
type ImportSummary struct {
	ScorecardID        string `json:"scorecardId"`
	SectionsCreated    int    `json:"sectionsCreated"`
	KPIsCreated        int    `json:"kpisCreated"`
	KPIsUpdated        int    `json:"kpisUpdated"`
	DatapointsUpserted int    `json:"datapointsUpserted"`
}

func sectionKey(name string) string {
	return kpicsv.NormalizeName(name)
}

// kpiKey is the dedup key for persisted KPIs: normalized name plus the
// resolved section id (or empty for sectionless KPIs).
func kpiKey(name string, sectionID *string) string {
	sid := ""
	if sectionID != nil {
		sid = *sectionID
	}
	return kpicsv.NormalizeName(name) + "|" + sid
}

// ReconcileImport merges parsed KPIs into persisted state inside one atomic
// transaction. Sections referenced by name are created first so KPI rows can
// resolve a concrete section id; KPIs matching an existing dedup key are
// updated in place, preserving their id and visible flag; datapoints are
// deduplicated per calendar day and upserted by (kpi_id, date). Any error
// rolls the whole batch back.
func ReconcileImport(ctx context.Context, store ImportStore, scorecardID string, kpis []kpicsv.ParsedKPI) (*ImportSummary, error) {
	exists, err := store.ScorecardExists(ctx, scorecardID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrScorecardMissing
	}

	summary := &ImportSummary{ScorecardID: scorecardID}
	err = store.RunInTransaction(ctx, func(tx ImportTx) error {
		sections, err := tx.SectionsByScorecard(ctx, scorecardID)
		if err != nil {
			return err
		}
		sectionByName := make(map[string]SectionRecord, len(sections))
		for _, s := range sections {
			sectionByName[sectionKey(s.Name)] = s
		}

		// Sections before KPIs, so every KPI can resolve its section id.
		for _, kpi := range kpis {
			name := kpi.SectionName
			if name == "" {
				continue
			}
			if _, ok := sectionByName[sectionKey(name)]; ok {
				continue
			}
			order := len(sectionByName)
			section := SectionRecord{
				ID:           uuid.New().String(),
				ScorecardID:  scorecardID,
				Name:         name,
				DisplayOrder: order,
				Color:        config.SectionColor(order),
				Opacity:      config.DefaultSectionOpacity,
			}
			if err := tx.InsertSection(ctx, section); err != nil {
				return fmt.Errorf("insert section %q: %w", name, err)
			}
			sectionByName[sectionKey(name)] = section
			summary.SectionsCreated++
		}

		existing, err := tx.KPIsByScorecard(ctx, scorecardID)
		if err != nil {
			return err
		}
		kpiByKey := make(map[string]KPIRecord, len(existing))
		for _, k := range existing {
			kpiByKey[kpiKey(k.KPIName, k.SectionID)] = k
		}

		for _, kpi := range kpis {
			var sectionID *string
			if kpi.SectionName != "" {
				if s, ok := sectionByName[sectionKey(kpi.SectionName)]; ok {
					id := s.ID
					sectionID = &id
				}
			}

			record := KPIRecord{
				ScorecardID:       scorecardID,
				SectionID:         sectionID,
				KPIName:           kpi.Name,
				Subtitle:          kpi.Subtitle,
				Notes:             kpi.Notes,
				VisualizationType: string(kpi.Kind),
				ChartType:         string(kpi.ChartType),
				Value:             kpi.Value,
				DataPoints:        kpi.DataPoints,
				ChartSettings:     kpi.ChartSettings,
				AssignedTo:        kpi.AssignedTo,
				Prefix:            kpi.Prefix,
				Suffix:            kpi.Suffix,
				ReverseTrend:      kpi.ReverseTrend,
				TrendValue:        kpi.TrendValue,
				LatestDate:        kpi.LatestDate,
			}

			key := kpiKey(kpi.Name, sectionID)
			if prior, ok := kpiByKey[key]; ok {
				record.ID = prior.ID
				record.Visible = prior.Visible
				record.DisplayOrder = prior.DisplayOrder
				if err := tx.UpdateKPI(ctx, record); err != nil {
					return fmt.Errorf("update kpi %q: %w", kpi.Name, err)
				}
				summary.KPIsUpdated++
			} else {
				record.ID = uuid.New().String()
				record.Visible = true
				record.DisplayOrder = len(kpiByKey)
				if err := tx.InsertKPI(ctx, record); err != nil {
					return fmt.Errorf("insert kpi %q: %w", kpi.Name, err)
				}
				summary.KPIsCreated++
			}
			kpiByKey[key] = record

			for _, p := range dedupeDatapoints(kpi.DataPoints) {
				dp := DatapointRecord{
					KPIID: record.ID,
					Date:  kpicsv.NormalizeDate(p.Date),
					Value: p.Value,
					Color: p.Color,
				}
				if err := tx.UpsertDatapoint(ctx, dp); err != nil {
					return fmt.Errorf("upsert datapoint %q/%q: %w", kpi.Name, dp.Date, err)
				}
				summary.DatapointsUpserted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// dedupeDatapoints collapses points whose dates normalize to the same
// calendar day, keeping the entry with the chronologically latest raw date;
// ties go to the later occurrence in the input. Surviving points keep the
// first-seen key order.
func dedupeDatapoints(points []kpicsv.Point) []kpicsv.Point {
	type slot struct {
		point kpicsv.Point
		raw   time.Time
	}
	var order []string
	chosen := make(map[string]slot, len(points))

	for _, p := range points {
		key := kpicsv.NormalizeDate(p.Date)
		raw, _ := kpicsv.ParseDate(p.Date)
		prior, seen := chosen[key]
		if !seen {
			order = append(order, key)
			chosen[key] = slot{point: p, raw: raw}
			continue
		}
		if raw.Before(prior.raw) {
			continue
		}
		chosen[key] = slot{point: p, raw: raw}
	}

	out := make([]kpicsv.Point, 0, len(order))
	for _, key := range order {
		out = append(out, chosen[key].point)
	}
	return out
}
