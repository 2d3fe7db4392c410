package scorecard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PulseboardSaaS/internal/kpicsv"
)

// fakeImportStore is an in-memory ImportStore. Mutations are staged and only
// land on commit, so rollback behavior is observable.
type fakeImportStore struct {
	scorecards map[string]bool
	sections   []SectionRecord
	kpis       []KPIRecord
	datapoints map[string]DatapointRecord
}

func newFakeImportStore(scorecardIDs ...string) *fakeImportStore {
	s := &fakeImportStore{
		scorecards: make(map[string]bool),
		datapoints: make(map[string]DatapointRecord),
	}
	for _, id := range scorecardIDs {
		s.scorecards[id] = true
	}
	return s
}

func (s *fakeImportStore) ScorecardExists(_ context.Context, scorecardID string) (bool, error) {
	return s.scorecards[scorecardID], nil
}

func (s *fakeImportStore) RunInTransaction(_ context.Context, fn func(tx ImportTx) error) error {
	staged := &fakeImportTx{
		store:      s,
		sections:   append([]SectionRecord(nil), s.sections...),
		kpis:       append([]KPIRecord(nil), s.kpis...),
		datapoints: make(map[string]DatapointRecord, len(s.datapoints)),
	}
	for k, v := range s.datapoints {
		staged.datapoints[k] = v
	}
	if err := fn(staged); err != nil {
		return err
	}
	s.sections = staged.sections
	s.kpis = staged.kpis
	s.datapoints = staged.datapoints
	return nil
}

type fakeImportTx struct {
	store      *fakeImportStore
	sections   []SectionRecord
	kpis       []KPIRecord
	datapoints map[string]DatapointRecord

	failInsertKPI bool
}

func (t *fakeImportTx) SectionsByScorecard(_ context.Context, scorecardID string) ([]SectionRecord, error) {
	out := []SectionRecord{}
	for _, s := range t.sections {
		if s.ScorecardID == scorecardID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *fakeImportTx) InsertSection(_ context.Context, s SectionRecord) error {
	t.sections = append(t.sections, s)
	return nil
}

func (t *fakeImportTx) KPIsByScorecard(_ context.Context, scorecardID string) ([]KPIRecord, error) {
	out := []KPIRecord{}
	for _, k := range t.kpis {
		if k.ScorecardID == scorecardID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (t *fakeImportTx) InsertKPI(_ context.Context, k KPIRecord) error {
	if t.failInsertKPI {
		return errors.New("insert failed")
	}
	t.kpis = append(t.kpis, k)
	return nil
}

func (t *fakeImportTx) UpdateKPI(_ context.Context, k KPIRecord) error {
	for i := range t.kpis {
		if t.kpis[i].ID == k.ID {
			t.kpis[i] = k
			return nil
		}
	}
	return errors.New("kpi not found")
}

func (t *fakeImportTx) UpsertDatapoint(_ context.Context, d DatapointRecord) error {
	t.datapoints[d.KPIID+"|"+d.Date] = d
	return nil
}

func parsedKPI(name, section string, points ...kpicsv.Point) kpicsv.ParsedKPI {
	kpi := kpicsv.ParsedKPI{
		Name:        name,
		SectionName: section,
		Kind:        kpicsv.KindChart,
		ChartType:   kpicsv.SubtypeLine,
		Value:       kpicsv.ValueRecord{},
		DataPoints:  points,
	}
	for _, p := range points {
		kpi.Value[kpicsv.NormalizeDate(p.Date)] = p.Value
	}
	return kpi
}

func TestReconcileImportCreatesSectionsAndKPIs(t *testing.T) {
	store := newFakeImportStore("sc1")
	kpis := []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 100}),
		parsedKPI("Churn", "Growth", kpicsv.Point{Date: "2024-01-01", Value: 2}),
		parsedKPI("NPS", "Growth", kpicsv.Point{Date: "2024-01-01", Value: 40}),
	}

	summary, err := ReconcileImport(context.Background(), store, "sc1", kpis)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SectionsCreated)
	assert.Equal(t, 3, summary.KPIsCreated)
	assert.Equal(t, 0, summary.KPIsUpdated)
	assert.Equal(t, 3, summary.DatapointsUpserted)
	assert.Len(t, store.sections, 2)
	assert.Len(t, store.kpis, 3)

	// Sections get sequential display order and palette colors.
	assert.Equal(t, 0, store.sections[0].DisplayOrder)
	assert.Equal(t, 1, store.sections[1].DisplayOrder)
	assert.NotEmpty(t, store.sections[0].Color)
	assert.Equal(t, 100, store.sections[0].Opacity)

	// Every KPI resolved its section id.
	for _, k := range store.kpis {
		require.NotNil(t, k.SectionID)
		assert.True(t, k.Visible)
	}
}

func TestReconcileImportSecondRunUpdatesInPlace(t *testing.T) {
	store := newFakeImportStore("sc1")
	kpis := []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 100}),
		parsedKPI("Churn", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 2}),
	}

	_, err := ReconcileImport(context.Background(), store, "sc1", kpis)
	require.NoError(t, err)
	firstIDs := map[string]string{}
	for _, k := range store.kpis {
		firstIDs[k.KPIName] = k.ID
	}

	// Same payload again: nothing new, everything updated.
	summary, err := ReconcileImport(context.Background(), store, "sc1", kpis)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.SectionsCreated)
	assert.Equal(t, 0, summary.KPIsCreated)
	assert.Equal(t, 2, summary.KPIsUpdated)
	assert.Len(t, store.sections, 1)
	assert.Len(t, store.kpis, 2)
	for _, k := range store.kpis {
		assert.Equal(t, firstIDs[k.KPIName], k.ID, "update must preserve the KPI id")
	}
}

func TestReconcileImportMatchesNamesCaseInsensitively(t *testing.T) {
	store := newFakeImportStore("sc1")
	_, err := ReconcileImport(context.Background(), store, "sc1", []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 100}),
	})
	require.NoError(t, err)

	summary, err := ReconcileImport(context.Background(), store, "sc1", []kpicsv.ParsedKPI{
		parsedKPI("  REVENUE ", "FINANCE", kpicsv.Point{Date: "2024-02-01", Value: 110}),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.SectionsCreated)
	assert.Equal(t, 0, summary.KPIsCreated)
	assert.Equal(t, 1, summary.KPIsUpdated)
	assert.Len(t, store.kpis, 1)
}

func TestReconcileImportPreservesVisibleFlag(t *testing.T) {
	store := newFakeImportStore("sc1")
	_, err := ReconcileImport(context.Background(), store, "sc1", []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "", kpicsv.Point{Date: "2024-01-01", Value: 100}),
	})
	require.NoError(t, err)

	store.kpis[0].Visible = false

	_, err = ReconcileImport(context.Background(), store, "sc1", []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "", kpicsv.Point{Date: "2024-02-01", Value: 120}),
	})
	require.NoError(t, err)
	assert.False(t, store.kpis[0].Visible, "a hidden KPI must stay hidden after reimport")
}

func TestReconcileImportMissingScorecard(t *testing.T) {
	store := newFakeImportStore()
	_, err := ReconcileImport(context.Background(), store, "nope", []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "", kpicsv.Point{Date: "2024-01-01", Value: 100}),
	})
	assert.ErrorIs(t, err, ErrScorecardMissing)
	assert.Empty(t, store.kpis)
}

func TestReconcileImportRollsBackOnError(t *testing.T) {
	store := newFakeImportStore("sc1")
	failing := &failingStore{fakeImportStore: store}

	_, err := ReconcileImport(context.Background(), failing, "sc1", []kpicsv.ParsedKPI{
		parsedKPI("Revenue", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 100}),
		parsedKPI("Churn", "Finance", kpicsv.Point{Date: "2024-01-01", Value: 2}),
	})
	require.Error(t, err)

	// Nothing landed, sections included.
	assert.Empty(t, store.sections)
	assert.Empty(t, store.kpis)
	assert.Empty(t, store.datapoints)
}

// failingStore stages like the fake store but makes every KPI insert fail.
type failingStore struct {
	*fakeImportStore
}

func (s *failingStore) RunInTransaction(ctx context.Context, fn func(tx ImportTx) error) error {
	return s.fakeImportStore.RunInTransaction(ctx, func(tx ImportTx) error {
		staged := tx.(*fakeImportTx)
		staged.failInsertKPI = true
		return fn(staged)
	})
}

func TestDedupeDatapointsKeepsLatestRawDate(t *testing.T) {
	points := []kpicsv.Point{
		{Date: "2024-01-05", Value: 1},
		{Date: "01/05/2024", Value: 2}, // same day, later occurrence wins the tie
		{Date: "2024-01-06", Value: 3},
	}
	out := dedupeDatapoints(points)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0].Value)
	assert.Equal(t, 3.0, out[1].Value)
}

func TestDedupeDatapointsKeepsFirstSeenOrder(t *testing.T) {
	points := []kpicsv.Point{
		{Date: "2024-03-01", Value: 1},
		{Date: "2024-01-01", Value: 2},
		{Date: "2024-03-01", Value: 9},
	}
	out := dedupeDatapoints(points)
	require.Len(t, out, 2)
	// March stays first because it was seen first.
	assert.Equal(t, "2024-03-01", out[0].Date)
	assert.Equal(t, 9.0, out[0].Value)
	assert.Equal(t, "2024-01-01", out[1].Date)
}
