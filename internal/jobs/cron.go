package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"PulseboardSaaS/internal/config"
	"PulseboardSaaS/internal/logger"
	"PulseboardSaaS/internal/notification"
	"PulseboardSaaS/internal/serviceiface"
)

// CronService schedules the nightly stale-KPI audit and the optional
// datapoint retention sweep.
type CronService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
	cron    *cron.Cron
}

func NewCronService(cfg map[string]interface{}, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &CronService{config: cfg, pgxPool: pgxPool}
}

func (s *CronService) Name() string { return "cron" }

func (s *CronService) Start() error {
	s.cron = cron.New()

	staleSchedule := stringFromConfig(s.config, "stale_kpi_schedule", config.DefaultStaleKPISchedule)
	if _, err := s.cron.AddFunc(staleSchedule, s.auditStaleKPIs); err != nil {
		return fmt.Errorf("failed to schedule stale KPI audit: %w", err)
	}

	if maxPoints := intFromConfig(s.config, "max_points_per_kpi", config.DefaultMaxPointsPerKPI); maxPoints > 0 {
		retentionSchedule := stringFromConfig(s.config, "retention_schedule", config.DefaultRetentionSchedule)
		if _, err := s.cron.AddFunc(retentionSchedule, func() { s.sweepDatapoints(maxPoints) }); err != nil {
			return fmt.Errorf("failed to schedule retention sweep: %w", err)
		}
	}

	s.cron.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started, stale KPI audit at " + staleSchedule)
	}
	return nil
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return nil
}

// auditStaleKPIs flags visible KPIs whose newest datapoint is older than the
// configured cutoff and pushes one notification per scorecard.
func (s *CronService) auditStaleKPIs() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	staleDays := intFromConfig(s.config, "stale_after_days", config.DefaultStaleAfterDays)
	rows, err := s.pgxPool.Query(ctx, `
		SELECT k.scorecard_id, COUNT(*)
		FROM scorecard_kpis k
		WHERE k.visible
		  AND NOT EXISTS (
			SELECT 1 FROM kpi_datapoints d
			WHERE d.kpi_id = k.id
			  AND d.date >= to_char(now() - ($1 || ' days')::interval, 'YYYY-MM-DD')
		  )
		GROUP BY k.scorecard_id
	`, fmt.Sprint(staleDays))
	if err != nil {
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("[Cron][ERROR] stale KPI audit query failed: " + err.Error())
		}
		return
	}
	defer rows.Close()

	for rows.Next() {
		var scorecardID string
		var count int
		if err := rows.Scan(&scorecardID, &count); err != nil {
			continue
		}
		msg := fmt.Sprintf("%d KPIs have no datapoint newer than %d days", count, staleDays)
		notification.Notify(notification.Notification{ScorecardID: scorecardID, Message: msg})
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf("[Cron] scorecard=%s %s", scorecardID, msg))
		}
	}
}

// sweepDatapoints trims each KPI's history to the newest maxPoints rows.
func (s *CronService) sweepDatapoints(maxPoints int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	tag, err := s.pgxPool.Exec(ctx, `
		DELETE FROM kpi_datapoints d
		USING (
			SELECT kpi_id, date,
			       row_number() OVER (PARTITION BY kpi_id ORDER BY date DESC) AS rn
			FROM kpi_datapoints
		) ranked
		WHERE d.kpi_id = ranked.kpi_id AND d.date = ranked.date AND ranked.rn > $1
	`, maxPoints)
	if err != nil {
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("[Cron][ERROR] retention sweep failed: " + err.Error())
		}
		return
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("[Cron] retention sweep removed %d datapoints", tag.RowsAffected()))
	}
}

func stringFromConfig(cfg map[string]interface{}, key, fallback string) string {
	if cfg != nil {
		if v, ok := cfg[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func intFromConfig(cfg map[string]interface{}, key string, fallback int) int {
	if cfg == nil {
		return fallback
	}
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}
