package scorecard

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"PulseboardSaaS/internal/serviceiface"
)

type ScorecardService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewScorecardService(cfg map[string]interface{}, pgxPool *pgxpool.Pool) serviceiface.Service {
	return &ScorecardService{config: cfg, pgxPool: pgxPool}
}

func (s *ScorecardService) Name() string {
	return "scorecard"
}

func (s *ScorecardService) Start() error {
	go StartScorecardService(s.pgxPool)
	return nil
}

func (s *ScorecardService) Stop() error {
	return nil
}
