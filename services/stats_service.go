package services

import (
	"context"
	"time"

	"questifyAPI/internal/stats"
)

// StatsService derives the read-only dashboard block from the user's
// rolled-over snapshot.
type StatsService struct {
	state *StateService
}

func NewStatsService(state *StateService) *StatsService {
	return &StatsService{state: state}
}

func (s *StatsService) UserStats(ctx context.Context, userID string) (*stats.UserStats, error) {
	st, err := s.state.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats.Compute(st, time.Now(), locationFor(st)), nil
}
