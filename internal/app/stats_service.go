package app

import (
	"context"

	"quiz-tutor-bot/internal/domain"
)

// StatsService computes aggregate metrics and the export datasets for
// administrators. Authorization is checked against a configured
// allow-list of user IDs.
type StatsService struct {
	log    ResponseLog
	admins map[int64]struct{}
}

func NewStatsService(log ResponseLog, adminIDs []int64) *StatsService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &StatsService{log: log, admins: admins}
}

// Authorize returns domain.ErrUnauthorized unless the user is on the
// administrator allow-list.
func (s *StatsService) Authorize(userID int64) error {
	if _, ok := s.admins[userID]; !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// Summary returns the aggregate view over all users and attempts.
func (s *StatsService) Summary(ctx context.Context) (domain.SummaryStats, error) {
	return s.log.Summary(ctx)
}

// ExportDatasets returns the two report datasets: per-user aggregates
// sorted by accuracy descending, and all attempts sorted by id ascending.
func (s *StatsService) ExportDatasets(ctx context.Context) ([]domain.UserAggregate, []domain.AttemptRow, error) {
	users, err := s.log.UserAggregates(ctx)
	if err != nil {
		return nil, nil, err
	}
	attempts, err := s.log.AttemptRows(ctx)
	if err != nil {
		return nil, nil, err
	}
	return users, attempts, nil
}
