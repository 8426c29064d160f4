// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartStatsScheduler logs an hourly snapshot of the registration aggregates
// so operators can watch intake without querying the admin API.
func (s *AdminService) StartStatsScheduler() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to create stats scheduler")
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			report, err := s.Stats(ctx)
			if err != nil {
				s.Log.Error().Err(err).Msg("stats snapshot failed")
				return
			}
			s.Log.Info().
				Int64("total_registrations", report.TotalRegistrations).
				Int64("tickets_issued", report.TicketsIssued).
				Int("events_with_registrations", len(report.ByEvent)).
				Msg("stats snapshot")
		}),
	)
	if err != nil {
		s.Log.Error().Err(err).Msg("failed to schedule stats snapshot")
	}
}
