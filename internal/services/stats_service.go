package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Serena-AI862/Serena/internal/models"
	"github.com/Serena-AI862/Serena/internal/store"
)

// statsWindow is the rolling span all weekly statistics are computed over,
// anchored at the aggregation invocation time rather than any midnight.
const statsWindow = 7 * 24 * time.Hour

// missedCallsPlaceholder is not derived from call data. The original dashboard
// shipped 8.2 as a fixed value and the field keeps that contract.
// TODO: compute from missed-call events once the telephony feed delivers them.
const missedCallsPlaceholder = 8.2

// StatsService derives weekly analytics from a user's call rows.
type StatsService struct {
	store *store.Store
}

func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

// WeeklyStatsFor fetches the user's trailing 7-day window and aggregates it.
func (s *StatsService) WeeklyStatsFor(ctx context.Context, userID int) (models.WeeklyStats, error) {
	now := time.Now()
	calls, err := s.store.GetCallsSince(ctx, userID, now.Add(-statsWindow))
	if err != nil {
		return models.WeeklyStats{}, err
	}
	return ComputeWeeklyStats(calls, now), nil
}

// ComputeWeeklyStats aggregates call rows into the weekly summary. The window
// is the 168 hours ending at now; rows outside it are ignored, so callers may
// pass a superset. All zero-call divisions short-circuit to zero values.
func ComputeWeeklyStats(calls []models.Call, now time.Time) models.WeeklyStats {
	windowStart := now.Add(-statsWindow)
	window := make([]models.Call, 0, len(calls))
	for _, c := range calls {
		if !c.Timestamp.Before(windowStart) {
			window = append(window, c)
		}
	}

	totalCalls := len(window)
	appointmentsBooked := 0
	totalDuration := 0
	totalRating := 0
	for _, c := range window {
		if c.AppointmentBooked {
			appointmentsBooked++
		}
		totalDuration += c.DurationSeconds
		totalRating += c.Rating
	}

	avgDurationSeconds := 0
	avgRating := 0.0
	callToAppointmentRate := 0.0
	if totalCalls > 0 {
		avgDurationSeconds = int(math.Round(float64(totalDuration) / float64(totalCalls)))
		avgRating = math.Round(float64(totalRating)/float64(totalCalls)*10) / 10
		callToAppointmentRate = math.Round(float64(appointmentsBooked)/float64(totalCalls)*100*10) / 10
	}
	avgDuration := fmt.Sprintf("%d:%02d", avgDurationSeconds/60, avgDurationSeconds%60)

	// One bucket per trailing calendar day, oldest first, today last. Two
	// calls at different times on the same date share a bucket.
	volume := make([]models.DayVolume, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		count := 0
		for _, c := range window {
			if sameCalendarDay(c.Timestamp, date) {
				count++
			}
		}
		volume = append(volume, models.DayVolume{Day: date.Format("Mon"), Calls: count})
	}

	// Ties go to the earliest day in the sequence.
	topDay := volume[0]
	for _, v := range volume[1:] {
		if v.Calls > topDay.Calls {
			topDay = v
		}
	}

	// Ties go to the lowest hour.
	var hourCounts [24]int
	for _, c := range window {
		hourCounts[c.Timestamp.Hour()]++
	}
	peakHour := 0
	for h := 1; h < 24; h++ {
		if hourCounts[h] > hourCounts[peakHour] {
			peakHour = h
		}
	}

	return models.WeeklyStats{
		TotalCalls:            totalCalls,
		AppointmentsBooked:    appointmentsBooked,
		AvgDuration:           avgDuration,
		AvgRating:             avgRating,
		CallToAppointmentRate: callToAppointmentRate,
		MissedCallsPercentage: missedCallsPlaceholder,
		WeeklyCallVolume:      volume,
		TopPerformingDay:      topDay.Day,
		PeakCallHours:         fmt.Sprintf("%d:00", peakHour),
	}
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
