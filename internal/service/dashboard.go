package service

import (
	"context"
	"fmt"
	"time"

	"github.com/upkeepworks/property-maintenance/internal/db"
	"github.com/upkeepworks/property-maintenance/internal/models"
)

// DashboardService computes tenant-scoped maintenance statistics. It is
// read-only and recomputes from current store state on every call.
type DashboardService struct {
	requests  db.RequestStore
	schedules db.ScheduleStore
	now       func() time.Time
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(requests db.RequestStore, schedules db.ScheduleStore) *DashboardService {
	return &DashboardService{
		requests:  requests,
		schedules: schedules,
		now:       time.Now,
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// GetDashboard aggregates a tenant's requests and schedules into counts,
// averages and grouped breakdowns.
//
// A request is overdue when its due date has passed and it is not
// completed or cancelled. A schedule is upcoming when it is active and due
// within the next seven days. Averages cover only completed requests that
// carry both actual start and completion dates.
func (s *DashboardService) GetDashboard(ctx context.Context, tenantID string) (*models.DashboardStats, error) {
	requests, _, err := s.requests.FindRequests(ctx, tenantID, db.RequestFilter{}, db.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	schedules, _, err := s.schedules.FindSchedules(ctx, tenantID, db.ScheduleFilter{}, db.Page{})
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	now := s.now()
	horizon := now.AddDate(0, 0, 7)

	stats := &models.DashboardStats{
		RequestsByCategory:   make(map[models.RequestCategory]int),
		RequestsByPriority:   make(map[models.Priority]int),
		RequestsByStatus:     make(map[models.RequestStatus]int),
		SchedulesByType:      make(map[models.RequestType]int),
		SchedulesByFrequency: make(map[models.Frequency]int),
	}

	var completionHours, actualCost float64
	var satisfactionTotal, measured int

	for i := range requests {
		req := &requests[i]
		stats.TotalRequests++
		stats.RequestsByCategory[req.Category]++
		stats.RequestsByPriority[req.Priority]++
		stats.RequestsByStatus[req.Status]++

		switch req.Status {
		case models.StatusSubmitted, models.StatusPending:
			stats.PendingRequests++
		case models.StatusInProgress:
			stats.InProgressRequests++
		case models.StatusCompleted:
			stats.CompletedRequests++
		}

		if req.DueDate != nil && req.DueDate.Before(now) && !req.Status.IsTerminal() {
			stats.OverdueRequests++
		}
		if req.IsEmergency || req.Priority == models.PriorityEmergency {
			stats.EmergencyRequests++
		}

		if req.Status == models.StatusCompleted && req.ActualStartDate != nil && req.ActualCompletionDate != nil {
			measured++
			completionHours += req.ActualCompletionDate.Sub(*req.ActualStartDate).Hours()
			actualCost += req.ActualCost
			satisfactionTotal += req.SatisfactionRating
		}
	}

	if measured > 0 {
		stats.AverageCompletionHours = completionHours / float64(measured)
		stats.AverageActualCost = actualCost / float64(measured)
		stats.AverageSatisfactionRating = float64(satisfactionTotal) / float64(measured)
	}

	for i := range schedules {
		sched := &schedules[i]
		stats.TotalSchedules++
		stats.SchedulesByType[sched.Type]++
		stats.SchedulesByFrequency[sched.Frequency]++

		active := sched.Status == models.ScheduleActive
		if active {
			stats.ActiveSchedules++
		}
		if sched.NextDueDate == nil {
			continue
		}
		// Recomputed here rather than trusting the persisted projection,
		// so a stale is_overdue flag cannot skew the dashboard.
		if active && sched.NextDueDate.Before(now) {
			stats.OverdueSchedules++
		}
		if active && !sched.NextDueDate.Before(now) && !sched.NextDueDate.After(horizon) {
			stats.UpcomingSchedules++
		}
	}

	return stats, nil
}
