package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/upkeepworks/property-maintenance/internal/db"
	"github.com/upkeepworks/property-maintenance/internal/events"
	"github.com/upkeepworks/property-maintenance/internal/models"
)

// ScheduleService is the lifecycle manager for preventive-maintenance
// schedules. NextDueDate is always derived: it is computed at creation and
// fully recomputed from the start date whenever a scheduling parameter
// changes, so stale schedules never drift. The is_active/is_paused/
// is_overdue projections are recomputed and rewritten on every mutation.
type ScheduleService struct {
	store     db.ScheduleStore
	publisher events.Publisher
	now       func() time.Time
}

// NewScheduleService creates a ScheduleService. A nil publisher disables
// event publishing.
func NewScheduleService(store db.ScheduleStore, publisher events.Publisher) *ScheduleService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &ScheduleService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// Create registers a new schedule with its next due date computed from the
// start date and frequency.
func (s *ScheduleService) Create(ctx context.Context, tenantID string, payload models.MaintenanceSchedule) (*models.MaintenanceSchedule, error) {
	now := s.now()

	payload.TenantOrganizationID = tenantID
	payload.Status = models.ScheduleActive
	next := NextDueDate(payload.StartDate, payload.Frequency, payload.CustomInterval, payload.CustomFrequencyUnit)
	payload.NextDueDate = &next
	payload.CompletionCount = 0
	payload.SkipCount = 0
	payload.CreatedAt = now
	payload.UpdatedAt = now
	refreshScheduleProjections(&payload, now)

	created, err := s.store.InsertSchedule(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, created, "created")
	return created, nil
}

// Get loads a schedule scoped by tenant.
func (s *ScheduleService) Get(ctx context.Context, tenantID, id string) (*models.MaintenanceSchedule, error) {
	return s.store.FindScheduleByID(ctx, tenantID, id)
}

// List queries a tenant's schedules with filtering and pagination.
func (s *ScheduleService) List(ctx context.Context, tenantID string, filter db.ScheduleFilter, page db.Page) ([]models.MaintenanceSchedule, int64, error) {
	return s.store.FindSchedules(ctx, tenantID, filter, page)
}

// Update applies a partial patch to a schedule. If any scheduling parameter
// (frequency, start date, custom interval or unit) is present in the patch,
// the next due date is fully recomputed anchored at the start date, not at
// the previous next due date and not at "now".
func (s *ScheduleService) Update(ctx context.Context, tenantID, id string, patch models.ScheduleUpdate) (*models.MaintenanceSchedule, error) {
	sched, err := s.store.FindScheduleByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	recompute := patch.Frequency != nil || patch.StartDate != nil ||
		patch.CustomInterval != nil || patch.CustomFrequencyUnit != nil

	applyScheduleScalars(sched, patch)

	if recompute {
		next := NextDueDate(sched.StartDate, sched.Frequency, sched.CustomInterval, sched.CustomFrequencyUnit)
		sched.NextDueDate = &next
	}

	if patch.IsPaused != nil {
		if *patch.IsPaused {
			sched.Status = models.SchedulePaused
			sched.PausedAt = &now
			if patch.PausedByID != nil {
				sched.PausedByID = *patch.PausedByID
			}
			if patch.PauseReason != nil {
				sched.PauseReason = *patch.PauseReason
			}
		} else {
			sched.Status = models.ScheduleActive
			sched.PausedAt = nil
			sched.PausedByID = ""
			sched.PauseReason = ""
		}
	}

	sched.UpdatedAt = now
	refreshScheduleProjections(sched, now)

	if err := s.store.SaveSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, sched, "updated")
	return sched, nil
}

// Pause suspends a schedule, recording who paused it and why.
func (s *ScheduleService) Pause(ctx context.Context, tenantID, id, reason, actorID string) (*models.MaintenanceSchedule, error) {
	paused := true
	return s.Update(ctx, tenantID, id, models.ScheduleUpdate{
		IsPaused:    &paused,
		PauseReason: &reason,
		PausedByID:  &actorID,
	})
}

// Resume reactivates a paused schedule, clearing the pause metadata.
func (s *ScheduleService) Resume(ctx context.Context, tenantID, id string) (*models.MaintenanceSchedule, error) {
	paused := false
	return s.Update(ctx, tenantID, id, models.ScheduleUpdate{IsPaused: &paused})
}

// Delete hard-removes a schedule scoped by tenant.
func (s *ScheduleService) Delete(ctx context.Context, tenantID, id string) error {
	sched, err := s.store.FindScheduleByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSchedule(ctx, tenantID, id); err != nil {
		return err
	}
	s.publishScheduleEvent(ctx, sched, "deleted")
	return nil
}

// RecordCompletion is the hook for the request-generation collaborator:
// it increments the completion counter, remembers the generated request,
// and advances the next due date one occurrence forward from its current
// value.
func (s *ScheduleService) RecordCompletion(ctx context.Context, tenantID, id, requestID string) (*models.MaintenanceSchedule, error) {
	return s.recordOccurrence(ctx, tenantID, id, requestID, "completed")
}

// RecordSkip is the counterpart hook for a skipped occurrence.
func (s *ScheduleService) RecordSkip(ctx context.Context, tenantID, id string) (*models.MaintenanceSchedule, error) {
	return s.recordOccurrence(ctx, tenantID, id, "", "skipped")
}

func (s *ScheduleService) recordOccurrence(ctx context.Context, tenantID, id, requestID, action string) (*models.MaintenanceSchedule, error) {
	sched, err := s.store.FindScheduleByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	anchor := sched.StartDate
	if sched.NextDueDate != nil {
		anchor = *sched.NextDueDate
	}
	next := NextDueDate(anchor, sched.Frequency, sched.CustomInterval, sched.CustomFrequencyUnit)
	sched.NextDueDate = &next

	if action == "completed" {
		sched.CompletionCount++
		sched.LastCompletedDate = &now
		if requestID != "" {
			sched.LastMaintenanceRequestID = requestID
		}
	} else {
		sched.SkipCount++
	}

	sched.UpdatedAt = now
	refreshScheduleProjections(sched, now)

	if err := s.store.SaveSchedule(ctx, sched); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, sched, action)
	return sched, nil
}

// RefreshProjections rewrites the persisted overdue/expired state of every
// schedule for a tenant whose projections have drifted from their source
// fields. Returns how many schedules were rewritten. Called by the sweep
// daemon.
func (s *ScheduleService) RefreshProjections(ctx context.Context, tenantID string) (int, error) {
	schedules, _, err := s.store.FindSchedules(ctx, tenantID, db.ScheduleFilter{}, db.Page{})
	if err != nil {
		return 0, fmt.Errorf("failed to list schedules: %w", err)
	}
	now := s.now()

	updated := 0
	for i := range schedules {
		sched := schedules[i]
		before := sched
		if sched.Status == models.ScheduleActive && sched.EndDate != nil && sched.EndDate.Before(now) {
			sched.Status = models.ScheduleExpired
		}
		refreshScheduleProjections(&sched, now)

		if sched.Status == before.Status && sched.IsActive == before.IsActive &&
			sched.IsPaused == before.IsPaused && sched.IsOverdue == before.IsOverdue {
			continue
		}
		sched.UpdatedAt = now
		if err := s.store.SaveSchedule(ctx, &sched); err != nil {
			return updated, fmt.Errorf("failed to save schedule %s: %w", sched.ID.Hex(), err)
		}
		updated++
	}
	return updated, nil
}

// refreshScheduleProjections recomputes the redundant boolean projections
// from their source fields: is_overdue = is_active && !is_paused &&
// next_due_date < now.
func refreshScheduleProjections(sched *models.MaintenanceSchedule, now time.Time) {
	sched.IsActive = sched.Status == models.ScheduleActive
	sched.IsPaused = sched.Status == models.SchedulePaused
	sched.IsOverdue = sched.IsActive && !sched.IsPaused &&
		sched.NextDueDate != nil && sched.NextDueDate.Before(now)
}

func applyScheduleScalars(sched *models.MaintenanceSchedule, patch models.ScheduleUpdate) {
	if patch.Title != nil {
		sched.Title = *patch.Title
	}
	if patch.Description != nil {
		sched.Description = *patch.Description
	}
	if patch.Type != nil {
		sched.Type = *patch.Type
	}
	if patch.Category != nil {
		sched.Category = *patch.Category
	}
	if patch.Priority != nil {
		sched.Priority = *patch.Priority
	}
	if patch.Status != nil {
		sched.Status = *patch.Status
	}
	if patch.Frequency != nil {
		sched.Frequency = *patch.Frequency
	}
	if patch.CustomInterval != nil {
		sched.CustomInterval = *patch.CustomInterval
	}
	if patch.CustomFrequencyUnit != nil {
		sched.CustomFrequencyUnit = *patch.CustomFrequencyUnit
	}
	if patch.StartDate != nil {
		sched.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		sched.EndDate = patch.EndDate
	}
	if patch.AssignedToID != nil {
		sched.AssignedToID = *patch.AssignedToID
	}
	if patch.EstimatedCost != nil {
		sched.EstimatedCost = *patch.EstimatedCost
	}
}

func (s *ScheduleService) publishScheduleEvent(ctx context.Context, sched *models.MaintenanceSchedule, action string) {
	err := s.publisher.PublishScheduleEvent(ctx, events.ScheduleEvent{
		TenantOrganizationID: sched.TenantOrganizationID,
		ScheduleID:           sched.ID.Hex(),
		Action:               action,
		Status:               string(sched.Status),
		NextDueDate:          sched.NextDueDate,
		Timestamp:            s.now(),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"tenant":   sched.TenantOrganizationID,
			"schedule": sched.ID.Hex(),
			"action":   action,
		}).WithError(err).Warn("failed to publish schedule event")
	}
}
