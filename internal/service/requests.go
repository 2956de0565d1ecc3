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

// RequestService is the lifecycle manager for maintenance requests. It
// enforces the status audit trail, derives status timestamps and warranty
// expiry, and keeps every store access scoped by tenant organization.
//
// There is deliberately no transition-adjacency table: any status may follow
// any other. Each operation is a single load-mutate-persist sequence with
// last-write-wins semantics on concurrent updates.
type RequestService struct {
	store     db.RequestStore
	publisher events.Publisher
	now       func() time.Time
}

// NewRequestService creates a RequestService. A nil publisher disables
// event publishing.
func NewRequestService(store db.RequestStore, publisher events.Publisher) *RequestService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &RequestService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the service's time source. Intended for tests.
func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	s.now = now
	return s
}

// Create submits a new maintenance request. The reference number is
// generated from the per-tenant-per-day sequence and the status history
// starts with a single "submitted" entry.
func (s *RequestService) Create(ctx context.Context, tenantID string, payload models.MaintenanceRequest, actorID string) (*models.MaintenanceRequest, error) {
	now := s.now()

	// A recurrence back-reference must point at an existing request in the
	// same tenant. Checked at creation only.
	if payload.ParentRequestID != "" {
		if _, err := s.store.FindRequestByID(ctx, tenantID, payload.ParentRequestID); err != nil {
			return nil, fmt.Errorf("parent request %s: %w", payload.ParentRequestID, err)
		}
	}

	ref, err := nextReferenceNumber(ctx, s.store, tenantID, now)
	if err != nil {
		return nil, err
	}

	payload.TenantOrganizationID = tenantID
	payload.ReferenceNumber = ref
	payload.Status = models.StatusSubmitted
	payload.StatusHistory = []models.StatusChange{{
		Status:    models.StatusSubmitted,
		Timestamp: now,
		ChangedBy: actorID,
	}}
	payload.AssignmentHistory = nil
	payload.CreatedAt = now
	payload.UpdatedAt = now

	created, err := s.store.InsertRequest(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.publishRequestEvent(ctx, created, "created", actorID)
	return created, nil
}

// Get loads a request scoped by tenant.
func (s *RequestService) Get(ctx context.Context, tenantID, id string) (*models.MaintenanceRequest, error) {
	return s.store.FindRequestByID(ctx, tenantID, id)
}

// List queries a tenant's requests with filtering and pagination.
func (s *RequestService) List(ctx context.Context, tenantID string, filter db.RequestFilter, page db.Page) ([]models.MaintenanceRequest, int64, error) {
	return s.store.FindRequests(ctx, tenantID, filter, page)
}

// Update applies a partial patch to a request. Present scalar fields are
// applied last-write-wins; a status change appends to the status history
// and sets its once-only derived timestamp; an assignee change appends to
// the assignment history. All mutation happens in memory before a single
// save, so a persist failure leaves the stored entity untouched.
func (s *RequestService) Update(ctx context.Context, tenantID, id string, patch models.RequestUpdate, actorID string) (*models.MaintenanceRequest, error) {
	req, err := s.store.FindRequestByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	applyRequestScalars(req, patch)

	if patch.Status != nil && *patch.Status != req.Status {
		req.StatusHistory = append(req.StatusHistory, models.StatusChange{
			Status:    *patch.Status,
			Timestamp: now,
			ChangedBy: actorID,
			Notes:     patch.StatusNotes,
		})
		req.Status = *patch.Status
		s.markStatusTimestamp(req, *patch.Status, now)
	}

	if patch.AssignedToID != nil && *patch.AssignedToID != req.AssignedToID {
		req.AssignmentHistory = append(req.AssignmentHistory, models.AssignmentChange{
			AssignedTo: *patch.AssignedToID,
			AssignedBy: actorID,
			Timestamp:  now,
			Notes:      patch.AssignmentNotes,
		})
		req.AssignedToID = *patch.AssignedToID
	}

	if patch.IsApproved != nil {
		if *patch.IsApproved {
			req.ApprovedAt = &now
		} else {
			req.ApprovedAt = nil
		}
		if patch.ApprovedByID != nil {
			req.ApprovedByID = *patch.ApprovedByID
		}
	}

	if patch.WarrantyDays != nil {
		req.WarrantyDays = *patch.WarrantyDays
		recomputeWarranty(req)
	}

	req.UpdatedAt = now
	if err := s.store.SaveRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	s.publishRequestEvent(ctx, req, "updated", actorID)
	return req, nil
}

// Assign routes a request to a technician and moves it to assigned.
func (s *RequestService) Assign(ctx context.Context, tenantID, id, assignedToID, actorID string, notes string) (*models.MaintenanceRequest, error) {
	status := models.StatusAssigned
	return s.Update(ctx, tenantID, id, models.RequestUpdate{
		AssignedToID:    &assignedToID,
		AssignmentNotes: notes,
		Status:          &status,
		StatusNotes:     notes,
	}, actorID)
}

// Acknowledge marks a submitted request as seen by staff.
func (s *RequestService) Acknowledge(ctx context.Context, tenantID, id, actorID string, notes string) (*models.MaintenanceRequest, error) {
	status := models.StatusAcknowledged
	return s.Update(ctx, tenantID, id, models.RequestUpdate{
		Status:      &status,
		StatusNotes: notes,
	}, actorID)
}

// Complete finishes a request, recording completion details and stamping
// the actual completion date.
func (s *RequestService) Complete(ctx context.Context, tenantID, id string, details models.CompletionDetails, actorID string) (*models.MaintenanceRequest, error) {
	now := s.now()
	status := models.StatusCompleted
	return s.Update(ctx, tenantID, id, models.RequestUpdate{
		Status:               &status,
		StatusNotes:          details.Notes,
		ActualCompletionDate: &now,
		ActualCost:           details.ActualCost,
		SatisfactionRating:   details.SatisfactionRating,
		WarrantyDays:         details.WarrantyDays,
		CompletionNotes:      &details.Notes,
	}, actorID)
}

// Cancel moves a request to cancelled with a reason.
func (s *RequestService) Cancel(ctx context.Context, tenantID, id, reason, actorID string) (*models.MaintenanceRequest, error) {
	status := models.StatusCancelled
	return s.Update(ctx, tenantID, id, models.RequestUpdate{
		Status:             &status,
		StatusNotes:        reason,
		CancellationReason: &reason,
	}, actorID)
}

// Delete hard-removes a request scoped by tenant.
func (s *RequestService) Delete(ctx context.Context, tenantID, id string) error {
	req, err := s.store.FindRequestByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRequest(ctx, tenantID, id); err != nil {
		return err
	}
	s.publishRequestEvent(ctx, req, "deleted", "")
	return nil
}

// markStatusTimestamp sets the derived timestamp for a newly reached
// status. Each is set exactly once; a later transition back through the
// same status leaves the original value.
func (s *RequestService) markStatusTimestamp(req *models.MaintenanceRequest, status models.RequestStatus, now time.Time) {
	switch status {
	case models.StatusAcknowledged:
		if req.AcknowledgedAt == nil {
			req.AcknowledgedAt = &now
		}
	case models.StatusAssigned:
		if req.AssignedAt == nil {
			req.AssignedAt = &now
		}
	case models.StatusInProgress:
		if req.WorkStartedAt == nil {
			req.WorkStartedAt = &now
		}
		if req.ActualStartDate == nil {
			req.ActualStartDate = &now
		}
	case models.StatusCompleted:
		if req.CompletedAt == nil {
			req.CompletedAt = &now
			recomputeWarranty(req)
		}
		if req.ActualCompletionDate == nil {
			req.ActualCompletionDate = &now
		}
	case models.StatusCancelled:
		if req.CancelledAt == nil {
			req.CancelledAt = &now
		}
	}
}

// recomputeWarranty derives the warranty expiry from the completion time
// using calendar-day arithmetic, which stays correct across DST changes.
func recomputeWarranty(req *models.MaintenanceRequest) {
	if req.CompletedAt == nil || req.WarrantyDays <= 0 {
		return
	}
	expires := req.CompletedAt.AddDate(0, 0, req.WarrantyDays)
	req.WarrantyExpiresAt = &expires
}

func applyRequestScalars(req *models.MaintenanceRequest, patch models.RequestUpdate) {
	if patch.Title != nil {
		req.Title = *patch.Title
	}
	if patch.Description != nil {
		req.Description = *patch.Description
	}
	if patch.Type != nil {
		req.Type = *patch.Type
	}
	if patch.Category != nil {
		req.Category = *patch.Category
	}
	if patch.Priority != nil {
		req.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		req.DueDate = patch.DueDate
	}
	if patch.PreferredStartDate != nil {
		req.PreferredStartDate = patch.PreferredStartDate
	}
	if patch.PreferredCompletionDate != nil {
		req.PreferredCompletionDate = patch.PreferredCompletionDate
	}
	if patch.ScheduledStartDate != nil {
		req.ScheduledStartDate = patch.ScheduledStartDate
	}
	if patch.ScheduledCompletionDate != nil {
		req.ScheduledCompletionDate = patch.ScheduledCompletionDate
	}
	if patch.ActualStartDate != nil {
		req.ActualStartDate = patch.ActualStartDate
	}
	if patch.ActualCompletionDate != nil {
		req.ActualCompletionDate = patch.ActualCompletionDate
	}
	if patch.EstimatedCost != nil {
		req.EstimatedCost = *patch.EstimatedCost
	}
	if patch.ActualCost != nil {
		req.ActualCost = *patch.ActualCost
	}
	if patch.SatisfactionRating != nil {
		req.SatisfactionRating = *patch.SatisfactionRating
	}
	if patch.IsEmergency != nil {
		req.IsEmergency = *patch.IsEmergency
	}
	if patch.Tags != nil {
		req.Tags = *patch.Tags
	}
	if patch.CancellationReason != nil {
		req.CancellationReason = *patch.CancellationReason
	}
	if patch.CompletionNotes != nil {
		req.CompletionNotes = *patch.CompletionNotes
	}
}

func (s *RequestService) publishRequestEvent(ctx context.Context, req *models.MaintenanceRequest, action, actorID string) {
	err := s.publisher.PublishRequestEvent(ctx, events.RequestEvent{
		TenantOrganizationID: req.TenantOrganizationID,
		RequestID:            req.ID.Hex(),
		ReferenceNumber:      req.ReferenceNumber,
		Action:               action,
		Status:               string(req.Status),
		ActorID:              actorID,
		Timestamp:            s.now(),
	})
	if err != nil {
		log.WithFields(log.Fields{
			"tenant":    req.TenantOrganizationID,
			"request":   req.ID.Hex(),
			"reference": req.ReferenceNumber,
			"action":    action,
		}).WithError(err).Warn("failed to publish request event")
	}
}
