package events

import (
	"context"
	"time"
)

// RequestEvent describes a lifecycle change to a maintenance request.
type RequestEvent struct {
	TenantOrganizationID string    `json:"tenant_organization_id"`
	RequestID            string    `json:"request_id"`
	ReferenceNumber      string    `json:"reference_number"`
	Action               string    `json:"action"` // "created", "updated", "assigned", "completed", "cancelled", "deleted"
	Status               string    `json:"status,omitempty"`
	ActorID              string    `json:"actor_id,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// ScheduleEvent describes a lifecycle change to a maintenance schedule.
type ScheduleEvent struct {
	TenantOrganizationID string     `json:"tenant_organization_id"`
	ScheduleID           string     `json:"schedule_id"`
	Action               string     `json:"action"` // "created", "updated", "paused", "resumed", "deleted", "completed", "skipped"
	Status               string     `json:"status,omitempty"`
	NextDueDate          *time.Time `json:"next_due_date,omitempty"`
	Timestamp            time.Time  `json:"timestamp"`
}

// Publisher delivers lifecycle events to interested collaborators.
// Publishing is best-effort: a failed publish never fails the mutation
// that produced it.
type Publisher interface {
	PublishRequestEvent(ctx context.Context, ev RequestEvent) error
	PublishScheduleEvent(ctx context.Context, ev ScheduleEvent) error
}

// Nop is a Publisher that discards every event.
type Nop struct{}

// PublishRequestEvent discards the event.
func (Nop) PublishRequestEvent(context.Context, RequestEvent) error { return nil }

// PublishScheduleEvent discards the event.
func (Nop) PublishScheduleEvent(context.Context, ScheduleEvent) error { return nil }
