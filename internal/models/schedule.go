package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Frequency represents how often a preventive-maintenance schedule recurs.
type Frequency string

const (
	FrequencyDaily        Frequency = "daily"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semi_annually"
	FrequencyAnnually     Frequency = "annually"
	FrequencyCustom       Frequency = "custom"
)

// FrequencyUnit is the unit for custom-frequency intervals.
type FrequencyUnit string

const (
	UnitDays   FrequencyUnit = "days"
	UnitWeeks  FrequencyUnit = "weeks"
	UnitMonths FrequencyUnit = "months"
	UnitYears  FrequencyUnit = "years"
)

// ScheduleStatus represents the lifecycle state of a maintenance schedule.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"
	ScheduleInactive  ScheduleStatus = "inactive"
	SchedulePaused    ScheduleStatus = "paused"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleCancelled ScheduleStatus = "cancelled"
	ScheduleExpired   ScheduleStatus = "expired"
)

// MaintenanceSchedule represents a recurring preventive-maintenance plan
// for a property, owned by a tenant organization.
type MaintenanceSchedule struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantOrganizationID string             `json:"tenant_organization_id" bson:"tenant_organization_id"`
	PropertyID           string             `json:"property_id" bson:"property_id"`
	UnitID               string             `json:"unit_id,omitempty" bson:"unit_id,omitempty"`

	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Type        RequestType     `json:"type" bson:"type"`
	Category    RequestCategory `json:"category" bson:"category"`
	Priority    Priority        `json:"priority" bson:"priority"`

	Frequency           Frequency     `json:"frequency" bson:"frequency"`
	CustomInterval      int           `json:"custom_interval,omitempty" bson:"custom_interval,omitempty"`
	CustomFrequencyUnit FrequencyUnit `json:"custom_frequency_unit,omitempty" bson:"custom_frequency_unit,omitempty"`

	StartDate         time.Time  `json:"start_date" bson:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty"`
	NextDueDate       *time.Time `json:"next_due_date" bson:"next_due_date"` // derived, never set by callers
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty" bson:"last_completed_date,omitempty"`

	Status ScheduleStatus `json:"status" bson:"status"`

	// Redundant projections of Status/NextDueDate, recomputed and rewritten
	// on every mutation that could affect them.
	IsActive  bool `json:"is_active" bson:"is_active"`
	IsPaused  bool `json:"is_paused" bson:"is_paused"`
	IsOverdue bool `json:"is_overdue" bson:"is_overdue"`

	PausedAt    *time.Time `json:"paused_at,omitempty" bson:"paused_at,omitempty"`
	PausedByID  string     `json:"paused_by_id,omitempty" bson:"paused_by_id,omitempty"`
	PauseReason string     `json:"pause_reason,omitempty" bson:"pause_reason,omitempty"`

	CompletionCount int `json:"completion_count" bson:"completion_count"`
	SkipCount       int `json:"skip_count" bson:"skip_count"`

	AssignedToID             string  `json:"assigned_to_id,omitempty" bson:"assigned_to_id,omitempty"`
	EstimatedCost            float64 `json:"estimated_cost,omitempty" bson:"estimated_cost,omitempty"` // in USD
	LastMaintenanceRequestID string  `json:"last_maintenance_request_id,omitempty" bson:"last_maintenance_request_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ScheduleUpdate is a partial patch applied to a MaintenanceSchedule.
// A nil field is absent from the patch; a pointer to the zero value clears.
type ScheduleUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Type        *RequestType     `json:"type,omitempty"`
	Category    *RequestCategory `json:"category,omitempty"`
	Priority    *Priority        `json:"priority,omitempty"`
	Status      *ScheduleStatus  `json:"status,omitempty"`

	Frequency           *Frequency     `json:"frequency,omitempty"`
	CustomInterval      *int           `json:"custom_interval,omitempty"`
	CustomFrequencyUnit *FrequencyUnit `json:"custom_frequency_unit,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	IsPaused    *bool   `json:"is_paused,omitempty"`
	PauseReason *string `json:"pause_reason,omitempty"`
	PausedByID  *string `json:"paused_by_id,omitempty"`

	AssignedToID  *string  `json:"assigned_to_id,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}
