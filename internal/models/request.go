package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus represents the lifecycle status of a maintenance request.
type RequestStatus string

const (
	StatusSubmitted        RequestStatus = "submitted"
	StatusAcknowledged     RequestStatus = "acknowledged"
	StatusAssigned         RequestStatus = "assigned"
	StatusInProgress       RequestStatus = "in_progress"
	StatusOnHold           RequestStatus = "on_hold"
	StatusAwaitingParts    RequestStatus = "awaiting_parts"
	StatusAwaitingAccess   RequestStatus = "awaiting_access"
	StatusRequiresApproval RequestStatus = "requires_approval"
	StatusApproved         RequestStatus = "approved"
	StatusCompleted        RequestStatus = "completed"
	StatusCancelled        RequestStatus = "cancelled"
	StatusRejected         RequestStatus = "rejected"
	StatusPending          RequestStatus = "pending"
)

// IsValidRequestStatus checks if a status is one of the known lifecycle states.
func IsValidRequestStatus(s RequestStatus) bool {
	switch s {
	case StatusSubmitted, StatusAcknowledged, StatusAssigned, StatusInProgress,
		StatusOnHold, StatusAwaitingParts, StatusAwaitingAccess,
		StatusRequiresApproval, StatusApproved, StatusCompleted,
		StatusCancelled, StatusRejected, StatusPending:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the active lifecycle of a request.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// RequestType classifies what kind of work a request asks for.
type RequestType string

const (
	TypeRepair       RequestType = "repair"
	TypeReplacement  RequestType = "replacement"
	TypeInstallation RequestType = "installation"
	TypeInspection   RequestType = "inspection"
	TypePreventive   RequestType = "preventive"
	TypeEmergency    RequestType = "emergency"
	TypeOther        RequestType = "other"
)

// RequestCategory identifies the building system a request concerns.
type RequestCategory string

const (
	CategoryPlumbing    RequestCategory = "plumbing"
	CategoryElectrical  RequestCategory = "electrical"
	CategoryHVAC        RequestCategory = "hvac"
	CategoryAppliance   RequestCategory = "appliance"
	CategoryStructural  RequestCategory = "structural"
	CategoryPestControl RequestCategory = "pest_control"
	CategoryLandscaping RequestCategory = "landscaping"
	CategoryCleaning    RequestCategory = "cleaning"
	CategorySafety      RequestCategory = "safety"
	CategoryGeneral     RequestCategory = "general"
)

// Priority represents request urgency.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// StatusChange is one append-only entry in a request's status audit trail.
type StatusChange struct {
	Status    RequestStatus `json:"status" bson:"status"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
	ChangedBy string        `json:"changed_by" bson:"changed_by"`
	Notes     string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// AssignmentChange is one append-only entry in a request's assignment audit trail.
type AssignmentChange struct {
	AssignedTo string    `json:"assigned_to" bson:"assigned_to"`
	AssignedBy string    `json:"assigned_by" bson:"assigned_by"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
	Notes      string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// MaintenanceRequest represents a tenant-scoped maintenance work request.
type MaintenanceRequest struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantOrganizationID string             `json:"tenant_organization_id" bson:"tenant_organization_id"`
	ReferenceNumber      string             `json:"reference_number" bson:"reference_number"` // "MR-YYYYMMDD-NNNN"

	Title       string          `json:"title" bson:"title"`
	Description string          `json:"description" bson:"description"`
	Type        RequestType     `json:"type" bson:"type"`
	Category    RequestCategory `json:"category" bson:"category"`
	Priority    Priority        `json:"priority" bson:"priority"`
	Status      RequestStatus   `json:"status" bson:"status"`

	PropertyID    string `json:"property_id" bson:"property_id"`
	UnitID        string `json:"unit_id,omitempty" bson:"unit_id,omitempty"`
	RequestedByID string `json:"requested_by_id" bson:"requested_by_id"`
	AssignedToID  string `json:"assigned_to_id,omitempty" bson:"assigned_to_id,omitempty"`

	StatusHistory     []StatusChange     `json:"status_history" bson:"status_history"`
	AssignmentHistory []AssignmentChange `json:"assignment_history,omitempty" bson:"assignment_history,omitempty"`

	DueDate                 *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	PreferredStartDate      *time.Time `json:"preferred_start_date,omitempty" bson:"preferred_start_date,omitempty"`
	PreferredCompletionDate *time.Time `json:"preferred_completion_date,omitempty" bson:"preferred_completion_date,omitempty"`
	ScheduledStartDate      *time.Time `json:"scheduled_start_date,omitempty" bson:"scheduled_start_date,omitempty"`
	ScheduledCompletionDate *time.Time `json:"scheduled_completion_date,omitempty" bson:"scheduled_completion_date,omitempty"`
	ActualStartDate         *time.Time `json:"actual_start_date,omitempty" bson:"actual_start_date,omitempty"`
	ActualCompletionDate    *time.Time `json:"actual_completion_date,omitempty" bson:"actual_completion_date,omitempty"`

	// Status-derived timestamps. Each is set the first time its status is
	// reached and never overwritten by a later pass through the same status.
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" bson:"acknowledged_at,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	WorkStartedAt  *time.Time `json:"work_started_at,omitempty" bson:"work_started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`

	ApprovedAt   *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	ApprovedByID string     `json:"approved_by_id,omitempty" bson:"approved_by_id,omitempty"`

	WarrantyDays      int        `json:"warranty_days,omitempty" bson:"warranty_days,omitempty"`
	WarrantyExpiresAt *time.Time `json:"warranty_expires_at,omitempty" bson:"warranty_expires_at,omitempty"`

	EstimatedCost      float64 `json:"estimated_cost,omitempty" bson:"estimated_cost,omitempty"` // in USD
	ActualCost         float64 `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`       // in USD
	SatisfactionRating int     `json:"satisfaction_rating,omitempty" bson:"satisfaction_rating,omitempty"` // 1-5

	IsEmergency        bool     `json:"is_emergency" bson:"is_emergency"`
	Tags               []string `json:"tags,omitempty" bson:"tags,omitempty"`
	ParentRequestID    string   `json:"parent_request_id,omitempty" bson:"parent_request_id,omitempty"`
	CancellationReason string   `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CompletionNotes    string   `json:"completion_notes,omitempty" bson:"completion_notes,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// RequestUpdate is a partial patch applied to a MaintenanceRequest.
// A nil field is absent from the patch; a pointer to the zero value clears.
type RequestUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Type        *RequestType     `json:"type,omitempty"`
	Category    *RequestCategory `json:"category,omitempty"`
	Priority    *Priority        `json:"priority,omitempty"`
	Status      *RequestStatus   `json:"status,omitempty"`
	StatusNotes string           `json:"status_notes,omitempty"`

	AssignedToID    *string `json:"assigned_to_id,omitempty"`
	AssignmentNotes string  `json:"assignment_notes,omitempty"`

	DueDate                 *time.Time `json:"due_date,omitempty"`
	PreferredStartDate      *time.Time `json:"preferred_start_date,omitempty"`
	PreferredCompletionDate *time.Time `json:"preferred_completion_date,omitempty"`
	ScheduledStartDate      *time.Time `json:"scheduled_start_date,omitempty"`
	ScheduledCompletionDate *time.Time `json:"scheduled_completion_date,omitempty"`
	ActualStartDate         *time.Time `json:"actual_start_date,omitempty"`
	ActualCompletionDate    *time.Time `json:"actual_completion_date,omitempty"`

	IsApproved   *bool   `json:"is_approved,omitempty"`
	ApprovedByID *string `json:"approved_by_id,omitempty"`

	WarrantyDays *int `json:"warranty_days,omitempty"`

	EstimatedCost      *float64 `json:"estimated_cost,omitempty"`
	ActualCost         *float64 `json:"actual_cost,omitempty"`
	SatisfactionRating *int     `json:"satisfaction_rating,omitempty"`

	IsEmergency        *bool     `json:"is_emergency,omitempty"`
	Tags               *[]string `json:"tags,omitempty"`
	CancellationReason *string   `json:"cancellation_reason,omitempty"`
	CompletionNotes    *string   `json:"completion_notes,omitempty"`
}

// CompletionDetails carries the fields recorded when a request is completed.
type CompletionDetails struct {
	ActualCost         *float64 `json:"actual_cost,omitempty"`
	SatisfactionRating *int     `json:"satisfaction_rating,omitempty"`
	WarrantyDays       *int     `json:"warranty_days,omitempty"`
	Notes              string   `json:"notes,omitempty"`
}
