package db

import (
	"context"
	"errors"
	"time"

	"github.com/upkeepworks/property-maintenance/internal/models"
)

// ErrNotFound is returned when an entity does not exist in the caller's
// tenant. A tenant mismatch is indistinguishable from absence.
var ErrNotFound = errors.New("not found")

// Page describes pagination and sorting for a store query.
// A zero PageSize means no limit.
type Page struct {
	Page      int
	PageSize  int
	SortField string
	SortAsc   bool
}

// Skip returns the number of items to skip for the page.
func (p Page) Skip() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// RequestFilter narrows a maintenance-request query. Zero-valued fields
// are ignored.
type RequestFilter struct {
	Statuses   []models.RequestStatus
	Priorities []models.Priority
	Types      []models.RequestType
	Categories []models.RequestCategory

	PropertyID    string
	AssignedToID  string
	RequestedByID string

	DueAfter      *time.Time
	DueBefore     *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	IsEmergency *bool

	Search string   // substring match on title/description/reference number
	Tags   []string // matches requests tagged with any of these
}

// ScheduleFilter narrows a maintenance-schedule query. Zero-valued fields
// are ignored.
type ScheduleFilter struct {
	Statuses    []models.ScheduleStatus
	Frequencies []models.Frequency
	Types       []models.RequestType
	Categories  []models.RequestCategory

	PropertyID   string
	AssignedToID string

	DueAfter  *time.Time
	DueBefore *time.Time

	IsActive  *bool
	IsPaused  *bool
	IsOverdue *bool

	Search string
}

// RequestStore is the persistence contract for maintenance requests.
// Every lookup and mutation is scoped by tenant organization.
type RequestStore interface {
	InsertRequest(ctx context.Context, req models.MaintenanceRequest) (*models.MaintenanceRequest, error)
	FindRequestByID(ctx context.Context, tenantID, id string) (*models.MaintenanceRequest, error)
	SaveRequest(ctx context.Context, req *models.MaintenanceRequest) error
	DeleteRequest(ctx context.Context, tenantID, id string) error
	FindRequests(ctx context.Context, tenantID string, filter RequestFilter, page Page) ([]models.MaintenanceRequest, int64, error)
	CountRequestsByReferencePrefix(ctx context.Context, tenantID, prefix string) (int64, error)
}

// ScheduleStore is the persistence contract for maintenance schedules.
type ScheduleStore interface {
	InsertSchedule(ctx context.Context, sched models.MaintenanceSchedule) (*models.MaintenanceSchedule, error)
	FindScheduleByID(ctx context.Context, tenantID, id string) (*models.MaintenanceSchedule, error)
	SaveSchedule(ctx context.Context, sched *models.MaintenanceSchedule) error
	DeleteSchedule(ctx context.Context, tenantID, id string) error
	FindSchedules(ctx context.Context, tenantID string, filter ScheduleFilter, page Page) ([]models.MaintenanceSchedule, int64, error)
	DistinctTenants(ctx context.Context) ([]string, error)
}
