package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/upkeepworks/property-maintenance/internal/models"
)

// MemoryRequestStore is a map-backed RequestStore with the same filter
// semantics as the Mongo implementation. Used by unit tests and as the
// daemon's no-database fallback.
type MemoryRequestStore struct {
	mu       sync.RWMutex
	requests map[string]models.MaintenanceRequest
	order    []string
}

// NewMemoryRequestStore creates an empty in-memory request store.
func NewMemoryRequestStore() *MemoryRequestStore {
	return &MemoryRequestStore{requests: make(map[string]models.MaintenanceRequest)}
}

// InsertRequest inserts a new maintenance request, assigning an id.
func (s *MemoryRequestStore) InsertRequest(_ context.Context, req models.MaintenanceRequest) (*models.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	key := req.ID.Hex()
	s.requests[key] = req
	s.order = append(s.order, key)
	return &req, nil
}

// FindRequestByID finds a request by id within a tenant.
func (s *MemoryRequestStore) FindRequestByID(_ context.Context, tenantID, id string) (*models.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok || req.TenantOrganizationID != tenantID {
		return nil, ErrNotFound
	}
	copied := req
	return &copied, nil
}

// SaveRequest replaces a stored request by id.
func (s *MemoryRequestStore) SaveRequest(_ context.Context, req *models.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := req.ID.Hex()
	existing, ok := s.requests[key]
	if !ok || existing.TenantOrganizationID != req.TenantOrganizationID {
		return ErrNotFound
	}
	s.requests[key] = *req
	return nil
}

// DeleteRequest hard-deletes a request within a tenant.
func (s *MemoryRequestStore) DeleteRequest(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || req.TenantOrganizationID != tenantID {
		return ErrNotFound
	}
	delete(s.requests, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindRequests queries requests for a tenant with filtering, sorting and
// pagination.
func (s *MemoryRequestStore) FindRequests(_ context.Context, tenantID string, filter RequestFilter, page Page) ([]models.MaintenanceRequest, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.MaintenanceRequest
	for _, key := range s.order {
		req := s.requests[key]
		if req.TenantOrganizationID == tenantID && requestMatches(req, filter) {
			matched = append(matched, req)
		}
	}
	sortRequests(matched, page)
	total := int64(len(matched))
	return paginate(matched, page), total, nil
}

// CountRequestsByReferencePrefix counts a tenant's requests whose reference
// number starts with the given prefix.
func (s *MemoryRequestStore) CountRequestsByReferencePrefix(_ context.Context, tenantID, prefix string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, req := range s.requests {
		if req.TenantOrganizationID == tenantID && strings.HasPrefix(req.ReferenceNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func requestMatches(req models.MaintenanceRequest, f RequestFilter) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, req.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, req.Priority) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, req.Type) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, req.Category) {
		return false
	}
	if f.PropertyID != "" && req.PropertyID != f.PropertyID {
		return false
	}
	if f.AssignedToID != "" && req.AssignedToID != f.AssignedToID {
		return false
	}
	if f.RequestedByID != "" && req.RequestedByID != f.RequestedByID {
		return false
	}
	if f.DueAfter != nil && (req.DueDate == nil || req.DueDate.Before(*f.DueAfter)) {
		return false
	}
	if f.DueBefore != nil && (req.DueDate == nil || req.DueDate.After(*f.DueBefore)) {
		return false
	}
	if f.CreatedAfter != nil && req.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && req.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	if f.IsEmergency != nil && req.IsEmergency != *f.IsEmergency {
		return false
	}
	if len(f.Tags) > 0 && !tagsOverlap(req.Tags, f.Tags) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(req.Title), needle) &&
			!strings.Contains(strings.ToLower(req.Description), needle) &&
			!strings.Contains(strings.ToLower(req.ReferenceNumber), needle) {
			return false
		}
	}
	return true
}

func sortRequests(requests []models.MaintenanceRequest, page Page) {
	if page.SortField == "" {
		return
	}
	less := func(a, b models.MaintenanceRequest) bool {
		switch page.SortField {
		case "due_date":
			return timePtrBefore(a.DueDate, b.DueDate)
		case "reference_number":
			return a.ReferenceNumber < b.ReferenceNumber
		case "priority":
			return a.Priority < b.Priority
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(requests, func(i, j int) bool {
		if page.SortAsc {
			return less(requests[i], requests[j])
		}
		return less(requests[j], requests[i])
	})
}

// MemoryScheduleStore is a map-backed ScheduleStore mirroring the Mongo
// implementation's semantics.
type MemoryScheduleStore struct {
	mu        sync.RWMutex
	schedules map[string]models.MaintenanceSchedule
	order     []string
}

// NewMemoryScheduleStore creates an empty in-memory schedule store.
func NewMemoryScheduleStore() *MemoryScheduleStore {
	return &MemoryScheduleStore{schedules: make(map[string]models.MaintenanceSchedule)}
}

// InsertSchedule inserts a new maintenance schedule, assigning an id.
func (s *MemoryScheduleStore) InsertSchedule(_ context.Context, sched models.MaintenanceSchedule) (*models.MaintenanceSchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched.ID.IsZero() {
		sched.ID = primitive.NewObjectID()
	}
	key := sched.ID.Hex()
	s.schedules[key] = sched
	s.order = append(s.order, key)
	return &sched, nil
}

// FindScheduleByID finds a schedule by id within a tenant.
func (s *MemoryScheduleStore) FindScheduleByID(_ context.Context, tenantID, id string) (*models.MaintenanceSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sched, ok := s.schedules[id]
	if !ok || sched.TenantOrganizationID != tenantID {
		return nil, ErrNotFound
	}
	copied := sched
	return &copied, nil
}

// SaveSchedule replaces a stored schedule by id.
func (s *MemoryScheduleStore) SaveSchedule(_ context.Context, sched *models.MaintenanceSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sched.ID.Hex()
	existing, ok := s.schedules[key]
	if !ok || existing.TenantOrganizationID != sched.TenantOrganizationID {
		return ErrNotFound
	}
	s.schedules[key] = *sched
	return nil
}

// DeleteSchedule hard-deletes a schedule within a tenant.
func (s *MemoryScheduleStore) DeleteSchedule(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sched, ok := s.schedules[id]
	if !ok || sched.TenantOrganizationID != tenantID {
		return ErrNotFound
	}
	delete(s.schedules, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindSchedules queries schedules for a tenant with filtering, sorting and
// pagination.
func (s *MemoryScheduleStore) FindSchedules(_ context.Context, tenantID string, filter ScheduleFilter, page Page) ([]models.MaintenanceSchedule, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.MaintenanceSchedule
	for _, key := range s.order {
		sched := s.schedules[key]
		if sched.TenantOrganizationID == tenantID && scheduleMatches(sched, filter) {
			matched = append(matched, sched)
		}
	}
	sortSchedules(matched, page)
	total := int64(len(matched))
	return paginate(matched, page), total, nil
}

// DistinctTenants lists every tenant organization owning at least one schedule.
func (s *MemoryScheduleStore) DistinctTenants(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var tenants []string
	for _, key := range s.order {
		tenant := s.schedules[key].TenantOrganizationID
		if !seen[tenant] {
			seen[tenant] = true
			tenants = append(tenants, tenant)
		}
	}
	return tenants, nil
}

func scheduleMatches(sched models.MaintenanceSchedule, f ScheduleFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, st := range f.Statuses {
			if sched.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Frequencies) > 0 {
		found := false
		for _, fr := range f.Frequencies {
			if sched.Frequency == fr {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Types) > 0 && !containsType(f.Types, sched.Type) {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, sched.Category) {
		return false
	}
	if f.PropertyID != "" && sched.PropertyID != f.PropertyID {
		return false
	}
	if f.AssignedToID != "" && sched.AssignedToID != f.AssignedToID {
		return false
	}
	if f.DueAfter != nil && (sched.NextDueDate == nil || sched.NextDueDate.Before(*f.DueAfter)) {
		return false
	}
	if f.DueBefore != nil && (sched.NextDueDate == nil || sched.NextDueDate.After(*f.DueBefore)) {
		return false
	}
	if f.IsActive != nil && sched.IsActive != *f.IsActive {
		return false
	}
	if f.IsPaused != nil && sched.IsPaused != *f.IsPaused {
		return false
	}
	if f.IsOverdue != nil && sched.IsOverdue != *f.IsOverdue {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(sched.Title), needle) &&
			!strings.Contains(strings.ToLower(sched.Description), needle) {
			return false
		}
	}
	return true
}

func sortSchedules(schedules []models.MaintenanceSchedule, page Page) {
	if page.SortField == "" {
		return
	}
	less := func(a, b models.MaintenanceSchedule) bool {
		switch page.SortField {
		case "next_due_date":
			return timePtrBefore(a.NextDueDate, b.NextDueDate)
		case "start_date":
			return a.StartDate.Before(b.StartDate)
		case "title":
			return a.Title < b.Title
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		if page.SortAsc {
			return less(schedules[i], schedules[j])
		}
		return less(schedules[j], schedules[i])
	})
}

func paginate[T any](items []T, page Page) []T {
	if page.PageSize <= 0 {
		return items
	}
	skip := page.Skip()
	if skip >= len(items) {
		return nil
	}
	end := skip + page.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func timePtrBefore(a, b *time.Time) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.Before(*b)
}

func tagsOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func containsStatus(set []models.RequestStatus, v models.RequestStatus) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsPriority(set []models.Priority, v models.Priority) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsType(set []models.RequestType, v models.RequestType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsCategory(set []models.RequestCategory, v models.RequestCategory) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
