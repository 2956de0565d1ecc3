package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upkeepworks/property-maintenance/internal/db"
	"github.com/upkeepworks/property-maintenance/internal/events"
	"github.com/upkeepworks/property-maintenance/internal/models"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	requestEvents  []events.RequestEvent
	scheduleEvents []events.ScheduleEvent
}

func (p *capturePublisher) PublishRequestEvent(_ context.Context, ev events.RequestEvent) error {
	p.requestEvents = append(p.requestEvents, ev)
	return nil
}

func (p *capturePublisher) PublishScheduleEvent(_ context.Context, ev events.ScheduleEvent) error {
	p.scheduleEvents = append(p.scheduleEvents, ev)
	return nil
}

type requestFixture struct {
	svc       *RequestService
	store     *db.MemoryRequestStore
	publisher *capturePublisher
	now       time.Time
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	f := &requestFixture{
		store:     db.NewMemoryRequestStore(),
		publisher: &capturePublisher{},
		now:       time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewRequestService(f.store, f.publisher).WithClock(func() time.Time { return f.now })
	return f
}

func (f *requestFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestRequestService_Create(t *testing.T) {
	f := newRequestFixture(t)

	created, err := f.svc.Create(context.Background(), "tenant-a", models.MaintenanceRequest{
		Title:         "Leaking faucet",
		Category:      models.CategoryPlumbing,
		Priority:      models.PriorityHigh,
		PropertyID:    "prop-01",
		RequestedByID: "resident-07",
	}, "resident-07")
	require.NoError(t, err)

	assert.Equal(t, "tenant-a", created.TenantOrganizationID)
	assert.Equal(t, models.StatusSubmitted, created.Status)
	assert.Equal(t, "MR-20240115-0001", created.ReferenceNumber)
	require.Len(t, created.StatusHistory, 1)
	assert.Equal(t, models.StatusSubmitted, created.StatusHistory[0].Status)
	assert.Equal(t, "resident-07", created.StatusHistory[0].ChangedBy)
	assert.Empty(t, created.AssignmentHistory)
	assert.Equal(t, f.now, created.CreatedAt)

	require.Len(t, f.publisher.requestEvents, 1)
	assert.Equal(t, "created", f.publisher.requestEvents[0].Action)
}

func TestRequestService_Create_ParentMustExist(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{
		Title:           "Follow-up repair",
		ParentRequestID: "ffffffffffffffffffffffff",
	}, "system")
	assert.ErrorIs(t, err, db.ErrNotFound)

	parent, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "Original"}, "system")
	require.NoError(t, err)

	// Parents are tenant scoped like everything else.
	_, err = f.svc.Create(ctx, "tenant-b", models.MaintenanceRequest{
		Title:           "Cross-tenant follow-up",
		ParentRequestID: parent.ID.Hex(),
	}, "system")
	assert.ErrorIs(t, err, db.ErrNotFound)

	child, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{
		Title:           "Follow-up repair",
		ParentRequestID: parent.ID.Hex(),
	}, "system")
	require.NoError(t, err)
	assert.Equal(t, parent.ID.Hex(), child.ParentRequestID)
}

func TestRequestService_Lifecycle(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "Broken light"}, "resident-01")
	require.NoError(t, err)
	id := created.ID.Hex()

	f.advance(time.Hour)
	assignedAt := f.now
	assigned, err := f.svc.Assign(ctx, "tenant-a", id, "tech-03", "manager-01", "take this one")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedAt)
	assert.Equal(t, assignedAt, *assigned.AssignedAt)
	assert.Equal(t, "tech-03", assigned.AssignedToID)
	require.Len(t, assigned.AssignmentHistory, 1)
	assert.Equal(t, "tech-03", assigned.AssignmentHistory[0].AssignedTo)
	assert.Equal(t, "manager-01", assigned.AssignmentHistory[0].AssignedBy)
	require.Len(t, assigned.StatusHistory, 2)

	f.advance(2 * time.Hour)
	completed, err := f.svc.Complete(ctx, "tenant-a", id, models.CompletionDetails{Notes: "fixed"}, "tech-03")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	require.NotNil(t, completed.ActualCompletionDate)
	assert.Equal(t, f.now, *completed.CompletedAt)
	require.Len(t, completed.StatusHistory, 3)
	assert.Equal(t, models.StatusCompleted, completed.StatusHistory[2].Status)
}

func TestRequestService_StatusHistoryAppendOnly(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	statuses := []models.RequestStatus{
		models.StatusAcknowledged, models.StatusInProgress,
		models.StatusOnHold, models.StatusInProgress, models.StatusCompleted,
	}
	for i, status := range statuses {
		st := status
		updated, err := f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{Status: &st}, "u")
		require.NoError(t, err)
		// Exactly one entry per status change, never reordered.
		require.Len(t, updated.StatusHistory, i+2)
		assert.Equal(t, status, updated.StatusHistory[i+1].Status)
		assert.Equal(t, models.StatusSubmitted, updated.StatusHistory[0].Status)
	}

	// An update carrying the current status appends nothing.
	st := models.StatusCompleted
	same, err := f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{Status: &st}, "u")
	require.NoError(t, err)
	assert.Len(t, same.StatusHistory, len(statuses)+1)
}

func TestRequestService_CompletedAtSetOnce(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	f.advance(time.Hour)
	first, err := f.svc.Complete(ctx, "tenant-a", id, models.CompletionDetails{}, "u")
	require.NoError(t, err)
	firstCompletedAt := *first.CompletedAt

	// Reopen and complete again: completedAt keeps its original value.
	f.advance(time.Hour)
	st := models.StatusInProgress
	_, err = f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{Status: &st}, "u")
	require.NoError(t, err)

	f.advance(time.Hour)
	again, err := f.svc.Complete(ctx, "tenant-a", id, models.CompletionDetails{}, "u")
	require.NoError(t, err)
	assert.Equal(t, firstCompletedAt, *again.CompletedAt)
}

func TestRequestService_WorkStartedSetsActualStart(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	st := models.StatusInProgress
	updated, err := f.svc.Update(ctx, "tenant-a", created.ID.Hex(), models.RequestUpdate{Status: &st}, "tech-01")
	require.NoError(t, err)

	require.NotNil(t, updated.WorkStartedAt)
	require.NotNil(t, updated.ActualStartDate)
	assert.Equal(t, f.now, *updated.WorkStartedAt)
	assert.Equal(t, f.now, *updated.ActualStartDate)
}

func TestRequestService_AssignmentHistory(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	first := "tech-01"
	updated, err := f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{AssignedToID: &first}, "manager")
	require.NoError(t, err)
	require.Len(t, updated.AssignmentHistory, 1)

	// Re-sending the same assignee appends nothing.
	updated, err = f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{AssignedToID: &first}, "manager")
	require.NoError(t, err)
	require.Len(t, updated.AssignmentHistory, 1)

	second := "tech-02"
	updated, err = f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{AssignedToID: &second}, "manager")
	require.NoError(t, err)
	require.Len(t, updated.AssignmentHistory, 2)
	assert.Equal(t, "tech-02", updated.AssignmentHistory[1].AssignedTo)
	assert.Equal(t, "tech-02", updated.AssignedToID)
}

func TestRequestService_Approval(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	approved := true
	approver := "manager-02"
	updated, err := f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{IsApproved: &approved, ApprovedByID: &approver}, "manager-02")
	require.NoError(t, err)
	require.NotNil(t, updated.ApprovedAt)
	assert.Equal(t, f.now, *updated.ApprovedAt)
	assert.Equal(t, "manager-02", updated.ApprovedByID)

	revoked := false
	updated, err = f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{IsApproved: &revoked}, "manager-02")
	require.NoError(t, err)
	assert.Nil(t, updated.ApprovedAt)
}

func TestRequestService_WarrantyRecompute(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	// Warranty days on an incomplete request derive nothing.
	days := 30
	updated, err := f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{WarrantyDays: &days}, "u")
	require.NoError(t, err)
	assert.Nil(t, updated.WarrantyExpiresAt)

	f.advance(time.Hour)
	completed, err := f.svc.Complete(ctx, "tenant-a", id, models.CompletionDetails{}, "u")
	require.NoError(t, err)
	require.NotNil(t, completed.WarrantyExpiresAt)
	assert.Equal(t, completed.CompletedAt.AddDate(0, 0, 30), *completed.WarrantyExpiresAt)

	// Changing warranty days after completion recomputes from completedAt.
	days = 90
	updated, err = f.svc.Update(ctx, "tenant-a", id, models.RequestUpdate{WarrantyDays: &days}, "u")
	require.NoError(t, err)
	require.NotNil(t, updated.WarrantyExpiresAt)
	assert.Equal(t, completed.CompletedAt.AddDate(0, 0, 90), *updated.WarrantyExpiresAt)
}

func TestRequestService_PartialPatch(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{
		Title:       "Original title",
		Description: "Original description",
		Priority:    models.PriorityLow,
	}, "u")
	require.NoError(t, err)

	priority := models.PriorityUrgent
	updated, err := f.svc.Update(ctx, "tenant-a", created.ID.Hex(), models.RequestUpdate{Priority: &priority}, "u")
	require.NoError(t, err)

	// Absent patch fields never clear populated values.
	assert.Equal(t, "Original title", updated.Title)
	assert.Equal(t, "Original description", updated.Description)
	assert.Equal(t, models.PriorityUrgent, updated.Priority)

	// An explicit empty value does clear.
	empty := ""
	updated, err = f.svc.Update(ctx, "tenant-a", created.ID.Hex(), models.RequestUpdate{Description: &empty}, "u")
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Equal(t, "Original title", updated.Title)
}

func TestRequestService_Cancel(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, "tenant-a", created.ID.Hex(), "resident moved out", "manager")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "resident moved out", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledAt)
}

func TestRequestService_TenantScoping(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	// A request existing in another tenant is indistinguishable from one
	// that does not exist at all.
	_, err = f.svc.Get(ctx, "tenant-b", id)
	assert.ErrorIs(t, err, db.ErrNotFound)

	st := models.StatusAcknowledged
	_, err = f.svc.Update(ctx, "tenant-b", id, models.RequestUpdate{Status: &st}, "u")
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = f.svc.Delete(ctx, "tenant-b", id)
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = f.svc.Get(ctx, "tenant-b", "missing-id")
	assert.ErrorIs(t, err, db.ErrNotFound)

	// The request is untouched in its own tenant.
	got, err := f.svc.Get(ctx, "tenant-a", id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status)
}

func TestRequestService_Delete(t *testing.T) {
	f := newRequestFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "tenant-a", models.MaintenanceRequest{Title: "r"}, "u")
	require.NoError(t, err)
	id := created.ID.Hex()

	require.NoError(t, f.svc.Delete(ctx, "tenant-a", id))
	_, err = f.svc.Get(ctx, "tenant-a", id)
	assert.ErrorIs(t, err, db.ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, "tenant-a", id), db.ErrNotFound)
}
