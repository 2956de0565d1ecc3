package models

// DashboardStats is the tenant-scoped snapshot of request and schedule
// activity shown on the maintenance dashboard. It is always recomputed from
// current store state and never persisted.
type DashboardStats struct {
	TotalRequests      int `json:"total_requests"`
	PendingRequests    int `json:"pending_requests"`
	InProgressRequests int `json:"in_progress_requests"`
	CompletedRequests  int `json:"completed_requests"`
	OverdueRequests    int `json:"overdue_requests"`
	EmergencyRequests  int `json:"emergency_requests"`

	TotalSchedules    int `json:"total_schedules"`
	ActiveSchedules   int `json:"active_schedules"`
	OverdueSchedules  int `json:"overdue_schedules"`
	UpcomingSchedules int `json:"upcoming_schedules"` // due within the next 7 days

	AverageCompletionHours    float64 `json:"average_completion_hours"`
	AverageActualCost         float64 `json:"average_actual_cost"` // in USD
	AverageSatisfactionRating float64 `json:"average_satisfaction_rating"`

	RequestsByCategory map[RequestCategory]int `json:"requests_by_category"`
	RequestsByPriority map[Priority]int        `json:"requests_by_priority"`
	RequestsByStatus   map[RequestStatus]int   `json:"requests_by_status"`

	SchedulesByType      map[RequestType]int `json:"schedules_by_type"`
	SchedulesByFrequency map[Frequency]int   `json:"schedules_by_frequency"`
}
