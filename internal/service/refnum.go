package service

import (
	"context"
	"fmt"
	"time"

	"github.com/upkeepworks/property-maintenance/internal/db"
)

const referencePrefix = "MR"

// ReferenceDayPrefix returns the "MR-YYYYMMDD" prefix shared by all
// reference numbers a tenant generates on the given day.
func ReferenceDayPrefix(day time.Time) string {
	return fmt.Sprintf("%s-%s", referencePrefix, day.Format("20060102"))
}

// FormatReferenceNumber renders a reference number from its day and
// per-tenant-per-day sequence, e.g. "MR-20240115-0007".
func FormatReferenceNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", ReferenceDayPrefix(day), seq)
}

// nextReferenceNumber produces the next reference number for a tenant by
// counting the tenant's existing requests with today's prefix. Two
// concurrent creates for the same tenant-day can race to the same sequence;
// the store's unique index on (tenant, reference_number) rejects the loser
// rather than letting a duplicate through.
func nextReferenceNumber(ctx context.Context, store db.RequestStore, tenantID string, now time.Time) (string, error) {
	prefix := ReferenceDayPrefix(now)
	count, err := store.CountRequestsByReferencePrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count reference numbers: %w", err)
	}
	return FormatReferenceNumber(now, count+1), nil
}
