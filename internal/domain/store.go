package domain

import (
	"context"
	"time"
)

// Cursor models the pagination token for activity listings.
type Cursor struct {
	StartTime time.Time
	ID        string
}

// ListFilter narrows activity listings.
type ListFilter struct {
	Start *time.Time
	End   *time.Time
	Sport *Sport
}

// ActivityStore captures persistence operations the core depends on. All
// Find/List methods exclude superseded activities; Get returns them so the
// reconciliation audit trail stays reachable.
type ActivityStore interface {
	Save(ctx context.Context, activity *Activity) error
	Get(ctx context.Context, athleteID, activityID string) (*Activity, error)
	Delete(ctx context.Context, athleteID, activityID string) error

	FindByHash(ctx context.Context, athleteID, hash string) (*Activity, error)
	FindOverlapping(ctx context.Context, athleteID string, windowStart, windowEnd time.Time) ([]Activity, error)
	FindByDateRange(ctx context.Context, athleteID string, start, end time.Time) ([]Activity, error)
	List(ctx context.Context, athleteID string, filter ListFilter, cursor *Cursor, limit int) ([]Activity, *Cursor, error)

	// SaveReconciled commits a merge atomically: the merged activity is
	// inserted and both sources are marked superseded in one transaction.
	SaveReconciled(ctx context.Context, merged *Activity, sourceA, sourceB string) error
}
