// Package postgres provides pgx-backed persistence for activities, athlete
// profiles, and the event outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/domain"
	"example.com/training/internal/events"
	"example.com/training/internal/observability"
)

const activityColumns = `id, athlete_id, source, source_id, content_hash, original_filename,
        sport, sub_sport, name, description,
        start_time, end_time, total_timer_time, total_elapsed_time,
        summary, samples, laps,
        is_reconciled, reconciled_from, superseded_by, created_at`

// ActivityRepository provides Postgres-backed persistence for activities and
// records outbox events alongside the writes that cause them.
type ActivityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

// Save persists the activity and records an ingestion outbox event inside a
// single transaction.
func (r *ActivityRepository) Save(ctx context.Context, activity *domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = insertActivity(ctx, tx, activity); err != nil {
		return err
	}

	if err = insertOutbox(ctx, tx, "activity.ingested", activity.AthleteID, activity.ID, events.ActivityIngested{
		ActivityID: activity.ID,
		AthleteID:  activity.AthleteID,
		Source:     string(activity.Source),
		Sport:      string(activity.Sport),
		StartTime:  activity.StartTime,
		DurationS:  activity.TotalTimerTime,
		TSS:        activity.TSS,
		ScaledTSS:  activity.ScaledTSS,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityIngested(activity.CreatedAt)
	return nil
}

// SaveReconciled inserts the merged activity and marks both sources as
// superseded by it in one transaction, then records the reconciliation
// event. A partial merge is never visible.
func (r *ActivityRepository) SaveReconciled(ctx context.Context, merged *domain.Activity, sourceA, sourceB string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if err = insertActivity(ctx, tx, merged); err != nil {
		return err
	}

	const supersede = `UPDATE activities SET superseded_by=$1
        WHERE athlete_id=$2 AND id=ANY($3) AND superseded_by IS NULL`
	tag, err := tx.Exec(ctx, supersede, merged.ID, merged.AthleteID, []string{sourceA, sourceB})
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 2 {
		err = fmt.Errorf("%w: source activity already superseded", domain.ErrNotFound)
		return err
	}

	if err = insertOutbox(ctx, tx, "activity.reconciled", merged.AthleteID, merged.ID, events.ActivityReconciled{
		ActivityID:    merged.ID,
		AthleteID:     merged.AthleteID,
		SupersededIDs: []string{sourceA, sourceB},
		Sport:         string(merged.Sport),
		StartTime:     merged.StartTime,
		DurationS:     merged.TotalTimerTime,
		ScaledTSS:     merged.ScaledTSS,
		OccurredAt:    merged.CreatedAt,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordActivityReconciled(merged.CreatedAt)
	return nil
}

func insertActivity(ctx context.Context, tx pgx.Tx, a *domain.Activity) error {
	const stmt = `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`

	_, err := tx.Exec(ctx, stmt,
		a.ID,
		a.AthleteID,
		a.Source,
		a.SourceID,
		a.ContentHash,
		a.OriginalFilename,
		a.Sport,
		a.SubSport,
		a.Name,
		a.Description,
		a.StartTime,
		a.EndTime,
		a.TotalTimerTime,
		a.TotalElapsedTime,
		a.Summary,
		a.Samples,
		a.Laps,
		a.Reconciled,
		a.ReconciledFrom,
		a.SupersededBy,
		a.CreatedAt,
	)
	return err
}

// Get retrieves an activity by ID, including superseded ones so the
// reconciliation audit trail stays reachable.
func (r *ActivityRepository) Get(ctx context.Context, athleteID, activityID string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE athlete_id=$1 AND id=$2`

	row := r.pool.QueryRow(ctx, query, athleteID, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, activityID)
		}
		return nil, err
	}
	return activity, nil
}

// Delete removes an activity.
func (r *ActivityRepository) Delete(ctx context.Context, athleteID, activityID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE athlete_id=$1 AND id=$2`, athleteID, activityID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, activityID)
	}
	return nil
}

// FindByHash looks up a live activity by content hash.
func (r *ActivityRepository) FindByHash(ctx context.Context, athleteID, hash string) (*domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE athlete_id=$1 AND content_hash=$2 AND superseded_by IS NULL
        ORDER BY created_at LIMIT 1`

	row := r.pool.QueryRow(ctx, query, athleteID, hash)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// FindOverlapping returns live activities whose recorded window intersects
// [windowStart, windowEnd].
func (r *ActivityRepository) FindOverlapping(ctx context.Context, athleteID string, windowStart, windowEnd time.Time) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE athlete_id=$1 AND superseded_by IS NULL
          AND start_time <= $3 AND COALESCE(end_time, start_time) >= $2
        ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, athleteID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// FindByDateRange returns live activities starting in [start, end).
func (r *ActivityRepository) FindByDateRange(ctx context.Context, athleteID string, start, end time.Time) ([]domain.Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities
        WHERE athlete_id=$1 AND superseded_by IS NULL
          AND start_time >= $2 AND start_time < $3
        ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, athleteID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

// List pages the athlete's live activities newest first.
func (r *ActivityRepository) List(ctx context.Context, athleteID string, filter domain.ListFilter, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE athlete_id=$1 AND superseded_by IS NULL`
	args := []interface{}{athleteID, limit}

	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(` AND start_time >= $%d`, len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(` AND start_time < $%d`, len(args))
	}
	if filter.Sport != nil {
		args = append(args, *filter.Sport)
		query += fmt.Sprintf(` AND sport = $%d`, len(args))
	}
	if cursor != nil {
		args = append(args, cursor.StartTime, cursor.ID)
		query += fmt.Sprintf(` AND (start_time, id) < ($%d, $%d)`, len(args)-1, len(args))
	}
	query += ` ORDER BY start_time DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results, err := collectActivities(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartTime: last.StartTime, ID: last.ID}
	}
	return results, nextCursor, nil
}

func collectActivities(rows pgx.Rows) ([]domain.Activity, error) {
	results := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var a domain.Activity
	err := row.Scan(
		&a.ID,
		&a.AthleteID,
		&a.Source,
		&a.SourceID,
		&a.ContentHash,
		&a.OriginalFilename,
		&a.Sport,
		&a.SubSport,
		&a.Name,
		&a.Description,
		&a.StartTime,
		&a.EndTime,
		&a.TotalTimerTime,
		&a.TotalElapsedTime,
		&a.Summary,
		&a.Samples,
		&a.Laps,
		&a.Reconciled,
		&a.ReconciledFrom,
		&a.SupersededBy,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, eventType, athleteID, aggregateID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, stmt,
		"activity",
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		athleteID,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

// Both event types share the activity topic, partitioned by athlete so a
// consumer sees one athlete's events in order.
var eventCatalog = map[string]EventMetadata{
	"activity.ingested": {
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
	},
	"activity.reconciled": {
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
	},
}
