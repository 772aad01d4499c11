package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/training/internal/events"
	"example.com/training/internal/profile"
	"example.com/training/internal/zones"
)

// ProfileRepository provides Postgres-backed persistence for athlete
// profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get fetches one athlete's profile.
func (r *ProfileRepository) Get(ctx context.Context, athleteID string) (*profile.Profile, error) {
	const query = `SELECT athlete_id, primary_sport, thresholds, zone_config, sport_scaling,
        ctl, atl, snapshot_as_of
        FROM athlete_profiles WHERE athlete_id=$1`

	row := r.pool.QueryRow(ctx, query, athleteID)

	var p profile.Profile
	var asOf *time.Time
	err := row.Scan(
		&p.AthleteID,
		&p.PrimarySport,
		&p.Thresholds,
		&p.ZoneConfig,
		&p.Scaling,
		&p.Snapshot.CTL,
		&p.Snapshot.ATL,
		&asOf,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", profile.ErrNotFound, athleteID)
		}
		return nil, err
	}
	if asOf != nil {
		p.Snapshot.AsOf = asOf.UTC()
	}
	return &p, nil
}

// UpdateThresholds upserts the athlete's threshold values, creating the
// profile row with defaults on first write.
func (r *ProfileRepository) UpdateThresholds(ctx context.Context, athleteID string, t zones.Thresholds) error {
	const stmt = `INSERT INTO athlete_profiles (athlete_id, thresholds, zone_config)
        VALUES ($1, $2, $3)
        ON CONFLICT (athlete_id) DO UPDATE SET thresholds=EXCLUDED.thresholds, updated_at=now()`

	_, err := r.pool.Exec(ctx, stmt, athleteID, t, profile.DefaultZoneConfig())
	return err
}

// UpdateZoneConfig upserts the athlete's zone-method preferences.
func (r *ProfileRepository) UpdateZoneConfig(ctx context.Context, athleteID string, cfg profile.ZoneConfig) error {
	const stmt = `INSERT INTO athlete_profiles (athlete_id, thresholds, zone_config)
        VALUES ($1, $2, $3)
        ON CONFLICT (athlete_id) DO UPDATE SET zone_config=EXCLUDED.zone_config, updated_at=now()`

	_, err := r.pool.Exec(ctx, stmt, athleteID, zones.Thresholds{}, cfg)
	return err
}

// SaveSnapshot persists the rolled-forward CTL/ATL pair and records a
// training_load.recomputed outbox event in the same transaction. Snapshots
// only move forward; a replayed event with an older as-of date is a no-op
// and emits nothing.
func (r *ProfileRepository) SaveSnapshot(ctx context.Context, athleteID string, snap profile.LoadSnapshot) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO athlete_profiles (athlete_id, thresholds, zone_config, ctl, atl, snapshot_as_of)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (athlete_id) DO UPDATE
        SET ctl=EXCLUDED.ctl, atl=EXCLUDED.atl, snapshot_as_of=EXCLUDED.snapshot_as_of, updated_at=now()
        WHERE athlete_profiles.snapshot_as_of IS NULL OR athlete_profiles.snapshot_as_of <= EXCLUDED.snapshot_as_of`

	tag, err := tx.Exec(ctx, stmt, athleteID, zones.Thresholds{}, profile.DefaultZoneConfig(), snap.CTL, snap.ATL, snap.AsOf)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = tx.Rollback(ctx)
		return err
	}

	if err = insertLoadRecomputed(ctx, tx, athleteID, snap); err != nil {
		return err
	}
	err = tx.Commit(ctx)
	return err
}

// insertLoadRecomputed keeps at most one pending recompute event per athlete
// per snapshot day; a later recompute for the same day replaces its payload
// and re-arms delivery.
func insertLoadRecomputed(ctx context.Context, tx pgx.Tx, athleteID string, snap profile.LoadSnapshot) error {
	body, err := json.Marshal(events.TrainingLoadRecomputed{
		AthleteID: athleteID,
		CTL:       snap.CTL,
		ATL:       snap.ATL,
		AsOf:      snap.AsOf,
	})
	if err != nil {
		return err
	}

	dedupeKey := fmt.Sprintf("%s:training_load.recomputed:%s", athleteID, snap.AsOf.UTC().Format("2006-01-02"))

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ('athlete_profile', $1, 'training_load.recomputed', 'training_load_events', 'training_load_events-value', $1, $2, $3)
        ON CONFLICT (dedupe_key) DO UPDATE
        SET payload=EXCLUDED.payload, published_at=NULL, quarantined_at=NULL, attempts=0, last_error=NULL, created_at=NOW()`

	_, err = tx.Exec(ctx, stmt, athleteID, body, dedupeKey)
	return err
}
