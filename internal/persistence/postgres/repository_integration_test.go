//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/training/internal/domain"
	"example.com/training/internal/profile"
	"example.com/training/internal/zones"
)

func TestActivityRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	repo := NewActivityRepository(pool)
	athleteID := uuid.NewString()

	start := time.Date(2026, time.January, 12, 7, 0, 0, 0, time.UTC)
	first := buildActivity(athleteID, start, time.Hour)
	second := buildActivity(athleteID, start.Add(5*time.Minute), time.Hour)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	stored, err := repo.Get(ctx, athleteID, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, stored.ID)
	require.Equal(t, first.TotalTimerTime, stored.TotalTimerTime)
	require.NotNil(t, stored.TSS)
	require.Equal(t, *first.TSS, *stored.TSS)
	require.Len(t, stored.Samples, len(first.Samples))

	// Hash lookup finds the live activity and returns nil on a miss.
	byHash, err := repo.FindByHash(ctx, athleteID, *first.ContentHash)
	require.NoError(t, err)
	require.NotNil(t, byHash)
	require.Equal(t, first.ID, byHash.ID)

	miss, err := repo.FindByHash(ctx, athleteID, "no-such-hash")
	require.NoError(t, err)
	require.Nil(t, miss)

	// Another athlete cannot see these rows.
	_, err = repo.Get(ctx, uuid.NewString(), first.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Every save records an outbox row.
	var outboxCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE partition_key=$1 AND event_type='activity.ingested'`,
		athleteID).Scan(&outboxCount))
	require.Equal(t, 2, outboxCount)
}

func TestSaveReconciledSupersedesSources(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	repo := NewActivityRepository(pool)
	athleteID := uuid.NewString()

	start := time.Date(2026, time.January, 12, 7, 0, 0, 0, time.UTC)
	first := buildActivity(athleteID, start, time.Hour)
	second := buildActivity(athleteID, start.Add(time.Minute), time.Hour)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	merged := buildActivity(athleteID, start, time.Hour)
	merged.Source = domain.SourceReconciled
	merged.ContentHash = nil
	merged.Reconciled = true
	merged.ReconciledFrom = []string{first.ID, second.ID}

	require.NoError(t, repo.SaveReconciled(ctx, merged, first.ID, second.ID))

	// Sources stay readable by ID but drop out of range and overlap queries.
	storedFirst, err := repo.Get(ctx, athleteID, first.ID)
	require.NoError(t, err)
	require.NotNil(t, storedFirst.SupersededBy)
	require.Equal(t, merged.ID, *storedFirst.SupersededBy)

	inRange, err := repo.FindByDateRange(ctx, athleteID, start.AddDate(0, 0, -1), start.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	require.Equal(t, merged.ID, inRange[0].ID)

	overlapping, err := repo.FindOverlapping(ctx, athleteID, start.Add(-time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, overlapping, 1)
	require.Equal(t, merged.ID, overlapping[0].ID)

	listed, _, err := repo.List(ctx, athleteID, domain.ListFilter{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	// Merging an already superseded source fails and leaves nothing behind.
	again := buildActivity(athleteID, start, time.Hour)
	again.ContentHash = nil
	err = repo.SaveReconciled(ctx, again, first.ID, second.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.Get(ctx, athleteID, again.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	repo := NewActivityRepository(pool)
	athleteID := uuid.NewString()

	start := time.Date(2026, time.January, 5, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		a := buildActivity(athleteID, start.AddDate(0, 0, i), 30*time.Minute)
		a.ContentHash = nil
		require.NoError(t, repo.Save(ctx, a))
	}

	page1, cursor, err := repo.List(ctx, athleteID, domain.ListFilter{}, nil, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	require.NotNil(t, cursor)
	// Newest first.
	require.True(t, page1[0].StartTime.After(page1[1].StartTime))

	page2, cursor2, err := repo.List(ctx, athleteID, domain.ListFilter{}, cursor, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.Nil(t, cursor2)
	require.True(t, page1[2].StartTime.After(page2[0].StartTime))
}

func TestProfileRepositoryUpserts(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	repo := NewProfileRepository(pool)
	athleteID := uuid.NewString()

	_, err := repo.Get(ctx, athleteID)
	require.ErrorIs(t, err, profile.ErrNotFound)

	thresholds := zones.Thresholds{LTHR: 162, FTP: 255, RunningFTP: 270}
	require.NoError(t, repo.UpdateThresholds(ctx, athleteID, thresholds))

	stored, err := repo.Get(ctx, athleteID)
	require.NoError(t, err)
	require.Equal(t, thresholds, stored.Thresholds)

	asOf := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveSnapshot(ctx, athleteID, profile.LoadSnapshot{CTL: 42.5, ATL: 38.1, AsOf: asOf}))

	stored, err = repo.Get(ctx, athleteID)
	require.NoError(t, err)
	require.Equal(t, 42.5, stored.Snapshot.CTL)
	require.True(t, stored.Snapshot.AsOf.Equal(asOf))

	// A stale snapshot never overwrites a newer one, and emits no event.
	require.NoError(t, repo.SaveSnapshot(ctx, athleteID, profile.LoadSnapshot{CTL: 1, ATL: 1, AsOf: asOf.AddDate(0, 0, -5)}))
	stored, err = repo.Get(ctx, athleteID)
	require.NoError(t, err)
	require.Equal(t, 42.5, stored.Snapshot.CTL)

	var recomputeEvents int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM outbox WHERE partition_key=$1 AND event_type='training_load.recomputed'`,
		athleteID).Scan(&recomputeEvents))
	require.Equal(t, 1, recomputeEvents)
}

func buildActivity(athleteID string, start time.Time, dur time.Duration) *domain.Activity {
	end := start.Add(dur)
	hash := uuid.NewString()
	hr := 145
	tss := 80.0
	scaled := 80.0
	return &domain.Activity{
		ID:             uuid.NewString(),
		AthleteID:      athleteID,
		Source:         domain.SourceUpload,
		ContentHash:    &hash,
		Sport:          domain.SportRowing,
		StartTime:      start,
		EndTime:        &end,
		TotalTimerTime: dur.Seconds(),
		Summary: domain.Summary{
			AvgHeartRate: &hr,
			TSS:          &tss,
			ScaledTSS:    &scaled,
		},
		Samples: []domain.Sample{
			{Timestamp: start, HeartRate: &hr},
			{Timestamp: start.Add(time.Second), HeartRate: &hr},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("training"),
		postgrescontainer.WithUsername("training"),
		postgrescontainer.WithPassword("training"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	files := []string{
		"../../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
