//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/store"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("school"),
		postgrescontainer.WithUsername("signup"),
		postgrescontainer.WithPassword("signup"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, Migrate(ctx, pool))
	require.NoError(t, Seed(ctx, pool, store.SeedCatalog()))

	return NewRepository(pool)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}

func TestRepositorySeedsAndLists(t *testing.T) {
	repo := newTestRepository(t)

	activities, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 9)

	byName := make(map[string]domain.Activity, len(activities))
	for _, activity := range activities {
		byName[activity.Name] = activity
	}

	chess, ok := byName["Chess Club"]
	require.True(t, ok)
	require.Equal(t, 12, chess.MaxParticipants)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)
}

func TestRepositorySignupSemantics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SignUp(ctx, "Chess Club", "integration@mergington.edu"))

	err := repo.SignUp(ctx, "Chess Club", "integration@mergington.edu")
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	err = repo.SignUp(ctx, "Nonexistent Activity", "integration@mergington.edu")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	activities, err := repo.List(ctx)
	require.NoError(t, err)
	for _, activity := range activities {
		if activity.Name == "Chess Club" {
			require.Equal(t, "integration@mergington.edu", activity.Participants[len(activity.Participants)-1])
		}
	}
}

func TestRepositoryUnregisterSemantics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SignUp(ctx, "Drama Club", "leaver@mergington.edu"))
	require.NoError(t, repo.Unregister(ctx, "Drama Club", "leaver@mergington.edu"))

	err := repo.Unregister(ctx, "Drama Club", "leaver@mergington.edu")
	require.ErrorIs(t, err, domain.ErrNotRegistered)

	err = repo.Unregister(ctx, "Nonexistent Activity", "leaver@mergington.edu")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SignUp(ctx, "Chess Club", "survivor@mergington.edu"))

	// Re-seeding must not duplicate activities or drop live rosters.
	pool := repo.pool
	require.NoError(t, Seed(ctx, pool, store.SeedCatalog()))

	activities, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, activities, 9)

	for _, activity := range activities {
		if activity.Name == "Chess Club" {
			require.Contains(t, activity.Participants, "survivor@mergington.edu")
		}
	}
}
