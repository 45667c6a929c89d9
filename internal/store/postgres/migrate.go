package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/signup/internal/domain"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS activities (
        name TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        schedule TEXT NOT NULL,
        max_participants INT NOT NULL,
        seeded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE TABLE IF NOT EXISTS participants (
        activity_name TEXT NOT NULL REFERENCES activities(name),
        email TEXT NOT NULL,
        position BIGSERIAL,
        PRIMARY KEY (activity_name, email)
    )`,
	`CREATE TABLE IF NOT EXISTS roster_event_log (
        id BIGSERIAL PRIMARY KEY,
        event_id TEXT NOT NULL,
        event_type TEXT NOT NULL,
        activity TEXT NOT NULL,
        email TEXT NOT NULL,
        action TEXT NOT NULL,
        occurred_at TIMESTAMPTZ NOT NULL,
        schema_id INT NOT NULL,
        topic TEXT NOT NULL,
        partition INT NOT NULL,
        record_offset BIGINT NOT NULL,
        payload JSONB NOT NULL,
        received_at TIMESTAMPTZ NOT NULL
    )`,
}

// Migrate applies the schema. Statements are idempotent so startup can always run it.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the fixed catalog, leaving existing rows untouched so rosters
// survive restarts.
func Seed(ctx context.Context, pool *pgxpool.Pool, activities []domain.Activity) error {
	for _, activity := range activities {
		if _, err := pool.Exec(ctx,
			`INSERT INTO activities (name, description, schedule, max_participants)
             VALUES ($1,$2,$3,$4) ON CONFLICT (name) DO NOTHING`,
			activity.Name, activity.Description, activity.Schedule, activity.MaxParticipants); err != nil {
			return err
		}
		for _, email := range activity.Participants {
			if _, err := pool.Exec(ctx,
				`INSERT INTO participants (activity_name, email)
                 VALUES ($1,$2) ON CONFLICT (activity_name, email) DO NOTHING`,
				activity.Name, email); err != nil {
				return err
			}
		}
	}
	return nil
}
