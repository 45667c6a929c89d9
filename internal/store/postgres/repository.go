// Package postgres provides a durable activity directory backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/observability"
)

// Repository implements domain.Store on top of a pgx connection pool.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every activity with its roster in signup order.
func (r *Repository) List(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, description, schedule, max_participants FROM activities ORDER BY seeded_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	index := make(map[string]int)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, err
		}
		a.Participants = []string{}
		index[a.Name] = len(activities)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	participantRows, err := r.pool.Query(ctx,
		`SELECT activity_name, email FROM participants ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer participantRows.Close()

	for participantRows.Next() {
		var activityName, email string
		if err := participantRows.Scan(&activityName, &email); err != nil {
			return nil, err
		}
		if i, ok := index[activityName]; ok {
			activities[i].Participants = append(activities[i].Participants, email)
		}
	}
	return activities, participantRows.Err()
}

// SignUp appends email to the activity roster inside a single transaction.
func (r *Repository) SignUp(ctx context.Context, activityName, email string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := activityExists(ctx, tx, activityName); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO participants (activity_name, email) VALUES ($1, $2)
         ON CONFLICT (activity_name, email) DO NOTHING`,
		activityName, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyRegistered
	}

	if err := recordRosterSize(ctx, tx, activityName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Unregister removes email from the activity roster inside a single transaction.
func (r *Repository) Unregister(ctx context.Context, activityName, email string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := activityExists(ctx, tx, activityName); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM participants WHERE activity_name=$1 AND email=$2`,
		activityName, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotRegistered
	}

	if err := recordRosterSize(ctx, tx, activityName); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func activityExists(ctx context.Context, tx pgx.Tx, activityName string) error {
	var name string
	err := tx.QueryRow(ctx, `SELECT name FROM activities WHERE name=$1`, activityName).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrActivityNotFound
	}
	return err
}

func recordRosterSize(ctx context.Context, tx pgx.Tx, activityName string) error {
	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE activity_name=$1`, activityName).Scan(&count); err != nil {
		return fmt.Errorf("count roster for %s: %w", activityName, err)
	}
	observability.SetRosterSize(activityName, count)
	return nil
}
