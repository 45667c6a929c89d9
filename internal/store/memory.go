// Package store provides the in-memory activity directory.
package store

import (
	"context"
	"sync"

	"example.com/signup/internal/domain"
	"example.com/signup/internal/observability"
)

// Memory holds the activity directory in process memory. A single RWMutex
// serializes mutations so the per-activity uniqueness invariant holds under
// concurrent requests.
type Memory struct {
	mu         sync.RWMutex
	activities map[string]*domain.Activity
	names      []string
}

// NewMemory constructs a directory populated with the seed catalog.
func NewMemory() *Memory {
	m := &Memory{activities: make(map[string]*domain.Activity)}
	for _, activity := range SeedCatalog() {
		a := activity
		m.activities[a.Name] = &a
		m.names = append(m.names, a.Name)
		observability.SetRosterSize(a.Name, len(a.Participants))
	}
	return m
}

// List returns all activities in seed order with independent roster slices.
func (m *Memory) List(ctx context.Context) ([]domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Activity, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.activities[name].Clone())
	}
	return out, nil
}

// SignUp appends email to the activity roster, rejecting duplicates.
func (m *Memory) SignUp(ctx context.Context, activityName, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, ok := m.activities[activityName]
	if !ok {
		return domain.ErrActivityNotFound
	}
	for _, participant := range activity.Participants {
		if participant == email {
			return domain.ErrAlreadyRegistered
		}
	}

	activity.Participants = append(activity.Participants, email)
	observability.SetRosterSize(activityName, len(activity.Participants))
	return nil
}

// Unregister removes email from the activity roster.
func (m *Memory) Unregister(ctx context.Context, activityName, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	activity, ok := m.activities[activityName]
	if !ok {
		return domain.ErrActivityNotFound
	}
	for i, participant := range activity.Participants {
		if participant == email {
			activity.Participants = append(activity.Participants[:i], activity.Participants[i+1:]...)
			observability.SetRosterSize(activityName, len(activity.Participants))
			return nil
		}
	}
	return domain.ErrNotRegistered
}
