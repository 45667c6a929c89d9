// Package domain defines the business logic for the signup service.
package domain

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store captures directory persistence operations. Implementations must apply
// each mutation atomically and keep rosters free of duplicate emails.
type Store interface {
	List(ctx context.Context) ([]Activity, error)
	SignUp(ctx context.Context, activityName, email string) error
	Unregister(ctx context.Context, activityName, email string) error
}

// Publisher emits roster-change notifications after successful mutations.
type Publisher interface {
	PublishSignup(ctx context.Context, activityName, email string) error
	PublishUnregister(ctx context.Context, activityName, email string) error
}

// NoopPublisher discards notifications; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSignup(context.Context, string, string) error     { return nil }
func (NoopPublisher) PublishUnregister(context.Context, string, string) error { return nil }

// Service orchestrates directory reads and roster mutations.
type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.SugaredLogger
}

// NewService constructs a Service.
func NewService(store Store, publisher Publisher, logger *zap.SugaredLogger) *Service {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, publisher: publisher, logger: logger}
}

// ListActivities returns every activity in the directory.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.store.List(ctx)
}

// SignUp adds email to the activity roster and returns a confirmation message.
func (s *Service) SignUp(ctx context.Context, activityName, email string) (string, error) {
	if err := s.store.SignUp(ctx, activityName, email); err != nil {
		return "", err
	}

	// Roster change is already durable; publish failures must not undo it.
	if err := s.publisher.PublishSignup(ctx, activityName, email); err != nil {
		s.logger.Errorw("signup event publish failed", "activity", activityName, "error", err)
	}

	return fmt.Sprintf("Signed up %s for %s", email, activityName), nil
}

// Unregister removes email from the activity roster and returns a confirmation message.
func (s *Service) Unregister(ctx context.Context, activityName, email string) (string, error) {
	if err := s.store.Unregister(ctx, activityName, email); err != nil {
		return "", err
	}

	if err := s.publisher.PublishUnregister(ctx, activityName, email); err != nil {
		s.logger.Errorw("unregister event publish failed", "activity", activityName, "error", err)
	}

	return fmt.Sprintf("Unregistered %s from %s", email, activityName), nil
}
