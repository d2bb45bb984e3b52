// Package analytics emits product analytics events after the operations that
// produce them have committed.
package analytics

import (
	"context"
	"time"

	"github.com/HarshArya1405/typescriptDemo/internal/dispatch"
	"github.com/HarshArya1405/typescriptDemo/pkg/db/models"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
)

const (
	EventUserCreated  = "User Created"
	EventProfileVisit = "Profile Visit"
)

// Tracker is the analytics backend (Mixpanel in production).
type Tracker interface {
	Track(ctx context.Context, event, distinctID string, props map[string]any) error
	SetProfile(ctx context.Context, distinctID string, props map[string]any) error
}

// Service queues analytics calls on the dispatcher. Every method returns
// immediately and never reports backend failures to the caller.
type Service interface {
	UserCreated(ctx context.Context, user models.User)
	ProfileVisited(ctx context.Context, userID string)
}

type service struct {
	tracker  Tracker
	dispatch dispatch.Enqueuer
	logg     *logger.Logger
}

// NewService wires a tracker to a dispatcher. A nil tracker yields a no-op
// service.
func NewService(tracker Tracker, enqueuer dispatch.Enqueuer, logg *logger.Logger) Service {
	if tracker == nil || enqueuer == nil {
		return noop{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{tracker: tracker, dispatch: enqueuer, logg: logg}
}

func (s *service) UserCreated(ctx context.Context, user models.User) {
	distinctID := user.ID.String()
	props := map[string]any{"email": deref(user.Email), "userName": deref(user.UserName)}
	profile := profileProps(user)

	s.dispatch.Enqueue(ctx, "analytics.user_created", func(ctx context.Context) error {
		if err := s.tracker.Track(ctx, EventUserCreated, distinctID, props); err != nil {
			return err
		}
		return s.tracker.SetProfile(ctx, distinctID, profile)
	})
}

func (s *service) ProfileVisited(ctx context.Context, userID string) {
	s.dispatch.Enqueue(ctx, "analytics.profile_visit", func(ctx context.Context) error {
		return s.tracker.Track(ctx, EventProfileVisit, userID, map[string]any{"userId": userID})
	})
}

func profileProps(user models.User) map[string]any {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}
	return map[string]any{
		"$name":     user.FullName,
		"$email":    deref(user.Email),
		"$phone":    user.Phone,
		"$created":  user.CreatedAt.UTC().Format(time.RFC3339),
		"userName":  deref(user.UserName),
		"title":     user.Title,
		"gender":    user.Gender,
		"roles":     roles,
		"hasAvatar": user.ProfilePicture != "" || user.ProfilePicturePath != "",
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type noop struct{}

func (noop) UserCreated(context.Context, models.User) {}
func (noop) ProfileVisited(context.Context, string)   {}
