package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/planner-go-api/internal/events"
)

var (
	// ErrSemesterNotFound indicates the semester does not exist for the user.
	ErrSemesterNotFound = errors.New("semester not found")
	// ErrCourseNotFound indicates the course does not exist for the user.
	ErrCourseNotFound = errors.New("course not found")
	// ErrAssignmentNotFound indicates the assignment does not exist for the user.
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// DashboardInvalidator drops cached dashboard data for a user.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// mutations publishes change events and invalidates cached dashboards after
// successful writes. Both steps are best effort.
type mutations struct {
	publisher events.Publisher
	dashboard DashboardInvalidator
	logger    zerolog.Logger
}

func newMutations(publisher events.Publisher, dashboard DashboardInvalidator, logger zerolog.Logger) mutations {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return mutations{publisher: publisher, dashboard: dashboard, logger: logger}
}

func (m mutations) changed(ctx context.Context, userID, entity, action, entityID string) {
	if m.dashboard != nil {
		m.dashboard.Invalidate(ctx, userID)
	}

	event := events.Event{Entity: entity, Action: action, EntityID: entityID, UserID: userID}
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn().Err(err).Str("entity", entity).Str("action", action).Msg("failed to publish change event")
	}
}

// textPolicy strips markup from free-text fields.
var textPolicy = bluemonday.StrictPolicy()

// cleanText drops markup but keeps the text as typed. The policy escapes
// entities, which are unescaped again since values are stored as plain text.
func cleanText(value string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(value)))
}

func cleanOptional(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := cleanText(*value)
	return &cleaned
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
