package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type refresherStub struct {
	calls   int
	userID  string
	changed int
	err     error
}

func (r *refresherStub) RefreshStatuses(ctx context.Context, userID string) (int, error) {
	r.calls++
	r.userID = userID
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return 0, errors.New("missing deadline")
	}
	return r.changed, r.err
}

func TestAddStatusRefresh(t *testing.T) {
	s := New(time.UTC, zerolog.Nop())
	refresher := &refresherStub{}

	require.NoError(t, s.AddStatusRefresh("15 3 * * *", "user-1", refresher))
	require.Equal(t, 1, s.Entries())

	require.Error(t, s.AddStatusRefresh("not a schedule", "user-1", refresher))
	require.Equal(t, 1, s.Entries())
}

func TestStatusRefreshJobRunsForUser(t *testing.T) {
	s := New(nil, zerolog.Nop())
	refresher := &refresherStub{changed: 2}

	s.statusRefreshJob("user-1", refresher)()
	require.Equal(t, 1, refresher.calls)
	require.Equal(t, "user-1", refresher.userID)

	refresher.err = errors.New("store down")
	s.statusRefreshJob("user-1", refresher)()
	require.Equal(t, 2, refresher.calls)
}

func TestStartStop(t *testing.T) {
	s := New(time.UTC, zerolog.Nop())
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
