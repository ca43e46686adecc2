package audit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-server/audit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	first := audit.NewEvent(audit.EventLoginSuccess, now).WithPrincipal("user-1")
	second := audit.NewEvent(audit.EventLoginSuccess, now)

	require.Len(t, first.ID, 26)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, "user-1", first.PrincipalID)
	require.Equal(t, now, first.CreatedAt)
}

func TestMemoryPublisher(t *testing.T) {
	p := audit.NewMemoryPublisher()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, audit.NewEvent(audit.EventLoginFailure, time.Time{}).WithReason(errors.New("credentials not valid (email)"))))
	require.NoError(t, p.Publish(ctx, audit.NewEvent(audit.EventLogout, time.Time{})))

	require.Len(t, p.Events(), 2)
	failures := p.OfType(audit.EventLoginFailure)
	require.Len(t, failures, 1)
	require.Equal(t, "credentials not valid (email)", failures[0].Reason)
}

func TestLogPublisher_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	p := audit.NewLogPublisher(&logger)

	event := audit.NewEvent(audit.EventRefreshFailure, time.Time{}).
		WithPrincipal("user-1").
		WithReason(errors.New("refresh token mismatch"))
	require.NoError(t, p.Publish(context.Background(), event))

	out := buf.String()
	require.Contains(t, out, `"event":"auth.refresh.failure"`)
	require.Contains(t, out, `"principal_id":"user-1"`)
	require.Contains(t, out, `"reason":"refresh token mismatch"`)
	require.Contains(t, out, `"level":"warn"`)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, *audit.Event) error {
	return errors.New("broker down")
}

func TestMultiPublisher_DeliversToAll(t *testing.T) {
	mem := audit.NewMemoryPublisher()
	multi := audit.MultiPublisher{failingPublisher{}, mem}

	err := multi.Publish(context.Background(), audit.NewEvent(audit.EventLogout, time.Time{}))
	require.EqualError(t, err, "broker down")
	require.Len(t, mem.Events(), 1)
}
