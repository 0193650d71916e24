package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRefresher struct {
	inserted int
	err      error
	calls    int
}

func (s *stubRefresher) Refresh(ctx context.Context) (int, error) {
	s.calls++
	return s.inserted, s.err
}

func TestFeedsRefreshHandlerRunsCycle(t *testing.T) {
	refresher := &stubRefresher{inserted: 7}
	handler := NewFeedsRefreshHandler(refresher, nil, nil)

	task, err := NewFeedsRefreshTask(time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 1, refresher.calls)
}

func TestFeedsRefreshHandlerSurfacesFailure(t *testing.T) {
	boom := errors.New("upstream down")
	handler := NewFeedsRefreshHandler(&stubRefresher{err: boom}, nil, nil)

	task, err := NewFeedsRefreshTask(time.Now().UTC())
	require.NoError(t, err)

	assert.ErrorIs(t, handler(context.Background(), task), boom)
}

func TestFeedsRefreshHandlerSkipsBadPayload(t *testing.T) {
	refresher := &stubRefresher{}
	handler := NewFeedsRefreshHandler(refresher, nil, nil)

	task := asynq.NewTask(TaskFeedsRefresh, []byte("not json"))
	assert.ErrorIs(t, handler(context.Background(), task), asynq.SkipRetry)
	assert.Equal(t, 0, refresher.calls)
}
