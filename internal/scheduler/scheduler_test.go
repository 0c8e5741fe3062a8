package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestRegisterRefresh_InvalidSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &countingRefresher{})
	err := s.RegisterRefresh("every six hours")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register refresh task")
}

func TestRegisterRefresh_FiveFieldSpecRejected(t *testing.T) {
	s := NewScheduler(context.Background(), &countingRefresher{})
	assert.Error(t, s.RegisterRefresh("0 */6 * * *"))
	assert.NoError(t, s.RegisterRefresh("0 0 */6 * * *"))
}

func TestRefreshNow(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(context.Background(), r)
	require.NoError(t, s.RefreshNow())
	assert.Equal(t, int32(1), r.calls.Load())

	r.err = errors.New("coingecko down")
	assert.EqualError(t, s.RefreshNow(), "coingecko down")
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestScheduledRefreshRuns(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(context.Background(), r)
	require.NoError(t, s.RegisterRefresh("* * * * * *"))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
