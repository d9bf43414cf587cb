package worker_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pollID domain.PaymentID = "payer_1"

type step struct {
	resp *domain.PaymentResponse
	err  error
}

// scriptedChecker replays steps in order and repeats the last one.
type scriptedChecker struct {
	mu    sync.Mutex
	steps []step
	calls int
}

func (c *scriptedChecker) CheckStatus(_ context.Context, _ domain.PaymentID) (*domain.PaymentResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.steps[min(c.calls, len(c.steps)-1)]
	c.calls++
	return s.resp, s.err
}

func (c *scriptedChecker) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newPoller(checker worker.StatusChecker, interval, maxDuration time.Duration) *worker.Poller {
	return worker.NewPoller(checker, config.PollerConfig{Interval: interval, MaxDuration: maxDuration}, slog.Default())
}

func TestPoller_Outcomes(t *testing.T) {
	redirect := domain.RedirectChallenge{URL: "https://acs.example.com/challenge"}
	transport := &application.TransportError{Op: "status", Err: context.DeadlineExceeded}
	rejected := &application.ProcessorError{Code: "1001", Message: "Invalid signature", StatusCode: 400}

	tests := []struct {
		name       string
		steps      []step
		wantStatus domain.Status
		wantErr    error
		wantCalls  int
	}{
		{
			name:       "immediate success needs one check",
			steps:      []step{{resp: domain.Succeeded(pollID)}},
			wantStatus: domain.StatusSuccess,
			wantCalls:  1,
		},
		{
			name: "pending until decline",
			steps: []step{
				{resp: domain.Pending(pollID)},
				{resp: domain.Pending(pollID)},
				{resp: domain.Declined(pollID, "05", "Do not honor")},
			},
			wantStatus: domain.StatusDecline,
			wantCalls:  3,
		},
		{
			name: "transport failure is retried on the next tick",
			steps: []step{
				{resp: domain.Failed(pollID, "", ""), err: transport},
				{resp: domain.Succeeded(pollID)},
			},
			wantStatus: domain.StatusSuccess,
			wantCalls:  2,
		},
		{
			name: "new challenge stops polling",
			steps: []step{
				{resp: domain.Pending(pollID)},
				{resp: domain.ChallengeRequired(pollID, redirect)},
			},
			wantStatus: domain.StatusThreeDSRequired,
			wantCalls:  2,
		},
		{
			name:       "processor rejection ends the poll",
			steps:      []step{{resp: domain.Failed(pollID, "1001", "Invalid signature"), err: rejected}},
			wantStatus: domain.StatusError,
			wantErr:    rejected,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := &scriptedChecker{steps: tt.steps}
			p := newPoller(checker, 5*time.Millisecond, time.Second)

			resp, err := p.Poll(context.Background(), pollID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantCalls, checker.Calls())
		})
	}
}

func TestPoller_TimesOut(t *testing.T) {
	checker := &scriptedChecker{steps: []step{{resp: domain.Pending(pollID)}}}
	p := newPoller(checker, 5*time.Millisecond, 40*time.Millisecond)

	started := time.Now()
	resp, err := p.Poll(context.Background(), pollID)

	assert.ErrorIs(t, err, application.ErrPollTimeout)
	require.NotNil(t, resp)
	assert.Equal(t, domain.StatusTimeout, resp.Status)
	assert.Equal(t, pollID, resp.PaymentID)
	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond)
	assert.Greater(t, checker.Calls(), 1)
}

func TestPoller_CallerCancellation(t *testing.T) {
	checker := &scriptedChecker{steps: []step{{resp: domain.Pending(pollID)}}}
	p := newPoller(checker, time.Hour, 2*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := p.Poll(ctx, pollID)
		done <- err
	}()

	require.Eventually(t, func() bool { return checker.Calls() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poll did not stop after cancellation")
	}
	assert.Equal(t, 1, checker.Calls())
}
