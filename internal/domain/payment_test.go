package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentID(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("derives id from payer and time", func(t *testing.T) {
		id, err := domain.NewPaymentID("user-42", at)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentID("user-42_1772366400000"), id)
	})

	t.Run("is stable for the same inputs", func(t *testing.T) {
		first, _ := domain.NewPaymentID("user-42", at)
		second, _ := domain.NewPaymentID("user-42", at)

		assert.Equal(t, first, second)
	})

	t.Run("rejects empty payer", func(t *testing.T) {
		_, err := domain.NewPaymentID("  ", at)

		assert.ErrorIs(t, err, domain.ErrInvalidPaymentRequest)
	})
}

func TestPaymentAttempt_StateTransitions(t *testing.T) {
	t.Run("INITIATED -> SUCCEEDED on success", func(t *testing.T) {
		attempt := createTestAttempt(t)

		changed, err := attempt.Apply(domain.Succeeded(attempt.ID), time.Now())

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.StateSucceeded, attempt.State)
		assert.True(t, attempt.IsFinal())
	})

	t.Run("INITIATED -> CHALLENGE_PENDING records the variant", func(t *testing.T) {
		attempt := createTestAttempt(t)
		challenge := domain.ACSChallenge{ACSURL: "https://acs.example/challenge", PaReq: "pareq", MD: "md"}

		changed, err := attempt.Apply(domain.ChallengeRequired(attempt.ID, challenge), time.Now())

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.StateChallengePending, attempt.State)
		assert.Equal(t, domain.ChallengeBasic, attempt.ChallengeKind)
	})

	t.Run("CHALLENGE_PENDING -> CHALLENGE_PENDING on upgrade", func(t *testing.T) {
		attempt := createChallengedAttempt(t)

		_, err := attempt.Apply(domain.ChallengeRequired(attempt.ID, domain.RedirectChallenge{URL: "https://acs.example/3ds2"}), time.Now())

		require.NoError(t, err)
		assert.Equal(t, domain.ChallengeThreeDS2, attempt.ChallengeKind)
	})

	t.Run("CHALLENGE_PENDING -> DECLINED keeps the processor reason", func(t *testing.T) {
		attempt := createChallengedAttempt(t)

		_, err := attempt.Apply(domain.Declined(attempt.ID, "20105", "Insufficient funds"), time.Now())

		require.NoError(t, err)
		assert.Equal(t, domain.StateDeclined, attempt.State)
		assert.Equal(t, "Insufficient funds", attempt.ProcessorMessage)
		assert.Equal(t, "20105", attempt.ProcessorCode)
	})

	t.Run("pending leaves the state alone", func(t *testing.T) {
		attempt := createChallengedAttempt(t)

		changed, err := attempt.Apply(domain.Pending(attempt.ID), time.Now())

		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, domain.StateChallengePending, attempt.State)
	})
}

func TestPaymentAttempt_InvalidStateTransitions(t *testing.T) {
	t.Run("cannot leave SUCCEEDED", func(t *testing.T) {
		attempt := createSucceededAttempt(t)

		_, err := attempt.Apply(domain.Declined(attempt.ID, "", "late decline"), time.Now())

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StateSucceeded, attempt.State)
	})

	t.Run("cannot challenge after DECLINED", func(t *testing.T) {
		attempt := createTestAttempt(t)
		_, err := attempt.Apply(domain.Declined(attempt.ID, "", "Do not honor"), time.Now())
		require.NoError(t, err)

		_, err = attempt.Apply(domain.ChallengeRequired(attempt.ID, domain.ACSChallenge{}), time.Now())

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestPaymentAttempt_Outcome(t *testing.T) {
	tests := []struct {
		name   string
		state  domain.AttemptState
		status domain.Status
	}{
		{"initiated is pending", domain.StateInitiated, domain.StatusPending},
		{"challenge is pending", domain.StateChallengePending, domain.StatusPending},
		{"succeeded", domain.StateSucceeded, domain.StatusSuccess},
		{"declined", domain.StateDeclined, domain.StatusDecline},
		{"failed", domain.StateFailed, domain.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempt := createTestAttempt(t)
			attempt.State = tt.state

			assert.Equal(t, tt.status, attempt.Outcome().Status)
			assert.Equal(t, attempt.ID, attempt.Outcome().PaymentID)
		})
	}
}

func TestPaymentAttempt_MarkSettled(t *testing.T) {
	attempt := createSucceededAttempt(t)
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	attempt.MarkSettled(first)
	attempt.MarkSettled(first.Add(time.Hour))

	require.NotNil(t, attempt.SettledAt)
	assert.Equal(t, first, *attempt.SettledAt)
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		money    domain.Money
		expected string
	}{
		{domain.Money{Amount: 1000, Currency: "EUR"}, "10.00 EUR"},
		{domain.Money{Amount: 5, Currency: "usd"}, "0.05 USD"},
		{domain.Money{Amount: 1500, Currency: "JPY"}, "1500 JPY"},
		{domain.Money{Amount: 1234, Currency: "KWD"}, "1.234 KWD"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.money.String())
		})
	}
}

// Helper functions

func createTestAttempt(t *testing.T) *domain.PaymentAttempt {
	t.Helper()
	req := domain.PaymentRequest{PayerID: "user-42", Credits: 10, Amount: 1000, Currency: "EUR"}
	return domain.NewPaymentAttempt("user-42_1700000000000", req, time.Now())
}

func createChallengedAttempt(t *testing.T) *domain.PaymentAttempt {
	t.Helper()
	attempt := createTestAttempt(t)
	_, err := attempt.Apply(domain.ChallengeRequired(attempt.ID, domain.FingerprintChallenge{IframeURL: "https://acs.example/fp"}), time.Now())
	require.NoError(t, err)
	return attempt
}

func createSucceededAttempt(t *testing.T) *domain.PaymentAttempt {
	t.Helper()
	attempt := createTestAttempt(t)
	_, err := attempt.Apply(domain.Succeeded(attempt.ID), time.Now())
	require.NoError(t, err)
	return attempt
}
