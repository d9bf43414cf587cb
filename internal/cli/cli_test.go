package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/application/mocks"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/cli"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "cli-secret"

func run(t *testing.T, deps cli.Deps, stdin string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func noClient() (application.ProcessorClient, error) {
	return nil, errors.New("no processor in this test")
}

func TestSign_MatchesSigner(t *testing.T) {
	doc := `{"general":{"project_id":42,"payment_id":"user-1_1"},"signature":"ignored"}`
	signer, err := signature.NewSigner(secret)
	require.NoError(t, err)
	want, err := signer.Sign([]byte(doc))
	require.NoError(t, err)

	out, err := run(t, cli.Deps{NewClient: noClient}, doc, "sign", "--secret", secret)

	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(out))
}

func TestSign_PrintsCanonicalForm(t *testing.T) {
	t.Setenv(cli.SecretEnv, secret)
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"b":true,"a":{"x":1}}`), 0o600))

	out, err := run(t, cli.Deps{NewClient: noClient}, "", "sign", "--canonical", path)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a:x:1;b:1", lines[0])
}

func TestSign_RequiresSecret(t *testing.T) {
	t.Setenv(cli.SecretEnv, "")

	_, err := run(t, cli.Deps{NewClient: noClient}, "{}", "sign")

	assert.ErrorIs(t, err, signature.ErrEmptyKey)
}

func TestVerify(t *testing.T) {
	signer, err := signature.NewSigner(secret)
	require.NoError(t, err)

	doc := map[string]any{"payment": map[string]any{"id": "user-1_1", "status": "success"}}
	sig, err := signer.Sign(doc)
	require.NoError(t, err)
	doc["signature"] = sig
	signed, err := json.Marshal(doc)
	require.NoError(t, err)

	t.Run("valid signature", func(t *testing.T) {
		out, err := run(t, cli.Deps{NewClient: noClient}, string(signed), "verify", "--secret", secret)
		require.NoError(t, err)
		assert.Contains(t, out, "signature ok (payment user-1_1)")
	})

	t.Run("tampered document", func(t *testing.T) {
		tampered := strings.Replace(string(signed), "success", "decline", 1)
		_, err := run(t, cli.Deps{NewClient: noClient}, tampered, "verify", "--secret", secret)
		assert.Error(t, err)
	})

	t.Run("unsigned document", func(t *testing.T) {
		_, err := run(t, cli.Deps{NewClient: noClient}, `{"payment":{"id":"user-1_1"}}`, "verify", "--secret", secret)
		assert.Error(t, err)
	})
}

func TestCard(t *testing.T) {
	year := time.Now().Year() + 1

	t.Run("valid card prints masked number only", func(t *testing.T) {
		out, err := run(t, cli.Deps{NewClient: noClient}, "4111 1111 1111 1111\n",
			"card", "--month", "12", "--year", strconv.Itoa(year))

		require.NoError(t, err)
		assert.Contains(t, out, "411111******1111")
		assert.Contains(t, out, "visa")
		assert.Contains(t, out, "result: ok")
		assert.NotContains(t, out, "4111111111111111")
	})

	t.Run("bad checksum", func(t *testing.T) {
		out, err := run(t, cli.Deps{NewClient: noClient}, "4111111111111112\n",
			"card", "--month", "12", "--year", strconv.Itoa(year))

		assert.ErrorIs(t, err, domain.ErrInvalidCardNumber)
		assert.Contains(t, out, "result: rejected")
	})

	t.Run("expired", func(t *testing.T) {
		_, err := run(t, cli.Deps{NewClient: noClient}, "4111111111111111\n",
			"card", "--month", "1", "--year", "20")

		assert.ErrorIs(t, err, domain.ErrInvalidExpiry)
	})
}

func TestStatus(t *testing.T) {
	id := domain.PaymentID("user-1_1700000000000")

	t.Run("single check", func(t *testing.T) {
		client := mocks.NewMockProcessorClient(t)
		client.EXPECT().CheckStatus(mock.Anything, id).Return(domain.Declined(id, "3055", "Insufficient funds"), nil).Once()

		out, err := run(t, cli.Deps{NewClient: func() (application.ProcessorClient, error) { return client, nil }}, "",
			"status", id.String())

		require.NoError(t, err)
		assert.Contains(t, out, `"status": "decline"`)
		assert.Contains(t, out, "Insufficient funds")
	})

	t.Run("wait until final", func(t *testing.T) {
		client := mocks.NewMockProcessorClient(t)
		client.EXPECT().CheckStatus(mock.Anything, id).Return(domain.Pending(id), nil).Once()
		client.EXPECT().CheckStatus(mock.Anything, id).Return(domain.Succeeded(id), nil).Once()

		out, err := run(t, cli.Deps{NewClient: func() (application.ProcessorClient, error) { return client, nil }}, "",
			"status", id.String(), "--wait", "--interval", "5ms", "--max", "1s")

		require.NoError(t, err)
		assert.Contains(t, out, `"status": "success"`)
	})

	t.Run("wait times out", func(t *testing.T) {
		client := mocks.NewMockProcessorClient(t)
		client.EXPECT().CheckStatus(mock.Anything, id).Return(domain.Pending(id), nil)

		out, err := run(t, cli.Deps{NewClient: func() (application.ProcessorClient, error) { return client, nil }}, "",
			"status", id.String(), "--wait", "--interval", "5ms", "--max", "30ms")

		require.NoError(t, err)
		assert.Contains(t, out, `"status": "timeout"`)
	})

	t.Run("client construction fails", func(t *testing.T) {
		_, err := run(t, cli.Deps{NewClient: noClient}, "", "status", id.String())
		assert.Error(t, err)
	})
}
