package signature_test

import (
	"testing"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T) *signature.Signer {
	t.Helper()
	s, err := signature.NewSigner("secret")
	require.NoError(t, err)
	return s
}

func TestCanonicalize(t *testing.T) {
	t.Run("flattens nested objects with sorted paths", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"payment":{"currency":"EUR","amount":1000},"general":{"project_id":123}}`))
		require.NoError(t, err)

		assert.Equal(t, "general:project_id:123;payment:amount:1000;payment:currency:EUR", signature.Canonicalize(tree))
	})

	t.Run("renders booleans, empty strings and zero", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"a":true,"b":false,"c":"","d":0}`))
		require.NoError(t, err)

		assert.Equal(t, "a:1;b:0;c:;d:0", signature.Canonicalize(tree))
	})

	t.Run("omits null and empty arrays", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"a":null,"b":[],"c":{"d":null},"e":"x"}`))
		require.NoError(t, err)

		assert.Equal(t, "e:x", signature.Canonicalize(tree))
	})

	t.Run("expands arrays by index", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"items":[{"name":"b","qty":2},"plain"]}`))
		require.NoError(t, err)

		assert.Equal(t, "items:0:name:b;items:0:qty:2;items:1:plain", signature.Canonicalize(tree))
	})

	t.Run("strips signature at every level", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"signature":"top","general":{"signature":"inner","payment_id":"p"}}`))
		require.NoError(t, err)

		assert.Equal(t, "general:payment_id:p", signature.Canonicalize(tree))
	})

	t.Run("keeps the literal number text", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"amount":10.50,"big":12345678901234567890}`))
		require.NoError(t, err)

		assert.Equal(t, "amount:10.50;big:12345678901234567890", signature.Canonicalize(tree))
	})

	t.Run("global sort after flatten", func(t *testing.T) {
		tree, err := signature.Tree([]byte(`{"a":{"z":"1"},"a:b":"2"}`))
		require.NoError(t, err)

		// "a:b:2" sorts before "a:z:1" even though key "a" is visited first.
		assert.Equal(t, "a:b:2;a:z:1", signature.Canonicalize(tree))
	})
}

func TestSigner_Sign(t *testing.T) {
	signer := newSigner(t)

	t.Run("matches the reference HMAC-SHA512", func(t *testing.T) {
		sig, err := signer.Sign([]byte(`{
			"general":{"project_id":123,"payment_id":"user-42_1"},
			"payment":{"amount":1000,"currency":"EUR"},
			"card":{"cvv":"123","year":2030}
		}`))

		require.NoError(t, err)
		assert.Equal(t, "Be6DQv45yKSbwkrzxTieKYk4Jbz/VSTzzA2j+IylWt5R5U0Ju7xN+FOCRaP6qLzBWBFpZQxLW4nVC8A0hAYEjQ==", sig)
	})

	t.Run("is independent of key order", func(t *testing.T) {
		first, err := signer.Sign([]byte(`{"b":{"y":1,"x":2},"a":"v"}`))
		require.NoError(t, err)
		second, err := signer.Sign(map[string]any{"a": "v", "b": map[string]any{"x": 2, "y": 1}})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("changes when a leaf changes", func(t *testing.T) {
		base, _ := signer.Sign([]byte(`{"payment":{"amount":1000}}`))
		changed, _ := signer.Sign([]byte(`{"payment":{"amount":1001}}`))

		assert.NotEqual(t, base, changed)
	})

	t.Run("changes when a field is added or removed", func(t *testing.T) {
		base, _ := signer.Sign([]byte(`{"a":"1"}`))
		added, _ := signer.Sign([]byte(`{"a":"1","b":"2"}`))
		removed, _ := signer.Sign([]byte(`{}`))

		assert.NotEqual(t, base, added)
		assert.NotEqual(t, base, removed)
	})

	t.Run("signs structs through their json form", func(t *testing.T) {
		type general struct {
			ProjectID int    `json:"project_id"`
			PaymentID string `json:"payment_id"`
			Signature string `json:"signature,omitempty"`
		}
		fromStruct, err := signer.Sign(struct {
			General general `json:"general"`
		}{General: general{ProjectID: 123, PaymentID: "p", Signature: "stale"}})
		require.NoError(t, err)

		fromJSON, err := signer.Sign([]byte(`{"general":{"project_id":123,"payment_id":"p"}}`))
		require.NoError(t, err)

		assert.Equal(t, fromJSON, fromStruct)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, err := signer.Sign([]byte(`{"a":`))
		assert.Error(t, err)
	})
}

func TestSigner_Verify(t *testing.T) {
	signer := newSigner(t)
	payload := []byte(`{"payment":{"id":"p-1","status":"success"},"operation":{"status":"success","code":"0"}}`)

	sig, err := signer.Sign(payload)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		assert.True(t, signer.Verify(payload, sig))
	})

	t.Run("appended character fails", func(t *testing.T) {
		assert.False(t, signer.Verify(payload, sig+"x"))
	})

	t.Run("embedded signature is ignored", func(t *testing.T) {
		withSig := []byte(`{"payment":{"id":"p-1","status":"success"},"operation":{"status":"success","code":"0"},"signature":"` + sig + `"}`)
		assert.True(t, signer.Verify(withSig, sig))
	})

	t.Run("tampered field fails", func(t *testing.T) {
		tampered := []byte(`{"payment":{"id":"p-1","status":"success"},"operation":{"status":"decline","code":"0"}}`)
		assert.False(t, signer.Verify(tampered, sig))
	})

	t.Run("other key fails", func(t *testing.T) {
		other, err := signature.NewSigner("another-secret")
		require.NoError(t, err)
		assert.False(t, other.Verify(payload, sig))
	})

	t.Run("empty signature fails", func(t *testing.T) {
		assert.False(t, signer.Verify(payload, ""))
	})
}

func TestNewSigner_EmptyKey(t *testing.T) {
	_, err := signature.NewSigner("")
	assert.ErrorIs(t, err, signature.ErrEmptyKey)
}

func TestHash(t *testing.T) {
	first, err := signature.Hash([]byte(`{"b":1, "a":{"d":true,"c":"x"}}`))
	require.NoError(t, err)
	second, err := signature.Hash(map[string]any{"a": map[string]any{"c": "x", "d": true}, "b": 1})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}
