// Package signature implements the processor's payload signing scheme: a
// flattened, sorted "path:value" canonical string signed with HMAC-SHA512.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	canonicaljson "github.com/gibson042/canonicaljson-go"
)

// Field is the key stripped from every level of a payload before signing.
const Field = "signature"

var ErrEmptyKey = errors.New("signature: secret key must not be empty")

// Signer signs and verifies payloads with a process-wide shared secret.
// It is safe for concurrent use.
type Signer struct {
	key []byte
}

func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}
	return &Signer{key: []byte(secret)}, nil
}

// Sign returns the Base64 HMAC-SHA512 of the payload's canonical string.
// payload may be a struct, a map, or raw JSON bytes.
func (s *Signer) Sign(payload any) (string, error) {
	tree, err := Tree(payload)
	if err != nil {
		return "", err
	}
	return s.SignTree(tree), nil
}

// SignTree signs an already decoded JSON tree.
func (s *Signer) SignTree(tree any) string {
	mac := hmac.New(sha512.New, s.key)
	mac.Write([]byte(Canonicalize(tree)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over payload, ignoring any embedded
// signature field, and compares it with sig.
func (s *Signer) Verify(payload any, sig string) bool {
	if sig == "" {
		return false
	}
	expected, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(sig))
}

// Tree converts payload into a generic JSON tree. Numbers keep their literal
// text so that what is signed matches what is sent.
func Tree(payload any) (any, error) {
	var raw []byte
	switch v := payload.(type) {
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("signature: marshal payload: %w", err)
		}
		raw = b
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("signature: decode payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("signature: multiple JSON documents in payload")
	}
	return tree, nil
}

// Canonicalize renders the sorted, ';'-joined "path:value" list for tree.
func Canonicalize(tree any) string {
	var parts []string
	flatten("", tree, &parts)
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

func flatten(path string, node any, out *[]string) {
	switch v := node.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			if k == Field {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(join(path, k), v[k], out)
		}
	case []any:
		for i, item := range v {
			flatten(join(path, strconv.Itoa(i)), item, out)
		}
	default:
		*out = append(*out, path+":"+scalar(v))
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + ":" + key
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}

// Hash is a SHA-256 fingerprint of the payload's canonical JSON form. Key
// order and whitespace do not affect it.
func Hash(payload any) (string, error) {
	tree, err := Tree(payload)
	if err != nil {
		return "", err
	}
	canonical, err := canonicaljson.Marshal(tree)
	if err != nil {
		return "", fmt.Errorf("signature: canonical json: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
