package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/tests/e2e/testdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// FakeProcessor answers the processor API from a per-path script.
// Unscripted calls get a processing reply.
type FakeProcessor struct {
	t        *testing.T
	mu       sync.Mutex
	requests map[string][]map[string]any
	replies  map[string][]string
	server   *httptest.Server
}

func NewFakeProcessor(t *testing.T) *FakeProcessor {
	t.Helper()
	f := &FakeProcessor{
		t:        t,
		requests: make(map[string][]map[string]any),
		replies:  make(map[string][]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeProcessor) URL() string {
	return f.server.URL
}

// Script queues replies for path. The last reply repeats once the queue drains.
func (f *FakeProcessor) Script(path string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = append(f.replies[path], bodies...)
}

func (f *FakeProcessor) Calls(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeProcessor) handle(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		f.t.Errorf("fake processor: decode %s: %v", r.URL.Path, err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests[r.URL.Path] = append(f.requests[r.URL.Path], body)
	reply := `{"payment":{"status":"processing"}}`
	if queue := f.replies[r.URL.Path]; len(queue) > 0 {
		reply = queue[0]
		if len(queue) > 1 {
			f.replies[r.URL.Path] = queue[1:]
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

// Envelope mirrors the gateway's JSON responses.
type Envelope struct {
	Success bool      `json:"success"`
	Data    *Payment  `json:"data"`
	Error   *APIError `json:"error"`
}

type Payment struct {
	PaymentID string     `json:"payment_id"`
	Status    string     `json:"status"`
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	Challenge *Challenge `json:"challenge"`
}

type Challenge struct {
	Type          string            `json:"type"`
	Action        string            `json:"action"`
	Method        string            `json:"method"`
	Fields        map[string]string `json:"fields"`
	Hidden        bool              `json:"hidden"`
	SubmitAfterMS int64             `json:"submit_after_ms"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

// TestClient wraps HTTP calls to the gateway
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Purchase buys credits for a fresh payer with card.
func (c *TestClient) Purchase(t *testing.T, card testdata.TestCard, credits int, amount int64) (int, Envelope) {
	body := map[string]any{
		"payer_id": "payer-" + uuid.NewString(),
		"credits":  credits,
		"amount":   amount,
		"currency": "EUR",
		"card": map[string]any{
			"pan":          card.PAN,
			"cvv":          card.CVV,
			"expiry_month": card.Month,
			"expiry_year":  card.Year,
			"holder":       "E2E Tester",
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return c.do(t, http.MethodPost, "/v1/payments", "application/json", raw)
}

func (c *TestClient) Status(t *testing.T, id string) (int, Envelope) {
	return c.do(t, http.MethodGet, "/v1/payments/"+id, "", nil)
}

func (c *TestClient) Poll(t *testing.T, id string) (int, Envelope) {
	return c.do(t, http.MethodPost, "/v1/payments/"+id+"/poll", "", nil)
}

// SubmitACS posts the ACS form the way an issuer page does.
func (c *TestClient) SubmitACS(t *testing.T, id, paRes, md string) (int, Envelope) {
	form := url.Values{"PaRes": {paRes}, "MD": {md}}
	return c.do(t, http.MethodPost, "/v1/payments/"+id+"/3ds/acs", "application/x-www-form-urlencoded", []byte(form.Encode()))
}

func (c *TestClient) FingerprintDone(t *testing.T, id string) (int, Envelope) {
	return c.do(t, http.MethodPost, "/v1/payments/"+id+"/3ds/fingerprint", "application/json", []byte(`{"completed":true}`))
}

func (c *TestClient) Callback(t *testing.T, body []byte) (int, Envelope) {
	return c.do(t, http.MethodPost, "/v1/callbacks/processor", "application/json", body)
}

func (c *TestClient) do(t *testing.T, method, path, contentType string, body []byte) (int, Envelope) {
	t.Helper()

	httpReq, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(bodyBytes, &env), string(bodyBytes))
	return resp.StatusCode, env
}
