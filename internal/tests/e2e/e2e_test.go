package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-card-gateway/internal/application/services"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/config"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/domain"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/guard"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/persistence/memory"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/processor"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/infrastructure/signature"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/tests/e2e/testdata"
	"github.com/DanielPopoola/ficmart-card-gateway/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const processorSecret = "e2e-secret"

// E2ETestSuite runs the whole gateway over HTTP against a scripted processor.
type E2ETestSuite struct {
	suite.Suite
	processor *FakeProcessor
	store     *memory.Store
	signer    *signature.Signer
	client    *TestClient
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

func (suite *E2ETestSuite) SetupTest() {
	t := suite.T()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	suite.processor = NewFakeProcessor(t)
	suite.store = memory.NewStore()

	signer, err := signature.NewSigner(processorSecret)
	require.NoError(t, err)
	suite.signer = signer

	processorCfg := config.ProcessorConfig{
		ProjectID:     123,
		SecretKey:     processorSecret,
		BaseURL:       suite.processor.URL(),
		PublicBaseURL: "shop.example.com",
		CallbackPath:  handlers.DefaultCallbackPath,
		ReturnPath:    "/purchase/result",
		Timeout:       2 * time.Second,
	}
	client, err := processor.NewClient(processorCfg, signer, logger)
	require.NoError(t, err)

	public, err := processorCfg.PublicURL()
	require.NoError(t, err)

	orchestrator := services.NewOrchestrator(guard.NewMemoryGuard(time.Hour))
	payments := services.NewPaymentService(
		client,
		orchestrator,
		suite.store,
		suite.store,
		domain.ChallengeDefaults{TermURL: handlers.ACSTermURL(public), SettleDelay: 3 * time.Second},
		logger,
	)
	callbacks := services.NewCallbackService(signer, payments, logger)
	poller := worker.NewPoller(payments, config.PollerConfig{Interval: 10 * time.Millisecond, MaxDuration: 2 * time.Second}, logger)

	spec, err := rest.LoadSpec(context.Background())
	require.NoError(t, err)

	router := handlers.NewRouter(
		handlers.NewHandlers(payments, callbacks, poller, logger),
		spec,
		handlers.RouterConfig{RequestTimeout: 5 * time.Second, PollTimeout: 5 * time.Second},
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	suite.client = NewTestClient(server.URL)
}

func (suite *E2ETestSuite) signedCallback(doc map[string]any) []byte {
	sig, err := suite.signer.Sign(doc)
	suite.Require().NoError(err)
	doc["signature"] = sig
	body, err := json.Marshal(doc)
	suite.Require().NoError(err)
	return body
}

// ============================================================================
// HAPPY PATH: frictionless purchase
// ============================================================================

func (suite *E2ETestSuite) TestHappyPath_ImmediateSuccess() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"success"},"operation":{"status":"success"}}`)

	code, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "success", env.Data.Status)
	assert.Equal(t, 1, suite.store.Applications())

	sale := suite.processor.Calls(processor.SalePath)
	require.Len(t, sale, 1)
	general := sale[0]["general"].(map[string]any)
	assert.Equal(t, env.Data.PaymentID, general["payment_id"])
	assert.Equal(t, "https://shop.example.com/v1/callbacks/processor", general["merchant_callback_url"])
	assert.True(t, suite.signer.Verify(sale[0], general["signature"].(string)))
}

func (suite *E2ETestSuite) TestHappyPath_NormalizesCard() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"success"}}`)

	code, env := suite.client.Purchase(t, testdata.SpacedCard, 10, 100)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Data.Status)
	card := suite.processor.Calls(processor.SalePath)[0]["card"].(map[string]any)
	assert.Equal(t, "5555555555554444", card["pan"])
	assert.Equal(t, json.Number("2030"), card["year"])
}

// ============================================================================
// 3DS: basic ACS flow
// ============================================================================

func (suite *E2ETestSuite) TestThreeDS_BasicACS() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"awaiting 3ds result"},"acs":{"acs_url":"https://acs.example.com","pa_req":"PAREQ","md":"MD1"}}`)
	suite.processor.Script(processor.ThreeDSResultPath, `{"payment":{"status":"success"}}`)

	code, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "3ds_required", env.Data.Status)
	id := env.Data.PaymentID

	challenge := env.Data.Challenge
	require.NotNil(t, challenge)
	assert.Equal(t, "basic", challenge.Type)
	assert.Equal(t, "https://acs.example.com", challenge.Action)
	assert.Equal(t, "PAREQ", challenge.Fields["PaReq"])
	assert.Equal(t, "https://shop.example.com/v1/payments/"+url.PathEscape(id)+"/3ds/acs", challenge.Fields["TermUrl"])

	code, env = suite.client.SubmitACS(t, id, "PARES", "MD1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Data.Status)

	result := suite.processor.Calls(processor.ThreeDSResultPath)
	require.Len(t, result, 1)
	assert.Equal(t, "PARES", result[0]["pares"])
	assert.Equal(t, "MD1", result[0]["md"])

	// a replayed ACS post is refused and never reaches the processor
	code, env = suite.client.SubmitACS(t, id, "PARES", "MD1")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, domain.ErrCodeChallengeAlreadyHandled, env.Error.Code)
	assert.Len(t, suite.processor.Calls(processor.ThreeDSResultPath), 1)

	// final outcomes are answered locally
	code, env = suite.client.Status(t, id)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Data.Status)
	assert.Empty(t, suite.processor.Calls(processor.StatusPath))
	assert.Equal(t, 1, suite.store.Applications())
}

// ============================================================================
// 3DS: extended fingerprint, 3DS2 redirect, callback completion
// ============================================================================

func (suite *E2ETestSuite) TestThreeDS_ExtendedThenCallback() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"threeds2":{"iframe":{"url":"https://acs.example.com/method","params":{"threeDSMethodData":"TOKEN"}}}}`)
	suite.processor.Script(processor.ThreeDSCheckPath, `{"threeds2":{"redirect":{"url":"https://acs.example.com/challenge","params":{"creq":"CREQ","threeDSSessionData":"SESSION"}}}}`)

	_, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)
	require.Equal(t, "3ds_required", env.Data.Status)
	id := env.Data.PaymentID

	challenge := env.Data.Challenge
	require.NotNil(t, challenge)
	assert.Equal(t, "extended", challenge.Type)
	assert.True(t, challenge.Hidden)
	assert.Equal(t, int64(3000), challenge.SubmitAfterMS)
	assert.Equal(t, "TOKEN", challenge.Fields["threeDSMethodData"])

	code, env := suite.client.FingerprintDone(t, id)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "3ds_required", env.Data.Status)
	assert.Equal(t, "threeds2", env.Data.Challenge.Type)
	assert.Equal(t, "CREQ", env.Data.Challenge.Fields["creq"])
	assert.Equal(t, "Y", suite.processor.Calls(processor.ThreeDSCheckPath)[0]["threeds_completion_indicator"])

	// the issuer completes the challenge out of band and the processor calls back
	body := suite.signedCallback(map[string]any{
		"project_id": 123,
		"payment":    map[string]any{"id": id, "status": "success"},
		"operation":  map[string]any{"status": "success"},
	})
	code, env = suite.client.Callback(t, body)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Data.Status)

	// redelivery is harmless
	code, _ = suite.client.Callback(t, body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, suite.store.Applications())
}

// ============================================================================
// POLLING
// ============================================================================

func (suite *E2ETestSuite) TestPolling_UntilSuccess() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"processing"}}`)
	suite.processor.Script(processor.StatusPath,
		`{"payment":{"status":"processing"}}`,
		`{"status":"error","code":3061,"message":"Transaction is absent"}`,
		`{"payment":{"status":"success"}}`,
	)

	_, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)
	require.Equal(t, "pending", env.Data.Status)

	code, env := suite.client.Poll(t, env.Data.PaymentID)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", env.Data.Status)
	assert.Len(t, suite.processor.Calls(processor.StatusPath), 3)
	assert.Equal(t, 1, suite.store.Applications())
}

// ============================================================================
// FAILURE MODES
// ============================================================================

func (suite *E2ETestSuite) TestFailure_Declined() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"decline"},"operation":{"status":"decline","code":20105,"message":"Insufficient funds"}}`)

	code, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success, "a decline is an outcome, not an error")
	assert.Equal(t, "decline", env.Data.Status)
	assert.Equal(t, "Insufficient funds", env.Data.Message)
	assert.Zero(t, suite.store.Applications())
}

func (suite *E2ETestSuite) TestFailure_InvalidCardsNeverReachProcessor() {
	t := suite.T()

	code, env := suite.client.Purchase(t, testdata.BadChecksumCard, 100, 1000)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, domain.ErrCodeInvalidCardNumber, env.Error.Code)

	code, env = suite.client.Purchase(t, testdata.ExpiredCard, 100, 1000)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, domain.ErrCodeInvalidExpiry, env.Error.Code)

	assert.Empty(t, suite.processor.Calls(processor.SalePath))
}

func (suite *E2ETestSuite) TestFailure_ProcessorErrorPassedThrough() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"status":"error","code":"1201","message":"Invalid project"}`)

	code, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)

	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "Invalid project", env.Error.Message)
	assert.Equal(t, "1201", env.Error.Details["processor_code"])
}

// ============================================================================
// EDGE CASE: forged callback
// ============================================================================

func (suite *E2ETestSuite) TestEdgeCase_ForgedCallbackRejected() {
	t := suite.T()
	suite.processor.Script(processor.SalePath, `{"payment":{"status":"processing"}}`)
	_, env := suite.client.Purchase(t, testdata.ValidCard, 100, 1000)
	id := env.Data.PaymentID

	forged, err := json.Marshal(map[string]any{
		"payment":   map[string]any{"id": id, "status": "success"},
		"signature": "bm90IGEgcmVhbCBzaWduYXR1cmU=",
	})
	require.NoError(t, err)

	code, env := suite.client.Callback(t, forged)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, domain.ErrCodeSignatureMismatch, env.Error.Code)
	assert.Zero(t, suite.store.Applications())

	suite.processor.Script(processor.StatusPath, `{"payment":{"status":"processing"}}`)
	_, env = suite.client.Status(t, id)
	assert.Equal(t, "pending", env.Data.Status)
}
