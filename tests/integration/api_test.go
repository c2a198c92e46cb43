package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ghostpass/config"
	httpHandler "ghostpass/internal/adapter/http/handler"
	"ghostpass/internal/adapter/provider"
	redisStorage "ghostpass/internal/adapter/storage/redis"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/service"
	"ghostpass/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret = "whsec_test_0123456789abcdef"
	testGatewayKey    = "gw-key-north-entrance"
)

// testApp builds a full application stack: in-memory repos behind the real
// services, miniredis behind the real Redis stores, and stub HTTP servers
// behind the real provider clients. Requests exercise the complete router,
// middleware, handler, and service path.
type testApp struct {
	server    *httptest.Server
	redis     *miniredis.Miniredis
	providers []*httptest.Server

	wallets  *inMemoryWalletRepo
	ledger   *inMemoryLedgerRepo
	passes   *inMemoryPassRepo
	events   *inMemoryEventRepo
	profiles *inMemoryRevenueRepo
	staff    *inMemoryStaffRepo
	payouts  *inMemoryPayoutRepo

	venueID uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	scanGuard := redisStorage.NewScanGuard(rdb)

	// Stub provider backends.
	paymentStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"id":"cs_%d","checkout_url":"https://pay.example/session"}`, time.Now().UnixNano())
	}))
	identityStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"idv_test","url":"https://verify.example/session","status":"pending"}`)
	}))
	pushStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	paymentProv := provider.NewPaymentClient(config.PaymentProviderConfig{
		BaseURL:       paymentStub.URL,
		APIKey:        "pk_test",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://app.example/topup/ok",
		CancelURL:     "https://app.example/topup/cancel",
		Timeout:       5 * time.Second,
	})
	identityProv := provider.NewIdentityClient(config.IdentityProviderConfig{
		BaseURL: identityStub.URL,
		APIKey:  "idk_test",
		Timeout: 5 * time.Second,
	})
	pushProv := provider.NewPushClient(config.PushProviderConfig{
		BaseURL: pushStub.URL,
		APIKey:  "push_test",
		Timeout: 5 * time.Second,
	})

	walletRepo := newInMemoryWalletRepo()
	ledgerRepo := newInMemoryLedgerRepo()
	passRepo := newInMemoryPassRepo()
	entryLogRepo := newInMemoryEntryLogRepo()
	eventRepo := newInMemoryEventRepo()
	revenueRepo := newInMemoryRevenueRepo()
	staffRepo := newInMemoryStaffRepo()
	payoutRepo := newInMemoryPayoutRepo()
	idempRepo := newInMemoryIdempotencyRepo()
	auditRepo := newInMemoryAuditRepo()
	transactor := newInMemoryTransactor(walletRepo, ledgerRepo, passRepo, entryLogRepo, payoutRepo, idempRepo)

	log := logger.New("debug", false)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")
	auditSvc := service.NewAuditService(auditRepo, log)

	authSvc := service.NewAuthService(staffRepo, hashSvc, tokenSvc, auditSvc, log)
	ledgerSvc := service.NewLedgerService(walletRepo, ledgerRepo, idempRepo, idempotencyCache, transactor, pushProv, log)
	purchaseSvc := service.NewPurchaseService(walletRepo, ledgerRepo, passRepo, eventRepo, revenueRepo, staffRepo, idempRepo, idempotencyCache, transactor, log)
	admissionSvc := service.NewAdmissionService(passRepo, eventRepo, entryLogRepo, scanGuard, transactor, log)
	walletSvc := service.NewWalletService(walletRepo, paymentProv, identityProv, log)
	payoutSvc := service.NewPayoutService(payoutRepo, ledgerRepo, staffRepo, transactor, auditSvc, log)
	reportingSvc := service.NewReportingService(ledgerRepo, walletRepo, entryLogRepo, log)
	venueSvc := service.NewVenueService(eventRepo, revenueRepo, auditSvc, log)

	venueID := uuid.New()
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:      authSvc,
		WalletSvc:    walletSvc,
		PurchaseSvc:  purchaseSvc,
		AdmissionSvc: admissionSvc,
		PayoutSvc:    payoutSvc,
		ReportingSvc: reportingSvc,
		VenueSvc:     venueSvc,
		LedgerSvc:    ledgerSvc,
		PaymentProv:  paymentProv,
		TokenSvc:     tokenSvc,
		GatewayCfg:   config.GatewayConfig{Keys: map[string]string{venueID.String(): testGatewayKey}},
		AuditSvc:     auditSvc,
		Logger:       log,
	})

	return &testApp{
		server:    httptest.NewServer(router),
		redis:     mr,
		providers: []*httptest.Server{paymentStub, identityStub, pushStub},
		wallets:   walletRepo,
		ledger:    ledgerRepo,
		passes:    passRepo,
		events:    eventRepo,
		profiles:  revenueRepo,
		staff:     staffRepo,
		payouts:   payoutRepo,
		venueID:   venueID,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
	for _, s := range a.providers {
		s.Close()
	}
}

// --- helpers ---

func (a *testApp) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func dataOf(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", envelope)
	return data
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *testApp) bindWallet(t *testing.T) string {
	t.Helper()
	resp, env := a.do(t, http.MethodPost, "/api/v1/wallets/bind", map[string]string{
		"device_fingerprint": "fp-" + uuid.NewString(),
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bindingID, _ := dataOf(t, env)["binding_id"].(string)
	require.NotEmpty(t, bindingID)
	return bindingID
}

// creditWallet drives a full signed webhook delivery so the balance lands
// through the same path production top-ups take.
func (a *testApp) creditWallet(t *testing.T, bindingID string, amount int64) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"id":           "cs_seed_" + uuid.NewString(),
			"amount_total": amount,
			"metadata":     map[string]string{"binding_id": bindingID},
		},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/api/v1/webhooks/payment", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httpHandler.HeaderWebhookSignature, signPayload(payload))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (a *testApp) balance(t *testing.T, bindingID string) int64 {
	t.Helper()
	resp, env := a.do(t, http.MethodGet, "/api/v1/wallets/"+bindingID+"/balance", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bal, ok := dataOf(t, env)["balance_cents"].(float64)
	require.True(t, ok)
	return int64(bal)
}

func (a *testApp) seedProfile(t *testing.T, vendorPct float64) *domain.RevenueProfile {
	t.Helper()
	profile := &domain.RevenueProfile{
		ID:           uuid.New(),
		Name:         "house-split",
		ValidPct:     100 - vendorPct - 10,
		VendorPct:    vendorPct,
		PoolPct:      5,
		PromoterPct:  3,
		ExecutivePct: 2,
		Residual:     domain.CategoryValid,
	}
	require.NoError(t, a.profiles.Create(context.Background(), profile))
	return profile
}

func (a *testApp) seedEvent(t *testing.T, profileID uuid.UUID, price int64, reentry bool) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	event := &domain.Event{
		ID:               uuid.New(),
		VenueID:          a.venueID,
		Name:             "Friday Night",
		Status:           domain.EventStatusActive,
		TicketPriceCents: domain.Money(price),
		RevenueProfileID: profileID,
		AllowsReentry:    reentry,
		StartsAt:         now.Add(-time.Hour),
		EndsAt:           now.Add(6 * time.Hour),
	}
	require.NoError(t, a.events.Create(context.Background(), event))
	return event
}

func (a *testApp) registerVendor(t *testing.T, username string, profileID uuid.UUID) (uuid.UUID, string) {
	t.Helper()
	pid := profileID.String()
	resp, env := a.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"username":           username,
		"password":           "StrongPass123!",
		"display_name":       "Taco Stand",
		"role":               "VENDOR",
		"revenue_profile_id": pid,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	idStr, _ := dataOf(t, env)["id"].(string)
	vendorID, err := uuid.Parse(idStr)
	require.NoError(t, err)

	resp2, env2 := a.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": "StrongPass123!",
	}, nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	token, _ := dataOf(t, env2)["token"].(string)
	require.NotEmpty(t, token)
	return vendorID, token
}

func (a *testApp) gatewayHeaders(gatewayID string) map[string]string {
	return map[string]string{
		"X-Venue-ID":    a.venueID.String(),
		"X-Gateway-Key": testGatewayKey,
		"X-Gateway-ID":  gatewayID,
	}
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_TopupWebhookFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	bindingID := app.bindWallet(t)

	// Checkout session goes through the stub payment backend.
	resp, env := app.do(t, http.MethodPost, "/api/v1/topups/session", map[string]interface{}{
		"binding_id":   bindingID,
		"amount_cents": int64(5000),
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, dataOf(t, env)["checkout_url"])

	// Signed completion webhook credits the wallet.
	payload, _ := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"id":           "cs_flow_1",
			"amount_total": int64(5000),
			"metadata":     map[string]string{"binding_id": bindingID},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(httpHandler.HeaderWebhookSignature, signPayload(payload))
	wresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	wresp.Body.Close()
	assert.Equal(t, http.StatusOK, wresp.StatusCode)
	assert.Equal(t, int64(5000), app.balance(t, bindingID))

	// Provider retries deliver the same session id. The credit must not
	// apply twice.
	req2, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/webhooks/payment", bytes.NewReader(payload))
	req2.Header.Set(httpHandler.HeaderWebhookSignature, signPayload(payload))
	wresp2, err := http.DefaultClient.Do(req2)
	require.NoError(t, err)
	wresp2.Body.Close()
	assert.Equal(t, http.StatusOK, wresp2.StatusCode)
	assert.Equal(t, int64(5000), app.balance(t, bindingID))
}

func TestIntegration_WebhookBadSignatureRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	bindingID := app.bindWallet(t)
	payload, _ := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"id":           "cs_forged",
			"amount_total": int64(99999),
			"metadata":     map[string]string{"binding_id": bindingID},
		},
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set(httpHandler.HeaderWebhookSignature, "deadbeef")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), app.balance(t, bindingID))
}

func TestIntegration_TicketPurchaseIdempotent(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 0)
	event := app.seedEvent(t, profile.ID, 3000, false)
	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 10000)

	buy := map[string]interface{}{
		"binding_id": bindingID,
		"event_id":   event.ID.String(),
		"reference":  "dev-ref-001",
	}
	resp, env := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", buy, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pass := dataOf(t, env)["pass"].(map[string]interface{})
	passID := pass["id"].(string)
	require.NotEmpty(t, passID)
	assert.Equal(t, int64(7000), app.balance(t, bindingID))

	// Same device reference replayed: same pass, no second debit.
	resp2, env2 := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", buy, nil)
	require.Equal(t, http.StatusCreated, resp2.StatusCode)
	pass2 := dataOf(t, env2)["pass"].(map[string]interface{})
	assert.Equal(t, passID, pass2["id"])
	assert.Equal(t, int64(7000), app.balance(t, bindingID))
}

func TestIntegration_PurchaseInsufficientBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 0)
	event := app.seedEvent(t, profile.ID, 3000, false)
	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 1000)

	resp, _ := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", map[string]interface{}{
		"binding_id": bindingID,
		"event_id":   event.ID.String(),
		"reference":  "dev-ref-poor",
	}, nil)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, int64(1000), app.balance(t, bindingID))
}

func TestIntegration_ScanFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 0)
	event := app.seedEvent(t, profile.ID, 3000, false)
	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 5000)

	resp, env := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", map[string]interface{}{
		"binding_id": bindingID,
		"event_id":   event.ID.String(),
		"reference":  "dev-ref-scan",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	passID := dataOf(t, env)["pass"].(map[string]interface{})["id"].(string)

	// First presentation at the gate.
	sresp, senv := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "scan-nonce-1",
	}, app.gatewayHeaders("gate-north"))
	require.Equal(t, http.StatusOK, sresp.StatusCode)
	sdata := dataOf(t, senv)
	assert.Equal(t, true, sdata["allowed"])
	assert.Equal(t, float64(1), sdata["entry_count"])

	// Single-entry pass is consumed. The denial is still a 200 so the gate
	// can show a reason.
	sresp2, senv2 := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "scan-nonce-2",
	}, app.gatewayHeaders("gate-north"))
	require.Equal(t, http.StatusOK, sresp2.StatusCode)
	sdata2 := dataOf(t, senv2)
	assert.Equal(t, false, sdata2["allowed"])
	assert.Equal(t, string(domain.DenyAlreadyConsumed), sdata2["reason"])
}

func TestIntegration_ScanNonceReplayDenied(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 0)
	event := app.seedEvent(t, profile.ID, 3000, true) // re-entry allowed
	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 5000)

	resp, env := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", map[string]interface{}{
		"binding_id": bindingID,
		"event_id":   event.ID.String(),
		"reference":  "dev-ref-replay",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	passID := dataOf(t, env)["pass"].(map[string]interface{})["id"].(string)

	sresp, senv := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "replayed-nonce",
	}, app.gatewayHeaders("gate-east"))
	require.Equal(t, http.StatusOK, sresp.StatusCode)
	assert.Equal(t, true, dataOf(t, senv)["allowed"])

	// Same nonce again: replay guard fires even though re-entry is allowed.
	sresp2, senv2 := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "replayed-nonce",
	}, app.gatewayHeaders("gate-east"))
	require.Equal(t, http.StatusOK, sresp2.StatusCode)
	sdata2 := dataOf(t, senv2)
	assert.Equal(t, false, sdata2["allowed"])
	assert.Equal(t, string(domain.DenyDuplicateScan), sdata2["reason"])

	// Fresh nonce admits again.
	sresp3, senv3 := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "fresh-nonce",
	}, app.gatewayHeaders("gate-east"))
	require.Equal(t, http.StatusOK, sresp3.StatusCode)
	sdata3 := dataOf(t, senv3)
	assert.Equal(t, true, sdata3["allowed"])
	assert.Equal(t, float64(2), sdata3["entry_count"])
}

func TestIntegration_ScanWrongGatewayKey(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": uuid.NewString(),
	}, map[string]string{
		"X-Venue-ID":    app.venueID.String(),
		"X-Gateway-Key": "wrong-key",
		"X-Gateway-ID":  "gate-north",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_VendorSpendAndPayout(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 80)
	vendorID, token := app.registerVendor(t, "taco_stand", profile.ID)

	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 10000)

	resp, _ := app.do(t, http.MethodPost, "/api/v1/purchases/spend", map[string]interface{}{
		"binding_id":   bindingID,
		"vendor_id":    vendorID.String(),
		"amount_cents": int64(4000),
		"reference":    "pos-receipt-77",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(6000), app.balance(t, bindingID))

	auth := map[string]string{"Authorization": "Bearer " + token}

	// 80% of the 4000c spend accrued to the vendor.
	aresp, aenv := app.do(t, http.MethodGet, "/api/v1/payouts/available", nil, auth)
	require.Equal(t, http.StatusOK, aresp.StatusCode)
	assert.Equal(t, float64(3200), dataOf(t, aenv)["available_cents"])

	presp, penv := app.do(t, http.MethodPost, "/api/v1/payouts", map[string]interface{}{
		"amount_cents": int64(3000),
	}, auth)
	require.Equal(t, http.StatusCreated, presp.StatusCode)
	assert.Equal(t, string(domain.PayoutStatusPending), dataOf(t, penv)["status"])

	// 3000 is now reserved; only 200 remains.
	over, _ := app.do(t, http.MethodPost, "/api/v1/payouts", map[string]interface{}{
		"amount_cents": int64(500),
	}, auth)
	assert.Equal(t, http.StatusUnprocessableEntity, over.StatusCode)
}

func TestIntegration_PayoutsRequireAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, _ := app.do(t, http.MethodPost, "/api/v1/payouts", map[string]interface{}{
		"amount_cents": int64(100),
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_WalletStatement(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 2000)
	app.creditWallet(t, bindingID, 3000)

	resp, env := app.do(t, http.MethodGet, "/api/v1/wallets/"+bindingID+"/statement?page=1&page_size=10", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := dataOf(t, env)
	assert.Equal(t, float64(2), data["total"])
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
}

func TestIntegration_DashboardStatsDefaultPeriod(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	profile := app.seedProfile(t, 0)
	event := app.seedEvent(t, profile.ID, 3000, false)
	bindingID := app.bindWallet(t)
	app.creditWallet(t, bindingID, 5000)

	resp, env := app.do(t, http.MethodPost, "/api/v1/purchases/ticket", map[string]interface{}{
		"binding_id": bindingID,
		"event_id":   event.ID.String(),
		"reference":  "stats-ref-1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	passID := dataOf(t, env)["pass"].(map[string]interface{})["id"].(string)

	sresp, _ := app.do(t, http.MethodPost, "/api/v1/scans", map[string]string{
		"pass_id": passID,
		"nonce":   "stats-nonce-1",
	}, app.gatewayHeaders("gate-north"))
	require.Equal(t, http.StatusOK, sresp.StatusCode)

	aresp, aenv := app.do(t, http.MethodPost, "/api/v1/auth/register", map[string]interface{}{
		"username":     "venue_owner",
		"password":     "StrongPass123!",
		"display_name": "Venue Owner",
		"role":         "ADMIN",
	}, nil)
	require.Equal(t, http.StatusCreated, aresp.StatusCode)
	_ = dataOf(t, aenv)

	lresp, lenv := app.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "venue_owner",
		"password": "StrongPass123!",
	}, nil)
	require.Equal(t, http.StatusOK, lresp.StatusCode)
	token, _ := dataOf(t, lenv)["token"].(string)
	require.NotEmpty(t, token)

	// No period query means all-time stats.
	dresp, denv := app.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, dresp.StatusCode)
	stats := dataOf(t, denv)
	assert.Equal(t, float64(5000), stats["total_credited_cents"])
	assert.Equal(t, float64(3000), stats["ticket_revenue_cents"])
	assert.Equal(t, float64(1), stats["admissions"])

	wresp, wenv := app.do(t, http.MethodGet, "/api/v1/dashboard/stats?period=week", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, wresp.StatusCode)
	assert.Equal(t, float64(1), dataOf(t, wenv)["admissions"])
}
