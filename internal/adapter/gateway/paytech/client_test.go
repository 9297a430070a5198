package paytech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"waxipay/config"
	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.PaytechConfig {
	return config.PaytechConfig{
		BaseURL:    baseURL,
		APIKey:     "test-api-key",
		APISecret:  "test-api-secret",
		Env:        "test",
		SuccessURL: "https://app.example.sn/payments/success",
		CancelURL:  "https://app.example.sn/payments/cancel",
		IPNURL:     "https://app.example.sn/payments/ipn",
		Timeout:    5 * time.Second,
	}
}

func testRequest() ports.GatewayPaymentRequest {
	return ports.GatewayPaymentRequest{
		ItemName:  "Dépôt WaxiPay",
		Amount:    decimal.NewFromInt(1500),
		Reference: "WXP-0123456789AB",
		Correlation: domain.CorrelationPayload{
			TransactionID: uuid.New(),
			UserID:        uuid.New(),
		},
		PaymentMethod: domain.PaymentMethodWave,
		User: &domain.User{
			PhoneNumber: "+221771234567",
			FullName:    "Aminata Diallo",
		},
	}
}

func TestClient_RequestPayment(t *testing.T) {
	var captured map[string]any
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":1,"token":"tok_abc","redirect_url":"https://paytech.sn/payment/checkout/tok_abc"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zerolog.Nop())
	req := testRequest()

	page, err := client.RequestPayment(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, page)

	assert.Equal(t, "tok_abc", page.Token)

	// Request body carries the order and callback URLs
	assert.Equal(t, "Dépôt WaxiPay", captured["item_name"])
	assert.Equal(t, float64(1500), captured["item_price"])
	assert.Equal(t, "XOF", captured["currency"])
	assert.Equal(t, "WXP-0123456789AB", captured["ref_command"])
	assert.Equal(t, "test", captured["env"])
	assert.Equal(t, "Wave", captured["target_payment"])
	assert.Equal(t, "https://app.example.sn/payments/ipn", captured["ipn_url"])

	// custom_field is the JSON correlation payload
	payload, err := domain.ParseCorrelationPayload(captured["custom_field"].(string))
	require.NoError(t, err)
	assert.Equal(t, req.Correlation.TransactionID, payload.TransactionID)

	// Credentials travel as headers
	assert.Equal(t, "test-api-key", capturedHeaders.Get("API_KEY"))
	assert.Equal(t, "test-api-secret", capturedHeaders.Get("API_SECRET"))
}

func TestClient_RequestPayment_DecoratesRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":1,"token":"tok_abc","redirectUrl":"https://paytech.sn/payment/checkout/tok_abc"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zerolog.Nop())

	page, err := client.RequestPayment(context.Background(), testRequest())
	require.NoError(t, err)

	parsed, err := url.Parse(page.RedirectURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "+221771234567", q.Get("pn"))
	assert.Equal(t, "771234567", q.Get("nn"))
	assert.Equal(t, "Aminata Diallo", q.Get("fn"))
	assert.Equal(t, "Wave", q.Get("tp"))
	assert.Equal(t, "1", q.Get("nac"))
}

func TestClient_RequestPayment_BankCardKeepsManualContinue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":1,"token":"tok_abc","redirect_url":"https://paytech.sn/payment/checkout/tok_abc"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zerolog.Nop())
	req := testRequest()
	req.PaymentMethod = domain.PaymentMethodBankCard

	page, err := client.RequestPayment(context.Background(), req)
	require.NoError(t, err)

	parsed, err := url.Parse(page.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, "0", parsed.Query().Get("nac"))
	assert.Equal(t, "Carte Bancaire", parsed.Query().Get("tp"))
}

func TestClient_RequestPayment_GatewayRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":0,"message":"Invalid API credentials"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zerolog.Nop())

	page, err := client.RequestPayment(context.Background(), testRequest())
	assert.Nil(t, page)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GW_001", appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
	assert.Equal(t, "Invalid API credentials", appErr.Message)
}

func TestClient_RequestPayment_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":0,"message":"server error"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zerolog.Nop())

	_, err := client.RequestPayment(context.Background(), testRequest())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GW_001", appErr.Code)
}

func TestClient_RequestPayment_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(testConfig(server.URL), zerolog.Nop())

	_, err := client.RequestPayment(context.Background(), testRequest())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GW_001", appErr.Code)
	assert.NotNil(t, errors.Unwrap(appErr))
}

func TestClient_RequestPayment_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":1,"redirect_url":"https://paytech.sn/x"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg, zerolog.Nop())

	_, err := client.RequestPayment(context.Background(), testRequest())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "GW_001", appErr.Code)
}

func sha256HexOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestClient_VerifyIPN(t *testing.T) {
	client := NewClient(testConfig("https://paytech.sn/api"), zerolog.Nop())

	valid := ports.IPNNotification{
		TypeEvent:       ports.IPNEventSaleComplete,
		APIKeySHA256:    sha256HexOf("test-api-key"),
		APISecretSHA256: sha256HexOf("test-api-secret"),
	}

	t.Run("accepts matching digests", func(t *testing.T) {
		assert.True(t, client.VerifyIPN(valid))
	})

	t.Run("rejects wrong key digest", func(t *testing.T) {
		n := valid
		n.APIKeySHA256 = sha256HexOf("some-other-key")
		assert.False(t, client.VerifyIPN(n))
	})

	t.Run("rejects wrong secret digest", func(t *testing.T) {
		n := valid
		n.APISecretSHA256 = sha256HexOf("some-other-secret")
		assert.False(t, client.VerifyIPN(n))
	})

	t.Run("rejects empty digests", func(t *testing.T) {
		assert.False(t, client.VerifyIPN(ports.IPNNotification{TypeEvent: ports.IPNEventSaleComplete}))
	})

	t.Run("fails closed when secrets are unset", func(t *testing.T) {
		cfg := testConfig("https://paytech.sn/api")
		cfg.APIKey = ""
		cfg.APISecret = ""
		bare := NewClient(cfg, zerolog.Nop())

		n := ports.IPNNotification{
			APIKeySHA256:    sha256HexOf(""),
			APISecretSHA256: sha256HexOf(""),
		}
		assert.False(t, bare.VerifyIPN(n))
	})
}
