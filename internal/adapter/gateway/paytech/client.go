// Package paytech implements the PayTech hosted-payment-page gateway client.
package paytech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"waxipay/config"
	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"

	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// gateway labels for target_payment. PayTech identifies channels by their
// display names, not by slugs.
var targetPayments = map[domain.PaymentMethod]string{
	domain.PaymentMethodWave:        "Wave",
	domain.PaymentMethodOrangeMoney: "Orange Money",
	domain.PaymentMethodFreeMoney:   "Free Money",
	domain.PaymentMethodBankCard:    "Carte Bancaire",
}

// Client implements ports.GatewayClient against the PayTech REST API.
type Client struct {
	cfg        config.PaytechConfig
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a PayTech client. The HTTP timeout bounds the whole
// request; initiation makes exactly one outbound call, no retries.
func NewClient(cfg config.PaytechConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "paytech").Logger(),
	}
}

type paymentRequestBody struct {
	ItemName      string `json:"item_name"`
	ItemPrice     int64  `json:"item_price"`
	Currency      string `json:"currency"`
	RefCommand    string `json:"ref_command"`
	CommandName   string `json:"command_name"`
	Env           string `json:"env"`
	TargetPayment string `json:"target_payment,omitempty"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
	IPNURL        string `json:"ipn_url"`
	CustomField   string `json:"custom_field"`
}

type paymentResponseBody struct {
	Success      json.Number `json:"success"`
	Token        string      `json:"token"`
	RedirectURL  string      `json:"redirect_url"`
	RedirectURL2 string      `json:"redirectUrl"`
	Message      string      `json:"message"`
}

func (b paymentResponseBody) redirect() string {
	if b.RedirectURL != "" {
		return b.RedirectURL
	}
	return b.RedirectURL2
}

// RequestPayment asks PayTech for a hosted payment page.
func (c *Client) RequestPayment(ctx context.Context, req ports.GatewayPaymentRequest) (*ports.GatewayPaymentPage, error) {
	custom, err := req.Correlation.Encode()
	if err != nil {
		return nil, err
	}

	body := paymentRequestBody{
		// XOF has no minor unit; PayTech expects a whole number.
		ItemName:      req.ItemName,
		ItemPrice:     req.Amount.IntPart(),
		Currency:      "XOF",
		RefCommand:    req.Reference,
		CommandName:   req.ItemName,
		Env:           c.cfg.Env,
		TargetPayment: targetPayments[req.PaymentMethod],
		SuccessURL:    c.cfg.SuccessURL,
		CancelURL:     c.cfg.CancelURL,
		IPNURL:        c.cfg.IPNURL,
		CustomField:   custom,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal payment request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/payment/request-payment"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("API_KEY", c.cfg.APIKey)
	httpReq.Header.Set("API_SECRET", c.cfg.APISecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("reference", req.Reference).Msg("payment request failed")
		return nil, apperror.ErrGateway("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	var parsed paymentResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperror.ErrGateway("unreadable payment provider response", err)
	}

	c.log.Info().
		Int("status", resp.StatusCode).
		Str("reference", req.Reference).
		Msg("payment request answered")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apperror.ErrGateway(parsed.Message, fmt.Errorf("gateway status %d", resp.StatusCode))
	}
	if parsed.Success.String() != "1" {
		return nil, apperror.ErrGateway(parsed.Message, fmt.Errorf("gateway refused payment"))
	}

	redirect := parsed.redirect()
	if redirect == "" {
		return nil, apperror.ErrGateway("payment provider returned no redirect URL", nil)
	}

	return &ports.GatewayPaymentPage{
		RedirectURL: decorateRedirect(redirect, req),
		Token:       parsed.Token,
	}, nil
}

// decorateRedirect appends prefill parameters so the hosted page skips the
// channel picker when a single payment method was requested.
func decorateRedirect(redirect string, req ports.GatewayPaymentRequest) string {
	target, ok := targetPayments[req.PaymentMethod]
	if !ok || req.User == nil {
		return redirect
	}

	phone := req.User.PhoneNumber
	national := phone
	if len(phone) > 4 {
		national = phone[4:]
	}

	autoContinue := "1"
	if req.PaymentMethod == domain.PaymentMethodBankCard {
		autoContinue = "0"
	}

	params := url.Values{}
	params.Set("pn", phone)
	params.Set("nn", national)
	params.Set("fn", req.User.FullName)
	params.Set("tp", target)
	params.Set("nac", autoContinue)

	return redirect + "?" + params.Encode()
}

// VerifyIPN checks that the callback carries SHA-256 digests of our own API
// credentials. Comparison is constant-time and fails closed when the
// configured secrets are empty.
func (c *Client) VerifyIPN(n ports.IPNNotification) bool {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return false
	}

	expectedKey := sha256Hex(c.cfg.APIKey)
	expectedSecret := sha256Hex(c.cfg.APISecret)

	keyOK := subtle.ConstantTimeCompare([]byte(expectedKey), []byte(n.APIKeySHA256)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(expectedSecret), []byte(n.APISecretSHA256)) == 1
	return keyOK && secretOK
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
