package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/config"
)

func newTestClient(baseURL string) *Client {
	c := New(config.GatewayConfig{
		Env:          "sandbox",
		APIKey:       "api-key",
		PrivateKey:   "private-key",
		MerchantCode: "T0001",
		ReturnURL:    "http://localhost:3000/payments",
	}, "http://api.local/")
	c.BaseURL = baseURL
	c.Now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return c
}

func TestNewPicksEnvironment(t *testing.T) {
	assert.Equal(t, sandboxURL, New(config.GatewayConfig{}, "").BaseURL)
	assert.Equal(t, productionURL, New(config.GatewayConfig{Env: "production"}, "").BaseURL)
	assert.Equal(t, "http://api.local/api/payment/gateway/callback", newTestClient("").CallbackURL)
}

func TestCreateCheckout(t *testing.T) {
	var got transactionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/create", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"","data":{"reference":"DEV-T0001","merchant_ref":"pay-1","checkout_url":"https://pay.example/DEV-T0001","amount":900}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out, err := c.CreateCheckout(context.Background(), CheckoutRequest{
		MerchantRef: "pay-1",
		Amount:      900,
		Method:      "QRIS",
		ItemName:    "Fix kitchen sink",
	})
	require.NoError(t, err)
	assert.Equal(t, "DEV-T0001", out.Reference)
	assert.Equal(t, "https://pay.example/DEV-T0001", out.CheckoutURL)

	assert.Equal(t, c.Signature("pay-1", 900), got.Signature)
	assert.Equal(t, int64(1_700_000_000+24*3600), got.ExpiredTime)
	require.Len(t, got.OrderItems, 1)
	assert.Equal(t, int64(900), got.OrderItems[0].Price)
	assert.Equal(t, c.CallbackURL, got.Callback)
}

func TestCreateCheckoutProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid merchant"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateCheckout(context.Background(), CheckoutRequest{MerchantRef: "x", Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid merchant")
}

func TestCreateCheckoutGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateCheckout(context.Background(), CheckoutRequest{MerchantRef: "x", Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSignature(t *testing.T) {
	c := newTestClient("")
	h := hmac.New(sha256.New, []byte("private-key"))
	h.Write([]byte("T0001pay-1900"))
	assert.Equal(t, hex.EncodeToString(h.Sum(nil)), c.Signature("pay-1", 900))
}

func TestValidateSignature(t *testing.T) {
	c := newTestClient("")
	body := []byte(`{"reference":"DEV-1","status":"PAID"}`)
	sig := c.sign(body)

	assert.True(t, c.ValidateSignature(sig, body))
	assert.False(t, c.ValidateSignature(sig, []byte(`{"reference":"DEV-1","status":"FAILED"}`)))
	assert.False(t, c.ValidateSignature("", body))
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback([]byte(`{"reference":"DEV-1","merchant_ref":"pay-1","payment_method":"QRIS","total_amount":900,"status":"PAID"}`))
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, cb.Status)
	assert.Equal(t, "QRIS", cb.PaymentMethod)

	_, err = ParseCallback([]byte(`{}`))
	require.Error(t, err)
	_, err = ParseCallback([]byte(`nope`))
	require.Error(t, err)
}
