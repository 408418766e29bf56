package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/config"
)

const (
	sandboxURL    = "https://tripay.co.id/api-sandbox"
	productionURL = "https://tripay.co.id/api"

	// StatusPaid is the callback status of a settled checkout.
	StatusPaid = "PAID"
)

// Client talks to the hosted-checkout provider used for card payments.
type Client struct {
	HTTP         *http.Client
	APIKey       string
	PrivateKey   string
	MerchantCode string
	BaseURL      string
	CallbackURL  string
	ReturnURL    string
	Now          func() time.Time
}

func New(cfg config.GatewayConfig, appBaseURL string) *Client {
	baseURL := sandboxURL
	if cfg.Env == "production" {
		baseURL = productionURL
	}
	return &Client{
		HTTP:         &http.Client{Timeout: 15 * time.Second},
		APIKey:       cfg.APIKey,
		PrivateKey:   cfg.PrivateKey,
		MerchantCode: cfg.MerchantCode,
		BaseURL:      baseURL,
		CallbackURL:  strings.TrimRight(appBaseURL, "/") + "/api/payment/gateway/callback",
		ReturnURL:    cfg.ReturnURL,
		Now:          time.Now,
	}
}

type orderItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type transactionRequest struct {
	Method        string      `json:"method"`
	MerchantRef   string      `json:"merchant_ref"`
	Amount        int64       `json:"amount"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	OrderItems    []orderItem `json:"order_items"`
	Callback      string      `json:"callback_url"`
	ReturnURL     string      `json:"return_url"`
	ExpiredTime   int64       `json:"expired_time"`
	Signature     string      `json:"signature"`
}

type transactionResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    Checkout `json:"data"`
}

// CheckoutRequest describes one booking payment to be settled by card.
type CheckoutRequest struct {
	MerchantRef   string
	Amount        int64
	Method        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type Checkout struct {
	Reference   string `json:"reference"`
	MerchantRef string `json:"merchant_ref"`
	CheckoutURL string `json:"checkout_url"`
	Amount      int64  `json:"amount"`
}

// CreateCheckout opens a hosted checkout valid for 24 hours.
func (c *Client) CreateCheckout(ctx context.Context, in CheckoutRequest) (*Checkout, error) {
	reqBody := transactionRequest{
		Method:        in.Method,
		MerchantRef:   in.MerchantRef,
		Amount:        in.Amount,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		OrderItems: []orderItem{
			{Name: in.ItemName, Price: in.Amount, Quantity: 1},
		},
		Callback:    c.CallbackURL,
		ReturnURL:   c.ReturnURL,
		ExpiredTime: c.Now().Add(24 * time.Hour).Unix(),
		Signature:   c.Signature(in.MerchantRef, in.Amount),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transaction/create", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp transactionResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !apiResp.Success {
		return nil, fmt.Errorf("gateway error: %s", apiResp.Message)
	}
	return &apiResp.Data, nil
}

// Signature is HMAC-SHA256(merchant_code + merchant_ref + amount, private_key).
func (c *Client) Signature(merchantRef string, amount int64) string {
	return c.sign([]byte(fmt.Sprintf("%s%s%d", c.MerchantCode, merchantRef, amount)))
}

func (c *Client) sign(data []byte) string {
	h := hmac.New(sha256.New, []byte(c.PrivateKey))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateSignature checks a callback body against its signature header,
// HMAC-SHA256(body, private_key).
func (c *Client) ValidateSignature(incomingSig string, body []byte) bool {
	return hmac.Equal([]byte(c.sign(body)), []byte(strings.ToLower(incomingSig)))
}

// Callback is the settlement notice posted by the provider.
type Callback struct {
	Reference     string `json:"reference"`
	MerchantRef   string `json:"merchant_ref"`
	PaymentMethod string `json:"payment_method"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
}

func ParseCallback(body []byte) (*Callback, error) {
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("invalid callback payload: %w", err)
	}
	if cb.Reference == "" && cb.MerchantRef == "" {
		return nil, fmt.Errorf("callback carries no reference")
	}
	return &cb, nil
}
