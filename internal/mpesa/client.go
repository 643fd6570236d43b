package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fiddlecol/FidPOS/internal/clock"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// Config holds the Daraja credentials for the till.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	BaseURL        string
	CallbackURL    string
}

// Client issues STK push requests against the Daraja API.
type Client struct {
	cfg    Config
	client *http.Client
	clock  clock.Clock
}

func NewClient(cfg Config, httpClient *http.Client, clk clock.Clock) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:    cfg,
		client: httpClient,
		clock:  clk,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// accessToken fetches an OAuth client-credentials token.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	res, err := c.client.Do(req)
	if err != nil {
		return "", &domain.TransportError{Op: "mpesa token", Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", &domain.GatewayError{Message: fmt.Sprintf("token request returned %d", res.StatusCode)}
	}

	var body tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", &domain.GatewayError{Message: "empty access token"}
	}
	return body.AccessToken, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResponseCode      string `json:"ResponseCode"`
	ErrorMessage      string `json:"errorMessage"`
}

// StkPush requests a customer-pay-bill-online push to phone and returns the
// gateway-assigned CheckoutRequestID for status correlation.
func (c *Client) StkPush(ctx context.Context, phone string, amount decimal.Decimal, accountRef string) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	timestamp := c.clock.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp),
	)

	payload := stkPushRequest{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount.Ceil().IntPart(),
		PartyA:            phone,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   "FidPOS checkout payment",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode stk push: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("build stk push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", &domain.TransportError{Op: "mpesa stk push", Err: err}
	}
	defer res.Body.Close()

	var pushRes stkPushResponse
	if err := json.NewDecoder(res.Body).Decode(&pushRes); err != nil {
		return "", fmt.Errorf("decode stk push response: %w", err)
	}

	if res.StatusCode != http.StatusOK || pushRes.CheckoutRequestID == "" {
		msg := pushRes.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("stk push returned %d", res.StatusCode)
		}
		return "", &domain.GatewayError{Message: msg}
	}
	return pushRes.CheckoutRequestID, nil
}
