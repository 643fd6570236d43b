package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/fiddlecol/FidPOS/internal/register"
	"github.com/shopspring/decimal"
)

// SalesClient talks to the POS API's sales endpoints: checkout settlement,
// mobile-money charges, status polling and receipt fetching. It implements
// the register's Settlement, ChargeGateway, StatusSource and ReceiptFetcher
// collaborator interfaces.
type SalesClient struct {
	api apiClient
}

func NewSalesClient(baseURL string, client *http.Client) *SalesClient {
	return &SalesClient{api: newAPIClient(baseURL, client)}
}

type checkoutItem struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	Items         []checkoutItem `json:"items,omitempty"`
	SaleID        string         `json:"sale_id,omitempty"`
	PaymentMethod string         `json:"payment_method"`
}

// settlementResponse covers both response shapes the backend produces: a
// single sale id when the cart settled as one sale, or a list when it was
// split into several.
type settlementResponse struct {
	SaleID  string   `json:"sale_id"`
	SaleIDs []string `json:"sale_ids"`
}

// normalizeReference collapses the two settlement response shapes into one
// tagged ReceiptReference so nothing downstream branches on raw JSON shape.
func normalizeReference(body []byte) (domain.ReceiptReference, error) {
	var res settlementResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return domain.ReceiptReference{}, fmt.Errorf("decode settlement response: %w", err)
	}
	switch {
	case len(res.SaleIDs) > 0:
		return domain.GroupedReceipt(res.SaleIDs), nil
	case res.SaleID != "":
		return domain.SingleReceipt(res.SaleID), nil
	default:
		return domain.ReceiptReference{}, domain.ErrMalformedResponse
	}
}

// Settle submits the cart snapshot for settlement. Backend-reported failures
// come back as CheckoutFailedError with the server's message.
func (c *SalesClient) Settle(ctx context.Context, in register.SettleInput) (domain.ReceiptReference, error) {
	req := checkoutRequest{PaymentMethod: string(in.Method)}
	if in.SaleID != "" {
		req.SaleID = in.SaleID
	} else {
		req.Items = make([]checkoutItem, 0, len(in.Lines))
		for _, line := range in.Lines {
			req.Items = append(req.Items, checkoutItem{
				Barcode:  line.Barcode,
				Quantity: line.Quantity,
			})
		}
	}

	status, body, err := c.api.postJSON(ctx, "/sales/checkout", req)
	if err != nil {
		return domain.ReceiptReference{}, err
	}
	if status < 200 || status > 299 {
		return domain.ReceiptReference{}, &domain.CheckoutFailedError{Message: errorMessage(body)}
	}
	return normalizeReference(body)
}

type chargeRequest struct {
	Phone  string          `json:"phone"`
	Amount decimal.Decimal `json:"amount"`
	Items  []checkoutItem  `json:"items"`
	SaleID string          `json:"sale_id,omitempty"`
}

type chargeResponse struct {
	SaleID            string `json:"sale_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
}

// RequestCharge asks the backend to issue an STK push. Gateway-reported
// failures come back as GatewayError with the gateway's message.
func (c *SalesClient) RequestCharge(ctx context.Context, in register.ChargeInput) (domain.PendingCharge, error) {
	req := chargeRequest{
		Phone:  in.Phone,
		Amount: in.Amount,
		SaleID: in.SaleID,
		Items:  make([]checkoutItem, 0, len(in.Lines)),
	}
	for _, line := range in.Lines {
		req.Items = append(req.Items, checkoutItem{
			Barcode:  line.Barcode,
			Quantity: line.Quantity,
		})
	}

	status, body, err := c.api.postJSON(ctx, "/sales/pay", req)
	if err != nil {
		return domain.PendingCharge{}, err
	}
	if status < 200 || status > 299 {
		return domain.PendingCharge{}, &domain.GatewayError{Message: errorMessage(body)}
	}

	var res chargeResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return domain.PendingCharge{}, fmt.Errorf("decode charge response: %w", err)
	}
	if res.SaleID == "" {
		return domain.PendingCharge{}, domain.ErrMalformedResponse
	}
	return domain.PendingCharge{
		SaleID:            res.SaleID,
		CheckoutRequestID: res.CheckoutRequestID,
	}, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

// PaymentStatus fetches the current status of the attempt for saleID.
func (c *SalesClient) PaymentStatus(ctx context.Context, saleID string) (domain.PaymentStatus, error) {
	path := "/sales/status/" + url.PathEscape(saleID)

	var body statusResponse
	status, err := c.api.getJSON(ctx, path, &body)
	if err != nil {
		return domain.PaymentStatusPending, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.PaymentStatusPending, domain.ErrAttemptNotFound
	case status < 200 || status > 299:
		return domain.PaymentStatusPending, &domain.TransportError{
			Op:  "GET " + path,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}

	switch domain.PaymentStatus(body.Status) {
	case domain.PaymentStatusSuccess:
		return domain.PaymentStatusSuccess, nil
	case domain.PaymentStatusFailed:
		return domain.PaymentStatusFailed, nil
	default:
		return domain.PaymentStatusPending, nil
	}
}

type receiptLine struct {
	SaleID    string          `json:"sale_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type receiptResponse struct {
	ShopName string          `json:"shop_name"`
	Lines    []receiptLine   `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

func (c *SalesClient) fetchReceipt(ctx context.Context, path string) (domain.Receipt, error) {
	var body receiptResponse
	status, err := c.api.getJSON(ctx, path, &body)
	if err != nil {
		return domain.Receipt{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.Receipt{}, domain.ErrSaleNotFound
	case status < 200 || status > 299:
		return domain.Receipt{}, &domain.TransportError{
			Op:  "GET " + path,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}

	receipt := domain.Receipt{
		ShopName: body.ShopName,
		Total:    body.Total,
	}
	for _, line := range body.Lines {
		receipt.Lines = append(receipt.Lines, domain.Sale{
			ID:        line.SaleID,
			Barcode:   line.Barcode,
			ItemName:  line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     line.Total,
		})
	}
	return receipt, nil
}

// FetchReceipt resolves a single-sale receipt.
func (c *SalesClient) FetchReceipt(ctx context.Context, id string) (domain.Receipt, error) {
	return c.fetchReceipt(ctx, "/sales/receipt/"+url.PathEscape(id))
}

// FetchGroupedReceipt resolves one view covering all sales from a split
// checkout.
func (c *SalesClient) FetchGroupedReceipt(ctx context.Context, ids []string) (domain.Receipt, error) {
	escaped := make([]string, 0, len(ids))
	for _, id := range ids {
		escaped = append(escaped, url.QueryEscape(id))
	}
	return c.fetchReceipt(ctx, "/sales/receipt/multi?ids="+strings.Join(escaped, ","))
}
