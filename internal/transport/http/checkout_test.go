package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
)

func TestHandleCheckout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		body           string
		result         app.CheckoutResult
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "single sale responds with sale_id",
			method:         http.MethodPost,
			body:           `{"items":[{"barcode":"111","quantity":2}],"payment_method":"cash"}`,
			result:         app.CheckoutResult{SaleIDs: []string{"sale-1"}},
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"sale_id":"sale-1"`,
		},
		{
			name:           "split checkout responds with sale_ids",
			method:         http.MethodPost,
			body:           `{"items":[{"barcode":"111","quantity":1},{"barcode":"222","quantity":1}],"payment_method":"cash"}`,
			result:         app.CheckoutResult{SaleIDs: []string{"sale-1", "sale-2"}},
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"sale_ids":["sale-1","sale-2"]`,
		},
		{
			name:           "finalize by sale id",
			method:         http.MethodPost,
			body:           `{"sale_id":"attempt-1","payment_method":"mpesa"}`,
			result:         app.CheckoutResult{SaleIDs: []string{"sale-1"}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty cart",
			method:         http.MethodPost,
			body:           `{"items":[]}`,
			serviceErr:     domain.ErrEmptyCart,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"empty_cart"`,
		},
		{
			name:           "unknown item",
			method:         http.MethodPost,
			body:           `{"items":[{"barcode":"999","quantity":1}]}`,
			serviceErr:     domain.ErrItemNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "insufficient stock",
			method:         http.MethodPost,
			body:           `{"items":[{"barcode":"111","quantity":99}]}`,
			serviceErr:     domain.ErrInsufficientStock,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"not_enough_stock"`,
		},
		{
			name:           "unsettled payment cannot finalize",
			method:         http.MethodPost,
			body:           `{"sale_id":"attempt-1"}`,
			serviceErr:     domain.ErrPaymentNotSettled,
			expectedStatus: http.StatusConflict,
			expectedSubstr: `"code":"payment_not_settled"`,
		},
		{
			name:           "failed payment cannot finalize",
			method:         http.MethodPost,
			body:           `{"sale_id":"attempt-1"}`,
			serviceErr:     domain.ErrPaymentFailed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "malformed body",
			method:         http.MethodPost,
			body:           `{"items":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field rejected",
			method:         http.MethodPost,
			body:           `{"items":[],"unknown":true}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubCartSettler{result: tt.result, err: tt.serviceErr}

			req := httptest.NewRequest(tt.method, "/sales/checkout", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			HandleCheckout(svc).ServeHTTP(rec, req)

			res := rec.Result()
			if res.StatusCode != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, res.StatusCode)
			}
			if tt.expectedSubstr != "" {
				body := rec.Body.String()
				if !strings.Contains(body, tt.expectedSubstr) {
					t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
				}
			}
		})
	}
}

type stubCartSettler struct {
	result app.CheckoutResult
	err    error
}

func (s *stubCartSettler) Checkout(_ context.Context, _ app.CheckoutInput) (app.CheckoutResult, error) {
	return s.result, s.err
}
