package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// Payments is the slice of PaymentService the payment handlers need.
type Payments interface {
	InitiateCharge(ctx context.Context, in app.InitiateChargeInput) (domain.PaymentAttempt, error)
	Status(ctx context.Context, saleID string) (domain.PaymentStatus, error)
	ApplyCallback(ctx context.Context, in app.CallbackInput) error
}

type payRequest struct {
	Phone  string                `json:"phone"`
	Amount decimal.Decimal       `json:"amount"`
	Items  []checkoutItemRequest `json:"items"`
}

type payResponse struct {
	SaleID            string `json:"sale_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
}

// HandlePay serves POST /sales/pay: it starts an STK push and returns the
// pending attempt's handle for status polling.
func HandlePay(svc Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req payRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.InitiateChargeInput{Phone: req.Phone, Amount: req.Amount}
		for _, item := range req.Items {
			in.Items = append(in.Items, app.CheckoutLine{
				Barcode:  item.Barcode,
				Quantity: item.Quantity,
			})
		}

		attempt, err := svc.InitiateCharge(r.Context(), in)
		if err != nil {
			var gatewayErr *domain.GatewayError
			switch {
			case err == domain.ErrInvalidPhone:
				writeError(w, http.StatusBadRequest, codeInvalidPhone, err.Error())
			case err == domain.ErrInvalidAmount:
				writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
			case err == domain.ErrEmptyCart:
				writeError(w, http.StatusBadRequest, codeEmptyCart, err.Error())
			case err == domain.ErrInvalidQuantity:
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case err == domain.ErrItemNotFound:
				writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
			case err == domain.ErrPaymentInProgress:
				writeError(w, http.StatusConflict, codePaymentInProgress, err.Error())
			case errors.As(err, &gatewayErr):
				writeError(w, http.StatusBadGateway, codeGatewayError, gatewayErr.Message)
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		writeJSON(w, http.StatusAccepted, payResponse{
			SaleID:            attempt.SaleID,
			CheckoutRequestID: attempt.CheckoutRequestID,
		})
	}
}

// HandlePaymentStatus serves GET /sales/status/{id}.
func HandlePaymentStatus(svc Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "sales" || parts[1] != "status" || parts[2] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		status, err := svc.Status(r.Context(), parts[2])
		if err != nil {
			switch err {
			case domain.ErrAttemptNotFound:
				writeError(w, http.StatusNotFound, codeAttemptNotFound, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
	}
}

type callbackRequest struct {
	Body struct {
		StkCallback struct {
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// HandleMpesaCallback serves POST /mpesa/callback. The gateway expects an
// acknowledgment regardless of what we do with the verdict, so processing
// errors are logged and the callback is still acknowledged.
func HandleMpesaCallback(svc Payments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ack := map[string]any{"ResultCode": 0, "ResultDesc": "Received"}

		var req callbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusOK, ack)
			return
		}

		if err := svc.ApplyCallback(r.Context(), app.CallbackInput{
			CheckoutRequestID: req.Body.StkCallback.CheckoutRequestID,
			ResultCode:        req.Body.StkCallback.ResultCode,
			ResultDesc:        req.Body.StkCallback.ResultDesc,
		}); err != nil {
			log.Printf("WARN: mpesa callback not applied: %v", err)
		}
		writeJSON(w, http.StatusOK, ack)
	}
}
