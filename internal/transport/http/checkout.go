package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
)

// CartSettler is the slice of SaleService the checkout handler needs.
type CartSettler interface {
	Checkout(ctx context.Context, in app.CheckoutInput) (app.CheckoutResult, error)
}

type checkoutItemRequest struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest `json:"items"`
	SaleID        string                `json:"sale_id"`
	PaymentMethod string                `json:"payment_method"`
}

// HandleCheckout serves POST /sales/checkout. The response carries `sale_id`
// when the cart settled as one sale and `sale_ids` when it was split, which
// the register normalizes on its side.
func HandleCheckout(svc CartSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req checkoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.CheckoutInput{
			Method: domain.PaymentMethod(req.PaymentMethod),
			SaleID: req.SaleID,
		}
		for _, item := range req.Items {
			in.Items = append(in.Items, app.CheckoutLine{
				Barcode:  item.Barcode,
				Quantity: item.Quantity,
			})
		}

		result, err := svc.Checkout(r.Context(), in)
		if err != nil {
			switch err {
			case domain.ErrEmptyCart:
				writeError(w, http.StatusBadRequest, codeEmptyCart, err.Error())
			case domain.ErrInvalidQuantity:
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrItemNotFound:
				writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
			case domain.ErrAttemptNotFound:
				writeError(w, http.StatusNotFound, codeAttemptNotFound, err.Error())
			case domain.ErrInsufficientStock:
				writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
			case domain.ErrPaymentNotSettled:
				writeError(w, http.StatusConflict, codePaymentNotSettled, err.Error())
			case domain.ErrPaymentFailed:
				writeError(w, http.StatusConflict, codePaymentFailed, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		if len(result.SaleIDs) == 1 {
			writeJSON(w, http.StatusCreated, map[string]string{"sale_id": result.SaleIDs[0]})
			return
		}
		writeJSON(w, http.StatusCreated, map[string][]string{"sale_ids": result.SaleIDs})
	}
}
