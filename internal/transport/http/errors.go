package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidPhone         = "invalid_phone"
	codeInvalidAmount        = "invalid_amount"
	codeItemNameRequired     = "item_name_required"
	codeCategoryNameRequired = "category_name_required"
	codeItemNotFound         = "item_not_found"
	codeItemExists           = "item_already_exists"
	codeCategoryNotFound     = "category_not_found"
	codeSaleNotFound         = "sale_not_found"
	codeAttemptNotFound      = "payment_attempt_not_found"
	codeInsufficientStock    = "not_enough_stock"
	codeEmptyCart            = "empty_cart"
	codePaymentNotSettled    = "payment_not_settled"
	codePaymentFailed        = "payment_failed"
	codePaymentInProgress    = "payment_in_progress"
	codeGatewayError         = "gateway_error"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
