package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidID            = errors.New("invalid id")
	ErrItemNotFound         = errors.New("item not found")
	ErrItemAlreadyExists    = errors.New("item already exists")
	ErrItemNameRequired     = errors.New("item name required")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name required")
	ErrSaleNotFound         = errors.New("sale not found")
	ErrAttemptNotFound      = errors.New("payment attempt not found")
	ErrInsufficientStock    = errors.New("not enough stock")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrIndexOutOfRange      = errors.New("cart index out of range")
	ErrCheckoutInProgress   = errors.New("checkout already in progress")
	ErrPaymentInProgress    = errors.New("payment already in progress")
	ErrPaymentNotSettled    = errors.New("payment not settled")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrMalformedResponse    = errors.New("response missing sale reference")
	ErrPaymentStatusTimeout = errors.New("payment status polling timed out")
)

// CheckoutFailedError carries the settlement backend's own failure message so
// it can be shown to the cashier verbatim.
type CheckoutFailedError struct {
	Message string
}

func (e *CheckoutFailedError) Error() string {
	if e.Message == "" {
		return "checkout failed"
	}
	return fmt.Sprintf("checkout failed: %s", e.Message)
}

// GatewayError carries a business failure reported by the mobile-money gateway.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return "payment gateway error"
	}
	return fmt.Sprintf("payment gateway: %s", e.Message)
}

// TransportError wraps a network-level failure reaching a collaborator, as
// opposed to a failure the collaborator itself reported.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
