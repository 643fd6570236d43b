package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Safaricom numbering plan: country code 254, subscriber prefix 7 or 1, then
// eight more digits (twelve digits total).
var phonePattern = regexp.MustCompile(`^254(7|1)\d{8}$`)

// ValidPhone reports whether phone is a chargeable mobile-money number.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// Terminal reports whether the status can no longer transition.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// PaymentAttempt is one mobile-money charge request for a sale. At most one
// attempt per sale may be pending at a time.
type PaymentAttempt struct {
	SaleID            string
	CheckoutRequestID string
	Phone             string
	Amount            decimal.Decimal
	Lines             []CartLine
	Status            PaymentStatus
	CreatedAt         time.Time
	PaidAt            *time.Time
}

// PendingCharge is the handle returned by a charge request, used to poll for
// the terminal outcome.
type PendingCharge struct {
	SaleID            string
	CheckoutRequestID string
}
