package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is one settled cart line. The backend records one sale row per line,
// which is why a single checkout can yield several sale ids.
type Sale struct {
	ID            string
	Barcode       string
	ItemName      string
	UnitPrice     decimal.Decimal
	Quantity      int
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	SoldAt        time.Time
}

// ReceiptReference identifies the receipt(s) produced by one checkout.
// Grouped is set when the backend split the cart into several sales.
type ReceiptReference struct {
	IDs     []string
	Grouped bool
}

// SingleReceipt returns a reference to one sale.
func SingleReceipt(id string) ReceiptReference {
	return ReceiptReference{IDs: []string{id}}
}

// GroupedReceipt returns a reference covering several sales in order.
func GroupedReceipt(ids []string) ReceiptReference {
	return ReceiptReference{IDs: ids, Grouped: true}
}

// Receipt is the viewable form of one or more sales from a single checkout.
type Receipt struct {
	ShopName string
	Lines    []Sale
	Total    decimal.Decimal
	IssuedAt time.Time
}
