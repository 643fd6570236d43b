package domain

import "github.com/shopspring/decimal"

// CartLine is one scanned item in the register's cart. A cart holds at most
// one line per barcode; repeated scans merge into the existing line.
type CartLine struct {
	Barcode   string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentMpesa PaymentMethod = "mpesa"
)
