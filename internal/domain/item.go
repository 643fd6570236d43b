package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a catalog entry identified by its scannable barcode.
type Item struct {
	ID         string
	Barcode    string
	Name       string
	CategoryID string
	Price      decimal.Decimal
	Stock      int
	CreatedAt  time.Time
}

// Category groups items for catalog management.
type Category struct {
	ID   string
	Name string
}
