package domain

import "github.com/shopspring/decimal"

// ItemSummary aggregates sales of one item over a reporting window.
type ItemSummary struct {
	Barcode  string
	Name     string
	Quantity int
	Revenue  decimal.Decimal
}

// SalesSummary is the daily sales report.
type SalesSummary struct {
	TotalSales   int
	TotalRevenue decimal.Decimal
	ByItem       []ItemSummary
}
