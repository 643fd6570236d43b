package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// Reports is the slice of SaleService the report handler needs.
type Reports interface {
	Summary(ctx context.Context, day time.Time) (domain.SalesSummary, error)
}

type itemSummaryResponse struct {
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type summaryResponse struct {
	TotalSales   int                   `json:"total_sales"`
	TotalRevenue decimal.Decimal       `json:"total_revenue"`
	ByItem       []itemSummaryResponse `json:"by_item"`
}

// HandleSummary serves GET /reports/summary?date=YYYY-MM-DD (default today).
func HandleSummary(svc Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		day := time.Now().UTC()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid date, expected YYYY-MM-DD")
				return
			}
			day = parsed
		}

		summary, err := svc.Summary(r.Context(), day)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := summaryResponse{
			TotalSales:   summary.TotalSales,
			TotalRevenue: summary.TotalRevenue,
			ByItem:       make([]itemSummaryResponse, 0, len(summary.ByItem)),
		}
		for _, entry := range summary.ByItem {
			out.ByItem = append(out.ByItem, itemSummaryResponse{
				Barcode:  entry.Barcode,
				Name:     entry.Name,
				Quantity: entry.Quantity,
				Revenue:  entry.Revenue,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
