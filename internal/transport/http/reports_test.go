package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

func TestHandleSummary(t *testing.T) {
	t.Parallel()

	summary := domain.SalesSummary{
		TotalSales:   3,
		TotalRevenue: decimal.RequireFromString("296.75"),
		ByItem: []domain.ItemSummary{
			{Barcode: "111", Name: "Milk", Quantity: 2, Revenue: decimal.RequireFromString("101.00")},
		},
	}

	t.Run("returns daily summary", func(t *testing.T) {
		t.Parallel()

		svc := &stubReports{summary: summary}
		req := httptest.NewRequest(http.MethodGet, "/reports/summary?date=2025-06-01", nil)
		rec := httptest.NewRecorder()
		HandleSummary(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"total_sales":3`) {
			t.Fatalf("expected total sales in body, got %q", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"barcode":"111"`) {
			t.Fatalf("expected item breakdown in body, got %q", rec.Body.String())
		}
		if got := svc.day.Format("2006-01-02"); got != "2025-06-01" {
			t.Fatalf("expected requested day 2025-06-01, got %s", got)
		}
	})

	t.Run("defaults to today", func(t *testing.T) {
		t.Parallel()

		svc := &stubReports{summary: summary}
		req := httptest.NewRequest(http.MethodGet, "/reports/summary", nil)
		rec := httptest.NewRecorder()
		HandleSummary(svc)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		today := time.Now().UTC().Format("2006-01-02")
		if got := svc.day.Format("2006-01-02"); got != today {
			t.Fatalf("expected default day %s, got %s", today, got)
		}
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/reports/summary?date=01-06-2025", nil)
		rec := httptest.NewRecorder()
		HandleSummary(&stubReports{})(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), codeInvalidRequestBody) {
			t.Fatalf("expected invalid date error, got %q", rec.Body.String())
		}
	})

	t.Run("rejects wrong method", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/reports/summary", nil)
		rec := httptest.NewRecorder()
		HandleSummary(&stubReports{})(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected status 405, got %d", rec.Code)
		}
	})
}

type stubReports struct {
	summary domain.SalesSummary
	err     error
	day     time.Time
}

func (s *stubReports) Summary(_ context.Context, day time.Time) (domain.SalesSummary, error) {
	s.day = day
	if s.err != nil {
		return domain.SalesSummary{}, s.err
	}
	return s.summary, nil
}
