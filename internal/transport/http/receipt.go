package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// ReceiptSource is the slice of SaleService the receipt handlers need.
type ReceiptSource interface {
	Receipt(ctx context.Context, ids []string) (domain.Receipt, error)
}

type receiptLineResponse struct {
	SaleID    string          `json:"sale_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

type receiptViewResponse struct {
	ShopName string                `json:"shop_name"`
	Lines    []receiptLineResponse `json:"lines"`
	Total    decimal.Decimal       `json:"total"`
	IssuedAt time.Time             `json:"issued_at"`
}

func toReceiptResponse(receipt domain.Receipt) receiptViewResponse {
	out := receiptViewResponse{
		ShopName: receipt.ShopName,
		Total:    receipt.Total,
		IssuedAt: receipt.IssuedAt,
	}
	for _, line := range receipt.Lines {
		out.Lines = append(out.Lines, receiptLineResponse{
			SaleID:    line.ID,
			Barcode:   line.Barcode,
			Name:      line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     line.Total,
		})
	}
	return out
}

func writeReceipt(w http.ResponseWriter, r *http.Request, svc ReceiptSource, ids []string) {
	receipt, err := svc.Receipt(r.Context(), ids)
	if err != nil {
		switch err {
		case domain.ErrSaleNotFound:
			writeError(w, http.StatusNotFound, codeSaleNotFound, err.Error())
		case domain.ErrInvalidID:
			writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

// HandleReceipt serves GET /sales/receipt/{id} and
// GET /sales/receipt/multi?ids=a,b,c.
func HandleReceipt(svc ReceiptSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "sales" || parts[1] != "receipt" || parts[2] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if parts[2] == "multi" {
			raw := strings.TrimSpace(r.URL.Query().Get("ids"))
			if raw == "" {
				writeError(w, http.StatusBadRequest, codeInvalidID, "ids query parameter required")
				return
			}
			var ids []string
			for _, id := range strings.Split(raw, ",") {
				id = strings.TrimSpace(id)
				if id != "" {
					ids = append(ids, id)
				}
			}
			writeReceipt(w, r, svc, ids)
			return
		}

		writeReceipt(w, r, svc, []string{parts[2]})
	}
}
