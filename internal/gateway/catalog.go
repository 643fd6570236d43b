package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogClient resolves barcodes against the POS API's catalog.
type CatalogClient struct {
	api apiClient
}

func NewCatalogClient(baseURL string, client *http.Client) *CatalogClient {
	return &CatalogClient{api: newAPIClient(baseURL, client)}
}

type lookupResponse struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

// LookupItem fetches the catalog entry for barcode. A 404 maps to
// ErrItemNotFound; network failures surface as TransportError.
func (c *CatalogClient) LookupItem(ctx context.Context, barcode string) (domain.Item, error) {
	path := "/items/lookup/" + url.PathEscape(barcode)

	var body lookupResponse
	status, err := c.api.getJSON(ctx, path, &body)
	if err != nil {
		return domain.Item{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.Item{}, domain.ErrItemNotFound
	case status < 200 || status > 299:
		return domain.Item{}, &domain.TransportError{
			Op:  "GET " + path,
			Err: fmt.Errorf("unexpected status %d", status),
		}
	}

	return domain.Item{
		Barcode: body.Barcode,
		Name:    body.Name,
		Price:   body.Price,
	}, nil
}
