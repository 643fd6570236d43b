package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

func TestCatalogClient_LookupItem(t *testing.T) {
	t.Parallel()

	t.Run("decodes a catalog entry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/items/lookup/111" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"barcode": "111",
				"name":    "Milk",
				"price":   "50.50",
			})
		}))
		defer server.Close()

		client := NewCatalogClient(server.URL, server.Client())
		item, err := client.LookupItem(context.Background(), "111")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if item.Name != "Milk" {
			t.Fatalf("unexpected name %q", item.Name)
		}
		if !item.Price.Equal(decimal.RequireFromString("50.50")) {
			t.Fatalf("unexpected price %s", item.Price)
		}
	})

	t.Run("unknown barcode maps to ErrItemNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewCatalogClient(server.URL, server.Client())
		_, err := client.LookupItem(context.Background(), "999")
		if !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("unreachable backend is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewCatalogClient(server.URL, nil)
		_, err := client.LookupItem(context.Background(), "111")

		var transportErr *domain.TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})
}
