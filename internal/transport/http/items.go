package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is the slice of CatalogService the item handlers need.
type Catalog interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.Item, error)
	UpdateItem(ctx context.Context, id string, in app.UpdateItemInput) (domain.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ListItems(ctx context.Context) ([]domain.Item, error)
	Lookup(ctx context.Context, barcode string) (domain.Item, error)
}

type itemResponse struct {
	ID         string          `json:"id"`
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:         item.ID,
		Barcode:    item.Barcode,
		Name:       item.Name,
		CategoryID: item.CategoryID,
		Price:      item.Price,
		Stock:      item.Stock,
		CreatedAt:  item.CreatedAt,
	}
}

// HandleItems serves GET /items/ and POST /items/add.
func HandleItems(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			items, err := svc.ListItems(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			out := make([]itemResponse, 0, len(items))
			for _, item := range items {
				out = append(out, toItemResponse(item))
			}
			writeJSON(w, http.StatusOK, out)

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/add"):
			var req createItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			item, err := svc.CreateItem(r.Context(), app.CreateItemInput{
				Barcode:    req.Barcode,
				Name:       req.Name,
				CategoryID: req.CategoryID,
				Price:      req.Price,
				Stock:      req.Stock,
			})
			if err != nil {
				switch err {
				case domain.ErrInvalidID, domain.ErrInvalidAmount, domain.ErrInvalidQuantity:
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
				case domain.ErrItemNameRequired:
					writeError(w, http.StatusBadRequest, codeItemNameRequired, err.Error())
				case domain.ErrItemAlreadyExists:
					writeError(w, http.StatusConflict, codeItemExists, err.Error())
				case domain.ErrCategoryNotFound:
					writeError(w, http.StatusNotFound, codeCategoryNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusCreated, toItemResponse(item))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type createItemRequest struct {
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"quantity"`
}

type updateItemRequest struct {
	Barcode    *string          `json:"barcode"`
	Name       *string          `json:"name"`
	CategoryID *string          `json:"category_id"`
	Price      *decimal.Decimal `json:"price"`
	Stock      *int             `json:"quantity"`
}

// HandleItemByID serves POST|PUT /items/update/{id}, DELETE /items/delete/{id}
// and GET /items/lookup/{barcode}.
func HandleItemByID(svc Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, arg, ok := parseItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch {
		case action == "lookup" && r.Method == http.MethodGet:
			item, err := svc.Lookup(r.Context(), arg)
			if err != nil {
				switch err {
				case domain.ErrItemNotFound:
					writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
				case domain.ErrInvalidID:
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusOK, toItemResponse(item))

		case action == "update" && (r.Method == http.MethodPost || r.Method == http.MethodPut):
			var req updateItemRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			item, err := svc.UpdateItem(r.Context(), arg, app.UpdateItemInput{
				Barcode:    req.Barcode,
				Name:       req.Name,
				CategoryID: req.CategoryID,
				Price:      req.Price,
				Stock:      req.Stock,
			})
			if err != nil {
				switch err {
				case domain.ErrItemNotFound:
					writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
				case domain.ErrInvalidID, domain.ErrInvalidAmount, domain.ErrInvalidQuantity:
					writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
				case domain.ErrItemNameRequired:
					writeError(w, http.StatusBadRequest, codeItemNameRequired, err.Error())
				case domain.ErrItemAlreadyExists:
					writeError(w, http.StatusConflict, codeItemExists, err.Error())
				case domain.ErrCategoryNotFound:
					writeError(w, http.StatusNotFound, codeCategoryNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusOK, toItemResponse(item))

		case action == "delete" && r.Method == http.MethodDelete:
			if err := svc.DeleteItem(r.Context(), arg); err != nil {
				switch err {
				case domain.ErrItemNotFound:
					writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
				case domain.ErrInvalidID:
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "item deleted"})

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleItemsRouter dispatches the /items/ subtree: the collection at
// /items/, creation at /items/add and the per-item actions below them.
func HandleItemsRouter(svc Catalog) http.HandlerFunc {
	collection := HandleItems(svc)
	byID := HandleItemByID(svc)
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case len(parts) == 1, len(parts) == 2 && parts[1] == "add":
			collection(w, r)
		case len(parts) == 3:
			byID(w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// parseItemPath splits /items/{action}/{arg}.
func parseItemPath(path string) (action, arg string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "items" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
