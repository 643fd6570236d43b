package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
)

// Categories is the slice of CatalogService the category handlers need.
type Categories interface {
	CreateCategory(ctx context.Context, in app.CreateCategoryInput) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleCategories serves GET /categories/ and POST /categories/add.
func HandleCategories(svc Categories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			categories, err := svc.ListCategories(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			out := make([]categoryResponse, 0, len(categories))
			for _, category := range categories {
				out = append(out, categoryResponse{ID: category.ID, Name: category.Name})
			}
			writeJSON(w, http.StatusOK, out)

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/add"):
			var req struct {
				Name string `json:"name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			category, err := svc.CreateCategory(r.Context(), app.CreateCategoryInput{Name: req.Name})
			if err != nil {
				switch err {
				case domain.ErrCategoryNameRequired:
					writeError(w, http.StatusBadRequest, codeCategoryNameRequired, err.Error())
				case domain.ErrItemAlreadyExists:
					writeError(w, http.StatusConflict, codeItemExists, "category already exists")
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			writeJSON(w, http.StatusCreated, categoryResponse{ID: category.ID, Name: category.Name})

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleCategoriesRouter dispatches the /categories/ subtree.
func HandleCategoriesRouter(svc Categories) http.HandlerFunc {
	collection := HandleCategories(svc)
	deletion := HandleCategoryDelete(svc)
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case len(parts) == 1, len(parts) == 2 && parts[1] == "add":
			collection(w, r)
		case len(parts) == 3 && parts[1] == "delete":
			deletion(w, r)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// HandleCategoryDelete serves DELETE /categories/delete/{id}.
func HandleCategoryDelete(svc Categories) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "categories" || parts[1] != "delete" || parts[2] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err := svc.DeleteCategory(r.Context(), parts[2]); err != nil {
			switch err {
			case domain.ErrCategoryNotFound:
				writeError(w, http.StatusNotFound, codeCategoryNotFound, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	}
}
