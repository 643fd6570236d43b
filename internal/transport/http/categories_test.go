package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fiddlecol/FidPOS/internal/app"
	"github.com/fiddlecol/FidPOS/internal/domain"
)

func TestHandleCategoriesRouter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		serviceErr     error
		expectedStatus int
		expectedSubstr string
	}{
		{
			name:           "list categories",
			method:         http.MethodGet,
			path:           "/categories/",
			expectedStatus: http.StatusOK,
			expectedSubstr: `"name":"Beverages"`,
		},
		{
			name:           "create category",
			method:         http.MethodPost,
			path:           "/categories/add",
			body:           `{"name":"Dairy"}`,
			expectedStatus: http.StatusCreated,
			expectedSubstr: `"name":"Dairy"`,
		},
		{
			name:           "create category without name",
			method:         http.MethodPost,
			path:           "/categories/add",
			body:           `{"name":""}`,
			serviceErr:     domain.ErrCategoryNameRequired,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeCategoryNameRequired,
		},
		{
			name:           "create category malformed body",
			method:         http.MethodPost,
			path:           "/categories/add",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidRequestBody,
		},
		{
			name:           "delete category",
			method:         http.MethodDelete,
			path:           "/categories/delete/cat-1",
			expectedStatus: http.StatusOK,
			expectedSubstr: "category deleted",
		},
		{
			name:           "delete unknown category",
			method:         http.MethodDelete,
			path:           "/categories/delete/cat-9",
			serviceErr:     domain.ErrCategoryNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeCategoryNotFound,
		},
		{
			name:           "delete with invalid id",
			method:         http.MethodDelete,
			path:           "/categories/delete/not-a-uuid",
			serviceErr:     domain.ErrInvalidID,
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: codeInvalidID,
		},
		{
			name:           "wrong method on collection",
			method:         http.MethodPut,
			path:           "/categories/",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedSubstr: codeMethodNotAllowed,
		},
		{
			name:           "unknown subtree path",
			method:         http.MethodGet,
			path:           "/categories/delete/cat-1/extra",
			expectedStatus: http.StatusNotFound,
			expectedSubstr: codeNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubCategories{err: tt.serviceErr}
			handler := HandleCategoriesRouter(svc)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Fatalf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

type stubCategories struct {
	err error
}

func (s *stubCategories) CreateCategory(_ context.Context, in app.CreateCategoryInput) (domain.Category, error) {
	if s.err != nil {
		return domain.Category{}, s.err
	}
	return domain.Category{ID: "cat-2", Name: in.Name}, nil
}

func (s *stubCategories) DeleteCategory(context.Context, string) error {
	return s.err
}

func (s *stubCategories) ListCategories(context.Context) ([]domain.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Category{{ID: "cat-1", Name: "Beverages"}}, nil
}
