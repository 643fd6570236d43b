package app

import (
	"context"

	"github.com/fiddlecol/FidPOS/internal/clock"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogRepository interface {
	CreateItem(ctx context.Context, item domain.Item) error
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (domain.Item, error)
	GetItemByBarcode(ctx context.Context, barcode string) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	CreateCategory(ctx context.Context, category domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CatalogService manages items and categories and answers barcode lookups
// for the register.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type CreateItemInput struct {
	Barcode    string
	Name       string
	CategoryID string
	Price      decimal.Decimal
	Stock      int
}

func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (domain.Item, error) {
	if in.Barcode == "" {
		return domain.Item{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.Item{}, domain.ErrItemNameRequired
	}
	if in.Price.IsNegative() {
		return domain.Item{}, domain.ErrInvalidAmount
	}
	if in.Stock < 0 {
		return domain.Item{}, domain.ErrInvalidQuantity
	}

	item := domain.Item{
		ID:         uuid.NewString(),
		Barcode:    in.Barcode,
		Name:       in.Name,
		CategoryID: in.CategoryID,
		Price:      in.Price,
		Stock:      in.Stock,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

type UpdateItemInput struct {
	Name       *string
	Barcode    *string
	CategoryID *string
	Price      *decimal.Decimal
	Stock      *int
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, in UpdateItemInput) (domain.Item, error) {
	if id == "" {
		return domain.Item{}, domain.ErrInvalidID
	}

	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return domain.Item{}, domain.ErrItemNameRequired
		}
		item.Name = *in.Name
	}
	if in.Barcode != nil {
		if *in.Barcode == "" {
			return domain.Item{}, domain.ErrInvalidID
		}
		item.Barcode = *in.Barcode
	}
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return domain.Item{}, domain.ErrInvalidAmount
		}
		item.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return domain.Item{}, domain.ErrInvalidQuantity
		}
		item.Stock = *in.Stock
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteItem(ctx, id)
}

func (s *CatalogService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

// Lookup resolves a scanned barcode for the register.
func (s *CatalogService) Lookup(ctx context.Context, barcode string) (domain.Item, error) {
	if barcode == "" {
		return domain.Item{}, domain.ErrInvalidID
	}
	return s.repo.GetItemByBarcode(ctx, barcode)
}

type CreateCategoryInput struct {
	Name string
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (domain.Category, error) {
	if in.Name == "" {
		return domain.Category{}, domain.ErrCategoryNameRequired
	}

	category := domain.Category{
		ID:   uuid.NewString(),
		Name: in.Name,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidID
	}
	return s.repo.DeleteCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}
