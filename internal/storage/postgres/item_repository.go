package postgres

import (
	"context"
	"fmt"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) CreateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
INSERT INTO items (id, barcode, name, category_id, price, stock, created_at)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, stmt,
		item.ID, item.Barcode, item.Name, item.CategoryID,
		item.Price.String(), item.Stock, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (r *ItemRepository) UpdateItem(ctx context.Context, item domain.Item) error {
	const stmt = `
UPDATE items
SET barcode = $2, name = $3, category_id = NULLIF($4, '')::uuid, price = $5, stock = $6
WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt,
		item.ID, item.Barcode, item.Name, item.CategoryID,
		item.Price.String(), item.Stock)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) DeleteItem(ctx context.Context, id string) error {
	const stmt = `DELETE FROM items WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

const itemColumns = `id, barcode, name, COALESCE(category_id::text, ''), price::text, stock, created_at`

func scanItem(row pgx.Row) (domain.Item, error) {
	var (
		item  domain.Item
		price string
	)
	if err := row.Scan(&item.ID, &item.Barcode, &item.Name, &item.CategoryID,
		&price, &item.Stock, &item.CreatedAt); err != nil {
		return domain.Item{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("parse price: %w", err)
	}
	item.Price = parsed
	return item, nil
}

func (r *ItemRepository) GetItem(ctx context.Context, id string) (domain.Item, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Item{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) GetItemByBarcode(ctx context.Context, barcode string) (domain.Item, error) {
	const query = `SELECT ` + itemColumns + ` FROM items WHERE barcode = $1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, barcode))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item by barcode: %w", err)
	}
	return item, nil
}

func (r *ItemRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	const query = `SELECT ` + itemColumns + ` FROM items ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate items: %w", rows.Err())
	}
	return items, nil
}

func (r *ItemRepository) CreateCategory(ctx context.Context, category domain.Category) error {
	const stmt = `INSERT INTO categories (id, name) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, stmt, category.ID, category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrItemAlreadyExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *ItemRepository) DeleteCategory(ctx context.Context, id string) error {
	const stmt = `DELETE FROM categories WHERE id = $1`
	tag, err := r.pool.Exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func (r *ItemRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate categories: %w", rows.Err())
	}
	return categories, nil
}
