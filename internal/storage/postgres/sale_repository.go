package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type SaleRepository struct {
	pool *pgxpool.Pool
}

func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

func (r *SaleRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *SaleRepository) GetItemForUpdate(ctx context.Context, barcode string) (domain.Item, error) {
	const query = `
SELECT id, barcode, name, COALESCE(category_id::text, ''), price::text, stock, created_at
FROM items
WHERE barcode = $1
FOR UPDATE`

	item, err := scanItem(r.queryRow(ctx, query, barcode))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item for update: %w", err)
	}
	return item, nil
}

func (r *SaleRepository) DecrementStock(ctx context.Context, itemID string, quantity int) error {
	const stmt = `UPDATE items SET stock = stock - $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, itemID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *SaleRepository) CreateSale(ctx context.Context, sale domain.Sale) error {
	const stmt = `
INSERT INTO sales (id, barcode, item_name, unit_price, quantity, total, payment_method, sold_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		sale.ID, sale.Barcode, sale.ItemName, sale.UnitPrice.String(),
		sale.Quantity, sale.Total.String(), string(sale.PaymentMethod), sale.SoldAt)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) ListSalesByIDs(ctx context.Context, ids []string) ([]domain.Sale, error) {
	const query = `
SELECT id, barcode, item_name, unit_price::text, quantity, total::text, payment_method, sold_at
FROM sales
WHERE id::text = ANY($1)
ORDER BY array_position($1, id::text)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var (
			sale      domain.Sale
			unitPrice string
			total     string
			method    string
		)
		if err := rows.Scan(&sale.ID, &sale.Barcode, &sale.ItemName, &unitPrice,
			&sale.Quantity, &total, &method, &sale.SoldAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if sale.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		if sale.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		sale.PaymentMethod = domain.PaymentMethod(method)
		sales = append(sales, sale)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate sales: %w", rows.Err())
	}
	return sales, nil
}

func (r *SaleRepository) SummarizeSales(ctx context.Context, from, to time.Time) (domain.SalesSummary, error) {
	const query = `
SELECT barcode, item_name, SUM(quantity)::int, SUM(total)::text
FROM sales
WHERE sold_at >= $1 AND sold_at < $2
GROUP BY barcode, item_name
ORDER BY SUM(total) DESC`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return domain.SalesSummary{}, fmt.Errorf("summarize sales: %w", err)
	}
	defer rows.Close()

	summary := domain.SalesSummary{TotalRevenue: decimal.Zero}
	for rows.Next() {
		var (
			entry   domain.ItemSummary
			revenue string
		)
		if err := rows.Scan(&entry.Barcode, &entry.Name, &entry.Quantity, &revenue); err != nil {
			return domain.SalesSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		if entry.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return domain.SalesSummary{}, fmt.Errorf("parse revenue: %w", err)
		}
		summary.ByItem = append(summary.ByItem, entry)
		summary.TotalSales += entry.Quantity
		summary.TotalRevenue = summary.TotalRevenue.Add(entry.Revenue)
	}
	if rows.Err() != nil {
		return domain.SalesSummary{}, fmt.Errorf("iterate summary: %w", rows.Err())
	}
	return summary, nil
}

func (r *SaleRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *SaleRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
