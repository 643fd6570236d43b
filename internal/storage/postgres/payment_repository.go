package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// attemptLine is the JSON form a cart line takes inside the attempt row.
type attemptLine struct {
	Barcode   string `json:"barcode"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func encodeLines(lines []domain.CartLine) ([]byte, error) {
	out := make([]attemptLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, attemptLine{
			Barcode:   line.Barcode,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.String(),
			Quantity:  line.Quantity,
		})
	}
	return json.Marshal(out)
}

func decodeLines(raw []byte) ([]domain.CartLine, error) {
	var encoded []attemptLine
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(encoded))
	for _, line := range encoded {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("parse line price: %w", err)
		}
		lines = append(lines, domain.CartLine{
			Barcode:   line.Barcode,
			Name:      line.Name,
			UnitPrice: price,
			Quantity:  line.Quantity,
		})
	}
	return lines, nil
}

func (r *PaymentRepository) CreateAttempt(ctx context.Context, attempt domain.PaymentAttempt) error {
	const stmt = `
INSERT INTO payment_attempts (sale_id, checkout_request_id, phone, amount, lines, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	lines, err := encodeLines(attempt.Lines)
	if err != nil {
		return fmt.Errorf("encode attempt lines: %w", err)
	}

	_, err = r.pool.Exec(ctx, stmt,
		attempt.SaleID, attempt.CheckoutRequestID, attempt.Phone,
		attempt.Amount.String(), lines, string(attempt.Status), attempt.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPaymentInProgress
		}
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

const attemptColumns = `sale_id, checkout_request_id, phone, amount::text, lines, status, created_at, paid_at`

func scanAttempt(row pgx.Row) (domain.PaymentAttempt, error) {
	var (
		attempt domain.PaymentAttempt
		amount  string
		lines   []byte
		status  string
	)
	if err := row.Scan(&attempt.SaleID, &attempt.CheckoutRequestID, &attempt.Phone,
		&amount, &lines, &status, &attempt.CreatedAt, &attempt.PaidAt); err != nil {
		return domain.PaymentAttempt{}, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("parse amount: %w", err)
	}
	attempt.Amount = parsed

	if attempt.Lines, err = decodeLines(lines); err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("decode attempt lines: %w", err)
	}
	attempt.Status = domain.PaymentStatus(status)
	return attempt, nil
}

func (r *PaymentRepository) GetAttempt(ctx context.Context, saleID string) (domain.PaymentAttempt, error) {
	const query = `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE sale_id = $1`

	attempt, err := scanAttempt(r.pool.QueryRow(ctx, query, saleID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.PaymentAttempt{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.PaymentAttempt{}, domain.ErrAttemptNotFound
		}
		return domain.PaymentAttempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

func (r *PaymentRepository) GetAttemptByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (domain.PaymentAttempt, error) {
	const query = `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE checkout_request_id = $1`

	attempt, err := scanAttempt(r.pool.QueryRow(ctx, query, checkoutRequestID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.PaymentAttempt{}, domain.ErrAttemptNotFound
		}
		return domain.PaymentAttempt{}, fmt.Errorf("get attempt by checkout request id: %w", err)
	}
	return attempt, nil
}

func (r *PaymentRepository) UpdateAttemptStatus(ctx context.Context, saleID string, status domain.PaymentStatus, paidAt *time.Time) error {
	const stmt = `UPDATE payment_attempts SET status = $2, paid_at = $3 WHERE sale_id = $1`

	tag, err := r.pool.Exec(ctx, stmt, saleID, string(status), paidAt)
	if err != nil {
		return fmt.Errorf("update attempt status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

// GetAttemptForFinalize loads the attempt together with any previously
// recorded finalized sale ids. Inside a transaction the FOR UPDATE lock on
// the row is held until the transaction ends.
func (r *PaymentRepository) GetAttemptForFinalize(ctx context.Context, saleID string) (domain.PaymentAttempt, []string, error) {
	const query = `
SELECT ` + attemptColumns + `, COALESCE(finalized_sale_ids, '{}')
FROM payment_attempts
WHERE sale_id = $1
FOR UPDATE`

	var (
		attempt domain.PaymentAttempt
		amount  string
		lines   []byte
		status  string
		ids     []string
	)
	err := r.queryRow(ctx, query, saleID).Scan(&attempt.SaleID, &attempt.CheckoutRequestID, &attempt.Phone,
		&amount, &lines, &status, &attempt.CreatedAt, &attempt.PaidAt, &ids)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.PaymentAttempt{}, nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.PaymentAttempt{}, nil, domain.ErrAttemptNotFound
		}
		return domain.PaymentAttempt{}, nil, fmt.Errorf("get attempt for finalize: %w", err)
	}

	if attempt.Amount, err = decimal.NewFromString(amount); err != nil {
		return domain.PaymentAttempt{}, nil, fmt.Errorf("parse amount: %w", err)
	}
	if attempt.Lines, err = decodeLines(lines); err != nil {
		return domain.PaymentAttempt{}, nil, fmt.Errorf("decode attempt lines: %w", err)
	}
	attempt.Status = domain.PaymentStatus(status)
	return attempt, ids, nil
}

func (r *PaymentRepository) GetFinalizedSaleIDs(ctx context.Context, saleID string) ([]string, error) {
	const query = `SELECT COALESCE(finalized_sale_ids, '{}') FROM payment_attempts WHERE sale_id = $1`

	var ids []string
	err := r.pool.QueryRow(ctx, query, saleID).Scan(&ids)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get finalized sale ids: %w", err)
	}
	return ids, nil
}

func (r *PaymentRepository) SetFinalizedSaleIDs(ctx context.Context, saleID string, ids []string) error {
	const stmt = `UPDATE payment_attempts SET finalized_sale_ids = $2 WHERE sale_id = $1`

	tag, err := r.exec(ctx, stmt, saleID, ids)
	if err != nil {
		return fmt.Errorf("set finalized sale ids: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (r *PaymentRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *PaymentRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
