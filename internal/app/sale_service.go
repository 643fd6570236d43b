package app

import (
	"context"
	"log"
	"time"

	"github.com/fiddlecol/FidPOS/internal/clock"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, barcode string) (domain.Item, error)
	DecrementStock(ctx context.Context, itemID string, quantity int) error
	CreateSale(ctx context.Context, sale domain.Sale) error
	ListSalesByIDs(ctx context.Context, ids []string) ([]domain.Sale, error)
	SummarizeSales(ctx context.Context, from, to time.Time) (domain.SalesSummary, error)
}

// AttemptFinalizer is the slice of the payment store checkout needs: reading
// an attempt and recording which sales settled it. GetAttemptForFinalize must
// lock the attempt row for the rest of the surrounding transaction so two
// finalizers for the same attempt serialize on it.
type AttemptFinalizer interface {
	GetAttemptForFinalize(ctx context.Context, saleID string) (domain.PaymentAttempt, []string, error)
	SetFinalizedSaleIDs(ctx context.Context, saleID string, ids []string) error
}

// ReceiptPublisher hands a completed checkout to the receipt printer queue.
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, receipt domain.Receipt) error
}

// SaleService settles carts. Every cart line becomes its own sale row, which
// is why a checkout response can carry one id or several.
type SaleService struct {
	repo      SaleRepository
	attempts  AttemptFinalizer
	clock     clock.Clock
	publisher ReceiptPublisher
	shopName  string
}

type SaleServiceOption func(*SaleService)

// WithReceiptPublisher enables best-effort receipt publishing on settlement.
func WithReceiptPublisher(p ReceiptPublisher) SaleServiceOption {
	return func(s *SaleService) {
		s.publisher = p
	}
}

// WithShopName sets the name printed on receipts.
func WithShopName(name string) SaleServiceOption {
	return func(s *SaleService) {
		if name != "" {
			s.shopName = name
		}
	}
}

const defaultShopName = "FidPOS Store"

func NewSaleService(repo SaleRepository, attempts AttemptFinalizer, clk clock.Clock, opts ...SaleServiceOption) *SaleService {
	svc := &SaleService{
		repo:     repo,
		attempts: attempts,
		clock:    clk,
		shopName: defaultShopName,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CheckoutLine struct {
	Barcode  string
	Quantity int
}

type CheckoutInput struct {
	Items  []CheckoutLine
	Method domain.PaymentMethod
	// SaleID references a settled mobile-money attempt when finalizing.
	SaleID string
}

type CheckoutResult struct {
	SaleIDs []string
}

// Checkout settles a cash cart, or finalizes a paid mobile-money attempt when
// SaleID is set. All sale rows and stock decrements commit in one transaction.
func (s *SaleService) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if in.SaleID != "" {
		return s.finalizeAttempt(ctx, in.SaleID)
	}

	if len(in.Items) == 0 {
		return CheckoutResult{}, domain.ErrEmptyCart
	}
	method := in.Method
	if method == "" {
		method = domain.PaymentCash
	}

	lines := make([]domain.CartLine, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return CheckoutResult{}, domain.ErrInvalidQuantity
		}
		lines = append(lines, domain.CartLine{Barcode: item.Barcode, Quantity: item.Quantity})
	}

	sales, err := s.settleLines(ctx, lines, method)
	if err != nil {
		return CheckoutResult{}, err
	}

	s.publish(ctx, sales)
	return CheckoutResult{SaleIDs: saleIDs(sales)}, nil
}

// finalizeAttempt turns a successful payment attempt into sale rows. Repeated
// finalization of the same attempt returns the ids it already produced. The
// whole read-settle-record sequence runs in one transaction with the attempt
// row locked, so a concurrent finalize for the same attempt waits and then
// finds the recorded ids instead of settling the lines again.
func (s *SaleService) finalizeAttempt(ctx context.Context, attemptID string) (CheckoutResult, error) {
	var (
		ids   []string
		sales []domain.Sale
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		attempt, existing, err := s.attempts.GetAttemptForFinalize(txCtx, attemptID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			ids = existing
			return nil
		}

		switch attempt.Status {
		case domain.PaymentStatusSuccess:
		case domain.PaymentStatusFailed:
			return domain.ErrPaymentFailed
		default:
			return domain.ErrPaymentNotSettled
		}

		sales, err = s.settleLines(txCtx, attempt.Lines, domain.PaymentMpesa)
		if err != nil {
			return err
		}
		ids = saleIDs(sales)
		return s.attempts.SetFinalizedSaleIDs(txCtx, attemptID, ids)
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	if len(sales) > 0 {
		s.publish(ctx, sales)
	}
	return CheckoutResult{SaleIDs: ids}, nil
}

// settleLines creates one sale per line and decrements stock, atomically.
func (s *SaleService) settleLines(ctx context.Context, lines []domain.CartLine, method domain.PaymentMethod) ([]domain.Sale, error) {
	now := s.clock.Now()
	var sales []domain.Sale

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		sales = sales[:0]
		for _, line := range lines {
			item, err := s.repo.GetItemForUpdate(txCtx, line.Barcode)
			if err != nil {
				return err
			}
			if item.Stock < line.Quantity {
				return domain.ErrInsufficientStock
			}

			sale := domain.Sale{
				ID:            uuid.NewString(),
				Barcode:       item.Barcode,
				ItemName:      item.Name,
				UnitPrice:     item.Price,
				Quantity:      line.Quantity,
				Total:         item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
				PaymentMethod: method,
				SoldAt:        now,
			}

			if err := s.repo.DecrementStock(txCtx, item.ID, line.Quantity); err != nil {
				return err
			}
			if err := s.repo.CreateSale(txCtx, sale); err != nil {
				return err
			}
			sales = append(sales, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// Receipt builds the viewable receipt for one or more sale ids from a single
// checkout.
func (s *SaleService) Receipt(ctx context.Context, ids []string) (domain.Receipt, error) {
	if len(ids) == 0 {
		return domain.Receipt{}, domain.ErrInvalidID
	}

	sales, err := s.repo.ListSalesByIDs(ctx, ids)
	if err != nil {
		return domain.Receipt{}, err
	}
	if len(sales) != len(ids) {
		return domain.Receipt{}, domain.ErrSaleNotFound
	}

	return s.buildReceipt(sales), nil
}

// Summary aggregates the sales recorded during one day.
func (s *SaleService) Summary(ctx context.Context, day time.Time) (domain.SalesSummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.repo.SummarizeSales(ctx, from, from.AddDate(0, 0, 1))
}

func (s *SaleService) buildReceipt(sales []domain.Sale) domain.Receipt {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Total)
	}
	return domain.Receipt{
		ShopName: s.shopName,
		Lines:    sales,
		Total:    total,
		IssuedAt: s.clock.Now(),
	}
}

// publish hands the receipt to the printer queue. A broker outage must never
// fail a recorded sale, so errors are only logged.
func (s *SaleService) publish(ctx context.Context, sales []domain.Sale) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReceipt(ctx, s.buildReceipt(sales)); err != nil {
		log.Printf("WARN: receipt publish failed: %v", err)
	}
}

func saleIDs(sales []domain.Sale) []string {
	ids := make([]string, 0, len(sales))
	for _, sale := range sales {
		ids = append(ids, sale.ID)
	}
	return ids
}
