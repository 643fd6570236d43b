package app

import (
	"context"
	"time"

	"github.com/fiddlecol/FidPOS/internal/clock"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	CreateAttempt(ctx context.Context, attempt domain.PaymentAttempt) error
	GetAttempt(ctx context.Context, saleID string) (domain.PaymentAttempt, error)
	GetAttemptByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (domain.PaymentAttempt, error)
	UpdateAttemptStatus(ctx context.Context, saleID string, status domain.PaymentStatus, paidAt *time.Time) error
}

// ItemResolver prices charge lines from the catalog.
type ItemResolver interface {
	GetItemByBarcode(ctx context.Context, barcode string) (domain.Item, error)
}

// StkPusher issues the actual gateway charge.
type StkPusher interface {
	StkPush(ctx context.Context, phone string, amount decimal.Decimal, accountRef string) (string, error)
}

// PaymentService owns mobile-money attempts: it validates and persists a
// pending attempt, pushes the charge, answers status polls and applies
// gateway callbacks.
type PaymentService struct {
	repo       PaymentRepository
	items      ItemResolver
	pusher     StkPusher
	clock      clock.Clock
	pendingTTL time.Duration
}

// Attempts still pending after this long report Failed so a register cannot
// poll a dead charge forever.
const defaultPendingTTL = 10 * time.Minute

type PaymentServiceOption func(*PaymentService)

// WithPendingTTL overrides how long an attempt may stay pending.
func WithPendingTTL(d time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		if d > 0 {
			s.pendingTTL = d
		}
	}
}

func NewPaymentService(repo PaymentRepository, items ItemResolver, pusher StkPusher, clk clock.Clock, opts ...PaymentServiceOption) *PaymentService {
	svc := &PaymentService{
		repo:       repo,
		items:      items,
		pusher:     pusher,
		clock:      clk,
		pendingTTL: defaultPendingTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type InitiateChargeInput struct {
	Phone  string
	Amount decimal.Decimal
	Items  []CheckoutLine
}

// InitiateCharge validates the request, persists a pending attempt with its
// priced cart lines and pushes the charge to the customer's phone.
func (s *PaymentService) InitiateCharge(ctx context.Context, in InitiateChargeInput) (domain.PaymentAttempt, error) {
	if !domain.ValidPhone(in.Phone) {
		return domain.PaymentAttempt{}, domain.ErrInvalidPhone
	}
	if !in.Amount.IsPositive() {
		return domain.PaymentAttempt{}, domain.ErrInvalidAmount
	}
	if len(in.Items) == 0 {
		return domain.PaymentAttempt{}, domain.ErrEmptyCart
	}

	lines := make([]domain.CartLine, 0, len(in.Items))
	for _, reqLine := range in.Items {
		if reqLine.Quantity <= 0 {
			return domain.PaymentAttempt{}, domain.ErrInvalidQuantity
		}
		item, err := s.items.GetItemByBarcode(ctx, reqLine.Barcode)
		if err != nil {
			return domain.PaymentAttempt{}, err
		}
		lines = append(lines, domain.CartLine{
			Barcode:   item.Barcode,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  reqLine.Quantity,
		})
	}

	saleID := uuid.NewString()
	checkoutRequestID, err := s.pusher.StkPush(ctx, in.Phone, in.Amount, "FIDPOS-"+saleID)
	if err != nil {
		return domain.PaymentAttempt{}, err
	}

	attempt := domain.PaymentAttempt{
		SaleID:            saleID,
		CheckoutRequestID: checkoutRequestID,
		Phone:             in.Phone,
		Amount:            in.Amount,
		Lines:             lines,
		Status:            domain.PaymentStatusPending,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return domain.PaymentAttempt{}, err
	}
	return attempt, nil
}

// Status reports the attempt's state for the register's poll loop. Expired
// pending attempts report Failed.
func (s *PaymentService) Status(ctx context.Context, saleID string) (domain.PaymentStatus, error) {
	if saleID == "" {
		return "", domain.ErrInvalidID
	}

	attempt, err := s.repo.GetAttempt(ctx, saleID)
	if err != nil {
		return "", err
	}

	if attempt.Status == domain.PaymentStatusPending &&
		s.clock.Now().After(attempt.CreatedAt.Add(s.pendingTTL)) {
		return domain.PaymentStatusFailed, nil
	}
	return attempt.Status, nil
}

type CallbackInput struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
}

// ApplyCallback records the gateway's terminal verdict for an attempt. A
// verdict for an already-terminal attempt is ignored: terminal states never
// transition again.
func (s *PaymentService) ApplyCallback(ctx context.Context, in CallbackInput) error {
	if in.CheckoutRequestID == "" {
		return domain.ErrInvalidID
	}

	attempt, err := s.repo.GetAttemptByCheckoutRequestID(ctx, in.CheckoutRequestID)
	if err != nil {
		return err
	}
	if attempt.Status.Terminal() {
		return nil
	}

	if in.ResultCode == 0 {
		now := s.clock.Now()
		return s.repo.UpdateAttemptStatus(ctx, attempt.SaleID, domain.PaymentStatusSuccess, &now)
	}
	return s.repo.UpdateAttemptStatus(ctx, attempt.SaleID, domain.PaymentStatusFailed, nil)
}
