package app

import (
	"context"
	"testing"
	"time"

	"github.com/fiddlecol/FidPOS/internal/clock"
	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

func TestPaymentService_InitiateCharge(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(items []domain.Item, opts ...PaymentServiceOption) (*PaymentService, *fakePaymentRepo, *fakePusher) {
		repo := newFakePaymentRepo()
		pusher := &fakePusher{checkoutRequestID: "ws_CO_1"}
		svc := NewPaymentService(repo, newFakeItemResolver(items), pusher, clock.NewFixed(now), opts...)
		return svc, repo, pusher
	}

	validInput := InitiateChargeInput{
		Phone:  "254712345678",
		Amount: decimal.NewFromInt(100),
		Items:  []CheckoutLine{{Barcode: "111", Quantity: 2}},
	}
	catalogItems := []domain.Item{
		{ID: "item-1", Barcode: "111", Name: "Milk", Price: decimal.NewFromInt(50), Stock: 10},
	}

	t.Run("persists a pending attempt with priced lines", func(t *testing.T) {
		svc, repo, pusher := makeSvc(catalogItems)

		attempt, err := svc.InitiateCharge(context.Background(), validInput)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if attempt.SaleID == "" {
			t.Fatalf("expected sale id assigned")
		}
		if attempt.CheckoutRequestID != "ws_CO_1" {
			t.Fatalf("expected checkout request id, got %q", attempt.CheckoutRequestID)
		}
		if attempt.Status != domain.PaymentStatusPending {
			t.Fatalf("expected Pending, got %s", attempt.Status)
		}
		if attempt.CreatedAt != now {
			t.Fatalf("expected created_at %v, got %v", now, attempt.CreatedAt)
		}

		stored, ok := repo.attempts[attempt.SaleID]
		if !ok {
			t.Fatalf("expected attempt persisted")
		}
		if len(stored.Lines) != 1 {
			t.Fatalf("expected 1 priced line, got %d", len(stored.Lines))
		}
		if !stored.Lines[0].UnitPrice.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("expected catalog price on line, got %s", stored.Lines[0].UnitPrice)
		}
		if pusher.calls != 1 {
			t.Fatalf("expected 1 push, got %d", pusher.calls)
		}
	})

	t.Run("invalid phone never reaches the pusher", func(t *testing.T) {
		svc, _, pusher := makeSvc(catalogItems)

		in := validInput
		in.Phone = "0712345678"
		if _, err := svc.InitiateCharge(context.Background(), in); err != domain.ErrInvalidPhone {
			t.Fatalf("expected ErrInvalidPhone, got %v", err)
		}
		if pusher.calls != 0 {
			t.Fatalf("expected no pushes, got %d", pusher.calls)
		}
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		svc, _, _ := makeSvc(catalogItems)

		in := validInput
		in.Amount = decimal.Zero
		if _, err := svc.InitiateCharge(context.Background(), in); err != domain.ErrInvalidAmount {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		svc, _, _ := makeSvc(catalogItems)

		in := validInput
		in.Items = nil
		if _, err := svc.InitiateCharge(context.Background(), in); err != domain.ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("unknown barcode fails before the push", func(t *testing.T) {
		svc, _, pusher := makeSvc(nil)

		if _, err := svc.InitiateCharge(context.Background(), validInput); err != domain.ErrItemNotFound {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
		if pusher.calls != 0 {
			t.Fatalf("expected no pushes, got %d", pusher.calls)
		}
	})

	t.Run("push failure persists nothing", func(t *testing.T) {
		svc, repo, pusher := makeSvc(catalogItems)
		pusher.err = &domain.GatewayError{Message: "gateway down"}

		if _, err := svc.InitiateCharge(context.Background(), validInput); err == nil {
			t.Fatalf("expected push error")
		}
		if len(repo.attempts) != 0 {
			t.Fatalf("expected no persisted attempts, got %d", len(repo.attempts))
		}
	})
}

func TestPaymentService_Status(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(attempt domain.PaymentAttempt, opts ...PaymentServiceOption) *PaymentService {
		repo := newFakePaymentRepo()
		repo.attempts[attempt.SaleID] = attempt
		return NewPaymentService(repo, newFakeItemResolver(nil), &fakePusher{}, clock.NewFixed(now), opts...)
	}

	t.Run("reports the stored status", func(t *testing.T) {
		svc := makeSvc(domain.PaymentAttempt{
			SaleID:    "sale-1",
			Status:    domain.PaymentStatusSuccess,
			CreatedAt: now.Add(-time.Minute),
		})

		status, err := svc.Status(context.Background(), "sale-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != domain.PaymentStatusSuccess {
			t.Fatalf("expected Success, got %s", status)
		}
	})

	t.Run("pending within the TTL stays pending", func(t *testing.T) {
		svc := makeSvc(domain.PaymentAttempt{
			SaleID:    "sale-1",
			Status:    domain.PaymentStatusPending,
			CreatedAt: now.Add(-time.Minute),
		})

		status, err := svc.Status(context.Background(), "sale-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != domain.PaymentStatusPending {
			t.Fatalf("expected Pending, got %s", status)
		}
	})

	t.Run("pending past the TTL reports failed", func(t *testing.T) {
		svc := makeSvc(domain.PaymentAttempt{
			SaleID:    "sale-1",
			Status:    domain.PaymentStatusPending,
			CreatedAt: now.Add(-2 * time.Minute),
		}, WithPendingTTL(time.Minute))

		status, err := svc.Status(context.Background(), "sale-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if status != domain.PaymentStatusFailed {
			t.Fatalf("expected Failed, got %s", status)
		}
	})

	t.Run("unknown attempt fails", func(t *testing.T) {
		svc := makeSvc(domain.PaymentAttempt{SaleID: "sale-1"})

		if _, err := svc.Status(context.Background(), "missing"); err != domain.ErrAttemptNotFound {
			t.Fatalf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("empty id is invalid", func(t *testing.T) {
		svc := makeSvc(domain.PaymentAttempt{SaleID: "sale-1"})

		if _, err := svc.Status(context.Background(), ""); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})
}

func TestPaymentService_ApplyCallback(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(attempt domain.PaymentAttempt) (*PaymentService, *fakePaymentRepo) {
		repo := newFakePaymentRepo()
		repo.attempts[attempt.SaleID] = attempt
		svc := NewPaymentService(repo, newFakeItemResolver(nil), &fakePusher{}, clock.NewFixed(now))
		return svc, repo
	}

	pending := domain.PaymentAttempt{
		SaleID:            "sale-1",
		CheckoutRequestID: "ws_CO_1",
		Status:            domain.PaymentStatusPending,
	}

	t.Run("result code zero settles the attempt", func(t *testing.T) {
		svc, repo := makeSvc(pending)

		err := svc.ApplyCallback(context.Background(), CallbackInput{CheckoutRequestID: "ws_CO_1", ResultCode: 0})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := repo.attempts["sale-1"]
		if got.Status != domain.PaymentStatusSuccess {
			t.Fatalf("expected Success, got %s", got.Status)
		}
		if got.PaidAt == nil || !got.PaidAt.Equal(now) {
			t.Fatalf("expected paid_at %v, got %v", now, got.PaidAt)
		}
	})

	t.Run("non-zero result code fails the attempt", func(t *testing.T) {
		svc, repo := makeSvc(pending)

		err := svc.ApplyCallback(context.Background(), CallbackInput{CheckoutRequestID: "ws_CO_1", ResultCode: 1032})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := repo.attempts["sale-1"]; got.Status != domain.PaymentStatusFailed {
			t.Fatalf("expected Failed, got %s", got.Status)
		}
	})

	t.Run("terminal attempts never transition again", func(t *testing.T) {
		settled := pending
		settled.Status = domain.PaymentStatusSuccess
		svc, repo := makeSvc(settled)

		err := svc.ApplyCallback(context.Background(), CallbackInput{CheckoutRequestID: "ws_CO_1", ResultCode: 1032})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := repo.attempts["sale-1"]; got.Status != domain.PaymentStatusSuccess {
			t.Fatalf("expected Success preserved, got %s", got.Status)
		}
		if repo.updates != 0 {
			t.Fatalf("expected no status updates, got %d", repo.updates)
		}
	})

	t.Run("unknown checkout request id fails", func(t *testing.T) {
		svc, _ := makeSvc(pending)

		err := svc.ApplyCallback(context.Background(), CallbackInput{CheckoutRequestID: "missing", ResultCode: 0})
		if err != domain.ErrAttemptNotFound {
			t.Fatalf("expected ErrAttemptNotFound, got %v", err)
		}
	})
}

type fakePaymentRepo struct {
	attempts map[string]domain.PaymentAttempt
	updates  int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{attempts: make(map[string]domain.PaymentAttempt)}
}

func (f *fakePaymentRepo) CreateAttempt(_ context.Context, attempt domain.PaymentAttempt) error {
	if _, exists := f.attempts[attempt.SaleID]; exists {
		return domain.ErrPaymentInProgress
	}
	f.attempts[attempt.SaleID] = attempt
	return nil
}

func (f *fakePaymentRepo) GetAttempt(_ context.Context, saleID string) (domain.PaymentAttempt, error) {
	attempt, ok := f.attempts[saleID]
	if !ok {
		return domain.PaymentAttempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (f *fakePaymentRepo) GetAttemptByCheckoutRequestID(_ context.Context, checkoutRequestID string) (domain.PaymentAttempt, error) {
	for _, attempt := range f.attempts {
		if attempt.CheckoutRequestID == checkoutRequestID {
			return attempt, nil
		}
	}
	return domain.PaymentAttempt{}, domain.ErrAttemptNotFound
}

func (f *fakePaymentRepo) UpdateAttemptStatus(_ context.Context, saleID string, status domain.PaymentStatus, paidAt *time.Time) error {
	attempt, ok := f.attempts[saleID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	attempt.Status = status
	attempt.PaidAt = paidAt
	f.attempts[saleID] = attempt
	f.updates++
	return nil
}

type fakeItemResolver struct {
	items map[string]domain.Item
}

func newFakeItemResolver(items []domain.Item) *fakeItemResolver {
	m := make(map[string]domain.Item)
	for _, item := range items {
		m[item.Barcode] = item
	}
	return &fakeItemResolver{items: m}
}

func (f *fakeItemResolver) GetItemByBarcode(_ context.Context, barcode string) (domain.Item, error) {
	item, ok := f.items[barcode]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound
	}
	return item, nil
}

type fakePusher struct {
	checkoutRequestID string
	err               error
	calls             int
}

func (f *fakePusher) StkPush(_ context.Context, _ string, _ decimal.Decimal, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.checkoutRequestID, nil
}
