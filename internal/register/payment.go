package register

import (
	"context"
	"sync"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// ChargeInput describes a mobile-money charge request. SaleID is set only when
// retrying a charge for a sale the backend already created.
type ChargeInput struct {
	SaleID string
	Phone  string
	Amount decimal.Decimal
	Lines  []domain.CartLine
}

// ChargeGateway issues the charge request against the payment backend.
type ChargeGateway interface {
	RequestCharge(ctx context.Context, in ChargeInput) (domain.PendingCharge, error)
}

// PaymentInitiator validates charge requests before any network call and
// keeps at most one attempt pending per sale.
type PaymentInitiator struct {
	gateway ChargeGateway

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewPaymentInitiator(gateway ChargeGateway) *PaymentInitiator {
	return &PaymentInitiator{
		gateway: gateway,
		pending: make(map[string]struct{}),
	}
}

// RequestCharge validates the input and asks the gateway for an STK push.
// The returned handle identifies the pending attempt for status polling.
func (p *PaymentInitiator) RequestCharge(ctx context.Context, in ChargeInput) (domain.PendingCharge, error) {
	if !domain.ValidPhone(in.Phone) {
		return domain.PendingCharge{}, domain.ErrInvalidPhone
	}
	if !in.Amount.IsPositive() {
		return domain.PendingCharge{}, domain.ErrInvalidAmount
	}
	if len(in.Lines) == 0 {
		return domain.PendingCharge{}, domain.ErrEmptyCart
	}

	if in.SaleID != "" {
		p.mu.Lock()
		if _, exists := p.pending[in.SaleID]; exists {
			p.mu.Unlock()
			return domain.PendingCharge{}, domain.ErrPaymentInProgress
		}
		p.mu.Unlock()
	}

	charge, err := p.gateway.RequestCharge(ctx, in)
	if err != nil {
		return domain.PendingCharge{}, err
	}

	p.mu.Lock()
	p.pending[charge.SaleID] = struct{}{}
	p.mu.Unlock()

	return charge, nil
}

// MarkSettled releases the pending slot for saleID once its attempt reached a
// terminal state. Idempotent.
func (p *PaymentInitiator) MarkSettled(saleID string) {
	p.mu.Lock()
	delete(p.pending, saleID)
	p.mu.Unlock()
}

// Pending reports whether an attempt for saleID is still outstanding.
func (p *PaymentInitiator) Pending(saleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[saleID]
	return ok
}
