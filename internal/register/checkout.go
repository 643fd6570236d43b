package register

import (
	"context"
	"sync"

	"github.com/fiddlecol/FidPOS/internal/domain"
)

// SettleInput is the cart snapshot handed to the settlement backend. SaleID is
// set only when finalizing an already-paid mobile-money attempt; the backend
// then settles the lines it stored with the attempt.
type SettleInput struct {
	Lines  []domain.CartLine
	Method domain.PaymentMethod
	SaleID string
}

// Settlement submits a cart for settlement and reports the resulting receipt
// reference, already normalized from the backend's single/grouped shapes.
type Settlement interface {
	Settle(ctx context.Context, in SettleInput) (domain.ReceiptReference, error)
}

// CheckoutCoordinator drives cart submission. It rejects overlapping submits
// for the same cart so a double-tapped checkout can never issue two settlement
// requests, and clears the cart only after the backend confirms success.
type CheckoutCoordinator struct {
	cart       *CartStore
	settlement Settlement

	mu       sync.Mutex
	inFlight bool
}

func NewCheckoutCoordinator(cart *CartStore, settlement Settlement) *CheckoutCoordinator {
	return &CheckoutCoordinator{cart: cart, settlement: settlement}
}

// Submit settles the current cart. For mobile money, proof must be the
// successful PaymentAttempt; for cash it is nil. On success exactly the
// snapshot that was settled is removed from the cart, so a line scanned while
// the settlement call was outstanding stays in the cart; on any failure the
// cart is left untouched.
func (c *CheckoutCoordinator) Submit(ctx context.Context, method domain.PaymentMethod, proof *domain.PaymentAttempt) (domain.ReceiptReference, error) {
	lines := c.cart.Lines()
	if len(lines) == 0 {
		return domain.ReceiptReference{}, domain.ErrEmptyCart
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return domain.ReceiptReference{}, domain.ErrCheckoutInProgress
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	in := SettleInput{Lines: lines, Method: method}
	if proof != nil {
		in.SaleID = proof.SaleID
	}

	ref, err := c.settlement.Settle(ctx, in)
	if err != nil {
		return domain.ReceiptReference{}, err
	}

	c.cart.ClearSettled(lines)
	return ref, nil
}
