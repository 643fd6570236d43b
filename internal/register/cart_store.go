package register

import (
	"context"
	"sync"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/shopspring/decimal"
)

// ItemLookup resolves a scanned barcode against the catalog.
type ItemLookup interface {
	LookupItem(ctx context.Context, barcode string) (domain.Item, error)
}

// CartStore owns the register's in-memory cart for the duration of a session.
// It is the single writer of the cart; every mutation notifies subscribers so
// the display can re-render.
type CartStore struct {
	lookup ItemLookup

	mu    sync.Mutex
	lines []domain.CartLine
	subs  []func()
}

func NewCartStore(lookup ItemLookup) *CartStore {
	return &CartStore{lookup: lookup}
}

// Subscribe registers fn to run after every cart mutation.
func (s *CartStore) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// AddOrMerge resolves barcode through the catalog and either increments the
// existing line for that barcode or appends a new one. The cart keeps at most
// one line per barcode.
func (s *CartStore) AddOrMerge(ctx context.Context, barcode string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	item, err := s.lookup.LookupItem(ctx, barcode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	merged := false
	for i := range s.lines {
		if s.lines[i].Barcode == item.Barcode {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, domain.CartLine{
			Barcode:   item.Barcode,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  quantity,
		})
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Remove drops the line at index. The index refers to the cart's current
// display order; removing shifts later lines down.
func (s *CartStore) Remove(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.lines) {
		s.mu.Unlock()
		return domain.ErrIndexOutOfRange
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Lines returns a snapshot copy in insertion order.
func (s *CartStore) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total returns the sum of line totals. It has no side effects.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Clear empties the cart. Idempotent; resets the session.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()

	s.notify()
}

// ClearSettled removes a settled snapshot from the cart: each settled line's
// quantity is subtracted from the line with the same barcode, and lines that
// reach zero are dropped. Lines scanned after the snapshot was taken survive.
func (s *CartStore) ClearSettled(settled []domain.CartLine) {
	s.mu.Lock()
	for _, done := range settled {
		for i := range s.lines {
			if s.lines[i].Barcode != done.Barcode {
				continue
			}
			s.lines[i].Quantity -= done.Quantity
			if s.lines[i].Quantity <= 0 {
				s.lines = append(s.lines[:i], s.lines[i+1:]...)
			}
			break
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Len returns the current number of lines.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *CartStore) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
