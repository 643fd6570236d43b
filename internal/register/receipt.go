package register

import (
	"context"

	"github.com/fiddlecol/FidPOS/internal/domain"
)

// ReceiptFetcher resolves receipt references against the backend.
type ReceiptFetcher interface {
	FetchReceipt(ctx context.Context, id string) (domain.Receipt, error)
	FetchGroupedReceipt(ctx context.Context, ids []string) (domain.Receipt, error)
}

// ReceiptDisplay renders a resolved receipt. Rendering itself is outside the
// register core; the CLI and tests provide implementations.
type ReceiptDisplay interface {
	ShowReceipt(receipt domain.Receipt)
}

// ReceiptPresenter dispatches a receipt reference to the right fetch shape
// and hands the result to the display.
type ReceiptPresenter struct {
	fetcher ReceiptFetcher
	display ReceiptDisplay
}

func NewReceiptPresenter(fetcher ReceiptFetcher, display ReceiptDisplay) *ReceiptPresenter {
	return &ReceiptPresenter{fetcher: fetcher, display: display}
}

// Present resolves ref into one receipt view: a plain view for a single sale,
// a grouped view when the checkout was split into several sales.
func (p *ReceiptPresenter) Present(ctx context.Context, ref domain.ReceiptReference) error {
	if len(ref.IDs) == 0 {
		return domain.ErrInvalidID
	}

	var (
		receipt domain.Receipt
		err     error
	)
	if ref.Grouped {
		receipt, err = p.fetcher.FetchGroupedReceipt(ctx, ref.IDs)
	} else {
		receipt, err = p.fetcher.FetchReceipt(ctx, ref.IDs[0])
	}
	if err != nil {
		return err
	}

	p.display.ShowReceipt(receipt)
	return nil
}
