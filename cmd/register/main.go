package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fiddlecol/FidPOS/internal/domain"
	"github.com/fiddlecol/FidPOS/internal/gateway"
	"github.com/fiddlecol/FidPOS/internal/register"
)

const defaultAPIURL = "http://localhost:8080"

// consoleDisplay renders receipts to the terminal.
type consoleDisplay struct{}

func (consoleDisplay) ShowReceipt(receipt domain.Receipt) {
	fmt.Printf("\n===== %s =====\n", receipt.ShopName)
	for _, line := range receipt.Lines {
		fmt.Printf("%-20s x%-3d @%-8s %s\n",
			line.ItemName, line.Quantity, line.UnitPrice.StringFixed(2), line.Total.StringFixed(2))
	}
	fmt.Printf("TOTAL: %s\n", receipt.Total.StringFixed(2))
	fmt.Println("================")
}

func main() {
	apiURL := os.Getenv("POS_API_URL")
	if apiURL == "" {
		log.Printf("WARN: POS_API_URL not set, using default %s", defaultAPIURL)
		apiURL = defaultAPIURL
	}

	httpClient := gateway.NewHTTPClient()
	catalog := gateway.NewCatalogClient(apiURL, httpClient)
	sales := gateway.NewSalesClient(apiURL, httpClient)

	cart := register.NewCartStore(catalog)
	coordinator := register.NewCheckoutCoordinator(cart, sales)
	initiator := register.NewPaymentInitiator(sales)
	poller := register.NewStatusPoller(sales)
	presenter := register.NewReceiptPresenter(sales, consoleDisplay{})

	cart.Subscribe(func() {
		printCart(cart)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("FidPOS register. Commands: scan <barcode> [qty], remove <index>, total, clear, cash, mpesa <phone>, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "scan":
			if len(fields) < 2 {
				fmt.Println("usage: scan <barcode> [qty]")
				continue
			}
			qty := 1
			if len(fields) > 2 {
				parsed, err := strconv.Atoi(fields[2])
				if err != nil {
					fmt.Println("quantity must be a number")
					continue
				}
				qty = parsed
			}
			if err := cart.AddOrMerge(ctx, fields[1], qty); err != nil {
				fmt.Printf("scan failed: %v\n", err)
			}

		case "remove":
			if len(fields) < 2 {
				fmt.Println("usage: remove <index>")
				continue
			}
			index, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("index must be a number")
				continue
			}
			if err := cart.Remove(index); err != nil {
				fmt.Printf("remove failed: %v\n", err)
			}

		case "total":
			fmt.Printf("total: %s\n", cart.Total().StringFixed(2))

		case "clear":
			cart.Clear()

		case "cash":
			checkoutCash(ctx, coordinator, presenter)

		case "mpesa":
			if len(fields) < 2 {
				fmt.Println("usage: mpesa <phone>")
				continue
			}
			checkoutMpesa(ctx, cart, coordinator, initiator, poller, presenter, fields[1])

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printCart(cart *register.CartStore) {
	lines := cart.Lines()
	if len(lines) == 0 {
		fmt.Println("(cart empty)")
		return
	}
	for i, line := range lines {
		fmt.Printf("%2d. %-20s x%-3d @%-8s %s\n",
			i, line.Name, line.Quantity, line.UnitPrice.StringFixed(2), line.LineTotal().StringFixed(2))
	}
	fmt.Printf("    total: %s\n", cart.Total().StringFixed(2))
}

func checkoutCash(ctx context.Context, coordinator *register.CheckoutCoordinator, presenter *register.ReceiptPresenter) {
	ref, err := coordinator.Submit(ctx, domain.PaymentCash, nil)
	if err != nil {
		fmt.Printf("checkout failed: %v\n", err)
		return
	}
	if err := presenter.Present(ctx, ref); err != nil {
		fmt.Printf("receipt unavailable: %v\n", err)
	}
}

func checkoutMpesa(
	ctx context.Context,
	cart *register.CartStore,
	coordinator *register.CheckoutCoordinator,
	initiator *register.PaymentInitiator,
	poller *register.StatusPoller,
	presenter *register.ReceiptPresenter,
	phone string,
) {
	lines := cart.Lines()
	charge, err := initiator.RequestCharge(ctx, register.ChargeInput{
		Phone:  phone,
		Amount: cart.Total(),
		Lines:  lines,
	})
	if err != nil {
		fmt.Printf("charge failed: %v\n", err)
		return
	}
	defer initiator.MarkSettled(charge.SaleID)

	fmt.Println("charge sent, waiting for confirmation on the customer's phone...")
	status, err := poller.Wait(ctx, charge.SaleID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("payment wait canceled")
			return
		}
		fmt.Printf("payment status unavailable: %v\n", err)
		return
	}
	if status != domain.PaymentStatusSuccess {
		fmt.Println("payment failed, cart preserved")
		return
	}

	proof := &domain.PaymentAttempt{
		SaleID:            charge.SaleID,
		CheckoutRequestID: charge.CheckoutRequestID,
		Phone:             phone,
		Status:            domain.PaymentStatusSuccess,
	}
	ref, err := coordinator.Submit(ctx, domain.PaymentMpesa, proof)
	if err != nil {
		fmt.Printf("checkout failed: %v\n", err)
		return
	}
	if err := presenter.Present(ctx, ref); err != nil {
		fmt.Printf("receipt unavailable: %v\n", err)
	}
}
