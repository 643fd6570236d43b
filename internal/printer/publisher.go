package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const receiptQueue = "receipts"

// receiptMessage is the wire form of a receipt on the printer queue.
type receiptMessage struct {
	ShopName string               `json:"shop_name"`
	Lines    []receiptMessageLine `json:"lines"`
	Total    string               `json:"total"`
	IssuedAt time.Time            `json:"issued_at"`
}

type receiptMessageLine struct {
	SaleID    string `json:"sale_id"`
	Barcode   string `json:"barcode"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// Publisher pushes completed receipts onto the printer queue. Publishing is
// best-effort from the caller's point of view: the sale is already recorded
// when a receipt is published.
type Publisher struct {
	channel *amqp.Channel
}

// NewPublisher opens a channel on conn and declares the receipt queue.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(receiptQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &Publisher{channel: ch}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// PublishReceipt enqueues one receipt for printing.
func (p *Publisher) PublishReceipt(ctx context.Context, receipt domain.Receipt) error {
	msg := receiptMessage{
		ShopName: receipt.ShopName,
		Total:    receipt.Total.String(),
		IssuedAt: receipt.IssuedAt,
	}
	for _, line := range receipt.Lines {
		msg.Lines = append(msg.Lines, receiptMessageLine{
			SaleID:    line.ID,
			Barcode:   line.Barcode,
			Name:      line.ItemName,
			UnitPrice: line.UnitPrice.String(),
			Quantity:  line.Quantity,
			Total:     line.Total.String(),
		})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, "", receiptQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish receipt: %w", err)
	}
	return nil
}
