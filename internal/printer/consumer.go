package printer

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consume drains the receipt queue with workers parallel consumers, rendering
// each receipt through render. It returns when the connection closes.
func Consume(conn *amqp.Connection, workers int, render func(string)) error {
	if workers <= 0 {
		workers = 1
	}
	if render == nil {
		render = func(s string) { log.Print(s) }
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			if err := consumeWorker(conn, id, render); err != nil {
				log.Printf("WARN: printer worker %d stopped: %v", id, err)
			}
		}(i)
	}
	wg.Wait()
	return nil
}

func consumeWorker(conn *amqp.Connection, id int, render func(string)) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(receiptQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(receiptQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	log.Printf("printer worker %d consuming", id)
	for d := range msgs {
		var msg receiptMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Printf("WARN: worker %d dropping malformed receipt: %v", id, err)
			_ = d.Ack(false)
			continue
		}
		render(formatReceipt(msg))
		_ = d.Ack(false)
	}
	return nil
}

// formatReceipt lays the receipt out as fixed-width till roll text.
func formatReceipt(msg receiptMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "===== %s =====\n", msg.ShopName)
	fmt.Fprintf(&b, "%s\n", msg.IssuedAt.Format("2006-01-02 15:04:05"))
	for _, line := range msg.Lines {
		fmt.Fprintf(&b, "%-20s x%-3d @%-8s %s\n", line.Name, line.Quantity, line.UnitPrice, line.Total)
	}
	fmt.Fprintf(&b, "TOTAL: %s\n", msg.Total)
	b.WriteString("================\n")
	return b.String()
}
