// Package notify consumes order events and hands the rendered summary to the
// out-of-band mail channel. Delivery is fire-and-forget from the storefront's
// point of view: nothing here can roll an order back.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/PoojaKamatchi/keva/internal/events"
	kafkax "github.com/PoojaKamatchi/keva/internal/kafka"
	"github.com/PoojaKamatchi/keva/internal/redisx"
)

// Sender delivers one rendered message. The real transport (SMTP, whatever)
// lives behind this.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// LogSender writes the message to the log. Used when no mail transport is
// configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, subject, body string) error {
	log.Printf("notify: %s\n%s", subject, body)
	return nil
}

type Service struct {
	Redis       *redis.Client
	Sender      Sender
	ServiceName string
}

// HandleOrderPlaced is wired as the consumer handler for order.placed.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderPlaced {
		return nil
	}

	// dedup by event id; a redelivered event must not mail twice
	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("New Order Received - %s", p.OrderID)
	return s.Sender.Send(ctx, subject, renderSummary(p))
}

func renderSummary(p events.OrderPlacedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", p.OrderID)
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Mobile: %s\n", p.Mobile)
	fmt.Fprintf(&b, "Address: %s\n", p.ShippingAddress)
	b.WriteString("Items:\n")
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  - %s x %d @ ₹%d.%02d\n", it.Name, it.Qty, it.PriceCents/100, it.PriceCents%100)
	}
	fmt.Fprintf(&b, "Total: ₹%d.%02d\n", p.TotalCents/100, p.TotalCents%100)
	return b.String()
}
