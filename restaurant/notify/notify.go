package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	orderx "github.com/tavolahq/waiter/restaurant/order"
)

var ErrDelivery = errors.New("kitchen notification delivery failed")

// Message is one composed kitchen notification.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a composed message over some external channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Summary composes the kitchen-facing notification for an order.
func Summary(o orderx.Order) Message {
	var items []string
	for _, it := range o.Items {
		line := fmt.Sprintf("  • %dx %s ($%.2f)", it.Quantity, it.Name, it.Price)
		if it.SpecialRequest != "" {
			line += fmt.Sprintf(" — %s", it.SpecialRequest)
		}
		items = append(items, line)
	}

	body := fmt.Sprintf(`NEW ORDER RECEIVED
==========================================

Order ID: %s
Customer: %s
Location: %s
Phone: %s

ITEMS ORDERED:
%s

TOTAL: $%.2f

==========================================
Please prepare this order immediately.`,
		o.ID, o.Customer.Name, o.Customer.Location, o.Customer.Phone,
		strings.Join(items, "\n"), o.Totals.Total)

	return Message{
		Subject: fmt.Sprintf("NEW ORDER #%s - Location %s", o.ID, o.Customer.Location),
		Body:    body,
	}
}

// Dispatcher sends a created order to the kitchen and records the outcome
// on the order. A delivery failure marks the order failed_notification but
// never rolls the order back; kitchen visibility and the ledger are
// independent concerns.
type Dispatcher struct {
	sender Sender
	ledger *orderx.Ledger
}

func NewDispatcher(sender Sender, ledger *orderx.Ledger) *Dispatcher {
	return &Dispatcher{sender: sender, ledger: ledger}
}

// Send composes and delivers the summary for orderID to the given
// destination. The composed message is returned even on failure so callers
// can surface the order details alongside the error.
func (d *Dispatcher) Send(ctx context.Context, orderID, to string) (Message, error) {
	o, ok := d.ledger.Get(orderID)
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", orderx.ErrOrderNotFound, orderID)
	}

	msg := Summary(o)
	msg.To = strings.TrimSpace(to)

	if err := d.sender.Send(ctx, msg); err != nil {
		if serr := d.ledger.SetStatus(o.ID, orderx.StatusFailedNotification); serr != nil {
			log.Warn().Err(serr).Str("order_id", o.ID).Msg("could not record notification failure")
		}
		return msg, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	if err := d.ledger.SetStatus(o.ID, orderx.StatusSentToKitchen); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("could not record notification success")
	}
	log.Info().Str("order_id", o.ID).Str("to", msg.To).Msg("order sent to kitchen")
	return msg, nil
}
