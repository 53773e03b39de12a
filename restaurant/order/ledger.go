package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	menux "github.com/tavolahq/waiter/restaurant/menu"
)

// TaxRate is applied to every order subtotal.
const TaxRate = 0.10

type Status string

const (
	StatusCreated            Status = "created"
	StatusSentToKitchen      Status = "sent_to_kitchen"
	StatusFailedNotification Status = "failed_notification"
	StatusLogged             Status = "logged"
)

var (
	ErrEmptyItems      = errors.New("order has no items")
	ErrUnknownItem     = errors.New("item not found in menu")
	ErrOrderNotFound   = errors.New("order not found")
	ErrMissingCustomer = errors.New("missing required customer field")
)

type CustomerInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
}

// OrderItem snapshots the menu price at order time, so later catalog price
// changes never retroactively alter an existing order.
type OrderItem struct {
	ItemID         string  `json:"item_id"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	SpecialRequest string  `json:"special_request,omitempty"`
	Price          float64 `json:"price"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type Order struct {
	ID                  string       `json:"order_id"`
	Customer            CustomerInfo `json:"customer"`
	Items               []OrderItem  `json:"items"`
	Totals              Totals       `json:"totals"`
	SpecialInstructions string       `json:"special_instructions,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	Status              Status       `json:"status"`
}

// clone returns a copy whose Items slice shares nothing with the receiver,
// so callers can never reach back into the ledger's stored order.
func (o Order) clone() Order {
	c := o
	c.Items = make([]OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return c
}

// Ledger owns all created orders. Identifiers are allocated from an atomic
// counter strictly in creation order and are never reused, including after
// cancellations or failed notifications. Item contents are immutable once
// created; only Status may change, and only through SetStatus.
type Ledger struct {
	catalog *menux.Catalog
	archive *Archive

	mu     sync.RWMutex
	orders map[string]*Order
	seq    atomic.Int64

	now func() time.Time
}

type LedgerOption func(*Ledger)

// WithArchive attaches a durable order archive. Archive failures are logged
// and never fail the order operation itself.
func WithArchive(a *Archive) LedgerOption {
	return func(l *Ledger) {
		l.archive = a
	}
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLedger(catalog *menux.Catalog, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		catalog: catalog,
		orders:  make(map[string]*Order),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Round2 rounds to currency precision, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateTotal resolves every item id against the catalog and returns the
// priced breakdown. An unknown id fails immediately, naming the offending
// id; nothing partial is computed.
func (l *Ledger) CalculateTotal(itemIDs []string) (Totals, error) {
	if len(itemIDs) == 0 {
		return Totals{}, ErrEmptyItems
	}

	var subtotal float64
	for _, id := range itemIDs {
		item, ok := l.catalog.Get(id)
		if !ok {
			return Totals{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
		subtotal += item.Price
	}

	return Totals{
		Subtotal: Round2(subtotal),
		Tax:      Round2(subtotal * TaxRate),
		Total:    Round2(subtotal + subtotal*TaxRate),
	}, nil
}

// CreateOrder validates the customer and every item id, snapshots prices,
// allocates the next sequential identifier, and stores the order with
// status created. Validation happens before the identifier is allocated so
// rejected requests never consume ids.
func (l *Ledger) CreateOrder(customer CustomerInfo, itemIDs []string) (Order, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return Order{}, fmt.Errorf("%w: name", ErrMissingCustomer)
	}
	if strings.TrimSpace(customer.Location) == "" {
		return Order{}, fmt.Errorf("%w: location", ErrMissingCustomer)
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return Order{}, fmt.Errorf("%w: phone", ErrMissingCustomer)
	}
	if len(itemIDs) == 0 {
		return Order{}, ErrEmptyItems
	}

	var badIDs []string
	items := make([]OrderItem, 0, len(itemIDs))
	var subtotal float64
	for _, id := range itemIDs {
		item, ok := l.catalog.Get(id)
		if !ok {
			if !containsString(badIDs, id) {
				badIDs = append(badIDs, id)
			}
			continue
		}
		merged := false
		for i := range items {
			if items[i].ItemID == item.ID {
				items[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, OrderItem{
				ItemID:   item.ID,
				Name:     item.Name,
				Quantity: 1,
				Price:    item.Price,
			})
		}
		subtotal += item.Price
	}
	if len(badIDs) > 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrUnknownItem, strings.Join(badIDs, ", "))
	}

	o := &Order{
		ID:       fmt.Sprintf("ORD-%d", l.seq.Add(1)),
		Customer: customer,
		Items:    items,
		Totals: Totals{
			Subtotal: Round2(subtotal),
			Tax:      Round2(subtotal * TaxRate),
			Total:    Round2(subtotal + subtotal*TaxRate),
		},
		CreatedAt: l.now().UTC(),
		Status:    StatusCreated,
	}

	l.mu.Lock()
	l.orders[o.ID] = o
	l.mu.Unlock()

	if l.archive != nil {
		if err := l.archive.Record(*o); err != nil {
			log.Warn().Err(err).Str("order_id", o.ID).Msg("order archive write failed")
		}
	}

	return o.clone(), nil
}

func (l *Ledger) Get(orderID string) (Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	o, ok := l.orders[strings.TrimSpace(orderID)]
	if !ok {
		return Order{}, false
	}
	return o.clone(), true
}

// SetStatus updates one order's status. The move to logged is only taken
// from created, so a failed notification stays visible on the order.
func (l *Ledger) SetStatus(orderID string, status Status) error {
	l.mu.Lock()
	o, ok := l.orders[strings.TrimSpace(orderID)]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrOrderNotFound, orderID)
	}
	if status == StatusLogged && o.Status != StatusCreated {
		l.mu.Unlock()
		return nil
	}
	o.Status = status
	l.mu.Unlock()

	if l.archive != nil {
		if err := l.archive.UpdateStatus(orderID, status); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("order archive status update failed")
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
