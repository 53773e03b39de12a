package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tavolahq/waiter/agent/contract"
	menux "github.com/tavolahq/waiter/restaurant/menu"
	notifyx "github.com/tavolahq/waiter/restaurant/notify"
	orderlogx "github.com/tavolahq/waiter/restaurant/orderlog"
	orderx "github.com/tavolahq/waiter/restaurant/order"
)

const (
	ToolFetchMenu      = "fetch_menu"
	ToolCalculateTotal = "calculate_total"
	ToolCreateOrder    = "create_order"
	ToolSendToKitchen  = "send_to_kitchen"
	ToolSaveInExcel    = "save_in_excel"
)

// Handler executes one validated tool call. Domain rejections come back as
// a ToolResult with Error set, never as a Go error; a returned error means
// the gateway itself is broken.
type Handler func(ctx context.Context, args map[string]any) contractx.ToolResult

// Gateway is the statically declared tool registry: name, argument schema,
// and handler per tool, populated at startup from a fixed descriptor set.
type Gateway struct {
	order        []string
	descriptors  map[string]Descriptor
	handlers     map[string]Handler
	ledger       *orderx.Ledger
	catalog      *menux.Catalog
	dispatcher   *notifyx.Dispatcher
	orderLog     *orderlogx.ExcelLog
	defaultChef  string
	now          func() time.Time
}

type Config struct {
	// DefaultChefEmail is used when a send_to_kitchen call omits chef_email.
	DefaultChefEmail string `envconfig:"CHEF_EMAIL" split_words:"true" default:"kitchen@tavola.local"`
}

func NewGateway(
	catalog *menux.Catalog,
	ledger *orderx.Ledger,
	dispatcher *notifyx.Dispatcher,
	orderLog *orderlogx.ExcelLog,
	cfg Config,
) (*Gateway, error) {
	if catalog == nil {
		return nil, errors.New("menu catalog is required")
	}
	if ledger == nil {
		return nil, errors.New("order ledger is required")
	}
	if dispatcher == nil {
		return nil, errors.New("notification dispatcher is required")
	}
	if orderLog == nil {
		return nil, errors.New("order log is required")
	}

	g := &Gateway{
		descriptors: make(map[string]Descriptor),
		handlers:    make(map[string]Handler),
		catalog:     catalog,
		ledger:      ledger,
		dispatcher:  dispatcher,
		orderLog:    orderLog,
		defaultChef: strings.TrimSpace(cfg.DefaultChefEmail),
		now:         time.Now,
	}

	for _, reg := range []struct {
		desc    Descriptor
		handler Handler
	}{
		{fetchMenuDescriptor, g.fetchMenu},
		{calculateTotalDescriptor, g.calculateTotal},
		{createOrderDescriptor, g.createOrder},
		{sendToKitchenDescriptor, g.sendToKitchen},
		{saveInExcelDescriptor, g.saveInExcel},
	} {
		g.order = append(g.order, reg.desc.Name)
		g.descriptors[reg.desc.Name] = reg.desc
		g.handlers[reg.desc.Name] = reg.handler
	}
	return g, nil
}

func (g *Gateway) Names() []string {
	return append([]string(nil), g.order...)
}

func (g *Gateway) Has(tool string) bool {
	_, ok := g.handlers[strings.TrimSpace(tool)]
	return ok
}

func (g *Gateway) Describe(tool string) (Descriptor, bool) {
	d, ok := g.descriptors[strings.TrimSpace(tool)]
	return d, ok
}

// Execute validates the request against the tool's declared parameters and
// dispatches it. Unknown tools and malformed arguments come back as
// structured failures so the conversation can continue gracefully.
func (g *Gateway) Execute(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	name := strings.TrimSpace(req.Tool)
	handler, ok := g.handlers[name]
	if !ok {
		return contractx.ToolResult{
			Tool:  name,
			Error: fmt.Sprintf("tool %q is not registered", name),
		}
	}

	args, err := normalizeArgs(g.descriptors[name], req.Args)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}

	log.Debug().Str("tool", name).Msg("executing tool call")
	return handler(ctx, args)
}

/* ------------------------------- handlers ------------------------------- */

type FetchMenuOutput struct {
	Items   []menux.Item `json:"items,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (g *Gateway) fetchMenu(_ context.Context, args map[string]any) contractx.ToolResult {
	category := args["category"].(string)
	items := g.catalog.ByCategory(category)
	if len(items) == 0 {
		return contractx.ToolResult{
			Tool: ToolFetchMenu,
			Result: FetchMenuOutput{
				Message: fmt.Sprintf("No items found in category: %s", category),
			},
		}
	}
	return contractx.ToolResult{
		Tool:   ToolFetchMenu,
		Result: FetchMenuOutput{Items: items},
	}
}

type TotalsOutput struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

func (g *Gateway) calculateTotal(_ context.Context, args map[string]any) contractx.ToolResult {
	ids := args["items"].([]string)
	totals, err := g.ledger.CalculateTotal(ids)
	if err != nil {
		return contractx.ToolResult{Tool: ToolCalculateTotal, Error: err.Error()}
	}
	return contractx.ToolResult{
		Tool: ToolCalculateTotal,
		Result: TotalsOutput{
			Subtotal: totals.Subtotal,
			Tax:      totals.Tax,
			Total:    totals.Total,
		},
	}
}

type CreateOrderOutput struct {
	Success bool    `json:"success"`
	OrderID string  `json:"order_id"`
	Message string  `json:"message"`
	Total   float64 `json:"total"`
}

func (g *Gateway) createOrder(_ context.Context, args map[string]any) contractx.ToolResult {
	customer := orderx.CustomerInfo{
		Name:     args["customer_name"].(string),
		Location: args["location"].(string),
		Phone:    args["phone"].(string),
	}
	o, err := g.ledger.CreateOrder(customer, args["items"].([]string))
	if err != nil {
		return contractx.ToolResult{Tool: ToolCreateOrder, Error: err.Error()}
	}
	return contractx.ToolResult{
		Tool: ToolCreateOrder,
		Result: CreateOrderOutput{
			Success: true,
			OrderID: o.ID,
			Message: fmt.Sprintf("Order created for %s at location %s", o.Customer.Name, o.Customer.Location),
			Total:   o.Totals.Total,
		},
	}
}

type SendToKitchenOutput struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	SentTo       string `json:"sent_to,omitempty"`
	OrderDetails string `json:"order_details,omitempty"`
}

func (g *Gateway) sendToKitchen(ctx context.Context, args map[string]any) contractx.ToolResult {
	orderID := args["order_id"].(string)
	chef := args["chef_email"].(string)
	if chef == "" {
		chef = g.defaultChef
	}

	msg, err := g.dispatcher.Send(ctx, orderID, chef)
	if err != nil {
		if errors.Is(err, orderx.ErrOrderNotFound) {
			return contractx.ToolResult{Tool: ToolSendToKitchen, Error: err.Error()}
		}
		// order stays placed; delivery failure is advisory only
		return contractx.ToolResult{
			Tool:  ToolSendToKitchen,
			Error: fmt.Sprintf("failed to notify the kitchen: %v", err),
			Result: SendToKitchenOutput{
				Success:      false,
				OrderDetails: msg.Body,
			},
		}
	}
	return contractx.ToolResult{
		Tool: ToolSendToKitchen,
		Result: SendToKitchenOutput{
			Success: true,
			Message: fmt.Sprintf("Order %s sent to kitchen.", orderID),
			SentTo:  msg.To,
		},
	}
}

type SaveInExcelOutput struct {
	Success bool   `json:"success"`
	File    string `json:"file,omitempty"`
	Message string `json:"message,omitempty"`
}

func (g *Gateway) saveInExcel(_ context.Context, args map[string]any) contractx.ToolResult {
	orderID := args["order_id"].(string)
	file, err := g.orderLog.Append(orderlogx.Row{
		OrderID:      orderID,
		Date:         g.now(),
		CustomerName: args["customer_name"].(string),
		Phone:        args["customer_phone_number"].(string),
		Location:     args["customer_location"].(string),
		Items:        args["items"].([]string),
	})
	if err != nil {
		return contractx.ToolResult{
			Tool:  ToolSaveInExcel,
			Error: fmt.Sprintf("failed to save the order record: %v", err),
		}
	}

	if err := g.ledger.SetStatus(orderID, orderx.StatusLogged); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("could not mark order logged")
	}

	return contractx.ToolResult{
		Tool: ToolSaveInExcel,
		Result: SaveInExcelOutput{
			Success: true,
			File:    file,
			Message: fmt.Sprintf("Order %s saved.", orderID),
		},
	}
}
