package tool

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	contractx "github.com/tavolahq/waiter/agent/contract"
	menux "github.com/tavolahq/waiter/restaurant/menu"
	notifyx "github.com/tavolahq/waiter/restaurant/notify"
	orderlogx "github.com/tavolahq/waiter/restaurant/orderlog"
	orderx "github.com/tavolahq/waiter/restaurant/order"
)

type recordingSender struct {
	sent []notifyx.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg notifyx.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestGateway(t *testing.T, sender notifyx.Sender) (*Gateway, *orderx.Ledger) {
	t.Helper()
	catalog := menux.DefaultCatalog()
	ledger := orderx.NewLedger(catalog)
	dispatcher := notifyx.NewDispatcher(sender, ledger)
	excel, err := orderlogx.NewExcelLog(filepath.Join(t.TempDir(), "orders.xlsx"))
	if err != nil {
		t.Fatalf("new excel log: %v", err)
	}
	g, err := NewGateway(catalog, ledger, dispatcher, excel, Config{DefaultChefEmail: "chef@example.com"})
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return g, ledger
}

func placeOrder(t *testing.T, g *Gateway) string {
	t.Helper()
	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolCreateOrder,
		Args: map[string]any{
			"customer_name": "Dana",
			"location":      "Table 4",
			"phone":         "555-0101",
			"items":         []any{"app_001", "drink_001"},
		},
	})
	if res.Failed() {
		t.Fatalf("create_order failed: %s", res.Error)
	}
	out := res.Result.(CreateOrderOutput)
	if !out.Success || out.OrderID == "" {
		t.Fatalf("unexpected create_order output: %+v", out)
	}
	return out.OrderID
}

func TestGatewayNamesAndHas(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	want := []string{ToolFetchMenu, ToolCalculateTotal, ToolCreateOrder, ToolSendToKitchen, ToolSaveInExcel}
	got := g.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d tool names, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], name)
		}
		if !g.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
	}
	if g.Has("drop_table") {
		t.Error("Has should reject unregistered tools")
	}
}

func TestGatewayRejectsUnknownTool(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{Tool: "refund_order"})
	if !res.Failed() {
		t.Fatal("expected a structured failure for an unregistered tool")
	}
	if !strings.Contains(res.Error, "not registered") {
		t.Errorf("unexpected error text: %s", res.Error)
	}
}

func TestFetchMenuByCategory(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolFetchMenu,
		Args: map[string]any{"category": "dessert"},
	})
	if res.Failed() {
		t.Fatalf("fetch_menu failed: %s", res.Error)
	}
	out := res.Result.(FetchMenuOutput)
	if len(out.Items) != 1 || out.Items[0].ID != "des_001" {
		t.Fatalf("unexpected dessert listing: %+v", out.Items)
	}

	// omitted category defaults to the full menu
	res = g.Execute(context.Background(), contractx.ToolRequest{Tool: ToolFetchMenu})
	out = res.Result.(FetchMenuOutput)
	if len(out.Items) != 6 {
		t.Fatalf("expected the full menu, got %d items", len(out.Items))
	}
}

func TestFetchMenuEmptyCategoryMessage(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolFetchMenu,
		Args: map[string]any{"category": "sides"},
	})
	if res.Failed() {
		t.Fatalf("fetch_menu failed: %s", res.Error)
	}
	out := res.Result.(FetchMenuOutput)
	if out.Message == "" || len(out.Items) != 0 {
		t.Fatalf("expected an empty-category message, got %+v", out)
	}
}

func TestCalculateTotal(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolCalculateTotal,
		Args: map[string]any{"items": []any{"app_001", "drink_001"}},
	})
	if res.Failed() {
		t.Fatalf("calculate_total failed: %s", res.Error)
	}
	out := res.Result.(TotalsOutput)
	if out.Subtotal != 13.98 || out.Tax != 1.40 || out.Total != 15.38 {
		t.Fatalf("unexpected totals: %+v", out)
	}
}

func TestCalculateTotalUnknownItem(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolCalculateTotal,
		Args: map[string]any{"items": []any{"app_001", "pizza_999"}},
	})
	if !res.Failed() {
		t.Fatal("expected a failure for an unknown item id")
	}
	if !strings.Contains(res.Error, "pizza_999") {
		t.Errorf("error should name the bad id, got: %s", res.Error)
	}
}

func TestCreateOrderMissingArgument(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolCreateOrder,
		Args: map[string]any{
			"customer_name": "Dana",
			"items":         []any{"app_001"},
		},
	})
	if !res.Failed() {
		t.Fatal("expected a failure when required arguments are missing")
	}
	if !strings.Contains(res.Error, "location") {
		t.Errorf("error should name the missing argument, got: %s", res.Error)
	}
}

func TestSendToKitchenDeliversEmail(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{}
	g, ledger := newTestGateway(t, sender)
	orderID := placeOrder(t, g)

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolSendToKitchen,
		Args: map[string]any{"order_id": orderID},
	})
	if res.Failed() {
		t.Fatalf("send_to_kitchen failed: %s", res.Error)
	}
	out := res.Result.(SendToKitchenOutput)
	if !out.Success || out.SentTo != "chef@example.com" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].Subject, orderID) {
		t.Errorf("subject should carry the order id: %s", sender.sent[0].Subject)
	}

	o, ok := ledger.Get(orderID)
	if !ok || o.Status != orderx.StatusSentToKitchen {
		t.Fatalf("order status = %v, want %v", o.Status, orderx.StatusSentToKitchen)
	}
}

func TestSendToKitchenDeliveryFailureKeepsOrder(t *testing.T) {
	t.Parallel()
	sender := &recordingSender{err: errors.New("smtp down")}
	g, ledger := newTestGateway(t, sender)
	orderID := placeOrder(t, g)

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolSendToKitchen,
		Args: map[string]any{"order_id": orderID},
	})
	if !res.Failed() {
		t.Fatal("expected a structured failure when delivery fails")
	}
	out, ok := res.Result.(SendToKitchenOutput)
	if !ok || out.Success || out.OrderDetails == "" {
		t.Fatalf("failure should still carry the order details: %+v", res.Result)
	}

	o, ok := ledger.Get(orderID)
	if !ok {
		t.Fatal("order must survive a delivery failure")
	}
	if o.Status != orderx.StatusFailedNotification {
		t.Fatalf("order status = %v, want %v", o.Status, orderx.StatusFailedNotification)
	}
}

func TestSendToKitchenUnknownOrder(t *testing.T) {
	t.Parallel()
	g, _ := newTestGateway(t, &recordingSender{})

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolSendToKitchen,
		Args: map[string]any{"order_id": "ORD-99"},
	})
	if !res.Failed() {
		t.Fatal("expected a failure for an unknown order id")
	}
}

func TestSaveInExcelMarksOrderLogged(t *testing.T) {
	t.Parallel()
	g, ledger := newTestGateway(t, &recordingSender{})
	orderID := placeOrder(t, g)

	res := g.Execute(context.Background(), contractx.ToolRequest{
		Tool: ToolSaveInExcel,
		Args: map[string]any{
			"order_id":              orderID,
			"customer_name":         "Dana",
			"customer_phone_number": "555-0101",
			"customer_location":     "Table 4",
			"items":                 []any{"Bruschetta", "Fresh Lemonade"},
		},
	})
	if res.Failed() {
		t.Fatalf("save_in_excel failed: %s", res.Error)
	}
	out := res.Result.(SaveInExcelOutput)
	if !out.Success || out.File == "" {
		t.Fatalf("unexpected output: %+v", out)
	}

	o, _ := ledger.Get(orderID)
	if o.Status != orderx.StatusLogged {
		t.Fatalf("order status = %v, want %v", o.Status, orderx.StatusLogged)
	}
}

func TestNormalizeArgsSingleStringShorthand(t *testing.T) {
	t.Parallel()
	args, err := normalizeArgs(calculateTotalDescriptor, map[string]any{"items": "app_001"})
	if err != nil {
		t.Fatalf("normalizeArgs: %v", err)
	}
	got := args["items"].([]string)
	if len(got) != 1 || got[0] != "app_001" {
		t.Fatalf("unexpected list: %v", got)
	}
}
