package state

import (
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/tavolahq/waiter/agent/contract"
)

var testNow = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func TestNewConversationStateStartsAtGreet(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)

	if st.State != contractx.StateGreet {
		t.Errorf("state = %q, want GREET", st.State)
	}
	if st.ConfirmationPending {
		t.Error("new conversation must not have a pending confirmation")
	}
	if err := st.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()
	cases := []struct {
		from, to contractx.DialogueState
		want     bool
	}{
		{contractx.StateGreet, contractx.StateViewMenu, true},
		{contractx.StateGreet, contractx.StateFinalized, false},
		{contractx.StateConfirmOrder, contractx.StateFinalized, true},
		{contractx.StateViewMenu, contractx.StateModifyOrder, false},
		{contractx.StatePlaceOrder, contractx.StateConfirmOrder, true},
		{contractx.StateCancel, contractx.StateGreet, true},
		{contractx.StateFinalized, contractx.StatePlaceOrder, true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s->%s", tc.from, tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestWindowKeepsTrailingUtterances(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	for i := 0; i < HistoryWindow+5; i++ {
		st.AppendUtterance(contractx.RoleCustomer, fmt.Sprintf("message %d", i))
	}

	window := st.Window()
	if len(window) != HistoryWindow {
		t.Fatalf("window size = %d, want %d", len(window), HistoryWindow)
	}
	if window[len(window)-1].Text != fmt.Sprintf("message %d", HistoryWindow+4) {
		t.Errorf("window should end with the newest utterance, got %q", window[len(window)-1].Text)
	}
	if len(st.History) != HistoryWindow+5 {
		t.Errorf("full history must be retained, got %d", len(st.History))
	}
}

func TestAppendUtteranceSkipsBlank(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	st.AppendUtterance(contractx.RoleCustomer, "   ")
	if len(st.History) != 0 {
		t.Error("blank utterances must not be recorded")
	}
}

func TestApplyTurnIllegalMoveStays(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)

	advisories := st.ApplyTurn(contractx.AgentTurn{
		Reply: "done!",
		State: contractx.StateFinalized,
	}, testNow)

	if st.State != contractx.StateGreet {
		t.Errorf("state = %q, illegal move must not apply", st.State)
	}
	if len(advisories) != 1 || !strings.Contains(advisories[0], "GREET -> FINALIZED") {
		t.Errorf("unexpected advisories: %v", advisories)
	}
}

func TestApplyTurnUnknownStateStays(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)

	advisories := st.ApplyTurn(contractx.AgentTurn{
		Reply: "hm",
		State: contractx.DialogueState("DREAMING"),
	}, testNow)

	if st.State != contractx.StateGreet {
		t.Errorf("state = %q, want GREET", st.State)
	}
	if len(advisories) != 1 {
		t.Errorf("unexpected advisories: %v", advisories)
	}
}

func TestApplyTurnCancelDiscardsDraft(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	st.State = contractx.StatePlaceOrder
	st.Draft = contractx.OrderDraft{
		Items: []contractx.DraftItem{{ItemID: "app_001", Quantity: 1}},
		Name:  "Dana",
	}
	st.ConfirmationPending = true

	st.ApplyTurn(contractx.AgentTurn{Reply: "cancelled", State: contractx.StateCancel}, testNow)

	if st.State != contractx.StateCancel {
		t.Errorf("state = %q, want CANCEL", st.State)
	}
	if len(st.Draft.Items) != 0 || st.Draft.Name != "" {
		t.Errorf("draft must be discarded on cancel, got %+v", st.Draft)
	}
	if st.ConfirmationPending {
		t.Error("cancel must clear the pending confirmation")
	}
}

func TestApplyTurnTerminalStateResets(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	st.State = contractx.StateFinalized
	st.Draft = contractx.OrderDraft{Items: []contractx.DraftItem{{ItemID: "app_001"}}, Name: "Dana"}

	st.ApplyTurn(contractx.AgentTurn{
		Reply: "Welcome back!",
		State: contractx.StateViewMenu,
	}, testNow)

	if st.State != contractx.StateViewMenu {
		t.Errorf("state = %q, want VIEW_MENU", st.State)
	}
	if len(st.Draft.Items) != 0 {
		t.Error("a finished order must not leak into the next conversation")
	}
}

func TestApplyTurnFinalizeGating(t *testing.T) {
	t.Parallel()

	base := func() *ConversationState {
		st := NewConversationState("sess-1", testNow)
		st.State = contractx.StateConfirmOrder
		st.Draft = contractx.OrderDraft{
			Items: []contractx.DraftItem{{ItemID: "app_001", Quantity: 1}},
			Name:  "Dana", Location: "Table 4", Phone: "555-0101",
		}
		return st
	}

	t.Run("confirmation still needed", func(t *testing.T) {
		st := base()
		st.ApplyTurn(contractx.AgentTurn{
			Reply: "confirm?", State: contractx.StateFinalized, Order: st.Draft,
			ConfirmationNeeded: true,
		}, testNow)
		if st.State != contractx.StateConfirmOrder {
			t.Errorf("state = %q, want CONFIRM_ORDER", st.State)
		}
	})

	t.Run("no items", func(t *testing.T) {
		st := base()
		st.Draft.Items = nil
		st.ApplyTurn(contractx.AgentTurn{
			Reply: "placing!", State: contractx.StateFinalized,
		}, testNow)
		if st.State != contractx.StatePlaceOrder {
			t.Errorf("state = %q, want PLACE_ORDER", st.State)
		}
	})

	t.Run("missing customer fields", func(t *testing.T) {
		st := base()
		st.Draft.Phone = ""
		advisories := st.ApplyTurn(contractx.AgentTurn{
			Reply: "placing!", State: contractx.StateFinalized, Order: contractx.OrderDraft{},
		}, testNow)
		if st.State != contractx.StateProvideInfo {
			t.Errorf("state = %q, want PROVIDE_INFO", st.State)
		}
		found := false
		for _, adv := range advisories {
			if strings.Contains(adv, "phone") {
				found = true
			}
		}
		if !found {
			t.Errorf("advisory should name the missing field, got %v", advisories)
		}
	})

	t.Run("all preconditions met", func(t *testing.T) {
		st := base()
		advisories := st.ApplyTurn(contractx.AgentTurn{
			Reply: "placing!", State: contractx.StateFinalized, Order: st.Draft,
		}, testNow)
		if st.State != contractx.StateFinalized {
			t.Errorf("state = %q, want FINALIZED", st.State)
		}
		if len(advisories) != 0 {
			t.Errorf("unexpected advisories: %v", advisories)
		}
	})
}

func TestMergeDraftAccumulates(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	st.State = contractx.StatePlaceOrder

	st.ApplyTurn(contractx.AgentTurn{
		Reply: "added", State: contractx.StatePlaceOrder,
		Order: contractx.OrderDraft{
			Items: []contractx.DraftItem{{ItemID: "app_001", Quantity: 1}},
			Name:  "Dana",
		},
	}, testNow)
	st.ApplyTurn(contractx.AgentTurn{
		Reply: "added more", State: contractx.StatePlaceOrder,
		Order: contractx.OrderDraft{
			Items: []contractx.DraftItem{{ItemID: "drink_001", Quantity: 2}},
			Phone: "555-0101",
		},
	}, testNow)

	if len(st.Draft.Items) != 2 {
		t.Fatalf("items = %+v, want both kept", st.Draft.Items)
	}
	if st.Draft.Name != "Dana" || st.Draft.Phone != "555-0101" {
		t.Errorf("scalars should accumulate, got %+v", st.Draft)
	}
}

func TestMergeDraftModifyReplacesItems(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)
	st.State = contractx.StatePlaceOrder
	st.Draft = contractx.OrderDraft{
		Items: []contractx.DraftItem{
			{ItemID: "app_001", Quantity: 1},
			{ItemID: "drink_001", Quantity: 2},
		},
		Name: "Dana",
	}

	st.ApplyTurn(contractx.AgentTurn{
		Reply: "updated", State: contractx.StateModifyOrder,
		Order: contractx.OrderDraft{
			Items: []contractx.DraftItem{{ItemID: "main_001", Quantity: 1}},
		},
	}, testNow)

	if len(st.Draft.Items) != 1 || st.Draft.Items[0].ItemID != "main_001" {
		t.Errorf("modification should replace the item list, got %+v", st.Draft.Items)
	}
	if st.Draft.Name != "Dana" {
		t.Error("customer details must survive a modification")
	}
}

func TestMissingCustomerFields(t *testing.T) {
	t.Parallel()
	st := NewConversationState("sess-1", testNow)

	missing := st.MissingCustomerFields()
	if len(missing) != 3 {
		t.Fatalf("missing = %v, want all three", missing)
	}

	st.Draft.Name = "Dana"
	st.Draft.Location = "Table 4"
	st.Draft.Phone = "555-0101"
	if got := st.MissingCustomerFields(); len(got) != 0 {
		t.Errorf("missing = %v, want none", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	var nilState *ConversationState
	if err := nilState.Validate(); err != ErrNilState {
		t.Errorf("nil state: got %v", err)
	}

	st := NewConversationState("  ", testNow)
	st.SessionID = ""
	if err := st.Validate(); err != ErrEmptySession {
		t.Errorf("empty session: got %v", err)
	}

	st = NewConversationState("sess-1", testNow)
	st.State = contractx.DialogueState("NAPPING")
	if err := st.Validate(); err == nil {
		t.Error("invalid state must fail validation")
	}
}
