package contract

// DialogueState is the waiter's position in the ordering conversation.
type DialogueState string

const (
	StateGreet        DialogueState = "GREET"
	StateViewMenu     DialogueState = "VIEW_MENU"
	StatePlaceOrder   DialogueState = "PLACE_ORDER"
	StateModifyOrder  DialogueState = "MODIFY_ORDER"
	StateProvideInfo  DialogueState = "PROVIDE_INFO"
	StateConfirmOrder DialogueState = "CONFIRM_ORDER"
	StateCancel       DialogueState = "CANCEL"
	StateFinalized    DialogueState = "FINALIZED"
)

func (s DialogueState) Valid() bool {
	switch s {
	case StateGreet, StateViewMenu, StatePlaceOrder, StateModifyOrder,
		StateProvideInfo, StateConfirmOrder, StateCancel, StateFinalized:
		return true
	}
	return false
}

// Terminal reports whether the state closes out the current order.
// A new order restarts the conversation from GREET.
func (s DialogueState) Terminal() bool {
	return s == StateCancel || s == StateFinalized
}

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAssistant Role = "assistant"
)

type Utterance struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// DraftItem is one requested menu item inside the in-progress order.
type DraftItem struct {
	ItemID         string `json:"item_id"`
	Quantity       int    `json:"quantity,omitempty"`
	SpecialRequest string `json:"special_request,omitempty"`
}

// OrderDraft is the order accumulated across turns before finalization.
// All fields stay optional until the customer confirms.
type OrderDraft struct {
	Items           []DraftItem `json:"items,omitempty"`
	SpecialRequests []string    `json:"special_requests,omitempty"`
	Name            string      `json:"name,omitempty"`
	Location        string      `json:"table_or_location,omitempty"`
	Phone           string      `json:"phone,omitempty"`
}

// ItemIDs expands the draft into a flat id list, repeating ids by quantity,
// which is the shape the order tools take.
func (d OrderDraft) ItemIDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, it := range d.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			ids = append(ids, it.ItemID)
		}
	}
	return ids
}

// TurnRequest is what the completion engine sees for one turn.
type TurnRequest struct {
	CustomerMessage     string        `json:"customer_message"`
	History             []Utterance   `json:"chat_history"`
	State               DialogueState `json:"dialogue_state"`
	Draft               OrderDraft    `json:"order_draft"`
	ConfirmationPending bool          `json:"confirmation_pending"`
	ToolNames           []string      `json:"available_tools"`
}

// AgentTurn is the structured result of one completion-engine call:
// reply text, proposed next state, order patch, tool requests, and
// whether customer confirmation is still required before finalizing.
type AgentTurn struct {
	Reply              string        `json:"response"`
	State              DialogueState `json:"state"`
	Order              OrderDraft    `json:"order"`
	ToolRequests       []ToolRequest `json:"tool_requests,omitempty"`
	ConfirmationNeeded bool          `json:"confirmation_needed"`
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (r ToolResult) Failed() bool {
	return r.Error != ""
}
