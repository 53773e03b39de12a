package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tavolahq/waiter/agent/contract"
)

// HistoryWindow is how many trailing utterances the completion engine sees.
const HistoryWindow = 10

// ConversationState is the persistent source-of-truth for one customer
// conversation: dialogue state, running history, the in-progress order,
// and whether confirmation is still pending.
type ConversationState struct {
	SessionID string `json:"session_id"`

	State   contractx.DialogueState `json:"state"`
	History []contractx.Utterance   `json:"history,omitempty"`
	Draft   contractx.OrderDraft    `json:"draft"`

	ConfirmationPending bool   `json:"confirmation_pending"`
	LastOrderID         string `json:"last_order_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNilState     = errors.New("conversation state is nil")
	ErrEmptySession = errors.New("session id is empty")
	ErrInvalidState = errors.New("invalid dialogue state")
)

// transitions defines every allowed dialogue move. Anything absent here is
// rejected and the conversation stays where it was.
var transitions = map[contractx.DialogueState][]contractx.DialogueState{
	contractx.StateGreet: {
		contractx.StateGreet, contractx.StateViewMenu, contractx.StatePlaceOrder,
		contractx.StateProvideInfo, contractx.StateCancel,
	},
	contractx.StateViewMenu: {
		contractx.StateViewMenu, contractx.StateGreet, contractx.StatePlaceOrder,
		contractx.StateCancel,
	},
	contractx.StatePlaceOrder: {
		contractx.StatePlaceOrder, contractx.StateViewMenu, contractx.StateModifyOrder,
		contractx.StateProvideInfo, contractx.StateConfirmOrder, contractx.StateCancel,
	},
	contractx.StateModifyOrder: {
		contractx.StateModifyOrder, contractx.StatePlaceOrder, contractx.StateViewMenu,
		contractx.StateProvideInfo, contractx.StateConfirmOrder, contractx.StateCancel,
	},
	contractx.StateProvideInfo: {
		contractx.StateProvideInfo, contractx.StatePlaceOrder, contractx.StateModifyOrder,
		contractx.StateConfirmOrder, contractx.StateCancel,
	},
	contractx.StateConfirmOrder: {
		contractx.StateConfirmOrder, contractx.StatePlaceOrder, contractx.StateModifyOrder,
		contractx.StateProvideInfo, contractx.StateFinalized, contractx.StateCancel,
	},
	contractx.StateFinalized: {
		contractx.StateGreet, contractx.StateViewMenu, contractx.StatePlaceOrder,
	},
	contractx.StateCancel: {
		contractx.StateGreet, contractx.StateViewMenu, contractx.StatePlaceOrder,
	},
}

func CanTransition(from, to contractx.DialogueState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NewConversationState(sessionID string, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		State:     contractx.StateGreet,
		UpdatedAt: now.UTC(),
	}
}

func (s *ConversationState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *ConversationState) AppendUtterance(role contractx.Role, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.History = append(s.History, contractx.Utterance{Role: role, Text: text})
}

// Window returns the trailing HistoryWindow utterances, oldest first.
func (s *ConversationState) Window() []contractx.Utterance {
	if len(s.History) <= HistoryWindow {
		return append([]contractx.Utterance(nil), s.History...)
	}
	return append([]contractx.Utterance(nil), s.History[len(s.History)-HistoryWindow:]...)
}

// MissingCustomerFields lists the required customer fields the draft still
// lacks. Email is optional and never reported.
func (s *ConversationState) MissingCustomerFields() []string {
	var missing []string
	if strings.TrimSpace(s.Draft.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(s.Draft.Location) == "" {
		missing = append(missing, "table or location")
	}
	if strings.TrimSpace(s.Draft.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// ApplyTurn merges one extracted turn into the conversation: reset after a
// terminal state, merge the order draft, then resolve the proposed state
// against the transition table and the finalize preconditions. Returned
// advisories describe anything that was ignored or demoted.
func (s *ConversationState) ApplyTurn(turn contractx.AgentTurn, now time.Time) []string {
	var advisories []string

	if s.State.Terminal() {
		// previous order is closed; this turn starts a fresh one
		s.Draft = contractx.OrderDraft{}
		s.ConfirmationPending = false
		s.State = contractx.StateGreet
	}

	next := turn.State
	switch {
	case !next.Valid():
		advisories = append(advisories, fmt.Sprintf("ignored unknown dialogue state %q", string(next)))
		next = s.State
	case !CanTransition(s.State, next):
		advisories = append(advisories, fmt.Sprintf("ignored dialogue move %s -> %s", s.State, next))
		next = s.State
	}

	if next == contractx.StateCancel {
		s.Draft = contractx.OrderDraft{}
		s.ConfirmationPending = false
		s.State = contractx.StateCancel
		s.Touch(now)
		return advisories
	}

	mergeDraft(&s.Draft, turn.Order, next == contractx.StateModifyOrder)
	s.ConfirmationPending = turn.ConfirmationNeeded

	if next == contractx.StateFinalized {
		switch {
		case turn.ConfirmationNeeded:
			advisories = append(advisories, "finalize deferred: confirmation still pending")
			next = contractx.StateConfirmOrder
		case len(s.Draft.Items) == 0:
			advisories = append(advisories, "finalize deferred: no items in the order")
			next = contractx.StatePlaceOrder
		case len(s.MissingCustomerFields()) > 0:
			advisories = append(advisories,
				fmt.Sprintf("finalize deferred: missing %s", strings.Join(s.MissingCustomerFields(), ", ")))
			next = contractx.StateProvideInfo
		}
	}

	s.State = next
	s.Touch(now)
	return advisories
}

// mergeDraft applies the turn's order patch. Items are appended/unioned
// unless the turn carried an explicit modification intent, in which case the
// patch replaces the item list. Scalars are overwritten only by non-empty
// values so earlier answers are never silently dropped.
func mergeDraft(dst *contractx.OrderDraft, patch contractx.OrderDraft, modify bool) {
	if modify && patch.Items != nil {
		dst.Items = nil
	}
	for _, it := range patch.Items {
		if strings.TrimSpace(it.ItemID) == "" {
			continue
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		merged := false
		for i := range dst.Items {
			if dst.Items[i].ItemID == it.ItemID {
				dst.Items[i].Quantity = it.Quantity
				if strings.TrimSpace(it.SpecialRequest) != "" {
					dst.Items[i].SpecialRequest = it.SpecialRequest
				}
				merged = true
				break
			}
		}
		if !merged {
			dst.Items = append(dst.Items, it)
		}
	}

	for _, req := range patch.SpecialRequests {
		req = strings.TrimSpace(req)
		if req == "" || containsString(dst.SpecialRequests, req) {
			continue
		}
		dst.SpecialRequests = append(dst.SpecialRequests, req)
	}

	if v := strings.TrimSpace(patch.Name); v != "" {
		dst.Name = v
	}
	if v := strings.TrimSpace(patch.Location); v != "" {
		dst.Location = v
	}
	if v := strings.TrimSpace(patch.Phone); v != "" {
		dst.Phone = v
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (s *ConversationState) Validate() error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrEmptySession
	}
	if !s.State.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, string(s.State))
	}
	for _, it := range s.Draft.Items {
		if strings.TrimSpace(it.ItemID) == "" {
			return fmt.Errorf("draft item has empty id")
		}
		if it.Quantity < 0 {
			return fmt.Errorf("draft item %s has negative quantity", it.ItemID)
		}
	}
	return nil
}
