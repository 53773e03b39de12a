package tool

import (
	"fmt"
	"strings"
)

// ParamType is the wire type accepted for a tool argument.
type ParamType string

const (
	ParamString     ParamType = "string"
	ParamStringList ParamType = "string_list"
)

// Param declares one argument of a tool. Optional params fall back to
// Default (strings) or an empty list when the model omits them.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
	Default  string
	Help     string
}

// Descriptor is the static declaration of a tool: its name and the
// arguments it accepts. Anything outside the declared set is rejected
// before the handler runs.
type Descriptor struct {
	Name   string
	Help   string
	Params []Param
}

var fetchMenuDescriptor = Descriptor{
	Name: ToolFetchMenu,
	Help: "List menu items, optionally filtered by category.",
	Params: []Param{
		{Name: "category", Type: ParamString, Default: "all", Help: "appetizer, main, dessert, drink, or all"},
	},
}

var calculateTotalDescriptor = Descriptor{
	Name: ToolCalculateTotal,
	Help: "Preview subtotal, tax and total for a list of item ids.",
	Params: []Param{
		{Name: "items", Type: ParamStringList, Required: true, Help: "menu item ids, one entry per unit"},
	},
}

var createOrderDescriptor = Descriptor{
	Name: ToolCreateOrder,
	Help: "Place an order on the ledger and assign it an order id.",
	Params: []Param{
		{Name: "customer_name", Type: ParamString, Required: true},
		{Name: "location", Type: ParamString, Required: true},
		{Name: "phone", Type: ParamString, Required: true},
		{Name: "items", Type: ParamStringList, Required: true},
	},
}

var sendToKitchenDescriptor = Descriptor{
	Name: ToolSendToKitchen,
	Help: "Email the kitchen about a placed order.",
	Params: []Param{
		{Name: "order_id", Type: ParamString, Required: true},
		{Name: "chef_email", Type: ParamString, Help: "defaults to the configured kitchen address"},
	},
}

var saveInExcelDescriptor = Descriptor{
	Name: ToolSaveInExcel,
	Help: "Append a placed order to the order workbook.",
	Params: []Param{
		{Name: "order_id", Type: ParamString, Required: true},
		{Name: "customer_name", Type: ParamString, Required: true},
		{Name: "customer_phone_number", Type: ParamString, Required: true},
		{Name: "customer_location", Type: ParamString, Required: true},
		{Name: "items", Type: ParamStringList, Required: true},
	},
}

// normalizeArgs checks a raw argument map against the descriptor and returns
// a map where every declared param is present with its canonical Go type.
// Undeclared keys are dropped rather than rejected; the model tends to pad
// calls with extras and that should not sink the turn.
func normalizeArgs(desc Descriptor, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(desc.Params))
	for _, p := range desc.Params {
		v, present := raw[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, fmt.Errorf("tool %s: missing required argument %q", desc.Name, p.Name)
			}
			switch p.Type {
			case ParamStringList:
				out[p.Name] = []string{}
			default:
				out[p.Name] = p.Default
			}
			continue
		}

		switch p.Type {
		case ParamString:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("tool %s: argument %q must be a string", desc.Name, p.Name)
			}
			s = strings.TrimSpace(s)
			if s == "" && p.Required {
				return nil, fmt.Errorf("tool %s: argument %q must not be empty", desc.Name, p.Name)
			}
			if s == "" {
				s = p.Default
			}
			out[p.Name] = s

		case ParamStringList:
			list, err := toStringList(v)
			if err != nil {
				return nil, fmt.Errorf("tool %s: argument %q %v", desc.Name, p.Name, err)
			}
			if len(list) == 0 && p.Required {
				return nil, fmt.Errorf("tool %s: argument %q must not be empty", desc.Name, p.Name)
			}
			out[p.Name] = list

		default:
			return nil, fmt.Errorf("tool %s: unsupported parameter type %q", desc.Name, p.Type)
		}
	}
	return out, nil
}

// toStringList accepts []string directly and []any of strings, which is what
// a decoded JSON payload carries.
func toStringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("must contain only strings")
			}
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case string:
		// single item shorthand
		s := strings.TrimSpace(t)
		if s == "" {
			return []string{}, nil
		}
		return []string{s}, nil
	default:
		return nil, fmt.Errorf("must be a list of strings")
	}
}
