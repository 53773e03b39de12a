package menu

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryAppetizer Category = "appetizer"
	CategoryMain      Category = "main"
	CategoryDessert   Category = "dessert"
	CategoryDrink     Category = "drink"

	// CategoryAll is the wildcard accepted by catalog queries.
	CategoryAll Category = "all"
)

// Item is one orderable dish or drink. Items are immutable after the
// catalog is built.
type Item struct {
	ID              string   `json:"item_id"`
	Name            string   `json:"name"`
	Category        Category `json:"category"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Ingredients     []string `json:"ingredients"`
	DietaryTags     []string `json:"dietary_tags"`
	Available       bool     `json:"available"`
	PrepTimeMinutes int      `json:"preparation_time"`
	PopularityScore int      `json:"popularity_score"`
}

// Catalog is a static, queryable collection of menu items. Catalog order is
// preserved by every query.
type Catalog struct {
	items []Item
	index map[string]int
}

func NewCatalog(items []Item) (*Catalog, error) {
	index := make(map[string]int, len(items))
	for i, it := range items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return nil, fmt.Errorf("menu item at position %d has empty id", i)
		}
		if _, exists := index[id]; exists {
			return nil, fmt.Errorf("duplicate menu item id %q", id)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("menu item %q has negative price", id)
		}
		if it.PrepTimeMinutes <= 0 {
			return nil, fmt.Errorf("menu item %q has non-positive preparation time", id)
		}
		index[id] = i
	}
	return &Catalog{
		items: append([]Item(nil), items...),
		index: index,
	}, nil
}

func MustNewCatalog(items []Item) *Catalog {
	c, err := NewCatalog(items)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Get(id string) (Item, bool) {
	i, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Items() []Item {
	return append([]Item(nil), c.items...)
}

// ByCategory returns the items whose category matches, catalog order
// preserved. The match is case-insensitive and "all" is a wildcard. An
// empty result means no items exist for that category; callers turn that
// into an explicit message rather than a silent empty list.
func (c *Catalog) ByCategory(category string) []Item {
	cat := Category(strings.ToLower(strings.TrimSpace(category)))
	if cat == "" || cat == CategoryAll {
		return c.Items()
	}
	var out []Item
	for _, it := range c.items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}
