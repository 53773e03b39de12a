package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()
	_, err := NewCatalog([]Item{
		{ID: "app_001", Name: "Bruschetta", Category: CategoryAppetizer, Price: 8.99, PrepTimeMinutes: 10},
		{ID: "app_001", Name: "Wings", Category: CategoryAppetizer, Price: 12.99, PrepTimeMinutes: 15},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app_001")
}

func TestNewCatalogRejectsNegativePrice(t *testing.T) {
	t.Parallel()
	_, err := NewCatalog([]Item{
		{ID: "app_001", Name: "Bruschetta", Category: CategoryAppetizer, Price: -1, PrepTimeMinutes: 10},
	})
	require.Error(t, err)
}

func TestDefaultCatalogContents(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	items := c.Items()
	require.Len(t, items, 6)

	salmon, ok := c.Get("main_001")
	require.True(t, ok)
	assert.Equal(t, "Grilled Salmon", salmon.Name)
	assert.Equal(t, 24.99, salmon.Price)
	assert.True(t, salmon.Available)
}

func TestByCategory(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	mains := c.ByCategory("main")
	require.Len(t, mains, 2)
	assert.Equal(t, "main_001", mains[0].ID)
	assert.Equal(t, "main_002", mains[1].ID)

	// case-insensitive
	assert.Len(t, c.ByCategory("DESSERT"), 1)

	// the wildcard returns everything in catalog order
	all := c.ByCategory("all")
	require.Len(t, all, 6)
	assert.Equal(t, "app_001", all[0].ID)

	assert.Empty(t, c.ByCategory("sides"))
}

func TestItemsReturnsACopy(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	items := c.Items()
	items[0].Price = 999

	fresh, ok := c.Get(items[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, 999.0, fresh.Price)
}
