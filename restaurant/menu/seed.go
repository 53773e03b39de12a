package menu

// DefaultCatalog builds the house menu.
func DefaultCatalog() *Catalog {
	return MustNewCatalog([]Item{
		{
			ID:              "app_001",
			Name:            "Bruschetta",
			Category:        CategoryAppetizer,
			Description:     "Toasted bread with fresh tomatoes, basil, and garlic",
			Price:           8.99,
			Ingredients:     []string{"bread", "tomatoes", "basil", "garlic", "olive oil"},
			DietaryTags:     []string{"vegetarian"},
			Available:       true,
			PrepTimeMinutes: 10,
			PopularityScore: 8,
		},
		{
			ID:              "app_002",
			Name:            "Buffalo Wings",
			Category:        CategoryAppetizer,
			Description:     "Crispy chicken wings with spicy buffalo sauce",
			Price:           12.99,
			Ingredients:     []string{"chicken wings", "buffalo sauce", "butter", "celery"},
			DietaryTags:     []string{"spicy"},
			Available:       true,
			PrepTimeMinutes: 15,
			PopularityScore: 9,
		},
		{
			ID:              "main_001",
			Name:            "Grilled Salmon",
			Category:        CategoryMain,
			Description:     "Fresh Atlantic salmon with lemon butter sauce and vegetables",
			Price:           24.99,
			Ingredients:     []string{"salmon", "lemon", "butter", "asparagus", "potatoes"},
			DietaryTags:     []string{"gluten-free"},
			Available:       true,
			PrepTimeMinutes: 25,
			PopularityScore: 9,
		},
		{
			ID:              "main_002",
			Name:            "Chicken Alfredo Pasta",
			Category:        CategoryMain,
			Description:     "Creamy fettuccine pasta with grilled chicken",
			Price:           18.99,
			Ingredients:     []string{"fettuccine", "chicken", "cream", "parmesan", "garlic"},
			DietaryTags:     []string{},
			Available:       true,
			PrepTimeMinutes: 20,
			PopularityScore: 10,
		},
		{
			ID:              "des_001",
			Name:            "Chocolate Lava Cake",
			Category:        CategoryDessert,
			Description:     "Warm chocolate cake with molten center and vanilla ice cream",
			Price:           8.99,
			Ingredients:     []string{"chocolate", "flour", "eggs", "butter", "ice cream"},
			DietaryTags:     []string{"vegetarian"},
			Available:       true,
			PrepTimeMinutes: 12,
			PopularityScore: 10,
		},
		{
			ID:              "drink_001",
			Name:            "Fresh Lemonade",
			Category:        CategoryDrink,
			Description:     "Freshly squeezed lemonade with mint",
			Price:           4.99,
			Ingredients:     []string{"lemon", "sugar", "water", "mint"},
			DietaryTags:     []string{"vegan", "vegetarian"},
			Available:       true,
			PrepTimeMinutes: 5,
			PopularityScore: 8,
		},
	})
}
