package wallet

// CategoryOthers is the fallback key for both directions.
const CategoryOthers = "others"

// Category describes one entry of the fixed per-direction category tables.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var expenseCategories = []Category{
	{Key: "food", Label: "Food"},
	{Key: "transport", Label: "Transport"},
	{Key: "shopping", Label: "Shopping"},
	{Key: "entertainment", Label: "Entertainment"},
	{Key: "utilities", Label: "Utilities"},
	{Key: CategoryOthers, Label: "Others"},
}

var incomeCategories = []Category{
	{Key: "salary", Label: "Salary"},
	{Key: "bonus", Label: "Bonus"},
	{Key: CategoryOthers, Label: "Others"},
}

// Categories returns the category table for a direction. The slice is shared;
// callers must not mutate it.
func Categories(d Direction) []Category {
	if d == DirectionIncome {
		return incomeCategories
	}
	return expenseCategories
}

// NormalizeCategory maps a raw key onto the direction's table, falling back to
// "others" for unknown or empty keys.
func NormalizeCategory(d Direction, key string) string {
	for _, c := range Categories(d) {
		if c.Key == key {
			return key
		}
	}
	return CategoryOthers
}

// CategoryLabel returns the display label for a key, with the same fallback
// as NormalizeCategory.
func CategoryLabel(d Direction, key string) string {
	for _, c := range Categories(d) {
		if c.Key == key {
			return c.Label
		}
	}
	return "Others"
}
