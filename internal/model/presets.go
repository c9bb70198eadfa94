package model

// CategoryPreset is a category template offered during onboarding.
type CategoryPreset struct {
	Name       string
	Percentage float64
	Icon       string
	Color      string
}

// DefaultCategories is the simple three-bucket split.
var DefaultCategories = []CategoryPreset{
	{Name: "Essenziali", Percentage: 50, Icon: "🏠", Color: "#ff6b6b"},
	{Name: "Lifestyle", Percentage: 30, Icon: "🎯", Color: "#4ecdc4"},
	{Name: "Risparmi", Percentage: 20, Icon: "💰", Color: "#45b7d1"},
}

// ExtendedCategories is the detailed split.
var ExtendedCategories = []CategoryPreset{
	{Name: "Alimentari", Percentage: 25, Icon: "🛒", Color: "#ff6b6b"},
	{Name: "Trasporti", Percentage: 15, Icon: "🚗", Color: "#4ecdc4"},
	{Name: "Casa", Percentage: 30, Icon: "🏠", Color: "#45b7d1"},
	{Name: "Svago", Percentage: 10, Icon: "🎮", Color: "#96ceb4"},
	{Name: "Salute", Percentage: 10, Icon: "💊", Color: "#feca57"},
	{Name: "Altro", Percentage: 10, Icon: "📦", Color: "#ff9ff3"},
}

// BudgetSuggestions are the quick-pick monthly totals shown in setup.
var BudgetSuggestions = []float64{1500, 2500, 4000}
