package news

import "strings"

// Category is one of the fixed sections articles are filed under.
type Category string

const (
	CategoryAI       Category = "AI"
	CategoryTech     Category = "Tech"
	CategoryBusiness Category = "Business"
	CategoryScience  Category = "Science"
)

// Categories lists every category in rotation order.
var Categories = []Category{CategoryAI, CategoryTech, CategoryBusiness, CategoryScience}

var categoryDescriptions = map[Category]string{
	CategoryAI:       "Explore the latest developments in artificial intelligence, machine learning, and neural networks.",
	CategoryTech:     "Stay updated with cutting-edge technology news, gadgets, and digital innovations.",
	CategoryBusiness: "Insights into the business world, startups, markets, and entrepreneurship.",
	CategoryScience:  "Discover breakthrough research, scientific discoveries, and innovations shaping our future.",
}

// ParseCategory reports whether value names a known category. Matching is exact.
func ParseCategory(value string) (Category, bool) {
	candidate := Category(strings.TrimSpace(value))
	if _, ok := categoryDescriptions[candidate]; ok {
		return candidate, true
	}
	return "", false
}

// NormalizeCategory returns the matching category or AI for anything else.
func NormalizeCategory(value string) Category {
	if category, ok := ParseCategory(value); ok {
		return category
	}
	return CategoryAI
}

// Description returns the blurb shown on the category page.
func (c Category) Description() string {
	return categoryDescriptions[c]
}

func (c Category) String() string {
	return string(c)
}
