package models

// FilterAll selects every category.
const FilterAll = "all"

// Categories is the fixed list offered when submitting a feature.
// Records may still carry categories outside this list.
var Categories = []string{
	"Features",
	"UI/UX",
	"Integration",
	"Productivity",
	"Platform",
	"Security",
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}
