package pricing

import "strings"

// SizeClass is the size classification of a modifier option name.
type SizeClass int

const (
	// Unclassified options pool into the generic min/max price range.
	Unclassified SizeClass = iota

	// Single marks the smaller portion of a single/double pair.
	Single

	// Double marks the larger portion of a single/double pair.
	Double
)

func (s SizeClass) String() string {
	switch s {
	case Single:
		return "single"
	case Double:
		return "double"
	default:
		return "unclassified"
	}
}

// Keyword classes used by the heuristics. These are business configuration
// frozen into code; confirm against current menu naming before extending.
var (
	// addonKeywords mark modifiers that are add-ons, not portion choices.
	addonKeywords = []string{"sauce", "extra", "addon", "topping"}

	// sizeKeywords rescue a modifier from the addon class when its name is
	// actually about portioning.
	sizeKeywords = []string{
		"size", "single", "double", "small", "large", "medium", "regular",
		"big", "quantity", "options", "bun", "pcs", "pc", "taste",
	}

	// Size-specific keywords take priority over the generic ones.
	singlePriorityKeywords = []string{"mini"}
	doublePriorityKeywords = []string{"stander", "standard"}

	singleKeywords = []string{"single", "small", "regular", "original", "spicy", "ranch", "buffalo"}
	doubleKeywords = []string{"double", "large", "big"}
)

// IsAddonModifier reports whether a modifier name belongs to the addon
// keyword class without also matching the size class. Addon modifiers are
// excluded from price derivation unless a per-product override forces them in.
func IsAddonModifier(name string) bool {
	lower := strings.ToLower(name)
	return containsAny(lower, addonKeywords) && !containsAny(lower, sizeKeywords)
}

// Classify maps an option name to its size class. Pure function, no I/O.
func Classify(optionName string) SizeClass {
	lower := strings.ToLower(optionName)

	// mini / stander beat the generic keyword lists.
	if containsAny(lower, singlePriorityKeywords) {
		return Single
	}
	if containsAny(lower, doublePriorityKeywords) {
		return Double
	}

	if containsAny(lower, singleKeywords) {
		return Single
	}
	if containsAny(lower, doubleKeywords) {
		return Double
	}
	return Unclassified
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
