package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

// Labels are the display labels of a single/double price pair.
type Labels struct {
	Single string `json:"single"`
	Double string `json:"double"`
}

// Overrides is the injected per-product/per-category policy table the
// resolver consults. All sets are keyed by upstream ids. The zero value
// applies no overrides.
type Overrides struct {
	// ForceModifierCategories lists category ids whose products always
	// attempt modifier-derived pricing, regardless of base price.
	ForceModifierCategories map[string]bool

	// IncludeAllModifiers lists product ids whose modifiers are never
	// excluded by the addon-name heuristic.
	IncludeAllModifiers map[string]bool

	// CollapseIfEqual lists product ids that collapse to a single scalar
	// when every collected option price is equal.
	CollapseIfEqual map[string]bool

	// ForceSingle lists product ids that display only the single-class
	// price even when a pair was found.
	ForceSingle map[string]bool

	// LabelOverrides replaces the default "Single"/"Double" pair labels.
	LabelOverrides map[string]Labels

	// PCSLabels lists product ids whose pair labels are extracted from the
	// matched option names via the "N PCS" pattern.
	PCSLabels map[string]bool

	// HiddenCategories and HiddenProducts are ids excluded from the menu
	// surface. They are a display filter, not part of cache state.
	HiddenCategories map[string]bool
	HiddenProducts   map[string]bool
}

func (o Overrides) forceModifierPricing(categoryID string) bool {
	return categoryID != "" && o.ForceModifierCategories[categoryID]
}

func (o Overrides) includeAllModifiers(productID string) bool {
	return o.IncludeAllModifiers[productID]
}

func (o Overrides) collapseIfEqual(productID string) bool {
	return o.CollapseIfEqual[productID]
}

func (o Overrides) forceSingle(productID string) bool {
	return o.ForceSingle[productID]
}

func (o Overrides) labels(productID string) (Labels, bool) {
	l, ok := o.LabelOverrides[productID]
	return l, ok
}

func (o Overrides) pcsLabels(productID string) bool {
	return o.PCSLabels[productID]
}

// overridesFile is the on-disk JSON shape of the override tables.
type overridesFile struct {
	ForceModifierCategories []string          `json:"force_modifier_categories"`
	IncludeAllModifiers     []string          `json:"include_all_modifiers"`
	CollapseIfEqual         []string          `json:"collapse_if_equal"`
	ForceSingle             []string          `json:"force_single"`
	LabelOverrides          map[string]Labels `json:"label_overrides"`
	PCSLabels               []string          `json:"pcs_labels"`
	HiddenCategories        []string          `json:"hidden_categories"`
	HiddenProducts          []string          `json:"hidden_products"`
}

// LoadOverrides reads an override table from a JSON file. A missing file is
// not an error; it yields empty overrides, matching a deployment that has
// not configured any.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Overrides{}, nil
		}
		return Overrides{}, fmt.Errorf("read overrides file: %w", err)
	}

	var file overridesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return Overrides{}, fmt.Errorf("parse overrides file %s: %w", path, err)
	}

	return Overrides{
		ForceModifierCategories: idSet(file.ForceModifierCategories),
		IncludeAllModifiers:     idSet(file.IncludeAllModifiers),
		CollapseIfEqual:         idSet(file.CollapseIfEqual),
		ForceSingle:             idSet(file.ForceSingle),
		LabelOverrides:          file.LabelOverrides,
		PCSLabels:               idSet(file.PCSLabels),
		HiddenCategories:        idSet(file.HiddenCategories),
		HiddenProducts:          idSet(file.HiddenProducts),
	}, nil
}

// AddHiddenIDs merges id lists (e.g. from standalone hidden_products.json /
// hidden_categories.json files) into the override tables.
func (o *Overrides) AddHiddenIDs(categoryIDs, productIDs []string) {
	if len(categoryIDs) > 0 {
		if o.HiddenCategories == nil {
			o.HiddenCategories = make(map[string]bool, len(categoryIDs))
		}
		for _, id := range categoryIDs {
			o.HiddenCategories[id] = true
		}
	}
	if len(productIDs) > 0 {
		if o.HiddenProducts == nil {
			o.HiddenProducts = make(map[string]bool, len(productIDs))
		}
		for _, id := range productIDs {
			o.HiddenProducts[id] = true
		}
	}
}

func idSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
