package catalog

import (
	"github.com/shopspring/decimal"
)

// Entity carries the fields shared by every upstream catalog record.
// Records are fetched verbatim from upstream and never mutated locally.
type Entity struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameLocalized string `json:"name_localized,omitempty"`

	// IsActive defaults to active when the field is absent.
	IsActive *bool `json:"is_active,omitempty"`

	// DeletedAt non-nil means the record is tombstoned upstream. The raw
	// timestamp string is kept as-is; only presence matters here.
	DeletedAt *string `json:"deleted_at,omitempty"`
}

// Visible reports whether the entity should appear in any result: not
// tombstoned and not explicitly inactive.
func (e Entity) Visible() bool {
	if e.DeletedAt != nil {
		return false
	}
	return e.IsActive == nil || *e.IsActive
}

// Category is a menu category.
type Category struct {
	Entity
	Image string `json:"image,omitempty"`
}

// Product is a sellable menu item. Modifiers may arrive inlined with the
// product or as bare references whose options must be fetched separately.
type Product struct {
	Entity
	Description          string          `json:"description,omitempty"`
	DescriptionLocalized string          `json:"description_localized,omitempty"`
	Image                string          `json:"image,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Category             *Category       `json:"category,omitempty"`
	Modifiers            []Modifier      `json:"modifiers,omitempty"`
}

// Modifier is a named group of selectable options attached to a product.
type Modifier struct {
	Entity
	Options []Option `json:"options,omitempty"`
}

// Option is one selectable choice within a modifier.
type Option struct {
	Entity
	Price    *decimal.Decimal `json:"price,omitempty"`
	Branches []Branch         `json:"branches,omitempty"`
}

// Branch is a per-location price override for an option.
type Branch struct {
	IsActive  *bool            `json:"is_active,omitempty"`
	IsInStock *bool            `json:"is_in_stock,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// available reports whether the branch should contribute a price: explicitly
// active-and-in-stock semantics, with absence meaning yes.
func (b Branch) available() bool {
	if b.IsActive != nil && !*b.IsActive {
		return false
	}
	if b.IsInStock != nil && !*b.IsInStock {
		return false
	}
	return true
}

// ResolvedPrice returns the option's effective price: its direct price when
// set, otherwise the minimum price among active, in-stock branches.
func (o Option) ResolvedPrice() (decimal.Decimal, bool) {
	if o.Price != nil {
		return *o.Price, true
	}

	var min decimal.Decimal
	found := false
	for _, b := range o.Branches {
		if !b.available() || b.Price == nil {
			continue
		}
		if !found || b.Price.LessThan(min) {
			min = *b.Price
		}
		found = true
	}
	return min, found
}

// filterModifierOptions drops deleted and inactive options in place,
// preserving order.
func filterModifierOptions(m *Modifier) {
	visible := m.Options[:0]
	for _, o := range m.Options {
		if o.Visible() {
			visible = append(visible, o)
		}
	}
	m.Options = visible
}
