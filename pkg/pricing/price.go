package pricing

import (
	"github.com/shopspring/decimal"
)

// Kind discriminates the shape of a resolved price.
type Kind int

const (
	// KindScalar is a single price value.
	KindScalar Kind = iota

	// KindPair is a single/double price pair with labels.
	KindPair

	// KindRange is a min/max span over unclassified option prices.
	KindRange
)

// Default pair labels. Overridable per product.
const (
	DefaultSingleLabel = "Single"
	DefaultDoubleLabel = "Double"
)

// Price is a resolved display price.
type Price struct {
	Kind Kind

	// Value is set for KindScalar.
	Value decimal.Decimal

	// Single/Double and their labels are set for KindPair. Labels carry no
	// parentheses; the formatter adds them.
	Single      decimal.Decimal
	Double      decimal.Decimal
	SingleLabel string
	DoubleLabel string

	// Min/Max are set for KindRange.
	Min decimal.Decimal
	Max decimal.Decimal

	// FromModifiers reports whether the price was derived from modifier
	// options rather than the product's base price.
	FromModifiers bool
}

// Scalar builds a scalar price.
func Scalar(v decimal.Decimal, fromModifiers bool) Price {
	return Price{Kind: KindScalar, Value: v, FromModifiers: fromModifiers}
}

// Formatter renders prices as display strings with a fixed currency label.
type Formatter struct {
	Currency string
}

// Amount renders one value: zero displays as "Free", anything else as a
// 2-decimal figure with the currency suffix.
func (f Formatter) Amount(v decimal.Decimal) string {
	if v.IsZero() {
		return "Free"
	}
	return v.StringFixed(2) + " " + f.Currency
}

// Format renders a resolved price.
func (f Formatter) Format(p Price) string {
	switch p.Kind {
	case KindPair:
		return f.Amount(p.Single) + " (" + p.SingleLabel + ") / " +
			f.Amount(p.Double) + " (" + p.DoubleLabel + ")"
	case KindRange:
		return f.Amount(p.Min) + " - " + f.Amount(p.Max)
	default:
		return f.Amount(p.Value)
	}
}
