// Package pricing derives display prices for menu products from their
// modifier options, with heuristic name classification and per-product
// override policies.
package pricing

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/orussy/online-menu/pkg/catalog"
)

// CatalogSource is the slice of the catalog client the resolver needs.
type CatalogSource interface {
	GetProduct(ctx context.Context, productID string, forceRefresh bool) (*catalog.Product, error)
	GetModifier(ctx context.Context, modifierID string, forceRefresh bool) (*catalog.Modifier, error)
}

// Resolver computes a human-displayable price per product. It never fails a
// product render: every internal error degrades to the base price.
type Resolver struct {
	catalog   CatalogSource
	overrides Overrides
	formatter Formatter
	logger    zerolog.Logger
}

// Result is a resolved display price for one product.
type Result struct {
	// Price is the structured resolved price.
	Price Price

	// Display is the formatted string handed to the rendering surface.
	Display string

	// FromModifiers reports whether modifier options produced the price.
	FromModifiers bool
}

// NewResolver creates a price resolver. Overrides are injected configuration,
// not computed state.
func NewResolver(src CatalogSource, overrides Overrides, currency string) *Resolver {
	return &Resolver{
		catalog:   src,
		overrides: overrides,
		formatter: Formatter{Currency: currency},
		logger:    log.With().Str("component", "pricing").Logger(),
	}
}

// Formatter returns the resolver's price formatter.
func (r *Resolver) Formatter() Formatter {
	return r.formatter
}

// Resolve determines the display price for a product.
func (r *Resolver) Resolve(ctx context.Context, product catalog.Product) Result {
	price := r.resolve(ctx, product)
	return Result{
		Price:         price,
		Display:       r.formatter.Format(price),
		FromModifiers: price.FromModifiers,
	}
}

func (r *Resolver) resolve(ctx context.Context, product catalog.Product) Price {
	base := Scalar(product.Price, false)

	categoryID := ""
	if product.Category != nil {
		categoryID = product.Category.ID
	}

	attempt := product.Price.IsZero() ||
		len(product.Modifiers) > 0 ||
		r.overrides.forceModifierPricing(categoryID)
	if !attempt {
		return base
	}

	modifiers := product.Modifiers
	if len(modifiers) == 0 {
		details, err := r.catalog.GetProduct(ctx, product.ID, false)
		if err != nil {
			r.logger.Warn().Err(err).
				Str("product_id", product.ID).
				Msg("Could not load product details for pricing")
			return base
		}
		modifiers = details.Modifiers
	}
	if len(modifiers) == 0 {
		return base
	}

	prices := r.collect(ctx, product, modifiers)

	// Exactly two unclassified prices and nothing classified: treat the
	// sorted pair as single/double.
	if !prices.single.found && !prices.double.found && len(prices.pool) == 2 {
		lo, hi := prices.pool[0], prices.pool[1]
		if hi.LessThan(lo) {
			lo, hi = hi, lo
		}
		prices.single = candidate{price: lo, found: true}
		prices.double = candidate{price: hi, found: true}
		prices.pool = nil
	}

	if r.overrides.collapseIfEqual(product.ID) {
		if v, ok := prices.allEqual(); ok {
			return Scalar(v, true)
		}
	}

	switch {
	case prices.single.found && prices.double.found:
		if r.overrides.forceSingle(product.ID) {
			return Scalar(prices.single.price, true)
		}
		singleLabel, doubleLabel := r.pairLabels(product.ID, prices)
		return Price{
			Kind:          KindPair,
			Single:        prices.single.price,
			Double:        prices.double.price,
			SingleLabel:   singleLabel,
			DoubleLabel:   doubleLabel,
			FromModifiers: true,
		}

	case prices.single.found:
		return Scalar(prices.single.price, true)

	case prices.double.found:
		return Scalar(prices.double.price, true)

	case len(prices.pool) > 0:
		min, max := prices.pool[0], prices.pool[0]
		for _, v := range prices.pool[1:] {
			if v.LessThan(min) {
				min = v
			}
			if v.GreaterThan(max) {
				max = v
			}
		}
		if min.Equal(max) {
			return Scalar(min, true)
		}
		return Price{Kind: KindRange, Min: min, Max: max, FromModifiers: true}
	}

	return base
}

// candidate is the best (lowest) priced option seen for one size class,
// keeping the option name for label extraction.
type candidate struct {
	price decimal.Decimal
	name  string
	found bool
}

func (c *candidate) offer(price decimal.Decimal, name string) {
	if !c.found || price.LessThan(c.price) {
		c.price = price
		c.name = name
		c.found = true
	}
}

type collected struct {
	single candidate
	double candidate
	pool   []decimal.Decimal
	all    []decimal.Decimal
}

// allEqual reports whether every collected price is the same value.
func (c collected) allEqual() (decimal.Decimal, bool) {
	if len(c.all) == 0 {
		return decimal.Decimal{}, false
	}
	first := c.all[0]
	for _, v := range c.all[1:] {
		if !v.Equal(first) {
			return decimal.Decimal{}, false
		}
	}
	return first, true
}

// collect walks the product's modifiers and gathers classified option
// prices. A failing modifier fetch contributes nothing and is skipped.
func (r *Resolver) collect(ctx context.Context, product catalog.Product, modifiers []catalog.Modifier) collected {
	includeAll := r.overrides.includeAllModifiers(product.ID)

	var prices collected
	for _, mod := range modifiers {
		if !includeAll && IsAddonModifier(mod.Name) {
			continue
		}

		options := mod.Options
		if len(options) == 0 && mod.ID != "" {
			details, err := r.catalog.GetModifier(ctx, mod.ID, false)
			if err != nil {
				r.logger.Warn().Err(err).
					Str("product_id", product.ID).
					Str("modifier_id", mod.ID).
					Msg("Skipping modifier after fetch failure")
				continue
			}
			options = details.Options
		}

		for _, opt := range options {
			if !opt.Visible() {
				continue
			}
			price, ok := opt.ResolvedPrice()
			if !ok || price.Sign() <= 0 {
				continue
			}

			prices.all = append(prices.all, price)
			switch Classify(opt.Name) {
			case Single:
				prices.single.offer(price, opt.Name)
			case Double:
				prices.double.offer(price, opt.Name)
			default:
				prices.pool = append(prices.pool, price)
			}
		}
	}
	return prices
}

var pcsPattern = regexp.MustCompile(`(?i)(\d+)\s*pcs`)

// pairLabels picks the display labels for a single/double pair: per-product
// override first, then "N PCS" extraction from the matched option names,
// then the defaults.
func (r *Resolver) pairLabels(productID string, prices collected) (string, string) {
	if labels, ok := r.overrides.labels(productID); ok {
		single, double := labels.Single, labels.Double
		if single == "" {
			single = DefaultSingleLabel
		}
		if double == "" {
			double = DefaultDoubleLabel
		}
		return single, double
	}

	if r.overrides.pcsLabels(productID) {
		single, double := DefaultSingleLabel, DefaultDoubleLabel
		if label, ok := pcsLabel(prices.single.name); ok {
			single = label
		}
		if label, ok := pcsLabel(prices.double.name); ok {
			double = label
		}
		return single, double
	}

	return DefaultSingleLabel, DefaultDoubleLabel
}

func pcsLabel(optionName string) (string, bool) {
	m := pcsPattern.FindStringSubmatch(optionName)
	if m == nil {
		return "", false
	}
	return m[1] + " PCS", true
}
