// Package menu composes the catalog client and the price resolver into
// render-ready category and product listings.
package menu

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/orussy/online-menu/pkg/catalog"
	"github.com/orussy/online-menu/pkg/pricing"
)

// ErrCategoryNotFound is returned when the requested category does not
// exist, is hidden, or is not visible.
var ErrCategoryNotFound = errors.New("category not found")

const defaultPricingWorkers = 5

// Catalog is the slice of the catalog client the menu service needs.
type Catalog interface {
	ListCategories(ctx context.Context, forceRefresh bool) ([]catalog.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID string, forceRefresh bool) ([]catalog.Product, error)
}

// PriceResolver resolves the display price of one product.
type PriceResolver interface {
	Resolve(ctx context.Context, product catalog.Product) pricing.Result
}

// Service produces the data the rendering surface consumes.
type Service struct {
	catalog   Catalog
	resolver  PriceResolver
	overrides pricing.Overrides
	workers   int
	logger    zerolog.Logger
}

// NewService creates a menu service. The overrides supply the hidden
// category/product id sets.
func NewService(cat Catalog, resolver PriceResolver, overrides pricing.Overrides) *Service {
	return &Service{
		catalog:   cat,
		resolver:  resolver,
		overrides: overrides,
		workers:   defaultPricingWorkers,
		logger:    log.With().Str("component", "menu").Logger(),
	}
}

// CategoryView is one category as rendered on the menu.
type CategoryView struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameLocalized string `json:"name_localized,omitempty"`
	Image         string `json:"image,omitempty"`
}

// ProductView is one product as rendered on the menu.
type ProductView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Image              string `json:"image,omitempty"`
	DisplayPrice       string `json:"display_price"`
	HasModifierPricing bool   `json:"has_modifier_pricing"`
}

// Categories returns the visible categories minus the hidden set.
func (s *Service) Categories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.catalog.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, 0, len(categories))
	for _, cat := range categories {
		if s.overrides.HiddenCategories[cat.ID] {
			continue
		}
		views = append(views, CategoryView{
			ID:            cat.ID,
			Name:          cat.Name,
			NameLocalized: cat.NameLocalized,
			Image:         cat.Image,
		})
	}
	return views, nil
}

// Products returns a category and its visible products with resolved display
// prices. Prices for the page are resolved concurrently; one product's
// pricing failure never fails the page.
func (s *Service) Products(ctx context.Context, categoryID string) (*CategoryView, []ProductView, error) {
	categories, err := s.catalog.ListCategories(ctx, false)
	if err != nil {
		return nil, nil, err
	}

	var current *CategoryView
	for _, cat := range categories {
		if cat.ID == categoryID && !s.overrides.HiddenCategories[cat.ID] {
			current = &CategoryView{
				ID:            cat.ID,
				Name:          cat.Name,
				NameLocalized: cat.NameLocalized,
				Image:         cat.Image,
			}
			break
		}
	}
	if current == nil {
		return nil, nil, ErrCategoryNotFound
	}

	products, err := s.catalog.ListProductsByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, nil, err
	}

	visible := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if s.overrides.HiddenProducts[p.ID] {
			continue
		}
		visible = append(visible, p)
	}

	return current, s.priceProducts(ctx, visible), nil
}

// priceProducts resolves display prices across a worker pool. Each worker
// writes its own result slot, so results stay in product order.
func (s *Service) priceProducts(ctx context.Context, products []catalog.Product) []ProductView {
	views := make([]ProductView, len(products))

	jobs := make(chan int, len(products))
	for i := range products {
		jobs <- i
	}
	close(jobs)

	workers := s.workers
	if workers > len(products) {
		workers = len(products)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := products[i]
				result := s.resolver.Resolve(ctx, p)

				description := p.Description
				if description == "" {
					description = p.DescriptionLocalized
				}

				views[i] = ProductView{
					ID:                 p.ID,
					Name:               p.Name,
					Description:        description,
					Image:              p.Image,
					DisplayPrice:       result.Display,
					HasModifierPricing: result.FromModifiers,
				}
			}
		}()
	}
	wg.Wait()

	return views
}
