package cache

// Cache keys for the catalog operations. Keys are opaque strings; the
// functions below are the only key builders so collisions stay impossible.
const KeyCategories = "categories"

// KeyProductsByCategory returns the key for a category's product list.
func KeyProductsByCategory(categoryID string) string {
	return "products_category_" + categoryID
}

// KeyProduct returns the key for a single product's details.
func KeyProduct(productID string) string {
	return "product_" + productID
}

// KeyModifier returns the key for a single modifier's details.
func KeyModifier(modifierID string) string {
	return "modifier_" + modifierID
}
