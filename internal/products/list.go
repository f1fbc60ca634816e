package product

import (
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	Category    string           `json:"category,omitempty"`
	PriceMin    *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax    *decimal.Decimal `json:"price_max,omitempty"`
	InStockOnly bool             `json:"in_stock_only,omitempty"`
	Query       string           `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}
