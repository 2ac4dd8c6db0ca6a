package dto

import "github.com/shopspring/decimal"

type ProductFilters struct {
	CategoryID  string           `json:"category_id,omitempty"`
	BrandID     string           `json:"brand_id,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	SearchQuery string           `json:"q,omitempty"`
	SortBy      string           `json:"sort_by,omitempty"`
	SortOrder   string           `json:"sort_order,omitempty"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
}

type Availability struct {
	ProductID      string `json:"product_id"`
	Requested      int    `json:"requested"`
	AvailableStock int    `json:"available_stock"`
	IsAvailable    bool   `json:"is_available"`
	CanFulfil      bool   `json:"can_fulfil"`
}
