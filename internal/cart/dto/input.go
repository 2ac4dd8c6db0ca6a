package dto

import "github.com/fekuna/omnipos-commerce-service/internal/model"

type AddItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemInput changes only the fields that are set.
type UpdateItemInput struct {
	Quantity *int                  `json:"quantity"`
	Status   *model.CartItemStatus `json:"status"`
}
