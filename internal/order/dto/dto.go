package dto

import (
	"time"

	"github.com/fekuna/omnipos-commerce-service/internal/model"
)

// Actor is who asks for an order operation. Admins may act on any order.
type Actor struct {
	UserID string
	Admin  bool
}

// SystemActor is used by internal workflows such as payment webhooks.
var SystemActor = Actor{UserID: "system", Admin: true}

func (a Actor) CanAccess(o *model.Order) bool {
	return a.Admin || a.UserID == o.UserID
}

type OrderFilters struct {
	UserID    string
	Status    model.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
	Sort      string // "field" or "-field"
	Page      int
	Limit     int

	// set by the use case from Sort
	SortField string
	SortDesc  bool
}

type OrderList struct {
	Orders []model.Order `json:"orders"`
	Total  int           `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
	Pages  int           `json:"pages"`
}
