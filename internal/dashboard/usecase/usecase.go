package usecase

import (
	"context"

	"github.com/fekuna/omnipos-commerce-service/internal/dashboard"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/fekuna/omnipos-commerce-service/internal/order"
	orderdto "github.com/fekuna/omnipos-commerce-service/internal/order/dto"
	"github.com/fekuna/omnipos-commerce-service/internal/payment"
	"github.com/fekuna/omnipos-commerce-service/internal/user"
	"golang.org/x/sync/errgroup"
)

type dashboardUseCase struct {
	users    user.UseCase
	orders   order.UseCase
	payments payment.UseCase
}

func NewDashboardUseCase(users user.UseCase, orders order.UseCase, payments payment.UseCase) dashboard.UseCase {
	return &dashboardUseCase{
		users:    users,
		orders:   orders,
		payments: payments,
	}
}

func (uc *dashboardUseCase) UserOrdersWithPayments(ctx context.Context, userID string, filters *orderdto.OrderFilters) (*dashboard.UserOrdersView, error) {
	var (
		profile *model.User
		list    *orderdto.OrderList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = uc.users.GetProfile(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = uc.orders.ListUserOrders(gctx, userID, filters)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, len(list.Orders))
	for i, o := range list.Orders {
		ids[i] = o.ID
	}
	byOrder, err := uc.payments.PaymentsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &dashboard.UserOrdersView{
		User:   profile,
		Orders: joinPayments(list.Orders, byOrder),
		Total:  list.Total,
		Page:   list.Page,
		Limit:  list.Limit,
		Pages:  list.Pages,
	}, nil
}

func joinPayments(orders []model.Order, byOrder map[string][]model.Payment) []dashboard.OrderWithPayments {
	out := make([]dashboard.OrderWithPayments, len(orders))
	for i, o := range orders {
		payments := byOrder[o.ID]
		if payments == nil {
			payments = []model.Payment{}
		}
		out[i] = dashboard.OrderWithPayments{Order: o, Payments: payments}
	}
	return out
}

func (uc *dashboardUseCase) OrdersWithCustomers(ctx context.Context, filters *orderdto.OrderFilters) (*dashboard.CustomerOrdersView, error) {
	list, err := uc.orders.ListOrders(ctx, filters)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]string, len(list.Orders))
	var userIDs []string
	seen := make(map[string]bool, len(list.Orders))
	for i, o := range list.Orders {
		orderIDs[i] = o.ID
		if !seen[o.UserID] {
			seen[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
	}

	var (
		byOrder  map[string][]model.Payment
		profiles map[string]model.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byOrder, err = uc.payments.PaymentsByOrder(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		profiles, err = uc.users.GetProfiles(gctx, userIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined := joinPayments(list.Orders, byOrder)
	orders := make([]dashboard.CustomerOrder, len(joined))
	for i, o := range joined {
		orders[i] = dashboard.CustomerOrder{OrderWithPayments: o}
		// deleted accounts leave a nil customer
		if u, ok := profiles[o.UserID]; ok {
			orders[i].Customer = &u
		}
	}

	return &dashboard.CustomerOrdersView{
		Orders: orders,
		Total:  list.Total,
		Page:   list.Page,
		Limit:  list.Limit,
		Pages:  list.Pages,
	}, nil
}

func (uc *dashboardUseCase) OrderStatusWithUser(ctx context.Context, actor orderdto.Actor, orderID string) (*dashboard.OrderOverview, error) {
	o, err := uc.orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	profile, err := uc.users.GetProfile(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	logs := o.StatusLog
	if logs == nil {
		logs = []model.OrderStatusLog{}
	}
	return &dashboard.OrderOverview{Order: o, StatusLog: logs, User: profile}, nil
}
