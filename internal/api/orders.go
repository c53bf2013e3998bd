package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiRoute(http.MethodPost, "/orders", createOrder)
	webserver.ApiRoute(http.MethodGet, "/orders", listMyOrders)
	webserver.ApiRoute(http.MethodGet, "/orders/:id/items", listOrderItems)
	webserver.ApiRoute(http.MethodGet, "/orders/:id/timeline", orderTimeline)
}

func createOrder(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var req order.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order parameters", nil)
	}
	if req.DeliveryAddress == "" {
		req.DeliveryAddress = user.DeliveryAddress
	}
	created, err := orderSvc.Create(c.Request().Context(), user.ID, req)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, created)
}

func listMyOrders(c echo.Context) error {
	user := webserver.CurrentUser(c)
	orders, err := orderSvc.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, orders)
}

// ownOrder loads the order and rejects callers who neither own it nor hold
// the management threshold.
func ownOrder(c echo.Context, id int64) error {
	user := webserver.CurrentUser(c)
	ord, err := orderSvc.Get(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	if ord.UserID != user.ID && !user.Role.CanManageOrders() {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not your order", nil)
	}
	return nil
}

func listOrderItems(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if errResp := ownOrder(c, id); errResp != nil {
		return errResp
	}
	items, err := orderSvc.Items(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, items)
}

func orderTimeline(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if errResp := ownOrder(c, id); errResp != nil {
		return errResp
	}
	rows, err := orderSvc.Timeline(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}
