package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/internal/webserver"
)

func registerOrderRoutes() {
	webserver.AdminRoute(http.MethodGet, "/admin/orders", listAllOrders)
	webserver.AdminRoute(http.MethodGet, "/admin/orders/stats", orderStats)
	webserver.AdminRoute(http.MethodGet, "/admin/orders/export", exportOrders)
	webserver.AdminRoute(http.MethodGet, "/admin/orders/:id", getOrder)
	webserver.AdminRoute(http.MethodGet, "/admin/orders/:id/items", getOrderItems)
	webserver.AdminRoute(http.MethodPatch, "/admin/orders/:id", updateOrderStatus)
	webserver.AdminRoute(http.MethodDelete, "/admin/orders/:id", deleteOrder)
}

func listAllOrders(c echo.Context) error {
	page, pageSize := webserver.ParsePagination(c)
	rows, total, err := orderSvc.ListAll(c.Request().Context(), c.QueryParam("status"), page, pageSize)
	if err != nil {
		return svcError(c, err)
	}
	return webserver.Paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	ord, err := orderSvc.Get(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, ord)
}

func getOrderItems(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	items, err := orderSvc.Items(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, items)
}

func updateOrderStatus(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var req order.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status update", err.Error())
	}
	ord, err := orderSvc.UpdateStatus(c.Request().Context(), id, user.ID, req)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, ord)
}

func deleteOrder(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := orderSvc.Delete(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	audit(user, "order.delete", fmt.Sprintf("order %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func orderStats(c echo.Context) error {
	stats, err := orderSvc.Stats(c.Request().Context())
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, stats)
}

func exportOrders(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return orderSvc.ExportCSV(c.Request().Context(), c.Response())
}
