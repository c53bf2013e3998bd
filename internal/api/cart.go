package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerCartRoutes() {
	webserver.ApiRoute(http.MethodGet, "/cart", listCart)
	webserver.ApiRoute(http.MethodGet, "/cart/total", cartTotal)
	webserver.ApiRoute(http.MethodPost, "/cart", addToCart)
	webserver.ApiRoute(http.MethodPatch, "/cart/:productId", setCartQuantity)
	webserver.ApiRoute(http.MethodDelete, "/cart/:productId", removeFromCart)
	webserver.ApiRoute(http.MethodDelete, "/cart", clearCart)
}

type cartPayload struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

func listCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	lines, err := orderSvc.ListCart(c.Request().Context(), user.ID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, lines)
}

func cartTotal(c echo.Context) error {
	user := webserver.CurrentUser(c)
	total, err := orderSvc.CartTotal(c.Request().Context(), user.ID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"total": total})
}

func addToCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart parameters", nil)
	}
	if payload.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be positive", nil)
	}
	if err := orderSvc.AddToCart(c.Request().Context(), user.ID, payload.ProductID, payload.Quantity); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"added": true})
}

func setCartQuantity(c echo.Context) error {
	user := webserver.CurrentUser(c)
	productID, err := webserver.ParseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart parameters", nil)
	}
	if err := orderSvc.SetCartQuantity(c.Request().Context(), user.ID, productID, payload.Quantity); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"updated": true})
}

func removeFromCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	productID, err := webserver.ParseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := orderSvc.RemoveFromCart(c.Request().Context(), user.ID, productID); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"removed": true})
}

func clearCart(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if err := orderSvc.ClearCart(c.Request().Context(), user.ID); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"cleared": true})
}
