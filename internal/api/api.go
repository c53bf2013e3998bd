// Package api exposes the public and authenticated user surface of the
// marketplace: auth, catalog reads, cart, checkout, messaging, disease scan
// and the notification feed.
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/croplink/agrimarket/internal/catalog"
	"github.com/croplink/agrimarket/internal/messaging"
	"github.com/croplink/agrimarket/internal/notify"
	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/internal/scan"
	"github.com/croplink/agrimarket/internal/webserver"
)

var (
	orderSvc   *order.Service
	catalogSvc *catalog.Service
	messageSvc *messaging.Service
	notifySvc  *notify.Service
	scanClient *scan.Client
)

// Use wires the services the handlers depend on.
func Use(o *order.Service, c *catalog.Service, m *messaging.Service, n *notify.Service, s *scan.Client) {
	orderSvc = o
	catalogSvc = c
	messageSvc = m
	notifySvc = n
	scanClient = s
}

// Register attaches every public and user route.
func Register() {
	registerAuthRoutes()
	registerCatalogRoutes()
	registerCartRoutes()
	registerOrderRoutes()
	registerMessagingRoutes()
	registerScanRoutes()
	registerNotificationRoutes()
}

func queryInt64(c echo.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return v
}

func ok(c echo.Context, data interface{}) error {
	return webserver.OK(c, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return webserver.Fail(c, status, code, message, detail)
}

// svcError maps service sentinel errors onto the HTTP envelope.
func svcError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return fail(c, http.StatusBadRequest, "EMPTY_CART", "Cart is empty", nil)
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrInvalidTransition):
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, messaging.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, catalog.ErrDuplicate):
		return fail(c, http.StatusBadRequest, "DUPLICATE", err.Error(), nil)
	case errors.Is(err, catalog.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, catalog.ErrBadLanguage), errors.Is(err, catalog.ErrNoVariants):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, scan.ErrUpstream):
		return fail(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Scan provider unavailable", nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure", err.Error())
	}
}
