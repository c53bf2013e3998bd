package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerNotificationRoutes() {
	webserver.ApiRoute(http.MethodGet, "/notifications", listNotifications)
	webserver.ApiRoute(http.MethodPost, "/notifications/:id/read", markNotificationRead)
}

func listNotifications(c echo.Context) error {
	user := webserver.CurrentUser(c)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := notifySvc.List(c.Request().Context(), user.ID, limit)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func markNotificationRead(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID", nil)
	}
	if err := notifySvc.MarkRead(c.Request().Context(), user.ID, id); err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
	}
	return ok(c, map[string]interface{}{"read": true})
}
