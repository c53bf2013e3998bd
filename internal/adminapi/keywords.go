package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerKeywordRoutes() {
	webserver.AdminRoute(http.MethodPost, "/admin/keywords", createKeyword)
	webserver.AdminRoute(http.MethodDelete, "/admin/keywords/:id", deleteKeyword)
}

type keywordPayload struct {
	Name string `json:"name"`
}

func createKeyword(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	var payload keywordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse keyword", err.Error())
	}
	k, err := catalogSvc.CreateKeyword(c.Request().Context(), payload.Name)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, k)
}

func deleteKeyword(c echo.Context) error {
	user, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid keyword ID", nil)
	}
	if err := catalogSvc.DeleteKeyword(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	audit(user, "keyword.delete", fmt.Sprintf("keyword %d", id))
	return ok(c, map[string]interface{}{"id": id})
}
