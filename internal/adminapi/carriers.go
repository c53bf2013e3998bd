package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
	"github.com/croplink/agrimarket/pkg/common"
)

func registerCarrierRoutes() {
	webserver.AdminRoute(http.MethodGet, "/admin/carriers", listCarriers)
	webserver.AdminRoute(http.MethodPost, "/admin/carriers", createCarrier)
	webserver.AdminRoute(http.MethodPatch, "/admin/carriers/:id", updateCarrier)
	webserver.AdminRoute(http.MethodDelete, "/admin/carriers/:id", deleteCarrier)
}

func listCarriers(c echo.Context) error {
	var rows []domain.LogisticsCarrier
	if err := webserver.GetDB().Order("name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query carriers", err.Error())
	}
	return ok(c, rows)
}

type carrierPayload struct {
	Name                string `json:"name"`
	TrackingURLTemplate string `json:"tracking_url_template"`
}

func createCarrier(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	var payload carrierPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse carrier", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Carrier name is required", nil)
	}
	var dup domain.LogisticsCarrier
	if err := webserver.GetDB().Where("name = ?", payload.Name).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CARRIER", "A carrier with this name already exists", nil)
	}
	carrier := domain.LogisticsCarrier{
		ID:                  common.UUIDint64(),
		Name:                payload.Name,
		TrackingURLTemplate: payload.TrackingURLTemplate,
	}
	if err := webserver.GetDB().Create(&carrier).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create carrier", err.Error())
	}
	return ok(c, carrier)
}

func updateCarrier(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid carrier ID", nil)
	}
	var payload carrierPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse carrier", err.Error())
	}
	var carrier domain.LogisticsCarrier
	if err := webserver.GetDB().First(&carrier, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Carrier not found", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query carrier", err.Error())
	}
	updates := map[string]interface{}{"updated_at": time.Now()}
	if strings.TrimSpace(payload.Name) != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.TrackingURLTemplate != "" {
		updates["tracking_url_template"] = payload.TrackingURLTemplate
	}
	if err := webserver.GetDB().Model(&domain.LogisticsCarrier{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update carrier", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func deleteCarrier(c echo.Context) error {
	actor, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid carrier ID", nil)
	}
	if err := webserver.GetDB().Delete(&domain.LogisticsCarrier{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete carrier", err.Error())
	}
	audit(actor, "carrier.delete", cast.ToString(id))
	return ok(c, map[string]interface{}{"id": id})
}
