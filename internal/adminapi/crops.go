package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
)

func registerCropRoutes() {
	webserver.AdminRoute(http.MethodPost, "/admin/crops", createCrop)
	webserver.AdminRoute(http.MethodPatch, "/admin/crops/:id", updateCrop)
	webserver.AdminRoute(http.MethodDelete, "/admin/crops/:id", deleteCrop)
	webserver.AdminRoute(http.MethodPut, "/admin/crops/:id/guide", upsertCropGuide)
	webserver.AdminRoute(http.MethodPost, "/admin/crops/:id/pests", createCropPest)
	webserver.AdminRoute(http.MethodDelete, "/admin/pests/:id", deleteCropPest)
	webserver.AdminRoute(http.MethodPost, "/admin/pests/:id/images", addPestImage)
	webserver.AdminRoute(http.MethodPost, "/admin/crops/:id/diseases", createCropDisease)
	webserver.AdminRoute(http.MethodDelete, "/admin/diseases/:id", deleteCropDisease)
	webserver.AdminRoute(http.MethodPost, "/admin/diseases/:id/images", addDiseaseImage)
}

func createCrop(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	var crop domain.Crop
	if err := c.Bind(&crop); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse crop", err.Error())
	}
	if err := catalogSvc.CreateCrop(c.Request().Context(), &crop); err != nil {
		return svcError(c, err)
	}
	return ok(c, crop)
}

type cropUpdatePayload struct {
	Name      *string `json:"name"`
	NameTamil *string `json:"name_tamil"`
	Image     *string `json:"image"`
}

func updateCrop(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	var payload cropUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse crop", err.Error())
	}
	updates := map[string]interface{}{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.NameTamil != nil {
		updates["name_tamil"] = *payload.NameTamil
	}
	if payload.Image != nil {
		updates["image"] = *payload.Image
	}
	if len(updates) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No fields to update", nil)
	}
	if err := catalogSvc.UpdateCrop(c.Request().Context(), id, updates); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func deleteCrop(c echo.Context) error {
	user, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	if err := catalogSvc.DeleteCrop(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	audit(user, "crop.delete", fmt.Sprintf("crop %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func upsertCropGuide(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	var guide domain.CropGuide
	if err := c.Bind(&guide); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse guide", err.Error())
	}
	guide.CropID = id
	if err := catalogSvc.UpsertGuide(c.Request().Context(), &guide); err != nil {
		return svcError(c, err)
	}
	return ok(c, guide)
}

func createCropPest(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	var pest domain.CropPest
	if err := c.Bind(&pest); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse pest", err.Error())
	}
	pest.CropID = id
	if err := catalogSvc.CreatePest(c.Request().Context(), &pest); err != nil {
		return svcError(c, err)
	}
	return ok(c, pest)
}

func deleteCropPest(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid pest ID", nil)
	}
	if err := catalogSvc.DeletePest(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func addPestImage(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid pest ID", nil)
	}
	var img domain.PestImage
	if err := c.Bind(&img); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image", err.Error())
	}
	img.PestID = id
	if err := catalogSvc.AddPestImage(c.Request().Context(), &img); err != nil {
		return svcError(c, err)
	}
	return ok(c, img)
}

func createCropDisease(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	var disease domain.CropDisease
	if err := c.Bind(&disease); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse disease", err.Error())
	}
	disease.CropID = id
	if err := catalogSvc.CreateDisease(c.Request().Context(), &disease); err != nil {
		return svcError(c, err)
	}
	return ok(c, disease)
}

func deleteCropDisease(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid disease ID", nil)
	}
	if err := catalogSvc.DeleteDisease(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func addDiseaseImage(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid disease ID", nil)
	}
	var img domain.DiseaseImage
	if err := c.Bind(&img); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse image", err.Error())
	}
	img.DiseaseID = id
	if err := catalogSvc.AddDiseaseImage(c.Request().Context(), &img); err != nil {
		return svcError(c, err)
	}
	return ok(c, img)
}
