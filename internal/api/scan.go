package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerScanRoutes() {
	webserver.ApiRoute(http.MethodPost, "/scan", analyzeImage)
}

type scanPayload struct {
	Image    string `json:"image"` // base64
	Crop     string `json:"crop"`
	Language string `json:"language"`
}

// analyzeImage forwards a plant photo to the external classification
// provider and returns its structured verdict.
func analyzeImage(c echo.Context) error {
	var payload scanPayload
	if err := c.Bind(&payload); err != nil || payload.Image == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A base64 image is required", nil)
	}
	if payload.Language == "" {
		payload.Language = "en"
	}
	result, err := scanClient.Analyze(c.Request().Context(), payload.Image, payload.Crop, payload.Language)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, result)
}
