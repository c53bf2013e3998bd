package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.PubRoute(http.MethodGet, "/products", listProducts)
	webserver.PubRoute(http.MethodGet, "/products/search", searchProducts)
	webserver.PubRoute(http.MethodGet, "/products/by-keyword", productsByKeyword)
	webserver.PubRoute(http.MethodGet, "/products/:id", getProduct)
	webserver.PubRoute(http.MethodGet, "/products/:id/variants", listVariants)
	webserver.PubRoute(http.MethodGet, "/keywords", listKeywords)
	webserver.PubRoute(http.MethodGet, "/crops", listCrops)
	webserver.PubRoute(http.MethodGet, "/crops/:id/guide", getCropGuide)
	webserver.PubRoute(http.MethodGet, "/crops/:id/pests", listCropPests)
	webserver.PubRoute(http.MethodGet, "/crops/:id/diseases", listCropDiseases)
	webserver.PubRoute(http.MethodGet, "/pests/:id/images", listPestImages)
	webserver.PubRoute(http.MethodGet, "/diseases/:id/images", listDiseaseImages)
}

func listProducts(c echo.Context) error {
	page, pageSize := webserver.ParsePagination(c)
	rows, total, err := catalogSvc.ListProducts(c.Request().Context(), page, pageSize)
	if err != nil {
		return svcError(c, err)
	}
	return webserver.Paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := catalogSvc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, p)
}

func listVariants(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	rows, err := catalogSvc.ListVariants(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func searchProducts(c echo.Context) error {
	rows, err := catalogSvc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func productsByKeyword(c echo.Context) error {
	rows, err := catalogSvc.ByKeyword(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func listKeywords(c echo.Context) error {
	rows, err := catalogSvc.ListKeywords(c.Request().Context())
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func listCrops(c echo.Context) error {
	rows, err := catalogSvc.ListCrops(c.Request().Context())
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func lang(c echo.Context) string {
	if l := c.QueryParam("lang"); l != "" {
		return l
	}
	return "en"
}

func getCropGuide(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	guide, err := catalogSvc.GetGuide(c.Request().Context(), id, lang(c))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, guide)
}

func listCropPests(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	rows, err := catalogSvc.ListPests(c.Request().Context(), id, lang(c))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func listCropDiseases(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid crop ID", nil)
	}
	rows, err := catalogSvc.ListDiseases(c.Request().Context(), id, lang(c))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func listPestImages(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid pest ID", nil)
	}
	rows, err := catalogSvc.ListPestImages(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func listDiseaseImages(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid disease ID", nil)
	}
	rows, err := catalogSvc.ListDiseaseImages(c.Request().Context(), id)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}
