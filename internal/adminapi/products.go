package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/catalog"
	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
)

func registerProductRoutes() {
	webserver.AdminRoute(http.MethodGet, "/admin/products", listOwnProducts)
	webserver.AdminRoute(http.MethodPost, "/admin/products", createProduct)
	webserver.AdminRoute(http.MethodPatch, "/admin/products/:id", updateProduct)
	webserver.AdminRoute(http.MethodDelete, "/admin/products/:id", deleteProduct)
	webserver.AdminRoute(http.MethodPost, "/admin/products/:id/variants", addVariant)
	webserver.AdminRoute(http.MethodDelete, "/admin/variants/:id", deleteVariant)
	webserver.AdminRoute(http.MethodPost, "/admin/pending-products", submitPendingProduct)
	webserver.AdminRoute(http.MethodGet, "/admin/pending-products", listPendingProducts)
	webserver.AdminRoute(http.MethodPost, "/admin/pending-products/:id/review", reviewPendingProduct)
}

type productPayload struct {
	catalog.ProductInput
	Variants []catalog.VariantInput `json:"variants"`
}

// listOwnProducts shows the vendor's catalog; Masters see everything.
func listOwnProducts(c echo.Context) error {
	user := webserver.CurrentUser(c)
	if user.Role == domain.RoleMaster {
		page, pageSize := webserver.ParsePagination(c)
		rows, total, err := catalogSvc.ListProducts(c.Request().Context(), page, pageSize)
		if err != nil {
			return svcError(c, err)
		}
		return webserver.Paged(c, rows, total, page, pageSize)
	}
	rows, err := catalogSvc.ListVendorProducts(c.Request().Context(), user.ID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

func createProduct(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if len(payload.Variants) > 0 {
		p, err := catalogSvc.CreateProductWithVariants(c.Request().Context(), user.ID, payload.ProductInput, payload.Variants)
		if err != nil {
			return svcError(c, err)
		}
		return ok(c, p)
	}
	p, err := catalogSvc.CreateProduct(c.Request().Context(), user.ID, payload.ProductInput)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, p)
}

type productUpdatePayload struct {
	Name         *string `json:"name"`
	NameTamil    *string `json:"name_tamil"`
	Details      *string `json:"details"`
	DetailsTamil *string `json:"details_tamil"`
	SellerName   *string `json:"seller_name"`
	Image        *string `json:"image"`
	Keywords     *string `json:"keywords"`
	Stock        *int    `json:"stock"`
	Price        *float64 `json:"price"`
}

func updateProduct(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	updates := map[string]interface{}{}
	if payload.Name != nil {
		if strings.TrimSpace(*payload.Name) == "" {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name must not be empty", nil)
		}
		updates["name"] = strings.TrimSpace(*payload.Name)
	}
	if payload.NameTamil != nil {
		updates["name_tamil"] = *payload.NameTamil
	}
	if payload.Details != nil {
		updates["details"] = *payload.Details
	}
	if payload.DetailsTamil != nil {
		updates["details_tamil"] = *payload.DetailsTamil
	}
	if payload.SellerName != nil {
		updates["seller_name"] = *payload.SellerName
	}
	if payload.Image != nil {
		updates["image"] = *payload.Image
	}
	if payload.Keywords != nil {
		updates["keywords"] = *payload.Keywords
	}
	if payload.Stock != nil {
		updates["stock_available"] = *payload.Stock
	}
	if payload.Price != nil {
		updates["cost_per_unit"] = *payload.Price
	}
	if len(updates) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No fields to update", nil)
	}
	p, err := catalogSvc.UpdateProduct(c.Request().Context(), user, id, updates)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	user, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := catalogSvc.DeleteProduct(c.Request().Context(), id); err != nil {
		return svcError(c, err)
	}
	audit(user, "product.delete", fmt.Sprintf("product %d", id))
	return ok(c, map[string]interface{}{"id": id})
}

func addVariant(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload catalog.VariantInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse variant", err.Error())
	}
	v, err := catalogSvc.AddVariant(c.Request().Context(), user, id, payload)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, v)
}

func deleteVariant(c echo.Context) error {
	user := webserver.CurrentUser(c)
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid variant ID", nil)
	}
	if err := catalogSvc.DeleteVariant(c.Request().Context(), user, id); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"id": id})
}

func submitPendingProduct(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse submission", err.Error())
	}
	pp, err := catalogSvc.SubmitPendingProduct(c.Request().Context(), user.ID, payload)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, pp)
}

func listPendingProducts(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	rows, err := catalogSvc.ListPendingProducts(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

type reviewPayload struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

func reviewPendingProduct(c echo.Context) error {
	user, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid submission ID", nil)
	}
	var payload reviewPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse review", err.Error())
	}
	pp, err := catalogSvc.ReviewPendingProduct(c.Request().Context(), id, payload.Approve, payload.Note)
	if err != nil {
		return svcError(c, err)
	}
	audit(user, "pending_product.review", fmt.Sprintf("submission %d -> %s", id, pp.Status))
	return ok(c, pp)
}
