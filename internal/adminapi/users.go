package adminapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
	"github.com/croplink/agrimarket/pkg/common"
)

func registerUserRoutes() {
	webserver.AdminRoute(http.MethodGet, "/admin/users", listUsers)
	webserver.AdminRoute(http.MethodPost, "/admin/users/:id/role", setUserRole)
	webserver.AdminRoute(http.MethodPost, "/admin/create-admin", createAdmin)
}

func listUsers(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	page, pageSize := webserver.ParsePagination(c)
	db := webserver.GetDB().Model(&domain.User{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR phone LIKE ?", pattern, pattern)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	var users []domain.User
	if err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", err.Error())
	}
	return webserver.Paged(c, users, total, page, pageSize)
}

type setRolePayload struct {
	Role domain.Role `json:"role"`
}

// setUserRole is Master-only; the change is audited.
func setUserRole(c echo.Context) error {
	actor, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID", nil)
	}
	var payload setRolePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse role", err.Error())
	}
	if !payload.Role.Valid() {
		return fail(c, http.StatusBadRequest, "INVALID_ROLE", "Role must be 0..3", nil)
	}
	res := webserver.GetDB().Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"role": payload.Role, "updated_at": time.Now()})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update role", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
	}
	audit(actor, "user.set_role", fmt.Sprintf("user %d -> %s", id, payload.Role))
	return ok(c, map[string]interface{}{"id": id, "role": payload.Role})
}

type createAdminPayload struct {
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

// createAdmin provisions a Vendor, Master or Support account.
func createAdmin(c echo.Context) error {
	actor, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	var payload createAdminPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse account parameters", err.Error())
	}
	payload.Phone = strings.TrimSpace(payload.Phone)
	if payload.Phone == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "Phone and password are required", nil)
	}
	if !payload.Role.Valid() || payload.Role == domain.RoleUser {
		return fail(c, http.StatusBadRequest, "INVALID_ROLE", "Role must be vendor, master or support", nil)
	}

	db := webserver.GetDB()
	var count int64
	db.Model(&domain.User{}).Where("phone = ?", payload.Phone).Count(&count)
	if count > 0 {
		return fail(c, http.StatusConflict, "DUPLICATE_PHONE", "An account with this phone number already exists", nil)
	}

	user := domain.User{
		ID:       common.UUIDint64(),
		Phone:    payload.Phone,
		Password: common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Name:     payload.Name,
		Role:     payload.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}
	audit(actor, "user.create_admin", fmt.Sprintf("user %d role %s", user.ID, user.Role))
	return ok(c, user)
}
