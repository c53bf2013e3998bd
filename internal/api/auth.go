package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
	"github.com/croplink/agrimarket/pkg/common"
)

func registerAuthRoutes() {
	webserver.PubRoute(http.MethodPost, "/auth/signup", signup)
	webserver.PubRoute(http.MethodPost, "/auth/signin", signin)
	webserver.PubRoute(http.MethodPost, "/auth/refresh", refreshToken)
	webserver.ApiRoute(http.MethodPost, "/auth/push-token", registerPushToken)
}

type signupPayload struct {
	Phone           string `json:"phone"`
	Password        string `json:"password"` // sha256 of the raw password, hashed client-side
	Name            string `json:"name"`
	BookingAddress  string `json:"booking_address"`
	DeliveryAddress string `json:"delivery_address"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user"`
}

func signup(c echo.Context) error {
	var payload signupPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse signup parameters", nil)
	}
	payload.Phone = strings.TrimSpace(payload.Phone)
	if payload.Phone == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "Phone and password are required", nil)
	}

	db := webserver.GetDB()
	var count int64
	db.Model(&domain.User{}).Where("phone = ?", payload.Phone).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "DUPLICATE_PHONE", "An account with this phone number already exists", nil)
	}

	user := domain.User{
		ID:              common.UUIDint64(),
		Phone:           payload.Phone,
		Password:        common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Name:            payload.Name,
		BookingAddress:  payload.BookingAddress,
		DeliveryAddress: payload.DeliveryAddress,
		Role:            domain.RoleUser,
		LastLogin:       time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}

	return issueTokens(c, &user)
}

type signinPayload struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func signin(c echo.Context) error {
	var payload signinPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse signin parameters", nil)
	}

	db := webserver.GetDB()
	var user domain.User
	err := db.Where("phone = ?", strings.TrimSpace(payload.Phone)).First(&user).Error
	if err != nil || user.Password != common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Phone number or password is incorrect", nil)
	}

	db.Model(&domain.User{}).Where("id = ?", user.ID).Update("last_login", time.Now())
	return issueTokens(c, &user)
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

func refreshToken(c echo.Context) error {
	var payload refreshPayload
	if err := c.Bind(&payload); err != nil || payload.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A refresh token is required", nil)
	}
	claims, err := webserver.ParseToken(payload.RefreshToken)
	if err != nil || claims.Typ != webserver.TokenTypeRefresh {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid refresh token", nil)
	}
	var user domain.User
	if err := webserver.GetDB().First(&user, claims.UID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, http.StatusUnauthorized, "UNKNOWN_ACCOUNT", "Account no longer exists", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load account", err.Error())
	}
	return issueTokens(c, &user)
}

func issueTokens(c echo.Context, user *domain.User) error {
	access, refresh, err := webserver.IssueTokenPair(user)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue tokens", err.Error())
	}
	return ok(c, tokenResponse{AccessToken: access, RefreshToken: refresh, User: user})
}

type pushTokenPayload struct {
	Token string `json:"token"`
}

// registerPushToken stores the device push token; delivery itself is handled
// by an external collaborator.
func registerPushToken(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var payload pushTokenPayload
	if err := c.Bind(&payload); err != nil || strings.TrimSpace(payload.Token) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A push token is required", nil)
	}
	if err := webserver.GetDB().Model(&domain.User{}).Where("id = ?", user.ID).
		Update("push_token", payload.Token).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store push token", err.Error())
	}
	return ok(c, map[string]interface{}{"registered": true})
}
