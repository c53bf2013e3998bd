package webserver

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/domain"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	AccessTokenTTL  = 2 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour

	currentUserKey = "current_user"
)

// TokenClaims carries the account id, its role at issue time and the token
// kind. Role is re-read from the database per request; the claim is only a
// hint for clients.
type TokenClaims struct {
	UID  int64       `json:"uid,string"`
	Role domain.Role `json:"role"`
	Typ  string      `json:"typ"`
	jwt.RegisteredClaims
}

func issueToken(secret string, user *domain.User, typ string, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		UID:  user.ID,
		Role: user.Role,
		Typ:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Issuer:    "agrimarket",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// IssueTokenPair returns a fresh access/refresh token pair for the user.
func IssueTokenPair(user *domain.User) (access string, refresh string, err error) {
	secret := server.appCtx.Config().Web.JwtSecret
	if access, err = issueToken(secret, user, TokenTypeAccess, AccessTokenTTL); err != nil {
		return "", "", err
	}
	if refresh, err = issueToken(secret, user, TokenTypeRefresh, RefreshTokenTTL); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseToken validates a raw token string and returns its claims.
func ParseToken(raw string) (*TokenClaims, error) {
	secret := server.appCtx.Config().Web.JwtSecret
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JwtMiddleware validates the bearer token and rejects refresh tokens on
// regular API routes.
func JwtMiddleware(appCtx AppContext) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(appCtx.Config().Web.JwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &TokenClaims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return Fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		},
	})
}

// LoadUserMiddleware resolves the authenticated account from the database so
// role changes take effect immediately.
func LoadUserMiddleware(appCtx AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return Fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Missing token context", nil)
			}
			claims, ok := token.Claims.(*TokenClaims)
			if !ok || claims.Typ != TokenTypeAccess {
				return Fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "An access token is required", nil)
			}
			var user domain.User
			if err := appCtx.DB().First(&user, claims.UID).Error; err != nil {
				return Fail(c, http.StatusUnauthorized, "UNKNOWN_ACCOUNT", "Account no longer exists", nil)
			}
			c.Set(currentUserKey, &user)
			return next(c)
		}
	}
}

// RequireAdminMiddleware enforces the Vendor/Master management threshold.
func RequireAdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !user.Role.CanManageOrders() {
				return Fail(c, http.StatusForbidden, "FORBIDDEN", "Vendor or Master role required", nil)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the account resolved by LoadUserMiddleware.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(currentUserKey).(*domain.User)
	return user
}

// MustMaster rejects the request unless the caller is a Master.
func MustMaster(c echo.Context) (*domain.User, error) {
	user := CurrentUser(c)
	if user == nil || !user.Role.CanModerate() {
		return nil, Fail(c, http.StatusForbidden, "FORBIDDEN", "Master role required", nil)
	}
	return user, nil
}
