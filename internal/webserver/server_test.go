package webserver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/croplink/agrimarket/config"
	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/pkg/common"
)

type testAppCtx struct {
	db  *gorm.DB
	cfg *config.AppConfig
}

func (a *testAppCtx) DB() *gorm.DB              { return a.db }
func (a *testAppCtx) Config() *config.AppConfig { return a.cfg }

var initOnce sync.Once

// setupServer initializes the package-level server once and registers the
// fixture routes.
func setupServer(t *testing.T) *gorm.DB {
	t.Helper()
	var db *gorm.DB
	initOnce.Do(func() {
		var err error
		db, err = gorm.Open(sqlite.Open("file:webserver_test?mode=memory&cache=shared"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(domain.Tables...))

		Init(&testAppCtx{db: db, cfg: config.DefaultAppConfig})

		PubRoute(http.MethodGet, "/public", func(c echo.Context) error {
			return OK(c, "open")
		})
		ApiRoute(http.MethodGet, "/me", func(c echo.Context) error {
			return OK(c, CurrentUser(c))
		})
		AdminRoute(http.MethodGet, "/managed", func(c echo.Context) error {
			return OK(c, "managed")
		})
		AdminRoute(http.MethodGet, "/master-only", func(c echo.Context) error {
			if _, errResp := MustMaster(c); errResp != nil {
				return errResp
			}
			return OK(c, "master")
		})
	})
	return server.appCtx.DB()
}

func seedUser(t *testing.T, db *gorm.DB, role domain.Role) *domain.User {
	t.Helper()
	id := common.UUIDint64()
	u := domain.User{
		ID:    id,
		Phone: strconv.FormatInt(id, 10),
		Role:  role,
	}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func do(t *testing.T, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	server.root.ServeHTTP(rec, req)
	return rec
}

func TestPublicRouteNeedsNoToken(t *testing.T) {
	setupServer(t)
	rec := do(t, http.MethodGet, "/public", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestApiRouteRejectsMissingAndBadTokens(t *testing.T) {
	setupServer(t)

	rec := do(t, http.MethodGet, "/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, http.MethodGet, "/me", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApiRouteRejectsRefreshToken(t *testing.T) {
	db := setupServer(t)
	user := seedUser(t, db, domain.RoleUser)

	_, refresh, err := IssueTokenPair(user)
	require.NoError(t, err)

	rec := do(t, http.MethodGet, "/me", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApiRouteLoadsCurrentUser(t *testing.T) {
	db := setupServer(t)
	user := seedUser(t, db, domain.RoleUser)

	access, _, err := IssueTokenPair(user)
	require.NoError(t, err)

	rec := do(t, http.MethodGet, "/me", access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), user.Phone)
}

func TestAdminRouteGating(t *testing.T) {
	db := setupServer(t)

	plain := seedUser(t, db, domain.RoleUser)
	vendor := seedUser(t, db, domain.RoleVendor)
	master := seedUser(t, db, domain.RoleMaster)

	plainTok, _, err := IssueTokenPair(plain)
	require.NoError(t, err)
	vendorTok, _, err := IssueTokenPair(vendor)
	require.NoError(t, err)
	masterTok, _, err := IssueTokenPair(master)
	require.NoError(t, err)

	require.Equal(t, http.StatusForbidden, do(t, http.MethodGet, "/managed", plainTok).Code)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/managed", vendorTok).Code)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/managed", masterTok).Code)

	require.Equal(t, http.StatusForbidden, do(t, http.MethodGet, "/master-only", vendorTok).Code)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/master-only", masterTok).Code)
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	db := setupServer(t)
	user := seedUser(t, db, domain.RoleVendor)

	access, _, err := IssueTokenPair(user)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, "/managed", access).Code)

	// demotion applies to the already-issued token because the account is
	// reloaded per request
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", user.ID).
		Update("role", domain.RoleUser).Error)
	require.Equal(t, http.StatusForbidden, do(t, http.MethodGet, "/managed", access).Code)
}

func TestParseTokenRoundTrip(t *testing.T) {
	db := setupServer(t)
	user := seedUser(t, db, domain.RoleSupport)

	access, refresh, err := IssueTokenPair(user)
	require.NoError(t, err)

	claims, err := ParseToken(access)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UID)
	require.Equal(t, TokenTypeAccess, claims.Typ)

	claims, err = ParseToken(refresh)
	require.NoError(t, err)
	require.Equal(t, TokenTypeRefresh, claims.Typ)

	_, err = ParseToken("garbage")
	require.Error(t, err)
}
