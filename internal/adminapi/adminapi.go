// Package adminapi is the Vendor/Master CMS surface: catalog and taxonomy
// management, order fulfilment, user administration and announcements.
// Every route sits behind the Vendor/Master threshold; Master-only handlers
// additionally call webserver.MustMaster.
package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/croplink/agrimarket/internal/catalog"
	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/notify"
	"github.com/croplink/agrimarket/internal/order"
	"github.com/croplink/agrimarket/internal/webserver"
	"github.com/croplink/agrimarket/pkg/common"
)

var (
	orderSvc   *order.Service
	catalogSvc *catalog.Service
	notifySvc  *notify.Service
)

// Use wires the services the handlers depend on.
func Use(o *order.Service, c *catalog.Service, n *notify.Service) {
	orderSvc = o
	catalogSvc = c
	notifySvc = n
}

// Register attaches every admin route.
func Register() {
	registerProductRoutes()
	registerOrderRoutes()
	registerUserRoutes()
	registerKeywordRoutes()
	registerCropRoutes()
	registerCarrierRoutes()
	registerNotificationRoutes()
}

func ok(c echo.Context, data interface{}) error {
	return webserver.OK(c, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return webserver.Fail(c, status, code, message, detail)
}

func svcError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrInvalidTransition):
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", err.Error(), nil)
	case errors.Is(err, catalog.ErrDuplicate):
		return fail(c, http.StatusConflict, "DUPLICATE", err.Error(), nil)
	case errors.Is(err, catalog.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, catalog.ErrNoVariants), errors.Is(err, catalog.ErrBadLanguage):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure", err.Error())
	}
}

// audit records a privileged mutation.
func audit(actor *domain.User, action, detail string) {
	entry := domain.AdminAudit{
		ID:        common.UUIDint64(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := webserver.GetDB().Create(&entry).Error; err != nil {
		zap.L().Warn("failed to write audit entry",
			zap.String("action", action), zap.Error(err))
	}
}
