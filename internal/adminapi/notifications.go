package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/webserver"
)

func registerNotificationRoutes() {
	webserver.AdminRoute(http.MethodPost, "/admin/notifications", broadcastNotification)
	webserver.AdminRoute(http.MethodGet, "/admin/audit", listAuditTrail)
}

type broadcastPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// broadcastNotification fans a notification out to every registered user.
func broadcastNotification(c echo.Context) error {
	actor, errResp := webserver.MustMaster(c)
	if errResp != nil {
		return errResp
	}
	var payload broadcastPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse notification", err.Error())
	}
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" || strings.TrimSpace(payload.Body) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_FIELDS", "Title and body are required", nil)
	}
	count, err := notifySvc.Broadcast(c.Request().Context(), payload.Title, payload.Body)
	if err != nil {
		return svcError(c, err)
	}
	audit(actor, "notification.broadcast", payload.Title)
	return ok(c, map[string]interface{}{"recipients": count})
}

func listAuditTrail(c echo.Context) error {
	if _, errResp := webserver.MustMaster(c); errResp != nil {
		return errResp
	}
	page, pageSize := webserver.ParsePagination(c)
	var total int64
	query := webserver.GetDB().Model(&domain.AdminAudit{})
	if err := query.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query audit trail", err.Error())
	}
	var rows []domain.AdminAudit
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query audit trail", err.Error())
	}
	return webserver.Paged(c, rows, total, page, pageSize)
}
