package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/croplink/agrimarket/internal/webserver"
)

func registerMessagingRoutes() {
	webserver.ApiRoute(http.MethodGet, "/conversations", listConversations)
	webserver.ApiRoute(http.MethodPost, "/conversations", openConversation)
	webserver.ApiRoute(http.MethodGet, "/conversations/:id/messages", listMessages)
	webserver.ApiRoute(http.MethodPost, "/conversations/:id/messages", sendMessage)
	webserver.ApiRoute(http.MethodPost, "/conversations/:id/seen", markSeen)
	webserver.ApiRoute(http.MethodGet, "/conversations/:id/unread", unreadCount)
}

func listConversations(c echo.Context) error {
	user := webserver.CurrentUser(c)
	rows, err := messageSvc.ListConversations(c.Request().Context(), user)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

type openConversationPayload struct {
	WithUserID int64 `json:"with_user_id,string"`
}

func openConversation(c echo.Context) error {
	user := webserver.CurrentUser(c)
	var payload openConversationPayload
	if err := c.Bind(&payload); err != nil || payload.WithUserID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A peer user id is required", nil)
	}
	conv, err := messageSvc.GetOrCreateConversation(c.Request().Context(), user.ID, payload.WithUserID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, conv)
}

// conversationAccess rejects callers who are neither participants nor
// Support/Master.
func conversationAccess(c echo.Context, conversationID int64) error {
	user := webserver.CurrentUser(c)
	conv, err := messageSvc.GetConversation(c.Request().Context(), conversationID)
	if err != nil {
		return svcError(c, err)
	}
	if conv.UserA != user.ID && conv.UserB != user.ID && !user.Role.IsSupport() {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Not a participant of this conversation", nil)
	}
	return nil
}

func listMessages(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID", nil)
	}
	if errResp := conversationAccess(c, id); errResp != nil {
		return errResp
	}
	rows, err := messageSvc.Messages(c.Request().Context(), id, queryInt64(c, "after"), 0)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, rows)
}

type sendMessagePayload struct {
	ClientRef string `json:"client_ref"`
	Body      string `json:"body"`
}

func sendMessage(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID", nil)
	}
	if errResp := conversationAccess(c, id); errResp != nil {
		return errResp
	}
	user := webserver.CurrentUser(c)
	var payload sendMessagePayload
	if err := c.Bind(&payload); err != nil || payload.Body == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "A message body is required", nil)
	}
	msg, err := messageSvc.Append(c.Request().Context(), id, user.ID, payload.ClientRef, payload.Body)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, msg)
}

func markSeen(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID", nil)
	}
	if errResp := conversationAccess(c, id); errResp != nil {
		return errResp
	}
	user := webserver.CurrentUser(c)
	if err := messageSvc.MarkSeen(c.Request().Context(), id, user.ID); err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"seen": true})
}

func unreadCount(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid conversation ID", nil)
	}
	if errResp := conversationAccess(c, id); errResp != nil {
		return errResp
	}
	user := webserver.CurrentUser(c)
	count, err := messageSvc.UnreadCount(c.Request().Context(), id, user.ID)
	if err != nil {
		return svcError(c, err)
	}
	return ok(c, map[string]interface{}{"unread": count})
}
