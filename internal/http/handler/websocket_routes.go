package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mwaldner/scrawl/internal/contract"
	"github.com/mwaldner/scrawl/internal/infrastructure/aws/websocket"
	"github.com/mwaldner/scrawl/internal/utils"
	"github.com/mwaldner/scrawl/internal/utils/apierror"
)

type WebSocketService interface {
	RegisterConnection(userID int64, connID string, exp int64) error
	RemoveConnection(connectionID string)
	HandleMessage(msg *contract.IncomingSocketMessage, connID string)
}

type DefaultWSRoute struct {
	WSService WebSocketService
}

func NewWSDefault(wsService WebSocketService) *DefaultWSRoute {
	return &DefaultWSRoute{WSService: wsService}
}

// HandleConnect registers an API Gateway connection for the caller.
// Realtime events are only for registered users, so guests are rejected.
func (h *DefaultWSRoute) HandleConnect(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		apierr := apierror.NewMissingParamError("connectionId")
		return c.JSON(apierr.Code(), apierr)
	}

	token, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	if err := h.WSService.RegisterConnection(user.ID, connID, token.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, apierror.InternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleDisconnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID != "" {
		h.WSService.RemoveConnection(connID)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleMessage(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		apierr := apierror.NewMissingParamError("connectionId")
		return c.JSON(apierr.Code(), apierr)
	}

	var msg contract.IncomingSocketMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	h.WSService.HandleMessage(&msg, connID)
	return c.NoContent(http.StatusOK)
}
