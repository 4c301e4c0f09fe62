package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/infrastructure"
)

// PresenceHandler responde consultas de alcanzabilidad. Prefers the shared
// Redis mirror so the answer covers sibling gateways; without one it falls
// back to this process's own registry.
type PresenceHandler struct {
	registry *infrastructure.Registry
	presence port.PresenceStore
}

func NewPresenceHandler(registry *infrastructure.Registry, presence port.PresenceStore) *PresenceHandler {
	return &PresenceHandler{registry: registry, presence: presence}
}

func (h *PresenceHandler) Register(group *echo.Group) {
	group.GET("/presence/:userId", h.lookup)
}

func (h *PresenceHandler) lookup(c echo.Context) error {
	userID := c.Param("userId")

	if h.presence != nil {
		gatewayID, online, err := h.presence.Lookup(c.Request().Context(), userID)
		if err == nil {
			return c.JSON(http.StatusOK, map[string]any{
				"userId":    userID,
				"online":    online,
				"gatewayId": gatewayID,
			})
		}
		slog.Warn("presence lookup failed, using local registry", slog.String("userId", userID), slog.Any("error", err))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"userId": userID,
		"online": h.registry.Online(userID),
	})
}

// NewHealthHandler reports process liveness plus connection counters.
func NewHealthHandler(registry *infrastructure.Registry) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "ok",
			"users":       registry.UserCount(),
			"connections": registry.Len(),
		})
	}
}
