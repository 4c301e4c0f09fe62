package transport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/application/usecase"
	"chambaYaWs/internal/modules/messaging/domain"
	"chambaYaWs/internal/shared/httputil"
)

// MessagesHandler aloja las mutaciones REST sobre mensajes. Cada mutación
// persiste primero y recién entonces abanica el evento a las conexiones vivas.
type MessagesHandler struct {
	send      *usecase.SendMessageUseCase
	lifecycle *usecase.MessageLifecycleUseCase
	mapper    *httputil.ErrorMapper
}

func NewMessagesHandler(send *usecase.SendMessageUseCase, lifecycle *usecase.MessageLifecycleUseCase) *MessagesHandler {
	mapper := httputil.NewErrorMapper().
		WithMapping(port.ErrMessageNotFound, http.StatusNotFound, "message not found").
		WithMapping(port.ErrNotSender, http.StatusForbidden, "only the sender may modify this message").
		WithMapping(port.ErrNotParticipant, http.StatusForbidden, "not a participant of this conversation").
		WithMapping(port.ErrStoreUnavailable, http.StatusBadGateway, "message store unavailable").
		WithMapping(domain.ErrMissingReceiver, http.StatusBadRequest, "receiverId is required").
		WithMapping(domain.ErrEmptyContent, http.StatusBadRequest, "content must not be empty").
		WithMapping(domain.ErrContentTooLong, http.StatusBadRequest, "content exceeds the allowed length")
	return &MessagesHandler{send: send, lifecycle: lifecycle, mapper: mapper}
}

// Register mounts the message routes behind the auth middleware.
func (h *MessagesHandler) Register(group *echo.Group) {
	group.POST("/messages", h.sendMessage)
	group.GET("/messages/:peerId", h.conversation)
	group.PATCH("/messages/:id", h.editMessage)
	group.DELETE("/messages/:id", h.deleteMessage)
	group.POST("/messages/:id/reactions", h.addReaction)
	group.DELETE("/messages/:id/reactions/:emoji", h.removeReaction)
	group.POST("/messages/:id/delivered", h.markDelivered)
	group.POST("/messages/read", h.markRead)
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
	ReplyTo    string `json:"replyTo"`
}

func (h *MessagesHandler) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	msg, err := h.send.Execute(c.Request().Context(), ActorID(c), req.ReceiverID, req.Content, req.ReplyTo)
	if err != nil {
		return h.fail(c, "send", err)
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *MessagesHandler) conversation(c echo.Context) error {
	query := domain.ConversationQuery{
		Page:  atoiOrZero(c.QueryParam("page")),
		Limit: atoiOrZero(c.QueryParam("limit")),
	}
	messages, err := h.lifecycle.History(c.Request().Context(), ActorID(c), c.Param("peerId"), query)
	if err != nil {
		return h.fail(c, "conversation", err)
	}
	return c.JSON(http.StatusOK, messages)
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *MessagesHandler) editMessage(c echo.Context) error {
	var req editMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	msg, err := h.lifecycle.Edit(c.Request().Context(), c.Param("id"), ActorID(c), req.Content)
	if err != nil {
		return h.fail(c, "edit", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *MessagesHandler) deleteMessage(c echo.Context) error {
	msg, err := h.lifecycle.Delete(c.Request().Context(), c.Param("id"), ActorID(c))
	if err != nil {
		return h.fail(c, "delete", err)
	}
	return c.JSON(http.StatusOK, msg)
}

type reactionRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

func (h *MessagesHandler) addReaction(c echo.Context) error {
	var req reactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	msg, err := h.lifecycle.AddReaction(c.Request().Context(), c.Param("id"), ActorID(c), req.Emoji)
	if err != nil {
		return h.fail(c, "reaction add", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *MessagesHandler) removeReaction(c echo.Context) error {
	msg, err := h.lifecycle.RemoveReaction(c.Request().Context(), c.Param("id"), ActorID(c), c.Param("emoji"))
	if err != nil {
		return h.fail(c, "reaction remove", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *MessagesHandler) markDelivered(c echo.Context) error {
	msg, err := h.lifecycle.MarkDelivered(c.Request().Context(), c.Param("id"), ActorID(c))
	if err != nil {
		return h.fail(c, "delivered", err)
	}
	return c.JSON(http.StatusOK, msg)
}

type markReadRequest struct {
	PeerID string `json:"peerId" validate:"required"`
}

func (h *MessagesHandler) markRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	updated, err := h.lifecycle.MarkRead(c.Request().Context(), req.PeerID, ActorID(c))
	if err != nil {
		return h.fail(c, "read", err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (h *MessagesHandler) fail(c echo.Context, operation string, err error) error {
	info := h.mapper.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("messages handler failed", slog.String("operation", operation), slog.String("actor", ActorID(c)), slog.Any("error", err))
	} else {
		slog.Warn("messages handler rejected", slog.String("operation", operation), slog.String("actor", ActorID(c)), slog.Int("status", info.Status), slog.Any("error", err))
	}
	return echo.NewHTTPError(info.Status, info.Message)
}

func atoiOrZero(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
