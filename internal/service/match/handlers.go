package match

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veilapp/veil-backend/internal/auth"
	"github.com/veilapp/veil-backend/internal/db"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
)

type handlers struct {
	svc *Service
}

type createMatchRequest struct {
	TargetUserID string `json:"targetUserId"`
}

func (h *handlers) createMatch(c echo.Context) error {
	var req createMatchRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	m, err := h.svc.CreateMatch(c.Request().Context(), auth.CallerID(c), req.TargetUserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *handlers) getMatches(c echo.Context) error {
	matches, err := h.svc.GetMatches(c.Request().Context(), auth.CallerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, matches)
}

func (h *handlers) getSuggestions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.svc.GetMatchSuggestions(c.Request().Context(), auth.CallerID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

type sendMessageRequest struct {
	Type     db.MessageType `json:"type"`
	Content  string         `json:"content"`
	MediaURL string         `json:"mediaUrl"`
}

func (h *handlers) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if req.Type == "" {
		req.Type = db.MessageText
	}

	msg, err := h.svc.SendMessage(c.Request().Context(), auth.CallerID(c), c.Param("id"), req.Type, req.Content, req.MediaURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

func (h *handlers) getMessages(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var token *string
	if t := c.QueryParam("paginationToken"); t != "" {
		token = &t
	}

	messages, next, err := h.svc.GetMessages(c.Request().Context(), auth.CallerID(c), c.Param("id"), token, limit)
	if err != nil {
		return err
	}

	resp := echo.Map{"messages": messages}
	if next != nil {
		resp["nextPaginationToken"] = *next
	}
	return c.JSON(http.StatusOK, resp)
}

type revealLevelRequest struct {
	RevealLevel db.RevealLevel `json:"revealLevel"`
}

func (h *handlers) updateRevealLevel(c echo.Context) error {
	var req revealLevelRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	m, err := h.svc.UpdateRevealLevel(c.Request().Context(), auth.CallerID(c), c.Param("id"), req.RevealLevel)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *handlers) archiveMatch(c echo.Context) error {
	if err := h.svc.ArchiveMatch(c.Request().Context(), auth.CallerID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) blockMatch(c echo.Context) error {
	if err := h.svc.BlockMatch(c.Request().Context(), auth.CallerID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (h *handlers) rateConversation(c echo.Context) error {
	var req rateRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	if err := h.svc.RateConversation(c.Request().Context(), auth.CallerID(c), c.Param("id"), req.Rating); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) markMessageAsRead(c echo.Context) error {
	if err := h.svc.MarkMessageAsRead(c.Request().Context(), auth.CallerID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteMessage(c echo.Context) error {
	if err := h.svc.DeleteMessage(c.Request().Context(), auth.CallerID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
