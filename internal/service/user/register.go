package user

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
	"github.com/veilapp/veil-backend/internal/service/presence"
)

// Registrar ties the user service into the HTTP server
type Registrar struct {
	appCtx  *app.AppContext
	issuer  *auth.TokenIssuer
	tracker *presence.Tracker
}

// NewRegistrar creates a new Registrar for the user service
func NewRegistrar(appCtx *app.AppContext, issuer *auth.TokenIssuer, tracker *presence.Tracker) *Registrar {
	return &Registrar{appCtx: appCtx, issuer: issuer, tracker: tracker}
}

// Register attaches the user routes. Register/login are public; everything
// else requires a verified bearer token.
func (r *Registrar) Register(e *echo.Echo) {
	svc := NewService(r.appCtx, r.issuer)
	h := &handlers{svc: svc, tracker: r.tracker}

	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)

	g := e.Group("", auth.Middleware(r.issuer))
	g.GET("/me", h.me)
	g.PUT("/me/profile", h.updateProfile)
	g.PUT("/me/preferences", h.updatePreferences)
	g.PUT("/me/online", h.updateOnlineStatus)
	g.DELETE("/me", h.deleteAccount)
	g.GET("/discovery", h.discoveryFeed)
	g.GET("/users/:id/presence", h.presenceLookup)
}

type handlers struct {
	svc     *Service
	tracker *presence.Tracker
}

func (h *handlers) register(c echo.Context) error {
	var input RegisterInput
	if err := c.Bind(&input); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	u, err := h.svc.Register(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	token, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

func (h *handlers) me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context(), auth.CallerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *handlers) updateProfile(c echo.Context) error {
	var input ProfileInput
	if err := c.Bind(&input); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	u, err := h.svc.UpdateProfile(c.Request().Context(), auth.CallerID(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *handlers) updatePreferences(c echo.Context) error {
	var input PreferencesInput
	if err := c.Bind(&input); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	u, err := h.svc.UpdatePreferences(c.Request().Context(), auth.CallerID(c), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

type onlineStatusRequest struct {
	IsOnline bool `json:"isOnline"`
}

// updateOnlineStatus lets clients flip presence explicitly (app foreground/
// background) without a socket connection.
func (h *handlers) updateOnlineStatus(c echo.Context) error {
	var req onlineStatusRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	var err error
	if req.IsOnline {
		err = h.tracker.SetOnline(c.Request().Context(), auth.CallerID(c))
	} else {
		err = h.tracker.SetOffline(c.Request().Context(), auth.CallerID(c))
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) deleteAccount(c echo.Context) error {
	if err := h.svc.DeleteAccount(c.Request().Context(), auth.CallerID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) discoveryFeed(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	users, err := h.svc.DiscoveryFeed(c.Request().Context(), auth.CallerID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *handlers) presenceLookup(c echo.Context) error {
	online := h.tracker.IsOnline(c.Request().Context(), c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{"online": online})
}
