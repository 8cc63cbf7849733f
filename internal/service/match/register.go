package match

import (
	"github.com/labstack/echo/v4"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
)

// Registrar ties the match service into the HTTP server
type Registrar struct {
	appCtx   *app.AppContext
	notifier Notifier
	issuer   *auth.TokenIssuer
}

// NewRegistrar creates a new Registrar for the match service
func NewRegistrar(appCtx *app.AppContext, notifier Notifier, issuer *auth.TokenIssuer) *Registrar {
	return &Registrar{appCtx: appCtx, notifier: notifier, issuer: issuer}
}

// Register attaches the match routes to the echo server.
// All routes require a verified bearer token.
func (r *Registrar) Register(e *echo.Echo) {
	svc := NewService(r.appCtx, r.notifier)
	h := &handlers{svc: svc}

	g := e.Group("", auth.Middleware(r.issuer))
	g.POST("/matches", h.createMatch)
	g.GET("/matches", h.getMatches)
	g.GET("/matches/suggestions", h.getSuggestions)
	g.POST("/matches/:id/messages", h.sendMessage)
	g.GET("/matches/:id/messages", h.getMessages)
	g.PUT("/matches/:id/reveal", h.updateRevealLevel)
	g.POST("/matches/:id/archive", h.archiveMatch)
	g.POST("/matches/:id/block", h.blockMatch)
	g.POST("/matches/:id/rate", h.rateConversation)
	g.POST("/messages/:id/read", h.markMessageAsRead)
	g.DELETE("/messages/:id", h.deleteMessage)
}
