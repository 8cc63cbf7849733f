package personality

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/veilapp/veil-backend/internal/app"
	"github.com/veilapp/veil-backend/internal/auth"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
)

// Registrar ties the personality service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
	issuer *auth.TokenIssuer
}

// NewRegistrar creates a new Registrar for the personality service
func NewRegistrar(appCtx *app.AppContext, issuer *auth.TokenIssuer) *Registrar {
	return &Registrar{appCtx: appCtx, issuer: issuer}
}

// Register attaches the personality routes to the echo server.
func (r *Registrar) Register(e *echo.Echo) {
	svc := NewService(r.appCtx)
	h := &handlers{svc: svc}

	g := e.Group("", auth.Middleware(r.issuer))
	g.POST("/personality/quiz", h.submitQuiz)
	g.GET("/personality/scores", h.getScores)
	g.GET("/personality/compatibility", h.compatibility)
	g.GET("/icebreakers", h.icebreakers)
}

type handlers struct {
	svc *Service
}

type submitQuizRequest struct {
	Responses []QuizResponse `json:"responses"`
}

func (h *handlers) submitQuiz(c echo.Context) error {
	var req submitQuizRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}

	scores, err := h.svc.SubmitQuiz(c.Request().Context(), auth.CallerID(c), req.Responses)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scores)
}

func (h *handlers) getScores(c echo.Context) error {
	scores, err := h.svc.GetScores(c.Request().Context(), auth.CallerID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scores)
}

func (h *handlers) compatibility(c echo.Context) error {
	targetID := c.QueryParam("targetUserId")
	if targetID == "" {
		return svcErr.InvalidArgument("targetUserId is required")
	}

	score, err := h.svc.Compatibility(c.Request().Context(), auth.CallerID(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"score": score})
}

func (h *handlers) icebreakers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Icebreakers(c.Request().Context()))
}
