package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/veilapp/veil-backend/internal/config"
	svcErr "github.com/veilapp/veil-backend/internal/errors"
)

// StartHTTPServer boots an echo server and registers all provided services
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = errorHandler

	// register all services
	for _, r := range registrars {
		r.Register(e)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return e.Start(addr)
}

// errorHandler maps domain errors onto HTTP statuses and a uniform JSON
// error body. Errors are surfaced directly to the caller with their message;
// nothing is retried here.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, echo.Map{"error": fmt.Sprintf("%v", he.Message)})
		return
	}

	status := svcErr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	_ = c.JSON(status, echo.Map{"error": msg})
}
