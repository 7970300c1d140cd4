package metric

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LinkStatus - состояние сокета до сигнального сервера
type LinkStatus interface {
	Connected() bool
}

type healthResponse struct {
	Status    string `json:"status"`
	Signaling string `json:"signaling"`
}

// NewServer создает сервер метрик. /health отвечает, пока процесс жив,
// /ready отдает 503, пока нет соединения с сигнальным сервером.
func NewServer(link LinkStatus) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", Signaling: linkState(link)})
	})

	e.GET("/ready", func(c echo.Context) error {
		if !link.Connected() {
			return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "not ready", Signaling: linkState(link)})
		}

		return c.JSON(http.StatusOK, healthResponse{Status: "ready", Signaling: linkState(link)})
	})

	return e
}

func linkState(link LinkStatus) string {
	if link.Connected() {
		return "connected"
	}

	return "disconnected"
}
