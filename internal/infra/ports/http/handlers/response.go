package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/infra/ports/http/dto"
)

// sendResult отвечает 202, если кадр ушел в сокет. Локальное состояние к этому моменту уже изменено.
func sendResult(c echo.Context, sent bool) error {
	if !sent {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "signaling socket is not open, event dropped"})
	}

	return c.JSON(http.StatusAccepted, dto.SendResponse{Sent: true})
}
