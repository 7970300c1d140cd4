package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/dto"
	"github.com/qrave1/confeet-agent/internal/usecase"
)

// ConnectionStatus - состояние сокета до сигнального сервера
type ConnectionStatus interface {
	Connected() bool
}

// MediaRoomStatus - комната, в которую передан принятый звонок
type MediaRoomStatus interface {
	Current() (models.MediaRoom, bool)
}

type ConnectionHandler struct {
	connection ConnectionStatus
	media      MediaRoomStatus
	session    usecase.SessionProvider
}

func NewConnectionHandler(
	connection ConnectionStatus,
	media MediaRoomStatus,
	session usecase.SessionProvider,
) *ConnectionHandler {
	return &ConnectionHandler{
		connection: connection,
		media:      media,
		session:    session,
	}
}

func (h *ConnectionHandler) Status(c echo.Context) error {
	resp := dto.ConnectionResponse{
		Connected: h.connection.Connected(),
		LoggedIn:  h.session.IsLoggedIn(),
		User:      h.session.GetUser(),
	}

	if room, ok := h.media.Current(); ok {
		resp.MediaRoom = &dto.MediaRoomResponse{
			ConversationID: room.ConversationID,
			CallID:         room.CallID,
			RoomName:       room.RoomName,
			Identity:       room.Identity,
		}
	}

	return c.JSON(http.StatusOK, resp)
}
