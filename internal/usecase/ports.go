package usecase

import (
	"context"
	"encoding/json"

	"github.com/qrave1/confeet-agent/internal/application/metric"
	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
)

// Transport - соединение с сигнальным сервером
type Transport interface {
	// Send возвращает false, если сокет закрыт и кадр отброшен
	Send(event string, payload any) bool
	On(event string, fn func(json.RawMessage)) (unsubscribe func())
}

type SessionProvider interface {
	GetUser() *models.User
	IsLoggedIn() bool
}

// MediaRoomProvider - внешний медиа-SDK, получает комнату после call:accepted
type MediaRoomProvider interface {
	JoinRoom(ctx context.Context, room models.MediaRoom) error
	LeaveRoom(ctx context.Context)
}

type HistoryClient interface {
	FetchMessages(ctx context.Context, conversationID string, page, limit int) ([]models.Message, error)
}

// ConversationTracker отдает открытую беседу
type ConversationTracker interface {
	ActiveConversation() string
}

func currentUserID(session SessionProvider) string {
	if u := session.GetUser(); u != nil {
		return u.ID
	}

	return ""
}

func setCallStatus(state *runtime.CallState, status models.CallStatus) {
	state.SetStatus(status)
	metric.IncrementCallStatus(status.String())
}
