package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/livekit/protocol/auth"
	"github.com/pion/webrtc/v4"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/domain/models"
)

var (
	ErrEmptyRoom        = errors.New("room name or token is empty")
	ErrIdentityMismatch = errors.New("room token issued for another user")
)

// RoomProvider передает данные комнаты внешнему медиа-SDK.
// Медиа-сессией он не управляет, только хранит текущую комнату.
type RoomProvider struct {
	userID     string
	iceServers []webrtc.ICEServer

	mu      sync.RWMutex
	current *models.MediaRoom
}

func NewRoomProvider(userID string, iceServers []webrtc.ICEServer) *RoomProvider {
	return &RoomProvider{
		userID:     userID,
		iceServers: iceServers,
	}
}

func (p *RoomProvider) JoinRoom(ctx context.Context, room models.MediaRoom) error {
	if room.RoomName == "" || room.Token == "" {
		return ErrEmptyRoom
	}

	verifier, err := auth.ParseAPIToken(room.Token)
	if err != nil {
		return fmt.Errorf("parse room token: %w", err)
	}

	if identity := verifier.Identity(); identity != "" && identity != p.userID {
		return fmt.Errorf("%w: %s", ErrIdentityMismatch, identity)
	}

	room.Identity = p.userID
	room.ICEServers = p.iceServers

	p.mu.Lock()
	p.current = &room
	p.mu.Unlock()

	slog.InfoContext(
		ctx,
		"media room handed off",
		slog.String(constant.ConversationID, room.ConversationID),
		slog.String("room", room.RoomName),
		slog.Int("ice_servers", len(room.ICEServers)),
	)

	return nil
}

func (p *RoomProvider) LeaveRoom(ctx context.Context) {
	p.mu.Lock()
	room := p.current
	p.current = nil
	p.mu.Unlock()

	if room != nil {
		slog.InfoContext(ctx, "media room left", slog.String("room", room.RoomName))
	}
}

// Current возвращает комнату, в которую передан звонок
func (p *RoomProvider) Current() (models.MediaRoom, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil {
		return models.MediaRoom{}, false
	}

	return *p.current, true
}
