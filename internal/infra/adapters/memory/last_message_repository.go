package memory

import (
	"maps"
	"sync"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

// LastMessageRepository хранит превью последнего сообщения каждой беседы
type LastMessageRepository interface {
	Set(conversationID string, msg models.LastMessage)
	Get(conversationID string) (models.LastMessage, bool)
	All() map[string]models.LastMessage
}

type lastMessageRepository struct {
	last map[string]models.LastMessage

	mu sync.RWMutex
}

func NewLastMessageRepository() LastMessageRepository {
	return &lastMessageRepository{
		last: make(map[string]models.LastMessage),
	}
}

func (r *lastMessageRepository) Set(conversationID string, msg models.LastMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.last[conversationID] = msg
}

func (r *lastMessageRepository) Get(conversationID string) (models.LastMessage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.last[conversationID]

	return msg, ok
}

func (r *lastMessageRepository) All() map[string]models.LastMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.last)
}
