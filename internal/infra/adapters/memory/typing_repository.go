package memory

import (
	"maps"
	"sync"
)

// TypingRepository - кто сейчас печатает. Без истечения: запись живет до явного isTyping=false.
type TypingRepository interface {
	Set(userID string, isTyping bool)
	All() map[string]bool
}

type typingRepository struct {
	typing map[string]bool

	mu sync.RWMutex
}

func NewTypingRepository() TypingRepository {
	return &typingRepository{
		typing: make(map[string]bool),
	}
}

func (r *typingRepository) Set(userID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.typing[userID] = isTyping
}

func (r *typingRepository) All() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.typing)
}
