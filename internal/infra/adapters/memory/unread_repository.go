package memory

import (
	"maps"
	"sync"
)

// UnreadRepository считает непрочитанные сообщения по беседам
type UnreadRepository interface {
	Increment(conversationID string) int
	Clear(conversationID string)

	Counts() map[string]int
	Total() int
}

type unreadRepository struct {
	// counts хранит map[conversation_id]count
	counts map[string]int

	mu sync.RWMutex
}

func NewUnreadRepository() UnreadRepository {
	return &unreadRepository{
		counts: make(map[string]int),
	}
}

func (r *unreadRepository) Increment(conversationID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[conversationID]++

	return r.counts[conversationID]
}

func (r *unreadRepository) Clear(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.counts, conversationID)
}

func (r *unreadRepository) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.counts)
}

func (r *unreadRepository) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total int
	for _, c := range r.counts {
		total += c
	}

	return total
}
