package memory

import (
	"slices"
	"sync"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

// MessageRepository хранит сообщения открытой беседы
type MessageRepository interface {
	// Replace заменяет список целиком (первая страница истории)
	Replace(msgs []models.Message)
	// Prepend добавляет более старые сообщения в начало
	Prepend(msgs []models.Message)
	Append(msg models.Message)

	// AdvanceStatus повышает статус сообщения с данным id. Понижение игнорируется.
	// Возвращает false, если сообщение не загружено.
	AdvanceStatus(id string, status models.MessageStatus) bool
	// Reconcile находит собственное сообщение по messageId, проставляет серверный id и повышает статус
	Reconcile(msg models.Message) bool

	Get(id string) (models.Message, bool)
	List() []models.Message
	Clear()
}

type messageRepository struct {
	messages []models.Message

	mu sync.RWMutex
}

func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Replace(msgs []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = slices.Clone(msgs)
}

func (r *messageRepository) Prepend(msgs []models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(slices.Clone(msgs), r.messages...)
}

func (r *messageRepository) Append(msg models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
}

func (r *messageRepository) AdvanceStatus(id string, status models.MessageStatus) bool {
	if id == "" {
		return false
	}

	return r.patch(func(m models.Message) bool { return m.ID == id }, func(m *models.Message) {
		advance(m, status)
	})
}

func (r *messageRepository) Reconcile(msg models.Message) bool {
	if msg.MessageID == "" {
		return false
	}

	return r.patch(func(m models.Message) bool { return m.MessageID == msg.MessageID }, func(m *models.Message) {
		if m.ID == "" {
			m.ID = msg.ID
		}

		advance(m, msg.Status)
	})
}

func (r *messageRepository) patch(match func(models.Message) bool, fn func(*models.Message)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found bool

	for i := range r.messages {
		if !match(r.messages[i]) {
			continue
		}

		found = true
		fn(&r.messages[i])
	}

	return found
}

// advance не дает статусу откатиться назад
func advance(m *models.Message, status models.MessageStatus) {
	if status > m.Status {
		m.Status = status
	}
}

func (r *messageRepository) Get(id string) (models.Message, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.messages {
		if m.ID == id {
			return m, true
		}
	}

	return models.Message{}, false
}

func (r *messageRepository) List() []models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.messages)
}

func (r *messageRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = nil
}
