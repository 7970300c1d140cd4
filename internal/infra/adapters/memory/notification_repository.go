package memory

import (
	"slices"
	"sync"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

const maxNotifications = 50

// NotificationRepository - последние уведомления, новые первыми
type NotificationRepository interface {
	Push(n models.Notification)
	Remove(id string)
	Clear()

	List() []models.Notification
}

type notificationRepository struct {
	notifications []models.Notification

	mu sync.RWMutex
}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Push(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append([]models.Notification{n}, r.notifications...)

	if len(r.notifications) > maxNotifications {
		r.notifications = r.notifications[:maxNotifications]
	}
}

func (r *notificationRepository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = slices.DeleteFunc(r.notifications, func(n models.Notification) bool {
		return n.ID == id
	})
}

func (r *notificationRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = nil
}

func (r *notificationRepository) List() []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.notifications)
}
