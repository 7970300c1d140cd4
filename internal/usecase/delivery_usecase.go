package usecase

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/memory"
)

const defaultHistoryLimit = 20

// DeliveryUsecase ведет ленту открытой беседы, квитанции доставки, счетчики и уведомления
type DeliveryUsecase interface {
	ConversationTracker

	Start(ctx context.Context)
	Stop()

	// SetActiveConversation открывает беседу и обнуляет ее счетчик. Пустой id закрывает беседу.
	SetActiveConversation(conversationID string)
	SetChatOpen(open bool)
	ChatOpen() bool

	// LoadHistory загружает страницу истории. Первая страница заменяет ленту, следующие добавляются в начало.
	LoadHistory(ctx context.Context, conversationID string, page, limit int) error

	SendMessage(conversationID, body, replyTo string) (models.Message, bool)
	MarkSeen(messageID, conversationID string) bool
	SendTyping(conversationID string, isTyping bool) bool

	Messages() []models.Message
	UnreadCounts() map[string]int
	TotalUnread() int
	TypingUsers() map[string]bool
	LastMessages() map[string]models.LastMessage

	Notifications() []models.Notification
	ClearNotification(id string)
	ClearAllNotifications()
}

type deliveryUsecase struct {
	transport Transport
	session   SessionProvider
	history   HistoryClient

	messageRepo      memory.MessageRepository
	unreadRepo       memory.UnreadRepository
	typingRepo       memory.TypingRepository
	notificationRepo memory.NotificationRepository
	lastMessageRepo  memory.LastMessageRepository

	mu                 sync.RWMutex
	activeConversation string
	chatOpen           bool
	unsubscribe        []func()

	now func() time.Time
}

func NewDeliveryUsecase(
	transport Transport,
	session SessionProvider,
	history HistoryClient,
	messageRepo memory.MessageRepository,
	unreadRepo memory.UnreadRepository,
	typingRepo memory.TypingRepository,
	notificationRepo memory.NotificationRepository,
	lastMessageRepo memory.LastMessageRepository,
) DeliveryUsecase {
	return &deliveryUsecase{
		transport:        transport,
		session:          session,
		history:          history,
		messageRepo:      messageRepo,
		unreadRepo:       unreadRepo,
		typingRepo:       typingRepo,
		notificationRepo: notificationRepo,
		lastMessageRepo:  lastMessageRepo,
		now:              time.Now,
	}
}

func (uc *deliveryUsecase) Start(_ context.Context) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.unsubscribe != nil {
		return
	}

	uc.unsubscribe = []func(){
		uc.transport.On(events.EventNewMessage, events.Handle(uc.handleNewMessage)),
		uc.transport.On(events.EventMessageSent, events.Handle(uc.handleMessageSent)),
		uc.transport.On(events.EventDelivered, events.Handle(uc.handleDelivered)),
		uc.transport.On(events.EventSeen, events.Handle(uc.handleSeen)),
		uc.transport.On(events.EventUserTyping, events.Handle(uc.handleUserTyping)),
		uc.transport.On(events.EventError, events.Handle(uc.handleError)),
	}

	slog.Info("delivery tracker started")
}

func (uc *deliveryUsecase) Stop() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, unsubscribe := range uc.unsubscribe {
		unsubscribe()
	}

	uc.unsubscribe = nil
}

func (uc *deliveryUsecase) handleNewMessage(msg models.Message) {
	uc.lastMessageRepo.Set(msg.ConversationID, lastMessageOf(msg))

	if !uc.isViewing(msg.ConversationID) {
		count := uc.unreadRepo.Increment(msg.ConversationID)

		uc.notificationRepo.Push(models.Notification{
			ID:             cmp.Or(msg.MessageID, msg.ID, uuid.NewString()),
			Type:           models.NotificationTypeMessage,
			Title:          "New Message",
			Body:           msg.Body,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			Timestamp:      uc.now(),
		})

		slog.Debug(
			"message for inactive conversation",
			slog.String(constant.ConversationID, msg.ConversationID),
			slog.Int("unread", count),
		)

		return
	}

	self := currentUserID(uc.session)

	if msg.SenderID == self {
		uc.reconcile(msg)
		return
	}

	uc.messageRepo.Append(msg)

	uc.transport.Send(events.EventMarkDelivered, events.MarkDeliveredPayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		UserID:         self,
		DeliveredAt:    uc.now().UTC().Format(time.RFC3339Nano),
	})
}

func (uc *deliveryUsecase) handleMessageSent(msg models.Message) {
	uc.lastMessageRepo.Set(msg.ConversationID, lastMessageOf(msg))

	if !uc.isViewing(msg.ConversationID) {
		return
	}

	uc.reconcile(msg)
}

// reconcile обновляет собственное сообщение по messageId или добавляет его, если его нет в ленте
func (uc *deliveryUsecase) reconcile(msg models.Message) {
	if uc.messageRepo.Reconcile(msg) {
		return
	}

	uc.messageRepo.Append(msg)
}

func (uc *deliveryUsecase) handleDelivered(e events.MessageDeliveredEvent) {
	if !uc.messageRepo.AdvanceStatus(e.ID, models.MessageStatusDelivered) {
		slog.Debug("delivered receipt for unknown message", slog.String(constant.MessageID, e.ID))
	}
}

func (uc *deliveryUsecase) handleSeen(e events.MessageSeenEvent) {
	if !uc.messageRepo.AdvanceStatus(e.ID, models.MessageStatusSeen) {
		slog.Debug("seen receipt for unknown message", slog.String(constant.MessageID, e.ID))
	}
}

func (uc *deliveryUsecase) handleUserTyping(e events.UserTypingEvent) {
	uc.typingRepo.Set(e.UserID, e.IsTyping)
}

func (uc *deliveryUsecase) handleError(e events.ErrorEvent) {
	uc.notificationRepo.Push(models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationTypeError,
		Title:     "Connection Error",
		Body:      e.Message,
		Timestamp: uc.now(),
	})

	slog.Error("signaling error", slog.String(constant.Error, e.Message), slog.Int("code", e.Code))
}

func (uc *deliveryUsecase) ActiveConversation() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.activeConversation
}

func (uc *deliveryUsecase) SetActiveConversation(conversationID string) {
	uc.mu.Lock()
	uc.activeConversation = conversationID
	uc.mu.Unlock()

	if conversationID != "" {
		uc.unreadRepo.Clear(conversationID)
	}
}

func (uc *deliveryUsecase) SetChatOpen(open bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.chatOpen = open
}

func (uc *deliveryUsecase) ChatOpen() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.chatOpen
}

func (uc *deliveryUsecase) LoadHistory(ctx context.Context, conversationID string, page, limit int) error {
	if page < 1 {
		page = 1
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	msgs, err := uc.history.FetchMessages(ctx, conversationID, page, limit)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	// Ответ мог прийти после переключения беседы
	if uc.ActiveConversation() != conversationID {
		slog.Debug("drop history for inactive conversation", slog.String(constant.ConversationID, conversationID))
		return nil
	}

	if page > 1 {
		uc.messageRepo.Prepend(msgs)
	} else {
		uc.messageRepo.Replace(msgs)
	}

	if len(msgs) > 0 && page == 1 {
		uc.lastMessageRepo.Set(conversationID, lastMessageOf(msgs[len(msgs)-1]))
	}

	return nil
}

func (uc *deliveryUsecase) SendMessage(conversationID, body, replyTo string) (models.Message, bool) {
	createdAt := uc.now()

	msg := models.Message{
		MessageID:      uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       currentUserID(uc.session),
		Type:           "text",
		Body:           body,
		ReplyTo:        replyTo,
		CreatedAt:      &createdAt,
		Status:         models.MessageStatusSent,
	}

	if uc.ActiveConversation() == conversationID {
		uc.messageRepo.Append(msg)
	}

	sent := uc.transport.Send(events.EventSendMessage, msg)
	if !sent {
		slog.Warn(
			"message dropped, socket is not open",
			slog.String(constant.ConversationID, conversationID),
			slog.String(constant.MessageID, msg.MessageID),
		)
	}

	return msg, sent
}

func (uc *deliveryUsecase) MarkSeen(messageID, conversationID string) bool {
	return uc.transport.Send(events.EventMarkSeen, events.MarkSeenPayload{
		ID:             messageID,
		ConversationID: conversationID,
		UserID:         currentUserID(uc.session),
		SeenAt:         uc.now().UTC().Format(time.RFC3339Nano),
	})
}

func (uc *deliveryUsecase) SendTyping(conversationID string, isTyping bool) bool {
	return uc.transport.Send(events.EventTyping, events.TypingPayload{
		ConversationID: conversationID,
		IsTyping:       isTyping,
	})
}

func (uc *deliveryUsecase) Messages() []models.Message {
	return uc.messageRepo.List()
}

func (uc *deliveryUsecase) UnreadCounts() map[string]int {
	return uc.unreadRepo.Counts()
}

func (uc *deliveryUsecase) TotalUnread() int {
	return uc.unreadRepo.Total()
}

func (uc *deliveryUsecase) TypingUsers() map[string]bool {
	return uc.typingRepo.All()
}

func (uc *deliveryUsecase) LastMessages() map[string]models.LastMessage {
	return uc.lastMessageRepo.All()
}

func (uc *deliveryUsecase) Notifications() []models.Notification {
	return uc.notificationRepo.List()
}

func (uc *deliveryUsecase) ClearNotification(id string) {
	uc.notificationRepo.Remove(id)
}

func (uc *deliveryUsecase) ClearAllNotifications() {
	uc.notificationRepo.Clear()
}

func (uc *deliveryUsecase) isViewing(conversationID string) bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.chatOpen && conversationID != "" && uc.activeConversation == conversationID
}

func lastMessageOf(msg models.Message) models.LastMessage {
	return models.LastMessage{
		MessageID: cmp.Or(msg.MessageID, msg.ID),
		Content:   msg.Body,
		SenderID:  msg.SenderID,
		SentAt:    msg.CreatedAt,
	}
}
