package constant

// Ключи атрибутов для slog
const (
	Error          = "error"
	UserID         = "user_id"
	UserName       = "user_name"
	Event          = "event"
	ConversationID = "conversation_id"
	CallerID       = "caller_id"
	MessageID      = "message_id"
	Status         = "status"
	URL            = "url"
)
