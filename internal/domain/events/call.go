package events

import "github.com/qrave1/confeet-agent/internal/domain/models"

// Клиент -> сервер
const (
	EventCallInitiate = "call:initiate"
	// EventCallStarted - подключение к уже идущему звонку
	EventCallStarted = "call:started"
	EventCallAccept  = "call:accept"
	EventCallReject  = "call:reject"
	EventCallDismiss = "call:dismiss"
	EventCallCancel  = "call:cancel"
	EventCallTimeout = "call:timeout"
	EventCallEnd     = "call:end"
	// EventCallRaiseJoiningRequest приходит и от сервера, см. EventCallRaisedJoiningRequest
	EventCallRaiseJoiningRequest = "call:raise-joining-request"
	// EventCallGroupNotification ходит в обе стороны
	EventCallGroupNotification = "call:group-notification"
)

// Сервер -> клиент
const (
	EventCallIncoming             = "call:incoming"
	EventCallJoiningRequest       = "call:joining_request"
	EventCallRaisedJoiningRequest = "call:raise-joining-request"
	EventCallAccepted             = "call:accepted"
	EventCallRejected             = "call:rejected"
	EventCallDismissed            = "call:dismissed"
	EventCallCancelled            = "call:cancelled"
	EventCallTimedOut             = "call:timed_out"
	EventCallEnded                = "call:ended"
	EventCallBusy                 = "call:busy"
	EventCallMissed               = "call:missed"
	EventCallError                = "call:error"
	EventCallParticipantJoined    = "call:participant_joined"
	EventCallParticipantLeft      = "call:participant_left"
)

// Типы групповых уведомлений
const (
	GroupCreated     = "group:created"
	GroupDeleted     = "group:deleted"
	GroupRenamed     = "group:renamed"
	GroupMemberAdded = "group:member_added"
)

// CallInitiatePayload - начало звонка, подключение к звонку и запрос на подключение.
// CallID не передается для обычного аудиозвонка.
type CallInitiatePayload struct {
	CallID         string          `json:"callId,omitempty"`
	ConversationID string          `json:"conversationId"`
	CalleeIDs      []string        `json:"calleeIds"`
	CallType       models.CallType `json:"callType"`
	Timeout        int             `json:"timeout,omitempty"`
}

type CallAcceptPayload struct {
	ConversationID string `json:"conversationId"`
	CallerID       string `json:"callerId"`
}

type CallRejectPayload struct {
	ConversationID string `json:"conversationId"`
	CallerID       string `json:"callerId"`
	Reason         string `json:"reason,omitempty"`
}

type CallDismissPayload struct {
	ConversationID string `json:"conversationId"`
	CallerID       string `json:"callerId"`
	Reason         string `json:"reason,omitempty"`
}

type CallCancelPayload struct {
	ConversationID string   `json:"conversationId"`
	CalleeIDs      []string `json:"calleeIds"`
}

type CallTimeoutPayload struct {
	ConversationID string `json:"conversationId"`
	CallerID       string `json:"callerId"`
}

type CallEndPayload struct {
	ConversationID string `json:"conversationId"`
	Reason         string `json:"reason,omitempty"`
}

// GroupNotificationEvent ходит в обе стороны
type GroupNotificationEvent struct {
	ConversationID   string `json:"conversationId"`
	NotificationType string `json:"notificationType"`
	CallerID         string `json:"callerId"`
}

// CallIncomingEvent - входящий звонок и запрос на подключение к идущему звонку
type CallIncomingEvent struct {
	CallID         string                            `json:"callId,omitempty"`
	ConversationID string                            `json:"conversationId"`
	CallerID       string                            `json:"callerId"`
	CallerName     string                            `json:"callerName,omitempty"`
	CallerAvatar   string                            `json:"callerAvatar,omitempty"`
	CallType       models.CallType                   `json:"callType"`
	Participants   map[string]models.CallParticipant `json:"participants,omitempty"`
	Timeout        int                               `json:"timeout"`
	Timestamp      int64                             `json:"timestamp"`
}

type CallAcceptedEvent struct {
	ConversationID string `json:"conversationId"`
	CallID         string `json:"callId,omitempty"`
	AcceptedBy     string `json:"acceptedBy"`
	RoomName       string `json:"roomName"`
	Token          string `json:"token"`
	Timestamp      int64  `json:"timestamp"`
}

type CallRejectedEvent struct {
	ConversationID string `json:"conversationId"`
	RejectedBy     string `json:"rejectedBy"`
	Reason         string `json:"reason,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

type CallDismissedEvent struct {
	CallID      string `json:"callId"`
	DismissedBy string `json:"dismissedBy"`
	Reason      string `json:"reason,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

type CallCancelledEvent struct {
	ConversationID string `json:"conversationId"`
	CancelledBy    string `json:"cancelledBy"`
	Timestamp      int64  `json:"timestamp"`
}

type CallTimedOutEvent struct {
	ConversationID string `json:"conversationId"`
	Timestamp      int64  `json:"timestamp"`
}

type CallEndedEvent struct {
	ConversationID string `json:"conversationId"`
	EndedBy        string `json:"endedBy"`
	Reason         string `json:"reason"`
	Duration       int    `json:"duration"`
	Timestamp      int64  `json:"timestamp"`
}

type CallBusyEvent struct {
	ConversationID string `json:"conversationId"`
	BusyUser       string `json:"busyUser"`
	Timestamp      int64  `json:"timestamp"`
}

// CallMissedEvent получает занятый абонент
type CallMissedEvent struct {
	ConversationID string          `json:"conversationId"`
	CallerID       string          `json:"callerId"`
	CallerName     string          `json:"callerName,omitempty"`
	CallerAvatar   string          `json:"callerAvatar,omitempty"`
	CallType       models.CallType `json:"callType"`
	Reason         string          `json:"reason"`
	Timestamp      int64           `json:"timestamp"`
}

type CallErrorEvent struct {
	ConversationID string `json:"conversationId"`
	Error          string `json:"error"`
	Code           string `json:"code,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

type CallParticipantJoinedEvent struct {
	CallID    string `json:"callId"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Timestamp int64  `json:"timestamp"`
}

type CallParticipantLeftEvent struct {
	CallID    string `json:"callId"`
	UserID    string `json:"userId"`
	Reason    string `json:"reason,omitempty"`
	Duration  int    `json:"duration"`
	Timestamp int64  `json:"timestamp"`
}
