package models

import "time"

const (
	// DefaultCallTimeout время звонка в секундах по умолчанию
	DefaultCallTimeout = 40
	// MaxCallTimeout проверяет сервер, клиент только передает значение
	MaxCallTimeout = 120
)

type CallType string

const (
	CallTypeAudio CallType = "audio"
	CallTypeVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallTypeAudio || t == CallTypeVideo
}

// CallStatus - состояние текущего звонка. Ноль означает, что звонка еще не было.
type CallStatus int

const (
	CallStatusNone CallStatus = iota
	CallStatusInitiated
	CallStatusRinging
	CallStatusAccepted
	CallStatusRejected
	CallStatusCancelled
	CallStatusTimeout
	CallStatusEnded
	CallStatusBusy
	CallStatusFailed
	CallStatusMissed
	CallStatusJoiningRequest
	CallStatusDismissed
	CallStatusRaisedJoiningRequest
)

var callStatusNames = map[CallStatus]string{
	CallStatusNone:                 "NONE",
	CallStatusInitiated:            "INITIATED",
	CallStatusRinging:              "RINGING",
	CallStatusAccepted:             "ACCEPTED",
	CallStatusRejected:             "REJECTED",
	CallStatusCancelled:            "CANCELLED",
	CallStatusTimeout:              "TIMEOUT",
	CallStatusEnded:                "ENDED",
	CallStatusBusy:                 "BUSY",
	CallStatusFailed:               "FAILED",
	CallStatusMissed:               "MISSED",
	CallStatusJoiningRequest:       "JOINING_REQUEST",
	CallStatusDismissed:            "DISMISSED",
	CallStatusRaisedJoiningRequest: "RAISED_JOINING_REQUEST",
}

func (s CallStatus) String() string {
	if name, ok := callStatusNames[s]; ok {
		return name
	}

	return "UNKNOWN"
}

// IsTerminal сообщает, закрыта ли сессия звонка
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusNone,
		CallStatusEnded,
		CallStatusRejected,
		CallStatusCancelled,
		CallStatusTimeout,
		CallStatusBusy,
		CallStatusFailed,
		CallStatusDismissed,
		CallStatusMissed:
		return true
	default:
		return false
	}
}

type ParticipantStatus int

const (
	ParticipantStatusRinging ParticipantStatus = iota + 1
	ParticipantStatusAccepted
	ParticipantStatusRejected
	ParticipantStatusTimeout
	ParticipantStatusLeft
	ParticipantStatusDismiss
)

type EndReason string

const (
	EndReasonNormal    EndReason = "normal"
	EndReasonBusy      EndReason = "busy"
	EndReasonTimeout   EndReason = "timeout"
	EndReasonRejected  EndReason = "rejected"
	EndReasonCancelled EndReason = "cancelled"
	EndReasonError     EndReason = "error"
	EndReasonNoNetwork EndReason = "no_network"
)

type CallParticipant struct {
	UserID    string            `json:"userId"`
	Name      string            `json:"name"`
	Avatar    string            `json:"avatar"`
	Email     string            `json:"email"`
	Status    ParticipantStatus `json:"status"`
	JoinedAt  *time.Time        `json:"joinedAt,omitempty"`
	LeftAt    *time.Time        `json:"leftAt,omitempty"`
	EndReason EndReason         `json:"endReason,omitempty"`
}

// CallSession - клиентская проекция текущего звонка
type CallSession struct {
	ConversationID string     `json:"conversationId"`
	CallerID       string     `json:"callerId"`
	CalleeIDs      []string   `json:"calleeIds"`
	CallType       CallType   `json:"callType"`
	TimeoutSeconds int        `json:"timeout"`
	Status         CallStatus `json:"status"`
}
