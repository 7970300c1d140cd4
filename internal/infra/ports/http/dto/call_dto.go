package dto

import (
	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
)

type InitiateCallRequest struct {
	ConversationID string          `json:"conversation_id"`
	CalleeIDs      []string        `json:"callee_ids"`
	CallType       models.CallType `json:"call_type"`
}

type JoinCallRequest struct {
	ConversationID string          `json:"conversation_id"`
	CalleeID       string          `json:"callee_id"`
	CallType       models.CallType `json:"call_type"`
}

type RequestToJoinRequest struct {
	UserID string `json:"user_id"`
}

// AnswerCallRequest - accept, reject, timeout и ответы на запрос подключения
type AnswerCallRequest struct {
	ConversationID string `json:"conversation_id"`
	CallerID       string `json:"caller_id"`
	Reason         string `json:"reason"`
}

type CancelCallRequest struct {
	ConversationID string   `json:"conversation_id"`
	CalleeIDs      []string `json:"callee_ids"`
}

type EndCallRequest struct {
	Reason string `json:"reason"`
}

type GroupNotificationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type SendResponse struct {
	Sent bool `json:"sent"`
}

type CallStateResponse struct {
	Status            string                    `json:"status"`
	StatusCode        models.CallStatus         `json:"status_code"`
	Terminal          bool                      `json:"terminal"`
	Session           models.CallSession        `json:"session"`
	IncomingCall      *events.CallIncomingEvent `json:"incoming_call"`
	HasIncomingCall   bool                      `json:"has_incoming_call"`
	HasJoiningRequest bool                      `json:"has_joining_request"`
	InvitedCount      int                       `json:"invited_count"`
}

type ParticipantsResponse struct {
	Participants []models.CallParticipant `json:"participants"`
}
