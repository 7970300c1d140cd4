package usecase

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
)

// CallClientUsecase отправляет намерения пользователя и сразу меняет локальное состояние,
// не дожидаясь ответа сервера. Каждый метод возвращает, ушел ли кадр в сокет.
type CallClientUsecase interface {
	InitiateAudioCall(calleeID, conversationID string) bool
	InitiateVideoCall(calleeID, conversationID string) bool
	InitiateGroupCall(calleeIDs []string, conversationID string, callType models.CallType) bool
	JoinCall(calleeID, conversationID string) bool
	SendJoiningRequest(calleeID, conversationID string, callType models.CallType) bool
	// RequestToJoin зовет участника в звонок из текущего запроса на подключение
	RequestToJoin(userID string) bool

	AcceptCall(conversationID, callerID string) bool
	RejectCall(conversationID, callerID, reason string) bool
	CancelCall(conversationID string, calleeIDs []string) bool
	TimeoutCall(conversationID, callerID string) bool
	EndCall(reason string) bool

	AcceptJoiningRequest(conversationID, callerID string) bool
	DismissJoiningRequest(conversationID, callerID, reason string) bool

	NotifyGroupCreated(conversationID, callerID string) bool
}

type callClientUsecase struct {
	transport     Transport
	session       SessionProvider
	conversations ConversationTracker

	state *runtime.CallState

	ringTimeout int
	newCallID   func() string
}

func NewCallClientUsecase(
	transport Transport,
	session SessionProvider,
	conversations ConversationTracker,
	state *runtime.CallState,
	ringTimeout int,
) CallClientUsecase {
	if ringTimeout <= 0 {
		ringTimeout = models.DefaultCallTimeout
	}

	if ringTimeout > models.MaxCallTimeout {
		slog.Warn(
			"ring timeout is above server maximum",
			slog.Int("timeout", ringTimeout),
			slog.Int("max", models.MaxCallTimeout),
		)
	}

	return &callClientUsecase{
		transport:     transport,
		session:       session,
		conversations: conversations,
		state:         state,
		ringTimeout:   ringTimeout,
		newCallID:     uuid.NewString,
	}
}

func (uc *callClientUsecase) InitiateAudioCall(calleeID, conversationID string) bool {
	return uc.initiate(events.EventCallInitiate, events.CallInitiatePayload{
		ConversationID: conversationID,
		CalleeIDs:      []string{calleeID},
		CallType:       models.CallTypeAudio,
		Timeout:        uc.ringTimeout,
	})
}

func (uc *callClientUsecase) InitiateVideoCall(calleeID, conversationID string) bool {
	return uc.initiate(events.EventCallInitiate, events.CallInitiatePayload{
		CallID:         uc.newCallID(),
		ConversationID: conversationID,
		CalleeIDs:      []string{calleeID},
		CallType:       models.CallTypeVideo,
		Timeout:        uc.ringTimeout,
	})
}

func (uc *callClientUsecase) InitiateGroupCall(calleeIDs []string, conversationID string, callType models.CallType) bool {
	return uc.initiate(events.EventCallInitiate, events.CallInitiatePayload{
		CallID:         uc.newCallID(),
		ConversationID: conversationID,
		CalleeIDs:      calleeIDs,
		CallType:       callType,
		Timeout:        uc.ringTimeout,
	})
}

func (uc *callClientUsecase) JoinCall(calleeID, conversationID string) bool {
	return uc.initiate(events.EventCallStarted, events.CallInitiatePayload{
		ConversationID: conversationID,
		CalleeIDs:      []string{calleeID},
		CallType:       models.CallTypeAudio,
		Timeout:        uc.ringTimeout,
	})
}

func (uc *callClientUsecase) SendJoiningRequest(calleeID, conversationID string, callType models.CallType) bool {
	return uc.initiate(events.EventCallRaiseJoiningRequest, events.CallInitiatePayload{
		CallID:         uc.newCallID(),
		ConversationID: conversationID,
		CalleeIDs:      []string{calleeID},
		CallType:       callType,
		Timeout:        uc.ringTimeout,
	})
}

func (uc *callClientUsecase) RequestToJoin(userID string) bool {
	request := uc.state.IncomingCall.Get()
	if request == nil {
		slog.Warn("request to join without active call", slog.String(constant.UserID, userID))
		return false
	}

	return uc.SendJoiningRequest(userID, request.ConversationID, models.CallTypeAudio)
}

func (uc *callClientUsecase) AcceptCall(conversationID, callerID string) bool {
	uc.state.Transition(func() {
		uc.state.HasIncomingCall.Set(false)
		setCallStatus(uc.state, models.CallStatusAccepted)
	})

	return uc.transport.Send(events.EventCallAccept, events.CallAcceptPayload{
		ConversationID: conversationID,
		CallerID:       callerID,
	})
}

func (uc *callClientUsecase) RejectCall(conversationID, callerID, reason string) bool {
	uc.state.Transition(func() {
		uc.state.HasIncomingCall.Set(false)
		setCallStatus(uc.state, models.CallStatusRejected)
	})

	return uc.transport.Send(events.EventCallReject, events.CallRejectPayload{
		ConversationID: conversationID,
		CallerID:       callerID,
		Reason:         reason,
	})
}

func (uc *callClientUsecase) CancelCall(conversationID string, calleeIDs []string) bool {
	uc.state.Transition(func() {
		setCallStatus(uc.state, models.CallStatusCancelled)
	})

	return uc.transport.Send(events.EventCallCancel, events.CallCancelPayload{
		ConversationID: conversationID,
		CalleeIDs:      calleeIDs,
	})
}

func (uc *callClientUsecase) TimeoutCall(conversationID, callerID string) bool {
	uc.state.Transition(func() {
		setCallStatus(uc.state, models.CallStatusTimeout)
	})

	return uc.transport.Send(events.EventCallTimeout, events.CallTimeoutPayload{
		ConversationID: conversationID,
		CallerID:       callerID,
	})
}

func (uc *callClientUsecase) EndCall(reason string) bool {
	if reason == "" {
		reason = string(models.EndReasonNormal)
	}

	conversationID := uc.currentConversation()

	uc.state.Transition(func() {
		setCallStatus(uc.state, models.CallStatusEnded)
	})

	return uc.transport.Send(events.EventCallEnd, events.CallEndPayload{
		ConversationID: conversationID,
		Reason:         reason,
	})
}

func (uc *callClientUsecase) AcceptJoiningRequest(conversationID, callerID string) bool {
	uc.state.Transition(func() {
		uc.state.HasJoiningRequest.Set(false)
		uc.state.HasIncomingCall.Set(false)
		setCallStatus(uc.state, models.CallStatusAccepted)
	})

	return uc.transport.Send(events.EventCallAccept, events.CallAcceptPayload{
		ConversationID: conversationID,
		CallerID:       callerID,
	})
}

func (uc *callClientUsecase) DismissJoiningRequest(conversationID, callerID, reason string) bool {
	if reason == "" {
		reason = string(models.EndReasonNormal)
	}

	uc.state.Transition(func() {
		uc.state.HasIncomingCall.Set(false)
		uc.state.HasJoiningRequest.Set(false)
	})

	return uc.transport.Send(events.EventCallDismiss, events.CallDismissPayload{
		ConversationID: conversationID,
		CallerID:       callerID,
		Reason:         reason,
	})
}

func (uc *callClientUsecase) NotifyGroupCreated(conversationID, callerID string) bool {
	return uc.transport.Send(events.EventCallGroupNotification, events.GroupNotificationEvent{
		ConversationID:   conversationID,
		NotificationType: events.GroupCreated,
		CallerID:         callerID,
	})
}

func (uc *callClientUsecase) initiate(event string, payload events.CallInitiatePayload) bool {
	session := models.CallSession{
		ConversationID: payload.ConversationID,
		CallerID:       currentUserID(uc.session),
		CalleeIDs:      payload.CalleeIDs,
		CallType:       payload.CallType,
		TimeoutSeconds: payload.Timeout,
	}

	uc.state.Transition(func() {
		uc.state.Begin(session)
		setCallStatus(uc.state, models.CallStatusInitiated)
	})

	sent := uc.transport.Send(event, payload)
	if !sent {
		slog.Warn(
			"call event dropped, socket is not open",
			slog.String(constant.Event, event),
			slog.String(constant.ConversationID, payload.ConversationID),
		)
	}

	return sent
}

// currentConversation - открытая беседа, иначе беседа текущего звонка
func (uc *callClientUsecase) currentConversation() string {
	if uc.conversations != nil {
		if id := uc.conversations.ActiveConversation(); id != "" {
			return id
		}
	}

	return uc.state.Session.Get().ConversationID
}
