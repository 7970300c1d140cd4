package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/memory"
)

// CallReceiverUsecase применяет входящие события звонка к локальному состоянию
type CallReceiverUsecase interface {
	Start(ctx context.Context)
	Stop()

	// Snapshot отдает все поля звонка одним согласованным срезом
	Snapshot() runtime.CallSnapshot
	Status() models.CallStatus
	Session() models.CallSession
	IncomingCall() *events.CallIncomingEvent
	HasIncomingCall() bool
	HasJoiningRequest() bool

	// Participants возвращает участников, отсортированных по userId
	Participants() []models.CallParticipant
	InRoom() []models.CallParticipant
	Invited() []models.CallParticipant
	InvitedCount() int
	// Filter ищет по имени и email среди участников в комнате или приглашенных
	Filter(query string, inRoom bool) []models.CallParticipant
}

type callReceiverUsecase struct {
	transport Transport
	session   SessionProvider
	media     MediaRoomProvider

	notificationRepo memory.NotificationRepository

	state *runtime.CallState

	mu          sync.Mutex
	ctx         context.Context
	unsubscribe []func()
}

func NewCallReceiverUsecase(
	transport Transport,
	session SessionProvider,
	media MediaRoomProvider,
	notificationRepo memory.NotificationRepository,
	state *runtime.CallState,
) CallReceiverUsecase {
	return &callReceiverUsecase{
		transport:        transport,
		session:          session,
		media:            media,
		notificationRepo: notificationRepo,
		state:            state,
		ctx:              context.Background(),
	}
}

// Start подписывается на события звонка. Повторный вызов ничего не делает.
func (uc *callReceiverUsecase) Start(ctx context.Context) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.unsubscribe != nil {
		return
	}

	uc.ctx = ctx

	uc.unsubscribe = []func(){
		uc.transport.On(events.EventCallIncoming, events.Handle(uc.handleIncoming)),
		uc.transport.On(events.EventCallJoiningRequest, events.Handle(uc.handleJoiningRequest)),
		uc.transport.On(events.EventCallRaisedJoiningRequest, events.Handle(uc.handleRaisedJoiningRequest)),
		uc.transport.On(events.EventCallAccepted, events.Handle(uc.handleAccepted)),
		uc.transport.On(events.EventCallRejected, events.Handle(uc.handleRejected)),
		uc.transport.On(events.EventCallDismissed, events.Handle(uc.handleDismissed)),
		uc.transport.On(events.EventCallCancelled, events.Handle(uc.handleCancelled)),
		uc.transport.On(events.EventCallTimedOut, events.Handle(uc.handleTimedOut)),
		uc.transport.On(events.EventCallEnded, events.Handle(uc.handleEnded)),
		uc.transport.On(events.EventCallBusy, events.Handle(uc.handleBusy)),
		uc.transport.On(events.EventCallMissed, events.Handle(uc.handleMissed)),
		uc.transport.On(events.EventCallError, events.Handle(uc.handleError)),
		uc.transport.On(events.EventCallParticipantJoined, events.Handle(uc.handleParticipantJoined)),
		uc.transport.On(events.EventCallParticipantLeft, events.Handle(uc.handleParticipantLeft)),
		uc.transport.On(events.EventCallGroupNotification, events.Handle(uc.handleGroupNotification)),
	}

	slog.Info("call receiver started")
}

func (uc *callReceiverUsecase) Stop() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, unsubscribe := range uc.unsubscribe {
		unsubscribe()
	}

	uc.unsubscribe = nil
}

func (uc *callReceiverUsecase) handleIncoming(e events.CallIncomingEvent) {
	if uc.isSelf(e.CallerID) {
		slog.Debug("ignore incoming call, local user is the caller", slog.String(constant.CallerID, e.CallerID))
		return
	}

	uc.state.Transition(func() {
		uc.warnOverwrite(e)

		uc.state.Begin(sessionFromIncoming(e))
		if len(e.Participants) > 0 {
			uc.state.ReplaceRoster(e.Participants)
		}
		uc.state.IncomingCall.Set(&e)
		uc.state.HasIncomingCall.Set(true)
		setCallStatus(uc.state, models.CallStatusRinging)
	})

	slog.Info(
		"incoming call",
		slog.String(constant.CallerID, e.CallerID),
		slog.String(constant.ConversationID, e.ConversationID),
		slog.String("call_type", string(e.CallType)),
	)
}

func (uc *callReceiverUsecase) handleJoiningRequest(e events.CallIncomingEvent) {
	uc.state.Transition(func() {
		// Список участников обновляется и у самого звонящего
		uc.state.ReplaceRoster(e.Participants)

		if uc.isSelf(e.CallerID) {
			slog.Debug("ignore joining request, local user is the caller", slog.String(constant.CallerID, e.CallerID))
			return
		}

		uc.warnOverwrite(e)

		uc.state.Begin(sessionFromIncoming(e))
		uc.state.IncomingCall.Set(&e)
		uc.state.HasJoiningRequest.Set(true)
		setCallStatus(uc.state, models.CallStatusJoiningRequest)

		slog.Info(
			"joining request",
			slog.String(constant.CallerID, e.CallerID),
			slog.String(constant.ConversationID, e.ConversationID),
		)
	})
}

func (uc *callReceiverUsecase) handleRaisedJoiningRequest(e events.CallIncomingEvent) {
	uc.state.Transition(func() {
		if len(e.Participants) > 0 {
			uc.state.ReplaceRoster(e.Participants)
		}

		setCallStatus(uc.state, models.CallStatusRaisedJoiningRequest)
	})

	slog.Info("joining request raised", slog.String(constant.ConversationID, e.ConversationID))
}

func (uc *callReceiverUsecase) handleAccepted(e events.CallAcceptedEvent) {
	uc.state.Transition(func() {
		setCallStatus(uc.state, models.CallStatusAccepted)
	})

	slog.Info("call accepted", slog.String("accepted_by", e.AcceptedBy))

	if e.RoomName == "" || e.Token == "" {
		return
	}

	err := uc.media.JoinRoom(uc.context(), models.MediaRoom{
		ConversationID: e.ConversationID,
		CallID:         e.CallID,
		RoomName:       e.RoomName,
		Token:          e.Token,
	})
	if err != nil {
		slog.Error(
			"hand off media room",
			slog.Any(constant.Error, err),
			slog.String(constant.ConversationID, e.ConversationID),
		)
	}
}

func (uc *callReceiverUsecase) handleRejected(e events.CallRejectedEvent) {
	uc.finish(models.CallStatusRejected)

	slog.Info("call rejected", slog.String("rejected_by", e.RejectedBy), slog.String("reason", e.Reason))
}

func (uc *callReceiverUsecase) handleDismissed(e events.CallDismissedEvent) {
	slog.Info("call dismissed", slog.String("dismissed_by", e.DismissedBy), slog.String("reason", e.Reason))
}

func (uc *callReceiverUsecase) handleCancelled(e events.CallCancelledEvent) {
	uc.state.Transition(func() {
		setCallStatus(uc.state, models.CallStatusCancelled)
		uc.state.HasIncomingCall.Set(false)
		uc.state.IncomingCall.Set(nil)
	})

	slog.Info("call cancelled", slog.String("cancelled_by", e.CancelledBy))
}

func (uc *callReceiverUsecase) handleTimedOut(e events.CallTimedOutEvent) {
	uc.finish(models.CallStatusTimeout)

	slog.Info("call timed out", slog.String(constant.ConversationID, e.ConversationID))
}

func (uc *callReceiverUsecase) handleEnded(e events.CallEndedEvent) {
	uc.finish(models.CallStatusEnded)
	uc.media.LeaveRoom(uc.context())

	slog.Info(
		"call ended",
		slog.String("ended_by", e.EndedBy),
		slog.String("reason", e.Reason),
		slog.Int("duration", e.Duration),
	)
}

func (uc *callReceiverUsecase) handleBusy(e events.CallBusyEvent) {
	uc.finish(models.CallStatusBusy)

	slog.Info("callee is busy", slog.String("busy_user", e.BusyUser))
}

func (uc *callReceiverUsecase) handleMissed(e events.CallMissedEvent) {
	uc.finish(models.CallStatusMissed)

	caller := cmp.Or(e.CallerName, e.CallerID)

	uc.notificationRepo.Push(models.Notification{
		ID:             uuid.NewString(),
		Type:           models.NotificationTypeCall,
		Title:          "Missed call",
		Body:           caller,
		ConversationID: e.ConversationID,
		SenderID:       e.CallerID,
		Timestamp:      eventTime(e.Timestamp),
	})

	slog.Info("missed call", slog.String(constant.CallerID, e.CallerID), slog.String("reason", e.Reason))
}

func (uc *callReceiverUsecase) handleError(e events.CallErrorEvent) {
	uc.finish(models.CallStatusFailed)

	slog.Error("call error", slog.String(constant.Error, e.Error), slog.String("code", e.Code))
}

func (uc *callReceiverUsecase) handleParticipantJoined(e events.CallParticipantJoinedEvent) {
	joinedAt := eventTime(e.Timestamp)

	uc.state.Transition(func() {
		uc.state.Participants.Update(func(current map[string]models.CallParticipant) map[string]models.CallParticipant {
			roster := maps.Clone(current)
			if roster == nil {
				roster = make(map[string]models.CallParticipant)
			}

			p, ok := roster[e.UserID]
			if !ok {
				p = models.CallParticipant{UserID: e.UserID, Name: e.UserName}
			}

			p.Status = models.ParticipantStatusAccepted
			p.JoinedAt = &joinedAt
			roster[e.UserID] = p

			return roster
		})
	})

	slog.Info("participant joined", slog.String(constant.UserID, e.UserID))
}

func (uc *callReceiverUsecase) handleParticipantLeft(e events.CallParticipantLeftEvent) {
	leftAt := eventTime(e.Timestamp)

	var found bool

	uc.state.Transition(func() {
		found = uc.state.PatchParticipant(e.UserID, func(p *models.CallParticipant) {
			p.Status = models.ParticipantStatusLeft
			p.LeftAt = &leftAt
			p.EndReason = models.EndReason(e.Reason)
		})
	})

	if !found {
		slog.Debug("participant left but is not in roster", slog.String(constant.UserID, e.UserID))
		return
	}

	slog.Info("participant left", slog.String(constant.UserID, e.UserID), slog.String("reason", e.Reason))
}

func (uc *callReceiverUsecase) handleGroupNotification(e events.GroupNotificationEvent) {
	uc.notificationRepo.Push(models.Notification{
		ID:             uuid.NewString(),
		Type:           models.NotificationTypeCall,
		Title:          "Group notification",
		Body:           e.NotificationType,
		ConversationID: e.ConversationID,
		SenderID:       e.CallerID,
		Timestamp:      time.Now(),
	})

	slog.Info(
		"group notification",
		slog.String("type", e.NotificationType),
		slog.String(constant.ConversationID, e.ConversationID),
	)
}

// finish ставит итоговый статус и сбрасывает входящий звонок
func (uc *callReceiverUsecase) finish(status models.CallStatus) {
	uc.state.Transition(func() {
		setCallStatus(uc.state, status)
		uc.state.Reset()
	})
}

func (uc *callReceiverUsecase) warnOverwrite(e events.CallIncomingEvent) {
	current := uc.state.Status.Get()
	if current.IsTerminal() {
		return
	}

	slog.Warn(
		"new call overwrites active session",
		slog.String(constant.Status, current.String()),
		slog.String("previous_conversation_id", uc.state.Session.Get().ConversationID),
		slog.String(constant.ConversationID, e.ConversationID),
	)
}

func (uc *callReceiverUsecase) isSelf(callerID string) bool {
	self := currentUserID(uc.session)

	return self != "" && callerID == self
}

func (uc *callReceiverUsecase) context() context.Context {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.ctx
}

func (uc *callReceiverUsecase) Snapshot() runtime.CallSnapshot {
	return uc.state.Snapshot()
}

func (uc *callReceiverUsecase) Status() models.CallStatus {
	return uc.state.Snapshot().Status
}

func (uc *callReceiverUsecase) Session() models.CallSession {
	return uc.state.Snapshot().Session
}

func (uc *callReceiverUsecase) IncomingCall() *events.CallIncomingEvent {
	return uc.state.Snapshot().IncomingCall
}

func (uc *callReceiverUsecase) HasIncomingCall() bool {
	return uc.state.Snapshot().HasIncomingCall
}

func (uc *callReceiverUsecase) HasJoiningRequest() bool {
	return uc.state.Snapshot().HasJoiningRequest
}

func (uc *callReceiverUsecase) Participants() []models.CallParticipant {
	return SortedParticipants(uc.state.Snapshot().Participants)
}

func (uc *callReceiverUsecase) InRoom() []models.CallParticipant {
	return uc.Filter("", true)
}

func (uc *callReceiverUsecase) Invited() []models.CallParticipant {
	return uc.Filter("", false)
}

func (uc *callReceiverUsecase) InvitedCount() int {
	return len(uc.Invited())
}

func (uc *callReceiverUsecase) Filter(query string, inRoom bool) []models.CallParticipant {
	return FilterParticipants(uc.Participants(), query, inRoom)
}

// SortedParticipants возвращает участников, отсортированных по userId
func SortedParticipants(roster map[string]models.CallParticipant) []models.CallParticipant {
	participants := slices.Collect(maps.Values(roster))
	slices.SortFunc(participants, func(a, b models.CallParticipant) int {
		return strings.Compare(a.UserID, b.UserID)
	})

	return participants
}

// FilterParticipants оставляет участников в комнате (inRoom) или приглашенных, query ищет по имени и email
func FilterParticipants(participants []models.CallParticipant, query string, inRoom bool) []models.CallParticipant {
	query = strings.ToLower(strings.TrimSpace(query))

	var result []models.CallParticipant

	for _, p := range participants {
		if (p.Status == models.ParticipantStatusAccepted) != inRoom {
			continue
		}

		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Email), query) {
			continue
		}

		result = append(result, p)
	}

	return result
}

func sessionFromIncoming(e events.CallIncomingEvent) models.CallSession {
	callees := slices.Sorted(maps.Keys(e.Participants))

	return models.CallSession{
		ConversationID: e.ConversationID,
		CallerID:       e.CallerID,
		CalleeIDs:      callees,
		CallType:       e.CallType,
		TimeoutSeconds: e.Timeout,
	}
}

func eventTime(ts int64) time.Time {
	if ts <= 0 {
		return time.Now()
	}

	return time.Unix(ts, 0)
}
