package runtime

import (
	"maps"
	"sync"

	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
)

// CallState - единственная отслеживаемая сессия звонка.
// Изменяют только клиент и приемник сигналинга, остальные читают.
type CallState struct {
	Status            *Value[models.CallStatus]
	IncomingCall      *Value[*events.CallIncomingEvent]
	HasIncomingCall   *Value[bool]
	HasJoiningRequest *Value[bool]
	Participants      *Value[map[string]models.CallParticipant]
	Session           *Value[models.CallSession]

	mu sync.Mutex

	pendingMu    sync.Mutex
	inTransition bool
	pending      []heldNotification
}

type heldNotification struct {
	key     any
	publish func() func()
}

// CallSnapshot - согласованный срез всех полей CallState
type CallSnapshot struct {
	Status            models.CallStatus
	Session           models.CallSession
	IncomingCall      *events.CallIncomingEvent
	HasIncomingCall   bool
	HasJoiningRequest bool
	Participants      map[string]models.CallParticipant
}

func NewCallState() *CallState {
	s := &CallState{}

	s.Status = heldValue(s, models.CallStatusNone)
	s.IncomingCall = heldValue[*events.CallIncomingEvent](s, nil)
	s.HasIncomingCall = heldValue(s, false)
	s.HasJoiningRequest = heldValue(s, false)
	s.Participants = heldValue(s, map[string]models.CallParticipant{})
	s.Session = heldValue(s, models.CallSession{})

	return s
}

func heldValue[T any](s *CallState, initial T) *Value[T] {
	v := NewValue(initial)
	v.hold = s.hold

	return v
}

// Transition применяет группу изменений атомарно.
// Подписчики полей узнают об изменениях только после завершения fn и видят итоговые значения.
// Внутри fn нельзя вызывать Transition и Snapshot.
func (s *CallState) Transition(fn func()) {
	s.mu.Lock()

	s.pendingMu.Lock()
	s.inTransition = true
	s.pendingMu.Unlock()

	defer func() {
		s.pendingMu.Lock()
		held := s.pending
		s.pending = nil
		s.inTransition = false
		s.pendingMu.Unlock()

		notify := make([]func(), 0, len(held))
		for _, h := range held {
			notify = append(notify, h.publish())
		}

		s.mu.Unlock()

		for _, n := range notify {
			n()
		}
	}()

	fn()
}

// Snapshot читает все поля между переходами
func (s *CallState) Snapshot() CallSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CallSnapshot{
		Status:            s.Status.Get(),
		Session:           s.Session.Get(),
		IncomingCall:      s.IncomingCall.Get(),
		HasIncomingCall:   s.HasIncomingCall.Get(),
		HasJoiningRequest: s.HasJoiningRequest.Get(),
		Participants:      maps.Clone(s.Participants.Get()),
	}
}

// hold откладывает уведомление до конца текущего перехода. Повторные изменения поля дают одно уведомление.
func (s *CallState) hold(key any, publish func() func()) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if !s.inTransition {
		return false
	}

	for _, h := range s.pending {
		if h.key == key {
			return true
		}
	}

	s.pending = append(s.pending, heldNotification{key: key, publish: publish})

	return true
}

func (s *CallState) SetStatus(status models.CallStatus) {
	s.Session.Update(func(cs models.CallSession) models.CallSession {
		cs.Status = status
		return cs
	})
	s.Status.Set(status)
}

// Begin перезаписывает текущую сессию новой. Статус меняется отдельно через SetStatus.
func (s *CallState) Begin(session models.CallSession) {
	s.Session.Set(session)
}

// Reset сбрасывает только входящий звонок. Запрос на подключение и участники остаются.
func (s *CallState) Reset() {
	s.HasIncomingCall.Set(false)
	s.IncomingCall.Set(nil)
}

// ReplaceRoster заменяет список участников целиком
func (s *CallState) ReplaceRoster(participants map[string]models.CallParticipant) {
	roster := make(map[string]models.CallParticipant, len(participants))
	maps.Copy(roster, participants)

	s.Participants.Set(roster)
}

// PatchParticipant изменяет одного участника, если он есть в списке
func (s *CallState) PatchParticipant(userID string, fn func(*models.CallParticipant)) bool {
	var found bool

	s.Participants.Update(func(current map[string]models.CallParticipant) map[string]models.CallParticipant {
		p, ok := current[userID]
		if !ok {
			return current
		}

		found = true
		fn(&p)

		roster := maps.Clone(current)
		roster[userID] = p

		return roster
	})

	return found
}

// Roster возвращает копию списка участников
func (s *CallState) Roster() map[string]models.CallParticipant {
	return maps.Clone(s.Participants.Get())
}
