package runtime

import (
	"sync"
	"testing"

	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/models"
)

func TestValue_SubscribeNoReplay(t *testing.T) {
	v := NewValue(1)

	var got []int
	cancel := v.Subscribe(func(n int) { got = append(got, n) })

	if len(got) != 0 {
		t.Fatalf("subscriber received %v before any change", got)
	}

	v.Set(2)
	v.Update(func(n int) int { return n * 10 })

	cancel()
	v.Set(3)

	if len(got) != 2 || got[0] != 2 || got[1] != 20 {
		t.Fatalf("got %v, want [2 20]", got)
	}

	if v.Get() != 3 {
		t.Fatalf("Get = %d, want 3", v.Get())
	}
}

func TestValue_SubscriberMaySubscribe(t *testing.T) {
	v := NewValue("")

	var inner int
	v.Subscribe(func(string) {
		v.Subscribe(func(string) { inner++ })
	})

	v.Set("a")
	v.Set("b")

	// второй подписчик появился после первого Set и видит только второй
	if inner != 1 {
		t.Fatalf("inner = %d, want 1", inner)
	}
}

func TestValue_ConcurrentUpdate(t *testing.T) {
	v := NewValue(0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()

	if v.Get() != 50 {
		t.Fatalf("Get = %d, want 50", v.Get())
	}
}

func TestCallState_SetStatusSyncsSession(t *testing.T) {
	s := NewCallState()
	s.Begin(models.CallSession{ConversationID: "c1"})

	s.SetStatus(models.CallStatusRinging)

	if got := s.Session.Get(); got.Status != models.CallStatusRinging || got.ConversationID != "c1" {
		t.Fatalf("session = %+v", got)
	}

	if s.Status.Get() != models.CallStatusRinging {
		t.Fatalf("status = %v", s.Status.Get())
	}
}

func TestCallState_ResetKeepsJoiningRequest(t *testing.T) {
	s := NewCallState()
	s.IncomingCall.Set(&events.CallIncomingEvent{CallerID: "u9"})
	s.HasIncomingCall.Set(true)
	s.HasJoiningRequest.Set(true)
	s.ReplaceRoster(map[string]models.CallParticipant{"u9": {UserID: "u9"}})

	s.Reset()

	if s.HasIncomingCall.Get() || s.IncomingCall.Get() != nil {
		t.Fatalf("incoming call not reset")
	}

	if !s.HasJoiningRequest.Get() {
		t.Fatalf("hasJoiningRequest cleared")
	}

	if len(s.Roster()) != 1 {
		t.Fatalf("roster cleared")
	}
}

func TestCallState_Roster(t *testing.T) {
	s := NewCallState()

	src := map[string]models.CallParticipant{"a": {UserID: "a", Status: models.ParticipantStatusRinging}}
	s.ReplaceRoster(src)

	src["b"] = models.CallParticipant{UserID: "b"}
	if len(s.Roster()) != 1 {
		t.Fatalf("roster shares caller map")
	}

	if !s.PatchParticipant("a", func(p *models.CallParticipant) { p.Status = models.ParticipantStatusAccepted }) {
		t.Fatalf("PatchParticipant(a) reported missing")
	}

	if s.PatchParticipant("z", func(*models.CallParticipant) {}) {
		t.Fatalf("PatchParticipant(z) reported found")
	}

	roster := s.Roster()
	if roster["a"].Status != models.ParticipantStatusAccepted {
		t.Fatalf("a = %+v", roster["a"])
	}

	roster["a"] = models.CallParticipant{}
	if s.Roster()["a"].UserID != "a" {
		t.Fatalf("Roster returned shared map")
	}
}

func TestCallState_TransitionNotifiesAfterCommit(t *testing.T) {
	s := NewCallState()

	var seen []CallSnapshot
	s.HasIncomingCall.Subscribe(func(bool) {
		seen = append(seen, CallSnapshot{
			Status:          s.Status.Get(),
			Session:         s.Session.Get(),
			IncomingCall:    s.IncomingCall.Get(),
			HasIncomingCall: s.HasIncomingCall.Get(),
		})
	})

	var sessions []models.CallSession
	s.Session.Subscribe(func(cs models.CallSession) { sessions = append(sessions, cs) })

	s.Transition(func() {
		s.Begin(models.CallSession{ConversationID: "c1", CallerID: "u9"})
		s.IncomingCall.Set(&events.CallIncomingEvent{ConversationID: "c1", CallerID: "u9"})
		s.HasIncomingCall.Set(true)

		if len(seen) != 0 {
			t.Fatalf("observer ran inside transition")
		}

		s.SetStatus(models.CallStatusRinging)
	})

	if len(seen) != 1 {
		t.Fatalf("observer ran %d times, want 1", len(seen))
	}

	got := seen[0]
	if got.Status != models.CallStatusRinging || got.Session.Status != models.CallStatusRinging || got.IncomingCall == nil {
		t.Fatalf("observer saw partial state %+v", got)
	}

	if len(sessions) != 1 || sessions[0].ConversationID != "c1" || sessions[0].Status != models.CallStatusRinging {
		t.Fatalf("session notifications = %+v, want one final session", sessions)
	}
}

func TestCallState_ObserverMayReadSnapshotAndTransition(t *testing.T) {
	s := NewCallState()

	var snap CallSnapshot
	s.Status.Subscribe(func(status models.CallStatus) {
		snap = s.Snapshot()

		if status == models.CallStatusRejected {
			s.Transition(s.Reset)
		}
	})

	s.Transition(func() {
		s.HasIncomingCall.Set(true)
		s.SetStatus(models.CallStatusRejected)
	})

	if snap.Status != models.CallStatusRejected || !snap.HasIncomingCall {
		t.Fatalf("snapshot = %+v", snap)
	}

	if s.HasIncomingCall.Get() {
		t.Fatalf("nested transition from observer not applied")
	}
}

func TestCallState_SnapshotIsConsistent(t *testing.T) {
	s := NewCallState()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		for i := range 200 {
			ringing := i%2 == 0
			s.Transition(func() {
				s.HasIncomingCall.Set(ringing)
				if ringing {
					s.SetStatus(models.CallStatusRinging)
				} else {
					s.SetStatus(models.CallStatusRejected)
				}
			})
		}
	}()

	for range 200 {
		snap := s.Snapshot()
		if snap.HasIncomingCall != (snap.Status == models.CallStatusRinging) {
			t.Errorf("mixed snapshot: hasIncomingCall=%v status=%v", snap.HasIncomingCall, snap.Status)
			break
		}

		if snap.Session.Status != snap.Status {
			t.Errorf("session status %v, status %v", snap.Session.Status, snap.Status)
			break
		}
	}

	wg.Wait()
}
