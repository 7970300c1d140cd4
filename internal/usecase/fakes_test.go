package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/qrave1/confeet-agent/internal/domain/models"
)

type sentFrame struct {
	event   string
	payload any
}

type handlerEntry struct {
	id int
	fn func(json.RawMessage)
}

// fakeTransport записывает отправленные кадры и раздает входящие события синхронно
type fakeTransport struct {
	mu       sync.Mutex
	closed   bool
	sent     []sentFrame
	handlers map[string][]handlerEntry
	nextID   int

	// onSend вызывается до записи кадра
	onSend func(event string)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string][]handlerEntry)}
}

func (f *fakeTransport) Send(event string, payload any) bool {
	if f.onSend != nil {
		f.onSend(event)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}

	f.sent = append(f.sent, sentFrame{event: event, payload: payload})

	return true
}

func (f *fakeTransport) On(event string, fn func(json.RawMessage)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.handlers[event] = append(f.handlers[event], handlerEntry{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		entries := f.handlers[event]
		for i, e := range entries {
			if e.id == id {
				f.handlers[event] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (f *fakeTransport) emit(t *testing.T, event string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s: %v", event, err)
	}

	f.mu.Lock()
	entries := append([]handlerEntry(nil), f.handlers[event]...)
	f.mu.Unlock()

	for _, e := range entries {
		e.fn(raw)
	}
}

func (f *fakeTransport) frames() []sentFrame {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]sentFrame(nil), f.sent...)
}

func (f *fakeTransport) last(t *testing.T) sentFrame {
	t.Helper()

	frames := f.frames()
	if len(frames) == 0 {
		t.Fatalf("no frames sent")
	}

	return frames[len(frames)-1]
}

// asMap приводит payload к виду, в котором он уйдет по сети
func asMap(t *testing.T, payload any) map[string]any {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	return m
}

type fakeSession struct {
	user *models.User
}

func newFakeSession(userID string) *fakeSession {
	if userID == "" {
		return &fakeSession{}
	}

	return &fakeSession{user: &models.User{ID: userID, Name: userID}}
}

func (s *fakeSession) GetUser() *models.User {
	return s.user
}

func (s *fakeSession) IsLoggedIn() bool {
	return s.user != nil
}

type fakeMedia struct {
	mu     sync.Mutex
	joined []models.MediaRoom
	left   int
	err    error
}

func (m *fakeMedia) JoinRoom(_ context.Context, room models.MediaRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.joined = append(m.joined, room)

	return nil
}

func (m *fakeMedia) LeaveRoom(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.left++
}

type fakeHistory struct {
	msgs  []models.Message
	err   error
	calls []int
}

func (h *fakeHistory) FetchMessages(_ context.Context, _ string, page, _ int) ([]models.Message, error) {
	h.calls = append(h.calls, page)

	if h.err != nil {
		return nil, h.err
	}

	return h.msgs, nil
}

type staticConversation string

func (c staticConversation) ActiveConversation() string {
	return string(c)
}
