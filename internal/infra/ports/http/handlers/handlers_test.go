package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/confeet-agent/internal/domain/models"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
	"github.com/qrave1/confeet-agent/internal/infra/adapters/memory"
	"github.com/qrave1/confeet-agent/internal/infra/ports/http/dto"
	"github.com/qrave1/confeet-agent/internal/usecase"
)

type stubTransport struct {
	mu     sync.Mutex
	closed bool
	events []string
}

func (s *stubTransport) Send(event string, _ any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.events = append(s.events, event)

	return true
}

func (s *stubTransport) On(string, func(json.RawMessage)) func() {
	return func() {}
}

func (s *stubTransport) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.closed
}

type stubSession struct{}

func (stubSession) GetUser() *models.User {
	return &models.User{ID: "u1", Name: "Agent"}
}

func (stubSession) IsLoggedIn() bool {
	return true
}

type stubHistory struct{}

func (stubHistory) FetchMessages(context.Context, string, int, int) ([]models.Message, error) {
	return []models.Message{{ID: "h1", Body: "old"}}, nil
}

type stubMedia struct {
	mu   sync.Mutex
	room *models.MediaRoom
}

func (m *stubMedia) JoinRoom(_ context.Context, room models.MediaRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.room = &room

	return nil
}

func (m *stubMedia) LeaveRoom(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.room = nil
}

func (m *stubMedia) Current() (models.MediaRoom, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.room == nil {
		return models.MediaRoom{}, false
	}

	return *m.room, true
}

type testAPI struct {
	e         *echo.Echo
	transport *stubTransport
	media     *stubMedia
	state     *runtime.CallState
	call      *CallHandler
	chat      *ChatHandler
	conn      *ConnectionHandler
}

func newTestAPI() *testAPI {
	transport := &stubTransport{}
	media := &stubMedia{}
	state := runtime.NewCallState()
	notifications := memory.NewNotificationRepository()

	delivery := usecase.NewDeliveryUsecase(
		transport,
		stubSession{},
		stubHistory{},
		memory.NewMessageRepository(),
		memory.NewUnreadRepository(),
		memory.NewTypingRepository(),
		notifications,
		memory.NewLastMessageRepository(),
	)
	client := usecase.NewCallClientUsecase(transport, stubSession{}, delivery, state, 0)
	receiver := usecase.NewCallReceiverUsecase(transport, stubSession{}, media, notifications, state)

	return &testAPI{
		e:         echo.New(),
		transport: transport,
		media:     media,
		state:     state,
		call:      NewCallHandler(client, receiver, stubSession{}),
		chat:      NewChatHandler(delivery),
		conn:      NewConnectionHandler(transport, media, stubSession{}),
	}
}

func (a *testAPI) do(t *testing.T, method, target, body string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()

	if err := h(a.e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	return rec
}

func TestCallHandler_Initiate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		closed     bool
		wantStatus int
		wantCall   models.CallStatus
	}{
		{"audio", `{"conversation_id":"c1","callee_ids":["u2"]}`, false, http.StatusAccepted, models.CallStatusInitiated},
		{"video", `{"conversation_id":"c1","callee_ids":["u2"],"call_type":"video"}`, false, http.StatusAccepted, models.CallStatusInitiated},
		{"group", `{"conversation_id":"g1","callee_ids":["u2","u3"]}`, false, http.StatusAccepted, models.CallStatusInitiated},
		{"missing callees", `{"conversation_id":"c1"}`, false, http.StatusBadRequest, models.CallStatusNone},
		{"bad call type", `{"conversation_id":"c1","callee_ids":["u2"],"call_type":"fax"}`, false, http.StatusBadRequest, models.CallStatusNone},
		{"socket closed", `{"conversation_id":"c1","callee_ids":["u2"]}`, true, http.StatusServiceUnavailable, models.CallStatusInitiated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.transport.closed = tt.closed

			rec := api.do(t, http.MethodPost, "/api/v1/calls/initiate", tt.body, api.call.Initiate)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if got := api.state.Status.Get(); got != tt.wantCall {
				t.Fatalf("call status = %v, want %v", got, tt.wantCall)
			}
		})
	}
}

func TestCallHandler_State(t *testing.T) {
	api := newTestAPI()

	api.do(t, http.MethodPost, "/", `{"conversation_id":"c1","caller_id":"u9","reason":"declined"}`, api.call.Reject)

	rec := api.do(t, http.MethodGet, "/api/v1/calls/state", "", api.call.State)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp dto.CallStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Status != "REJECTED" || resp.StatusCode != models.CallStatusRejected || !resp.Terminal {
		t.Fatalf("state = %+v", resp)
	}
}

func TestCallHandler_AnswerValidation(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/", `{"conversation_id":"c1"}`, api.call.Accept)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	if len(api.transport.events) != 0 {
		t.Fatalf("events sent on invalid request: %v", api.transport.events)
	}
}

func TestCallHandler_RequestToJoinWithoutCall(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/", `{"user_id":"u3"}`, api.call.RequestToJoin)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCallHandler_Participants(t *testing.T) {
	api := newTestAPI()
	api.state.ReplaceRoster(map[string]models.CallParticipant{
		"a": {UserID: "a", Name: "Alice", Status: models.ParticipantStatusAccepted},
		"b": {UserID: "b", Name: "Bob", Status: models.ParticipantStatusRinging},
	})

	tests := []struct {
		target     string
		wantStatus int
		wantIDs    []string
	}{
		{"/?view=", http.StatusOK, []string{"a", "b"}},
		{"/?view=in_room", http.StatusOK, []string{"a"}},
		{"/?view=invited&q=bo", http.StatusOK, []string{"b"}},
		{"/?view=invited&q=zz", http.StatusOK, []string{}},
		{"/?view=everyone", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tt.target, "", api.call.Participants)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantIDs == nil {
				return
			}

			var resp dto.ParticipantsResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}

			if len(resp.Participants) != len(tt.wantIDs) {
				t.Fatalf("participants = %+v, want %v", resp.Participants, tt.wantIDs)
			}

			for i, id := range tt.wantIDs {
				if resp.Participants[i].UserID != id {
					t.Fatalf("participants[%d] = %q, want %q", i, resp.Participants[i].UserID, id)
				}
			}
		})
	}
}

func TestChatHandler_Flow(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, http.MethodPost, "/", "", api.chat.LoadHistory)
	if rec.Code != http.StatusConflict {
		t.Fatalf("history without conversation: status = %d, want 409", rec.Code)
	}

	rec = api.do(t, http.MethodPut, "/", `{"conversation_id":"c1","chat_open":true}`, api.chat.SetActive)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("set active: status = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/?page=1", "", api.chat.LoadHistory)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/", `{"body":"hello"}`, api.chat.SendMessage)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("send: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/", "", api.chat.Messages)

	var resp dto.MessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(resp.Messages) != 2 || resp.Messages[0].ID != "h1" || resp.Messages[1].Body != "hello" {
		t.Fatalf("messages = %+v", resp.Messages)
	}

	rec = api.do(t, http.MethodGet, "/", "", api.chat.State)

	var state dto.ChatStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if state.ActiveConversation != "c1" || !state.ChatOpen {
		t.Fatalf("chat state = %+v", state)
	}
}

func TestChatHandler_Validation(t *testing.T) {
	api := newTestAPI()

	tests := []struct {
		name string
		body string
		h    echo.HandlerFunc
	}{
		{"empty message", `{"conversation_id":"c1"}`, api.chat.SendMessage},
		{"message without conversation", `{"body":"x"}`, api.chat.SendMessage},
		{"seen without id", `{"conversation_id":"c1"}`, api.chat.MarkSeen},
		{"typing without conversation", `{"is_typing":true}`, api.chat.Typing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/", tt.body, tt.h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestConnectionHandler_Status(t *testing.T) {
	api := newTestAPI()
	api.transport.closed = true

	rec := api.do(t, http.MethodGet, "/", "", api.conn.Status)

	var resp dto.ConnectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.Connected || !resp.LoggedIn || resp.User == nil || resp.User.ID != "u1" || resp.MediaRoom != nil {
		t.Fatalf("connection = %+v", resp)
	}

	api.media.room = &models.MediaRoom{ConversationID: "c1", RoomName: "room-1", Token: "secret", Identity: "u1"}

	rec = api.do(t, http.MethodGet, "/", "", api.conn.Status)

	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("token leaked: %s", rec.Body.String())
	}

	resp = dto.ConnectionResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp.MediaRoom == nil || resp.MediaRoom.RoomName != "room-1" {
		t.Fatalf("media room = %+v", resp.MediaRoom)
	}
}
