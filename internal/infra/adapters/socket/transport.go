package socket

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qrave1/confeet-agent/internal/application/constant"
	"github.com/qrave1/confeet-agent/internal/application/metric"
	"github.com/qrave1/confeet-agent/internal/domain/events"
	"github.com/qrave1/confeet-agent/internal/domain/runtime"
)

const writeWait = 10 * time.Second

type Options struct {
	ReconnectInterval time.Duration
	HeartbeatInterval time.Duration
	HandshakeTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		ReconnectInterval: 3 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWS) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return s.conn.WriteJSON(v)
}

type handler struct {
	id int
	fn func(json.RawMessage)
}

// Transport держит одно переподключаемое соединение с сигнальным сервером
type Transport struct {
	opts   Options
	dialer *websocket.Dialer

	mu       sync.Mutex
	endpoint string
	userID   string
	// cancel != nil пока цикл соединения активен, в том числе во время ожидания переподключения
	cancel context.CancelFunc
	done   chan struct{}
	ws     *safeWS

	handlersMu sync.RWMutex
	handlers   map[string][]handler
	nextID     int

	connected atomic.Bool

	// Подписчики OnConnectionChange вызываются из отдельной горутины, не из цикла соединения
	link        *runtime.Value[bool]
	changesMu   sync.Mutex
	changes     []bool
	changeReady chan struct{}
	notifyOnce  sync.Once
}

// NewTransport создает транспорт. Нулевые поля opts берутся из DefaultOptions.
func NewTransport(opts Options) *Transport {
	defaults := DefaultOptions()

	opts.ReconnectInterval = cmp.Or(opts.ReconnectInterval, defaults.ReconnectInterval)
	opts.HeartbeatInterval = cmp.Or(opts.HeartbeatInterval, defaults.HeartbeatInterval)
	opts.HandshakeTimeout = cmp.Or(opts.HandshakeTimeout, defaults.HandshakeTimeout)

	t := &Transport{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		handlers:  make(map[string][]handler),
		link:        runtime.NewValue(false),
		changeReady: make(chan struct{}, 1),
	}

	Subscribe(t, events.EventPong, func(p events.PongPayload) {
		slog.Debug("pong received", slog.String("timestamp", p.Timestamp))
	})

	return t
}

// Connect запускает цикл соединения. Повторный вызов при активном цикле ничего не открывает,
// но запоминает новые endpoint и userID для следующих попыток.
// Цикл живет, пока не отменен ctx или не вызван Disconnect.
func (t *Transport) Connect(ctx context.Context, endpoint, userID string) error {
	if _, err := buildURL(endpoint, userID); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.endpoint = endpoint
	t.userID = userID

	if t.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.cancel = cancel
	t.done = done

	t.notifyOnce.Do(func() {
		go t.notifyLoop()
	})

	go t.run(loopCtx, done)

	return nil
}

// Disconnect закрывает сокет и останавливает переподключение.
// Нельзя вызывать из обработчика события (On, Subscribe): он выполняется в цикле соединения, которого ждет Disconnect.
// Из подписчика OnConnectionChange вызывать можно.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	slog.Info("signaling transport disconnected")
}

func (t *Transport) Connected() bool {
	return t.connected.Load()
}

// OnConnectionChange вызывает fn при каждом открытии и закрытии сокета, в порядке изменений.
// fn выполняется асинхронно относительно цикла соединения, поэтому может вызывать Disconnect и Connect.
func (t *Transport) OnConnectionChange(fn func(connected bool)) func() {
	return t.link.Subscribe(fn)
}

// Send пишет кадр только в открытый сокет. Иначе кадр отбрасывается без очереди и повторов.
// Возвращает true, если кадр ушел в сокет.
func (t *Transport) Send(event string, payload any) bool {
	t.mu.Lock()
	ws := t.ws
	t.mu.Unlock()

	if ws == nil {
		slog.Debug("socket is not open, drop event", slog.String(constant.Event, event))
		metric.IncrementSendsDropped(event)

		return false
	}

	envelope, err := events.NewEnvelope(event, payload)
	if err != nil {
		slog.Error(
			"marshal event payload",
			slog.Any(constant.Error, err),
			slog.String(constant.Event, event),
		)
		metric.IncrementSendsDropped(event)

		return false
	}

	if err = ws.writeJSON(envelope); err != nil {
		slog.Warn(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.String(constant.Event, event),
		)
		metric.IncrementSendsDropped(event)

		return false
	}

	metric.IncrementFramesSent(event)

	return true
}

// On подписывает fn на событие. Подписчики вызываются в порядке регистрации,
// кадры приходят в порядке получения из сокета.
func (t *Transport) On(event string, fn func(json.RawMessage)) func() {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()

	t.nextID++
	id := t.nextID
	t.handlers[event] = append(t.handlers[event], handler{id: id, fn: fn})

	return func() {
		t.handlersMu.Lock()
		defer t.handlersMu.Unlock()

		hs := t.handlers[event]
		for i, h := range hs {
			if h.id == id {
				t.handlers[event] = append(hs[:i:i], hs[i+1:]...)
				return
			}
		}
	}
}

// Subscribe - типизированная подписка на событие
func Subscribe[T any](t *Transport, event string, fn func(T)) func() {
	return t.On(event, events.Handle(fn))
}

func (t *Transport) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	defer func() {
		t.mu.Lock()
		if t.done == done {
			t.cancel = nil
			t.done = nil
		}
		t.mu.Unlock()
	}()

	for {
		if err := t.openSocket(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("signaling socket closed, reconnecting", slog.Any(constant.Error, err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.opts.ReconnectInterval):
		}

		metric.IncrementReconnects()
	}
}

func (t *Transport) openSocket(ctx context.Context) error {
	t.mu.Lock()
	endpoint, userID := t.endpoint, t.userID
	t.mu.Unlock()

	wsURL, err := buildURL(endpoint, userID)
	if err != nil {
		return err
	}

	slog.Info("connecting to signaling server", slog.String(constant.URL, endpoint))

	conn, _, err := t.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopClose := context.AfterFunc(connCtx, func() {
		conn.Close()
	})
	defer stopClose()

	t.setSocket(&safeWS{conn: conn})
	defer t.clearSocket(conn)

	slog.Info("signaling socket connected", slog.String(constant.UserID, userID))

	t.Send(events.EventHeartbeat, events.HeartbeatPayload{UserID: userID})
	go t.heartbeat(connCtx, userID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return t.readError(err)
		}

		var envelope events.Envelope

		if err = json.Unmarshal(data, &envelope); err != nil {
			slog.Error("unmarshal websocket message", slog.Any(constant.Error, err))
			continue
		}

		metric.IncrementFramesReceived(envelope.Event, t.dispatch(envelope))
	}
}

func (t *Transport) heartbeat(ctx context.Context, userID string) {
	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Send(events.EventHeartbeat, events.HeartbeatPayload{UserID: userID})
		}
	}
}

// dispatch возвращает false, если на событие никто не подписан
func (t *Transport) dispatch(envelope events.Envelope) bool {
	t.handlersMu.RLock()
	hs := t.handlers[envelope.Event]
	t.handlersMu.RUnlock()

	if len(hs) == 0 {
		slog.Debug("no handlers for event", slog.String(constant.Event, envelope.Event))
		return false
	}

	for _, h := range hs {
		h.fn(envelope.Payload)
	}

	return true
}

func (t *Transport) setSocket(ws *safeWS) {
	t.mu.Lock()
	t.ws = ws
	t.mu.Unlock()

	metric.SetWSConnected(true)
	t.connected.Store(true)
	t.queueChange(true)
}

func (t *Transport) clearSocket(conn *websocket.Conn) {
	t.mu.Lock()
	t.ws = nil
	t.mu.Unlock()

	conn.Close()

	metric.SetWSConnected(false)
	t.connected.Store(false)
	t.queueChange(false)
}

func (t *Transport) queueChange(connected bool) {
	t.changesMu.Lock()
	t.changes = append(t.changes, connected)
	t.changesMu.Unlock()

	select {
	case t.changeReady <- struct{}{}:
	default:
	}
}

// notifyLoop доставляет изменения состояния сокета подписчикам. Живет столько же, сколько транспорт.
func (t *Transport) notifyLoop() {
	for range t.changeReady {
		t.changesMu.Lock()
		batch := t.changes
		t.changes = nil
		t.changesMu.Unlock()

		for _, connected := range batch {
			t.link.Set(connected)
		}
	}
}

func (t *Transport) readError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("signaling server closed websocket", slog.Int("code", closeErr.Code))
		default:
			slog.Warn("websocket close error", slog.Int("code", closeErr.Code))
		}
	}

	return fmt.Errorf("read websocket: %w", err)
}

func buildURL(endpoint, userID string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
