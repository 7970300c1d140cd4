package events

import "encoding/json"

// Envelope - общий формат кадра в обе стороны
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope сериализует payload в кадр
func NewEnvelope(event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Event: event, Payload: raw}, nil
}

// HeartbeatPayload - ping клиента, сервер отвечает pong
type HeartbeatPayload struct {
	UserID string `json:"userId"`
}

type PongPayload struct {
	Timestamp string `json:"timestamp"`
}

const (
	EventHeartbeat = "heartbeat"
	EventPong      = "pong"
)
