package chat

import (
	"encoding/json"

	"WChat/tools/errs"
)

// Events emitted to connections.
const (
	EventOnlineUsers = "online-users"
	EventNewMessage  = "new-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
	EventUserDeleted = "user-deleted"
)

// Frame is the wire format in both directions: a named event plus an
// arbitrary JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingData is the client payload for typing / stop-typing.
type TypingData struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

func ParseFrameJSON(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errs.WrapMsg(err, "bad frame")
	}
	if f.Event == "" {
		return nil, errs.New("frame missing event")
	}
	return &f, nil
}

func EncodeFrameJSON(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errs.WrapMsg(err, "encode frame data", "event", event)
	}
	return json.Marshal(Frame{Event: event, Data: payload})
}
