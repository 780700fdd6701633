package events

import (
	"encoding/json"
	"time"
)

// Event types the engine publishes over SSE.
const (
	TypePing          = "ping"
	TypeRunStarted    = "run_started"
	TypeRunCompleted  = "run_completed"
	TypeSignalStored  = "signal_stored"
	TypeConfigUpdated = "config_updated"
)

// Event is the envelope every published event travels in.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds a v1 envelope around data. A payload that fails to
// marshal degrades to an empty data field instead of blocking the
// publish.
func New(reqID, typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	return Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
}

// JSON renders the envelope for the SSE wire.
func (e Event) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}
