// Package events carries engine notifications to SSE clients.
package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing        = "ping"
	TypeRunStarted  = "run_started"
	TypeRunFinished = "run_finished"
	TypeAlert       = "alert_created"
	TypeConfig      = "config_updated"
)

// Version is the envelope version clients should expect.
const Version = 1

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds an envelope. Data that cannot be marshalled is dropped.
func New(reqID, typ string, data any) Event {
	e := Event{Type: typ, Version: Version, At: time.Now().UTC(), RequestID: reqID}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

func (e Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}
