package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event is a structured log event received from the monitoring host.
// It is read-only once received.
type Event struct {
	ID              string         `json:"id"`
	Level           Level          `json:"level"`
	RenderedMessage string         `json:"renderedMessage"`
	EventType       string         `json:"eventType"`
	Properties      map[string]any `json:"properties,omitempty"`
}

// eventPayload is the wire form of Event. The id may arrive as a JSON
// string or number.
type eventPayload struct {
	Event
	ID json.RawMessage `json:"id"`
}

// DecodeEvent parses an event from JSON. Numbers in properties are kept as
// json.Number, a numeric id is kept in its literal form and a missing id is
// replaced by a random UUID.
func DecodeEvent(data []byte) (*Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p eventPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	id, err := decodeEventID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	e := p.Event
	e.ID = id
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return &e, nil
}

func decodeEventID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("id: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id must be a string or a number: %w", err)
	}
	return n.String(), nil
}
