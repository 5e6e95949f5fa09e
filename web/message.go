package web

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server WebSocket
// messages. The Type field is used for routing; Raw holds the full JSON
// payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	// Unmarshal just the type field
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// FlipMsg is sent by the client to flip a card.
type FlipMsg struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// MapMsg applies a named transform to the whole board.
type MapMsg struct {
	Type      string `json:"type"`
	Transform string `json:"transform"`
}

// --- Server-to-Client messages ---

// BoardMsg carries one BOARD_STATE snapshot. Sent in reply to look/flip/map
// and pushed on every board change.
type BoardMsg struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
