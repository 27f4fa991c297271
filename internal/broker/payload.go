package broker

import "encoding/json"

// Payload is a Futurehome device command setting a binary switch.
// Field order matches the wire format.
type Payload struct {
	Service   string         `json:"serv"`
	Type      string         `json:"type"`
	ValueType string         `json:"val_t"`
	Value     bool           `json:"val"`
	Props     map[string]any `json:"props"`
	Tags      []string       `json:"tags"`
}

// NewPayload builds the switch command for the given state.
func NewPayload(on bool) Payload {
	return Payload{
		Service:   "out_bin_switch",
		Type:      "cmd.binary.set",
		ValueType: "bool",
		Value:     on,
		Props:     map[string]any{},
	}
}

// Marshal serializes the payload. Props encodes as {} and Tags as null.
func (p Payload) Marshal() ([]byte, error) {
	if p.Props == nil {
		p.Props = map[string]any{}
	}
	return json.Marshal(p)
}
