package channel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode parses the JSON wire form of a channel. The variant is selected by
// the "type" discriminator; an unknown or missing tag fails fast. Embedded
// suppression configs are validated as part of decoding.
func Decode(data []byte) (Channel, error) {
	var probe struct {
		Type ChannelType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode channel: %w", err)
	}
	ch, err := New(probe.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, ch); err != nil {
		return nil, fmt.Errorf("decode %s channel: %w", probe.Type, err)
	}
	for _, sc := range ch.SuppressionConfigs() {
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("decode %s channel: %w", probe.Type, err)
		}
	}
	return ch, nil
}

// Encode renders the JSON wire form of a channel, with the "type"
// discriminator taken from the concrete variant so the tag can never
// disagree with it.
func Encode(ch Channel) ([]byte, error) {
	if ch == nil {
		return nil, errors.New("encode nil channel")
	}
	b, err := json.Marshal(ch)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(ch.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// DecodeAll parses a list of channel wire forms.
func DecodeAll(raws []json.RawMessage) ([]Channel, error) {
	out := make([]Channel, 0, len(raws))
	for _, r := range raws {
		ch, err := Decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

// EncodeAll renders a list of channels to their wire forms.
func EncodeAll(chs []Channel) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(chs))
	for _, ch := range chs {
		b, err := Encode(ch)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
