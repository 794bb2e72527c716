package wire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// tagged is the wire form of a single value: a type tag plus a payload.
// Integers and links travel as JSON numbers and are decoded through
// json.Number so 64-bit values survive the round trip.
type tagged struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Codec is the tagged-JSON value codec. It round-trips boolean, integer,
// floating-point, UTF-8 string, and record link values.
type Codec struct{}

var _ types.Codec = Codec{}

// Encode converts a native value to its wire form.
func (Codec) Encode(v types.Value) (json.RawMessage, error) { return Encode(v) }

// Decode converts a wire value back to its native form.
func (Codec) Decode(raw json.RawMessage) (types.Value, error) { return Decode(raw) }

// Encode converts a native value to its wire form.
func Encode(v types.Value) (json.RawMessage, error) {
	var payload any
	switch v.Kind() {
	case types.KindBool:
		payload = v.Bool()
	case types.KindInt:
		payload = v.Int()
	case types.KindFloat:
		payload = v.Float()
	case types.KindString:
		payload = v.Str()
	case types.KindLink:
		payload = int64(v.Link())
	default:
		return nil, fmt.Errorf("wire: unknown value kind %d", v.Kind())
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", v.Kind(), err)
	}
	return json.Marshal(tagged{Type: v.Kind().String(), Value: raw})
}

// Decode converts a wire value back to its native form.
func Decode(raw json.RawMessage) (types.Value, error) {
	var t tagged
	if err := json.Unmarshal(raw, &t); err != nil {
		return types.Value{}, fmt.Errorf("wire: decode value: %w", err)
	}
	switch t.Type {
	case "boolean":
		var b bool
		if err := json.Unmarshal(t.Value, &b); err != nil {
			return types.Value{}, fmt.Errorf("wire: decode boolean: %w", err)
		}
		return types.Bool(b), nil
	case "integer":
		i, err := decodeInt64(t.Value)
		if err != nil {
			return types.Value{}, fmt.Errorf("wire: decode integer: %w", err)
		}
		return types.Int(i), nil
	case "float":
		var f float64
		if err := json.Unmarshal(t.Value, &f); err != nil {
			return types.Value{}, fmt.Errorf("wire: decode float: %w", err)
		}
		return types.Float(f), nil
	case "string":
		var s string
		if err := json.Unmarshal(t.Value, &s); err != nil {
			return types.Value{}, fmt.Errorf("wire: decode string: %w", err)
		}
		return types.String(s), nil
	case "link":
		i, err := decodeInt64(t.Value)
		if err != nil {
			return types.Value{}, fmt.Errorf("wire: decode link: %w", err)
		}
		return types.LinkTo(i), nil
	default:
		return types.Value{}, fmt.Errorf("wire: unknown value tag %q", t.Type)
	}
}

func decodeInt64(raw json.RawMessage) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, err
	}
	return n.Int64()
}

// EncodeValues encodes a slice of native values.
func EncodeValues(vs []types.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(vs))
	for _, v := range vs {
		raw, err := Encode(v)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// DecodeValues decodes a slice of wire values.
func DecodeValues(raws []json.RawMessage) ([]types.Value, error) {
	out := make([]types.Value, 0, len(raws))
	for _, raw := range raws {
		v, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
