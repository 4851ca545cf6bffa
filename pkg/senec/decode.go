package senec

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"math"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// DecodeValue decodes one appliance value. The appliance encodes every
// value as "<type>_<hex>", e.g. "fl_43C80000" for the float32 400.0.
// Non-finite floats decode as 0.
func DecodeValue(raw string) (interface{}, error) {
	prefix, payload, ok := strings.Cut(raw, "_")
	if !ok {
		return raw, nil
	}

	if prefix == "st" {
		return payload, nil
	}

	b, err := hex.DecodeString(payload)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid hex in value %q", raw)
	}

	need := map[string]int{
		"fl": 4, "u8": 1, "i8": 1, "u1": 2, "i1": 2, "u3": 4, "i3": 4, "u6": 8,
	}
	n, known := need[prefix]
	if !known {
		// Unknown types are passed through undecoded.
		return raw, nil
	}
	if len(b) != n {
		return nil, pkgerrors.Errorf("value %q: expected %d bytes, got %d", raw, n, len(b))
	}

	switch prefix {
	case "fl":
		f := float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		// The appliance reports NaN for sensors that are not fitted.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0.0, nil
		}
		return f, nil
	case "u8":
		return float64(b[0]), nil
	case "i8":
		return float64(int8(b[0])), nil
	case "u1":
		return float64(binary.BigEndian.Uint16(b)), nil
	case "i1":
		return float64(int16(binary.BigEndian.Uint16(b))), nil
	case "u3":
		return float64(binary.BigEndian.Uint32(b)), nil
	case "i3":
		return float64(int32(binary.BigEndian.Uint32(b))), nil
	default: // u6
		return float64(binary.BigEndian.Uint64(b)), nil
	}
}

// decodeSections decodes a whole response. Arrays are decoded element-wise.
func decodeSections(raw map[string]map[string]json.RawMessage) (values, error) {
	out := values{}
	for section, fields := range raw {
		out[section] = map[string]interface{}{}
		for key, msg := range fields {
			v, err := decodeRaw(msg)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "failed to decode %s.%s", section, key)
			}
			out[section][key] = v
		}
	}
	return out, nil
}

func decodeRaw(msg json.RawMessage) (interface{}, error) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return DecodeValue(s)
	}

	var list []string
	if err := json.Unmarshal(msg, &list); err != nil {
		return nil, pkgerrors.Errorf("unsupported value %s", string(msg))
	}
	decoded := make([]interface{}, 0, len(list))
	for _, item := range list {
		v, err := DecodeValue(item)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, v)
	}
	return decoded, nil
}

// values holds decoded appliance values by section and key.
type values map[string]map[string]interface{}

func (v values) float(section, key string) float64 {
	f, _ := v[section][key].(float64)
	return f
}

func (v values) floats(section, key string) []float64 {
	list, ok := v[section][key].([]interface{})
	if !ok {
		if f, ok := v[section][key].(float64); ok {
			return []float64{f}
		}
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		f, _ := item.(float64)
		out = append(out, f)
	}
	return out
}
