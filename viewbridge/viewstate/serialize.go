package viewstate

import (
	"encoding/json"
	"reflect"
)

// MarshalSnapshot serialises a Snapshot to JSON.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot deserialises a Snapshot from JSON.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Clone returns a deep copy of the props bag. Nested maps and slices coming
// from a decoded JSON value are copied too, so the snapshot never aliases the
// source bag.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// String returns the value under key when it is a non-empty string.
func (p Props) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Equal reports whether two view states are deep-equal.
func Equal(a, b ViewState) bool {
	if len(a) != len(b) {
		return false
	}
	for id, av := range a {
		bv, ok := b[id]
		if !ok {
			return false
		}
		if av.NodeID != bv.NodeID || av.Rect != bv.Rect {
			return false
		}
		if len(av.Slots) != len(bv.Slots) {
			return false
		}
		for name, as := range av.Slots {
			if bs, ok := bv.Slots[name]; !ok || as != bs {
				return false
			}
		}
		if !reflect.DeepEqual(av.Props, bv.Props) {
			return false
		}
	}
	return true
}
