package metainfo

import (
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/joshuapare/serialbox/errs"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// wireEntry is the on-disk shape of one MetaInfoMap binding: the TypeID is
// carried as its stable string symbol so reload is type-exact.
type wireEntry struct {
	Key   string          `json:"key"`
	Type  string          `json:"type_id"`
	Value jsoniter.RawMessage `json:"value"`
}

// MarshalJSON encodes m as an ordered array of {key, type_id, value}
// entries, tagging each value with its TypeID symbol so reload is
// type-exact.
func (m *Map) MarshalJSON() ([]byte, error) {
	entries := make([]wireEntry, 0, m.Size())
	for _, k := range m.order {
		v := m.vals[k]
		raw, err := marshalValuePayload(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, wireEntry{Key: k, Type: v.Tag.String(), Value: raw})
	}
	return jsonAPI.Marshal(entries)
}

// UnmarshalJSON decodes the array form produced by MarshalJSON, restoring
// insertion order.
func (m *Map) UnmarshalJSON(data []byte) error {
	var entries []wireEntry
	if err := jsonAPI.Unmarshal(data, &entries); err != nil {
		return errs.Wrap(errs.MetaDataCorrupt, "decoding meta info map", err)
	}
	m.vals = make(map[string]Value, len(entries))
	m.order = make([]string, 0, len(entries))
	for _, e := range entries {
		tag, ok := ParseTypeID(e.Type)
		if !ok {
			return errs.Newf(errs.MetaDataCorrupt, "unknown type_id symbol %q for key %q", e.Type, e.Key)
		}
		v, err := unmarshalValuePayload(tag, e.Value)
		if err != nil {
			return errs.Wrap(errs.MetaDataCorrupt, "decoding value for key "+e.Key, err)
		}
		m.vals[e.Key] = v
		m.order = append(m.order, e.Key)
	}
	return nil
}

func marshalValuePayload(v Value) ([]byte, error) {
	switch v.Tag {
	case Boolean:
		b, _ := v.Bool()
		return jsonAPI.Marshal(b)
	case Int32:
		n, _ := v.Int32()
		return jsonAPI.Marshal(n)
	case Int64:
		n, _ := v.Int64()
		return jsonAPI.Marshal(n)
	case Float32:
		f, _ := v.Float32()
		return jsonAPI.Marshal(f)
	case Float64:
		f, _ := v.Float64()
		return jsonAPI.Marshal(f)
	case String:
		s, _ := v.String()
		return jsonAPI.Marshal(s)
	case ArrayBoolean:
		a, _ := v.BoolArray()
		return jsonAPI.Marshal(a)
	case ArrayInt32:
		a, _ := v.Int32Array()
		return jsonAPI.Marshal(a)
	case ArrayInt64:
		a, _ := v.Int64Array()
		return jsonAPI.Marshal(a)
	case ArrayFloat32:
		a, _ := v.Float32Array()
		return jsonAPI.Marshal(a)
	case ArrayFloat64:
		a, _ := v.Float64Array()
		return jsonAPI.Marshal(a)
	case ArrayString:
		a, _ := v.StringArray()
		return jsonAPI.Marshal(a)
	default:
		return nil, errs.Newf(errs.TypeIDInvalid, "cannot marshal tag %s", v.Tag)
	}
}

func unmarshalValuePayload(tag TypeID, raw []byte) (Value, error) {
	switch tag {
	case Boolean:
		var b bool
		if err := jsonAPI.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return NewBool(b), nil
	case Int32:
		var n int32
		if err := jsonAPI.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return NewInt32(n), nil
	case Int64:
		var n int64
		if err := jsonAPI.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return NewInt64(n), nil
	case Float32:
		var f float32
		if err := jsonAPI.Unmarshal(raw, &f); err != nil {
			return Value{}, err
		}
		return NewFloat32(f), nil
	case Float64:
		var f float64
		if err := jsonAPI.Unmarshal(raw, &f); err != nil {
			return Value{}, err
		}
		return NewFloat64(f), nil
	case String:
		var s string
		if err := jsonAPI.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return NewString(s), nil
	case ArrayBoolean:
		var a []bool
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewBoolArray(a), nil
	case ArrayInt32:
		var a []int32
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewInt32Array(a), nil
	case ArrayInt64:
		var a []int64
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewInt64Array(a), nil
	case ArrayFloat32:
		var a []float32
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewFloat32Array(a), nil
	case ArrayFloat64:
		var a []float64
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewFloat64Array(a), nil
	case ArrayString:
		var a []string
		if err := jsonAPI.Unmarshal(raw, &a); err != nil {
			return Value{}, err
		}
		return NewStringArray(a), nil
	default:
		return Value{}, errs.Newf(errs.TypeIDInvalid, "cannot unmarshal tag %s", tag)
	}
}

// SortedKeys returns m's keys sorted lexicographically; used by callers
// that want deterministic output independent of insertion order (e.g.
// diagnostics), as opposed to Keys() which preserves insertion order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}
