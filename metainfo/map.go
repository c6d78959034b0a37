package metainfo

import (
	"strings"

	"github.com/joshuapare/serialbox/errs"
)

// ReservedPrefix marks keys internal bookkeeping owns; Insert rejects any
// caller-supplied key carrying it.
const ReservedPrefix = "__serialbox_"

// Map is a mapping from UTF-8 key to Value, keys unique, insertion order
// preserved by Enumerate, Keys and the JSON encoding.
type Map struct {
	order []string
	vals  map[string]Value
}

// NewMap returns an empty MetaInfoMap.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// Insert binds key to value. Fails with MetaInfoKeyAlreadyExists if key is
// already bound, including reserved keys the caller did not create.
func (m *Map) Insert(key string, value Value) error {
	if _, exists := m.vals[key]; exists || isReserved(key) {
		return errs.Newf(errs.MetaInfoKeyAlreadyExists, "key %q already bound", key)
	}
	m.vals[key] = value
	m.order = append(m.order, key)
	return nil
}

// insertReserved binds key without the reserved-prefix check Insert
// applies; an already-bound key is left unchanged. Internal callers use
// this for the one reserved key the Serializer itself writes.
func (m *Map) insertReserved(key string, value Value) {
	if _, exists := m.vals[key]; exists {
		return
	}
	m.vals[key] = value
	m.order = append(m.order, key)
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, ReservedPrefix)
}

// SetReserved binds a reserved key, bypassing the ordinary Insert
// restriction. Exported for the handful of internal bookkeeping keys
// (e.g. creation timestamp) the Serializer itself writes; callers outside
// this module have no way to construct a key that satisfies isReserved
// except by using ReservedPrefix directly, which Insert still rejects.
func SetReserved(m *Map, key string, value Value) {
	m.insertReserved(key, value)
}

// At retrieves the value bound to key, converted to TypeID want via
// Value's widening/narrowing rules. Fails with MetaInfoKeyNotFound or
// MetaInfoTypeMismatch.
func (m *Map) At(key string, want TypeID) (Value, error) {
	v, ok := m.vals[key]
	if !ok {
		return Value{}, errs.Newf(errs.MetaInfoKeyNotFound, "key %q not found", key)
	}
	return v.As(want)
}

// Raw returns the value bound to key with no conversion applied.
func (m *Map) Raw(key string) (Value, error) {
	v, ok := m.vals[key]
	if !ok {
		return Value{}, errs.Newf(errs.MetaInfoKeyNotFound, "key %q not found", key)
	}
	return v, nil
}

// Has reports whether key is bound.
func (m *Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Erase removes key, if present. Erasing an absent key is a no-op.
func (m *Map) Erase(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Size returns the number of bound keys.
func (m *Map) Size() int { return len(m.order) }

// Enumerate calls fn for every (key, value) pair in insertion order. fn
// must not mutate m.
func (m *Map) Enumerate(fn func(key string, value Value)) {
	for _, k := range m.order {
		fn(k, m.vals[k])
	}
}

// Keys returns the bound keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Equal reports whether m and other bind the same key set to equal
// values under each value's own TypeID.
func (m *Map) Equal(other *Map) bool {
	if m.Size() != other.Size() {
		return false
	}
	for k, v := range m.vals {
		ov, ok := other.vals[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep, independent copy of m.
func (m *Map) Clone() *Map {
	c := NewMap()
	c.order = append([]string{}, m.order...)
	c.vals = make(map[string]Value, len(m.vals))
	for k, v := range m.vals {
		c.vals[k] = v
	}
	return c
}

// extendInto merges keys from other into m, failing (MetaInfoKeyAlreadyExists
// is NOT the semantics here — see field.Extend) only on value conflicts
// for keys shared by both maps. New keys from other are added. Used by
// FieldMetaInfo.Extend through the exported Extend wrapper below.
func (m *Map) extendInto(other *Map) error {
	for _, k := range other.order {
		ov := other.vals[k]
		if ev, ok := m.vals[k]; ok {
			if !ev.Equal(ov) {
				return errs.Newf(errs.MetaInfoTypeMismatch, "key %q has conflicting values", k)
			}
			continue
		}
		m.vals[k] = ov
		m.order = append(m.order, k)
	}
	return nil
}

// Extend merges other into m in place using extendInto's conflict rule.
func (m *Map) Extend(other *Map) error {
	return m.extendInto(other)
}
