package field

import "github.com/joshuapare/serialbox/errs"

// Map is name -> MetaInfo, keys unique, with a total ordering by
// insertion index exposed for enumeration.
type Map struct {
	order []string
	byName map[string]*MetaInfo
}

// NewMap returns an empty FieldMap.
func NewMap() *Map {
	return &Map{byName: make(map[string]*MetaInfo)}
}

// RegisterField inserts info under name if absent; if present, attempts
// Extend on the existing entry, treating a matching re-registration as an
// idempotent no-op. Returns whether a new entry was created. Fails with
// FieldAlreadyRegisteredButDifferent if a present entry's shape or meta
// conflicts with info.
func (m *Map) RegisterField(name string, info *MetaInfo) (created bool, err error) {
	if name == "" {
		return false, errs.New(errs.TypeIDInvalid, "field name must not be empty")
	}
	if err := info.Validate(); err != nil {
		return false, err
	}
	existing, ok := m.byName[name]
	if !ok {
		m.byName[name] = info
		m.order = append(m.order, name)
		return true, nil
	}
	if err := existing.Extend(info); err != nil {
		if e, ok := err.(*errs.Error); ok {
			return false, e.WithField(name)
		}
		return false, err
	}
	return false, nil
}

// FindField returns the registered MetaInfo for name, or
// FieldNotRegistered.
func (m *Map) FindField(name string) (*MetaInfo, error) {
	info, ok := m.byName[name]
	if !ok {
		return nil, errs.Newf(errs.FieldNotRegistered, "field %q is not registered", name).WithField(name)
	}
	return info, nil
}

// Has reports whether name is registered.
func (m *Map) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Enumerate calls fn for every registered field, in insertion order.
func (m *Map) Enumerate(fn func(name string, info *MetaInfo)) {
	for _, name := range m.order {
		fn(name, m.byName[name])
	}
}

// Names returns registered field names in insertion order.
func (m *Map) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Size returns the number of registered fields.
func (m *Map) Size() int { return len(m.order) }
