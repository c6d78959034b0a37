package savepoint

import "github.com/joshuapare/serialbox/errs"

// entry holds one savepoint plus its field-name -> FieldID mapping, with
// fieldOrder recording insertion order of the first AddField call for
// each field within this savepoint.
type entry struct {
	sp         *Savepoint
	fieldOrder []string
	fields     map[string]FieldID
}

// Vector is the ordered sequence of Savepoints plus the associative
// field-name -> FieldID table per savepoint.
type Vector struct {
	entries []*entry
	// nextOccurrence tracks, per field name, the next occurrence counter
	// across the whole vector: "the counter for a given field-name across
	// the whole SavepointVector is strictly increasing in order of
	// writes".
	nextOccurrence map[string]uint64
}

// NewVector returns an empty SavepointVector.
func NewVector() *Vector {
	return &Vector{nextOccurrence: make(map[string]uint64)}
}

func (v *Vector) find(sp *Savepoint) (int, *entry) {
	for i, e := range v.entries {
		if e.sp.Equal(sp) {
			return i, e
		}
	}
	return -1, nil
}

// Insert appends sp and returns its index. Fails with
// SavepointAlreadyExists if an equal savepoint is already
// present; the name alone may repeat provided meta differs.
func (v *Vector) Insert(sp *Savepoint) (int, error) {
	if err := sp.Validate(); err != nil {
		return -1, err
	}
	if i, _ := v.find(sp); i >= 0 {
		return -1, errs.Newf(errs.SavepointAlreadyExists, "savepoint %q already exists", sp.Name).WithSavepoint(sp.Name)
	}
	v.entries = append(v.entries, &entry{sp: sp, fields: make(map[string]FieldID)})
	return len(v.entries) - 1, nil
}

// Has reports whether an equal savepoint is already present.
func (v *Vector) Has(sp *Savepoint) bool {
	i, _ := v.find(sp)
	return i >= 0
}

// AddField allocates a fresh FieldID for (sp, fieldName) and records it.
// Fails with FieldAlreadyExistsAtSavepoint if the cell is already
// occupied, or with FieldNotExistsAtSavepoint if sp itself is not present
// in the vector.
func (v *Vector) AddField(sp *Savepoint, fieldName string) (FieldID, error) {
	_, e := v.find(sp)
	if e == nil {
		return FieldID{}, errs.Newf(errs.FieldNotExistsAtSavepoint, "savepoint %q not in vector", sp.Name).WithSavepoint(sp.Name)
	}
	if _, ok := e.fields[fieldName]; ok {
		return FieldID{}, errs.Newf(errs.FieldAlreadyExistsAtSavepoint,
			"field %q already exists at savepoint %q", fieldName, sp.Name).WithField(fieldName).WithSavepoint(sp.Name)
	}
	occ := v.nextOccurrence[fieldName]
	v.nextOccurrence[fieldName] = occ + 1
	id := FieldID{FieldName: fieldName, Occurrence: occ}
	e.fields[fieldName] = id
	e.fieldOrder = append(e.fieldOrder, fieldName)
	return id, nil
}

// RestoreField records a field occurrence exactly as loaded from a
// reopened catalog, without allocating a new occurrence counter, while
// still advancing the per-field-name counter so subsequent AddField calls
// in Append mode continue strictly after the highest restored occurrence
//.
func (v *Vector) RestoreField(sp *Savepoint, fieldName string, occurrence uint64) (FieldID, error) {
	_, e := v.find(sp)
	if e == nil {
		return FieldID{}, errs.Newf(errs.FieldNotExistsAtSavepoint, "savepoint %q not in vector", sp.Name).WithSavepoint(sp.Name)
	}
	if _, ok := e.fields[fieldName]; ok {
		return FieldID{}, errs.Newf(errs.FieldAlreadyExistsAtSavepoint,
			"field %q already exists at savepoint %q", fieldName, sp.Name).WithField(fieldName).WithSavepoint(sp.Name)
	}
	id := FieldID{FieldName: fieldName, Occurrence: occurrence}
	e.fields[fieldName] = id
	e.fieldOrder = append(e.fieldOrder, fieldName)
	if next := occurrence + 1; next > v.nextOccurrence[fieldName] {
		v.nextOccurrence[fieldName] = next
	}
	return id, nil
}

// SetFieldID overwrites the FieldID recorded for (sp, fieldName) — used
// once the Archive returns its authoritative FieldID.
func (v *Vector) SetFieldID(sp *Savepoint, fieldName string, id FieldID) error {
	_, e := v.find(sp)
	if e == nil {
		return errs.Newf(errs.FieldNotExistsAtSavepoint, "savepoint %q not in vector", sp.Name).WithSavepoint(sp.Name)
	}
	if _, ok := e.fields[fieldName]; !ok {
		return errs.Newf(errs.FieldNotExistsAtSavepoint,
			"field %q not recorded at savepoint %q", fieldName, sp.Name).WithField(fieldName).WithSavepoint(sp.Name)
	}
	e.fields[fieldName] = id
	return nil
}

// RemoveField undoes a provisional AddField, used to roll back step 4 on
// a later failure in the write path.
func (v *Vector) RemoveField(sp *Savepoint, fieldName string) {
	_, e := v.find(sp)
	if e == nil {
		return
	}
	if _, ok := e.fields[fieldName]; !ok {
		return
	}
	delete(e.fields, fieldName)
	for i, n := range e.fieldOrder {
		if n == fieldName {
			e.fieldOrder = append(e.fieldOrder[:i], e.fieldOrder[i+1:]...)
			break
		}
	}
}

// Lookup resolves the FieldID recorded for (sp, fieldName). Fails with
// FieldNotExistsAtSavepoint if either the savepoint or the field cell is
// absent.
func (v *Vector) Lookup(sp *Savepoint, fieldName string) (FieldID, error) {
	_, e := v.find(sp)
	if e == nil {
		return FieldID{}, errs.Newf(errs.FieldNotExistsAtSavepoint, "savepoint %q not in vector", sp.Name).WithSavepoint(sp.Name)
	}
	id, ok := e.fields[fieldName]
	if !ok {
		return FieldID{}, errs.Newf(errs.FieldNotExistsAtSavepoint,
			"field %q not found at savepoint %q", fieldName, sp.Name).WithField(fieldName).WithSavepoint(sp.Name)
	}
	return id, nil
}

// FieldsOf returns the per-savepoint field->FieldID mapping, iterated in
// the insertion order of the first AddField call for each field.
func (v *Vector) FieldsOf(sp *Savepoint) ([]FieldID, error) {
	_, e := v.find(sp)
	if e == nil {
		return nil, errs.Newf(errs.FieldNotExistsAtSavepoint, "savepoint %q not in vector", sp.Name).WithSavepoint(sp.Name)
	}
	out := make([]FieldID, 0, len(e.fieldOrder))
	for _, name := range e.fieldOrder {
		out = append(out, e.fields[name])
	}
	return out, nil
}

// Len returns the number of savepoints in the vector.
func (v *Vector) Len() int { return len(v.entries) }

// At returns the savepoint at index i, in original insertion order.
func (v *Vector) At(i int) *Savepoint {
	if i < 0 || i >= len(v.entries) {
		return nil
	}
	return v.entries[i].sp
}

// Enumerate calls fn for every savepoint, in insertion order.
func (v *Vector) Enumerate(fn func(sp *Savepoint)) {
	for _, e := range v.entries {
		fn(e.sp)
	}
}
