// Package savepoint implements the Savepoint identity, and the
// SavepointVector catalog of savepoints and their per-savepoint
// field -> FieldID mappings.
package savepoint

import (
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

// Savepoint is identified by (name, MetaInfoMap); equal iff names match
// and MetaInfoMaps are value-equal.
type Savepoint struct {
	Name string
	Meta *metainfo.Map
}

// New constructs a Savepoint with a fresh, empty MetaInfoMap.
func New(name string) *Savepoint {
	return &Savepoint{Name: name, Meta: metainfo.NewMap()}
}

// Validate enforces "name: non-empty UTF-8".
func (sp *Savepoint) Validate() error {
	if sp.Name == "" {
		return errs.New(errs.TypeIDInvalid, "savepoint name must not be empty")
	}
	return nil
}

// Equal implements Savepoint equality: fast-path short-circuits on
// name inequality before comparing meta.
func (sp *Savepoint) Equal(other *Savepoint) bool {
	if sp.Name != other.Name {
		return false
	}
	return sp.Meta.Equal(other.Meta)
}

// FieldID is the opaque handle = (field-name, occurrence-index) linking a
// catalog entry to archive bytes.
type FieldID struct {
	FieldName  string
	Occurrence uint64
}
