// Package field implements the per-field schema (FieldMetaInfo) and the
// registry of known fields (FieldMap).
package field

import (
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

// MetaInfo is the tuple (TypeID, dims, MetaInfoMap) describing a field's
// schema. Once registered, TypeID and Dims are immutable; Meta may be
// extended but never have an existing key's type changed.
type MetaInfo struct {
	Type TypeID
	Dims []int64
	Meta *metainfo.Map
}

// TypeID is re-exported from metainfo so callers of this package don't
// need a second import for the common case.
type TypeID = metainfo.TypeID

// New constructs a MetaInfo with a fresh, empty MetaInfoMap.
func New(t TypeID, dims []int64) *MetaInfo {
	d := make([]int64, len(dims))
	copy(d, dims)
	return &MetaInfo{Type: t, Dims: d, Meta: metainfo.NewMap()}
}

// Validate enforces "dims is a non-empty ordered sequence of positive
// integers".
func (f *MetaInfo) Validate() error {
	if !f.Type.Valid() || f.Type.IsArray() {
		return errs.Newf(errs.TypeIDInvalid, "field type %s is not a valid scalar element type", f.Type)
	}
	if len(f.Dims) == 0 {
		return errs.New(errs.DimensionMismatch, "dims must be non-empty")
	}
	for i, d := range f.Dims {
		if d <= 0 {
			return errs.Newf(errs.DimensionMismatch, "dims[%d]=%d is not positive", i, d)
		}
	}
	return nil
}

// SameShape reports whether f and other declare the same TypeID and dims.
func (f *MetaInfo) SameShape(other *MetaInfo) bool {
	if f.Type != other.Type || len(f.Dims) != len(other.Dims) {
		return false
	}
	for i := range f.Dims {
		if f.Dims[i] != other.Dims[i] {
			return false
		}
	}
	return true
}

// Extend merges other into f, used when re-registering an already-known
// field. Succeeds iff TypeID and dims match exactly and for every
// shared meta key the values are equal; new meta keys from other are
// added. Otherwise fails with FieldAlreadyRegisteredButDifferent.
func (f *MetaInfo) Extend(other *MetaInfo) error {
	if !f.SameShape(other) {
		return errs.Newf(errs.FieldAlreadyRegisteredButDifferent,
			"type/dims mismatch: have %s%v, got %s%v", f.Type, f.Dims, other.Type, other.Dims)
	}
	if err := f.Meta.Extend(other.Meta); err != nil {
		return errs.Wrap(errs.FieldAlreadyRegisteredButDifferent, "conflicting meta info", err)
	}
	return nil
}

// NumElements returns the product of Dims.
func (f *MetaInfo) NumElements() int64 {
	n := int64(1)
	for _, d := range f.Dims {
		n *= d
	}
	return n
}
