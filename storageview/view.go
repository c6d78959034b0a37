// Package storageview implements StorageView, the non-owning description
// of a strided numerical array living in caller memory. Views
// never copy or own the backing slice; they only describe how to walk it.
package storageview

import (
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

// TypeID is re-exported from metainfo for convenience.
type TypeID = metainfo.TypeID

// View is the tuple (origin, TypeID, dims, strides). The backing buffer is
// one of the typed slices below, selected by Type; it is never copied by
// this package. Origin is the backing-slice index of logical index
// [0,0,...,0] — for an all-nonnegative-stride view that's simply 0, but a
// negative-stride view (e.g. a reversed axis) needs a nonzero Origin to
// keep every computed offset inside the slice. Strides are measured in
// elements, may be negative, and may be zero (broadcast — the iterator
// still visits each logical index exactly once).
type View struct {
	Type    TypeID
	Dims    []int64
	Strides []int64
	Origin  int64

	boolData []bool
	i32Data  []int32
	i64Data  []int64
	f32Data  []float32
	f64Data  []float64
	strData  []string
}

// WithOrigin returns a copy of v with Origin set, for callers constructing
// a view over a reversed or otherwise offset axis (see Origin's doc
// comment on View).
func (v View) WithOrigin(origin int64) View {
	v.Origin = origin
	return v
}

func newView(t TypeID, dims, strides []int64) View {
	d := append([]int64{}, dims...)
	s := append([]int64{}, strides...)
	return View{Type: t, Dims: d, Strides: s}
}

// FromBool wraps data as a Boolean StorageView; data is not copied.
func FromBool(data []bool, dims, strides []int64) View {
	v := newView(metainfo.Boolean, dims, strides)
	v.boolData = data
	return v
}

// FromInt32 wraps data as an Int32 StorageView; data is not copied.
func FromInt32(data []int32, dims, strides []int64) View {
	v := newView(metainfo.Int32, dims, strides)
	v.i32Data = data
	return v
}

// FromInt64 wraps data as an Int64 StorageView; data is not copied.
func FromInt64(data []int64, dims, strides []int64) View {
	v := newView(metainfo.Int64, dims, strides)
	v.i64Data = data
	return v
}

// FromFloat32 wraps data as a Float32 StorageView; data is not copied.
func FromFloat32(data []float32, dims, strides []int64) View {
	v := newView(metainfo.Float32, dims, strides)
	v.f32Data = data
	return v
}

// FromFloat64 wraps data as a Float64 StorageView; data is not copied.
func FromFloat64(data []float64, dims, strides []int64) View {
	v := newView(metainfo.Float64, dims, strides)
	v.f64Data = data
	return v
}

// FromString wraps data as a String StorageView; data is not copied.
// String views are always unit-stride in practice (see Contiguous).
func FromString(data []string, dims, strides []int64) View {
	v := newView(metainfo.String, dims, strides)
	v.strData = data
	return v
}

// Validate enforces "dims.length == strides.length" and that the
// computed offset is defined — i.e. falls within [0, backing length) —
// for every logical index in range.
func (v View) Validate() error {
	if len(v.Dims) != len(v.Strides) {
		return errs.Newf(errs.DimensionMismatch, "dims length %d != strides length %d", len(v.Dims), len(v.Strides))
	}
	if len(v.Dims) == 0 {
		return errs.New(errs.DimensionMismatch, "dims must be non-empty")
	}
	for i, d := range v.Dims {
		if d <= 0 {
			return errs.Newf(errs.DimensionMismatch, "dims[%d]=%d is not positive", i, d)
		}
	}
	n := int64(v.backingLen())
	// Bound-check the extreme corners of the index box, offset from
	// Origin, against [0, n); this is sufficient because offset is affine
	// in each index independently.
	minOff, maxOff := v.Origin, v.Origin
	for i, d := range v.Dims {
		s := v.Strides[i]
		if s >= 0 {
			maxOff += s * (d - 1)
		} else {
			minOff += s * (d - 1)
		}
	}
	if minOff < 0 || maxOff >= n {
		return errs.Newf(errs.DimensionMismatch, "stride/dims/origin combination addresses outside backing buffer of length %d", n)
	}
	return nil
}

func (v View) backingLen() int {
	switch v.Type {
	case metainfo.Boolean:
		return len(v.boolData)
	case metainfo.Int32:
		return len(v.i32Data)
	case metainfo.Int64:
		return len(v.i64Data)
	case metainfo.Float32:
		return len(v.f32Data)
	case metainfo.Float64:
		return len(v.f64Data)
	case metainfo.String:
		return len(v.strData)
	default:
		return 0
	}
}

// SameDims reports whether v and other declare identical dims.
func (v View) SameDims(other View) bool {
	if len(v.Dims) != len(other.Dims) {
		return false
	}
	for i := range v.Dims {
		if v.Dims[i] != other.Dims[i] {
			return false
		}
	}
	return true
}

// NumElements returns the product of Dims, i.e. the number of logical
// indices the view addresses.
func (v View) NumElements() int64 {
	n := int64(1)
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// offset computes the backing-slice index for logical index idx (one
// coordinate per dimension), per the affine stride formula rooted at
// Origin.
func (v View) offset(idx []int64) int64 {
	off := v.Origin
	for i, c := range idx {
		off += c * v.Strides[i]
	}
	return off
}
