package storageview

import "github.com/joshuapare/serialbox/metainfo"

// Equal reports whether a and b have the same TypeID, dims, and element
// values at every logical index — used by tests to assert the round-trip
// and stride-independence invariants without caring how either
// view's backing buffer is strided.
func Equal(a, b View) bool {
	if a.Type != b.Type || !a.SameDims(b) {
		return false
	}
	idx := make([]int64, len(a.Dims))
	var walk func(d int) bool
	walk = func(d int) bool {
		if d == len(a.Dims) {
			ao := a.offset(idx)
			bo := b.offset(idx)
			return a.elementEqual(ao, b, bo)
		}
		for i := int64(0); i < a.Dims[d]; i++ {
			idx[d] = i
			if !walk(d + 1) {
				return false
			}
		}
		return true
	}
	return walk(0)
}

func (v View) elementEqual(off int64, other View, otherOff int64) bool {
	switch v.Type {
	case metainfo.Boolean:
		return v.boolData[off] == other.boolData[otherOff]
	case metainfo.Int32:
		return v.i32Data[off] == other.i32Data[otherOff]
	case metainfo.Int64:
		return v.i64Data[off] == other.i64Data[otherOff]
	case metainfo.Float32:
		return v.f32Data[off] == other.f32Data[otherOff]
	case metainfo.Float64:
		return v.f64Data[off] == other.f64Data[otherOff]
	case metainfo.String:
		return v.strData[off] == other.strData[otherOff]
	default:
		return false
	}
}
