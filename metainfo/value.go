package metainfo

import (
	"fmt"
	"math"

	"github.com/joshuapare/serialbox/errs"
)

// Value is a tagged value whose tag is a TypeID or an Array* variant of a
// TypeID. Exactly one of the payload fields is meaningful, selected
// by Tag.
type Value struct {
	Tag TypeID

	boolVal   bool
	i32Val    int32
	i64Val    int64
	f32Val    float32
	f64Val    float64
	strVal    string
	boolArr   []bool
	i32Arr    []int32
	i64Arr    []int64
	f32Arr    []float32
	f64Arr    []float64
	strArr    []string
}

func NewBool(v bool) Value    { return Value{Tag: Boolean, boolVal: v} }
func NewInt32(v int32) Value  { return Value{Tag: Int32, i32Val: v} }
func NewInt64(v int64) Value  { return Value{Tag: Int64, i64Val: v} }
func NewFloat32(v float32) Value { return Value{Tag: Float32, f32Val: v} }
func NewFloat64(v float64) Value { return Value{Tag: Float64, f64Val: v} }
func NewString(v string) Value   { return Value{Tag: String, strVal: v} }

func NewBoolArray(v []bool) Value       { return Value{Tag: ArrayBoolean, boolArr: append([]bool{}, v...)} }
func NewInt32Array(v []int32) Value     { return Value{Tag: ArrayInt32, i32Arr: append([]int32{}, v...)} }
func NewInt64Array(v []int64) Value     { return Value{Tag: ArrayInt64, i64Arr: append([]int64{}, v...)} }
func NewFloat32Array(v []float32) Value { return Value{Tag: ArrayFloat32, f32Arr: append([]float32{}, v...)} }
func NewFloat64Array(v []float64) Value { return Value{Tag: ArrayFloat64, f64Arr: append([]float64{}, v...)} }
func NewStringArray(v []string) Value   { return Value{Tag: ArrayString, strArr: append([]string{}, v...)} }

// rawInt64 and rawFloat64 return the payload of an integer or a float tag
// respectively, widened to 64 bits; used by As for numeric conversions.
func (v Value) rawInt64() (int64, bool) {
	switch v.Tag {
	case Int32:
		return int64(v.i32Val), true
	case Int64:
		return v.i64Val, true
	default:
		return 0, false
	}
}

func (v Value) rawFloat64() (float64, bool) {
	switch v.Tag {
	case Float32:
		return float64(v.f32Val), true
	case Float64:
		return v.f64Val, true
	default:
		return 0, false
	}
}

// As converts v to TypeID want. Conversions stay within one numeric
// family: widening Int32 to Int64 or Float32 to Float64 always succeeds;
// narrowing fails with MetaInfoTypeMismatch if it would lose information.
// Integer/float cross conversions fail with MetaInfoTypeMismatch.
// Non-numeric conversions require an exact tag match.
func (v Value) As(want TypeID) (Value, error) {
	if v.Tag == want {
		return v, nil
	}

	if v.Tag.IsArray() || want.IsArray() {
		return Value{}, errs.Newf(errs.MetaInfoTypeMismatch, "cannot convert %s to %s", v.Tag, want)
	}

	switch want {
	case Int32:
		n, ok := v.rawInt64()
		if !ok {
			return Value{}, mismatch(v.Tag, want)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, narrow(v.Tag, want)
		}
		return NewInt32(int32(n)), nil

	case Int64:
		n, ok := v.rawInt64()
		if !ok {
			return Value{}, mismatch(v.Tag, want)
		}
		return NewInt64(n), nil

	case Float32:
		f, ok := v.rawFloat64()
		if !ok {
			return Value{}, mismatch(v.Tag, want)
		}
		if float64(float32(f)) != f {
			return Value{}, narrow(v.Tag, want)
		}
		return NewFloat32(float32(f)), nil

	case Float64:
		f, ok := v.rawFloat64()
		if !ok {
			return Value{}, mismatch(v.Tag, want)
		}
		return NewFloat64(f), nil

	default:
		return Value{}, mismatch(v.Tag, want)
	}
}

func mismatch(from, to TypeID) error {
	return errs.Newf(errs.MetaInfoTypeMismatch, "value of type %s is not compatible with %s", from, to)
}

func narrow(from, to TypeID) error {
	return errs.Newf(errs.MetaInfoTypeMismatch, "narrowing %s to %s would lose information", from, to)
}

// Bool returns the value as a bool; fails unless Tag == Boolean.
func (v Value) Bool() (bool, error) {
	if v.Tag != Boolean {
		return false, mismatch(v.Tag, Boolean)
	}
	return v.boolVal, nil
}

func (v Value) Int32() (int32, error) {
	c, err := v.As(Int32)
	if err != nil {
		return 0, err
	}
	return c.i32Val, nil
}

func (v Value) Int64() (int64, error) {
	c, err := v.As(Int64)
	if err != nil {
		return 0, err
	}
	return c.i64Val, nil
}

func (v Value) Float32() (float32, error) {
	c, err := v.As(Float32)
	if err != nil {
		return 0, err
	}
	return c.f32Val, nil
}

func (v Value) Float64() (float64, error) {
	c, err := v.As(Float64)
	if err != nil {
		return 0, err
	}
	return c.f64Val, nil
}

func (v Value) String() (string, error) {
	if v.Tag != String {
		return "", mismatch(v.Tag, String)
	}
	return v.strVal, nil
}

func (v Value) BoolArray() ([]bool, error) {
	if v.Tag != ArrayBoolean {
		return nil, mismatch(v.Tag, ArrayBoolean)
	}
	return append([]bool{}, v.boolArr...), nil
}

func (v Value) Int32Array() ([]int32, error) {
	if v.Tag != ArrayInt32 {
		return nil, mismatch(v.Tag, ArrayInt32)
	}
	return append([]int32{}, v.i32Arr...), nil
}

func (v Value) Int64Array() ([]int64, error) {
	if v.Tag != ArrayInt64 {
		return nil, mismatch(v.Tag, ArrayInt64)
	}
	return append([]int64{}, v.i64Arr...), nil
}

func (v Value) Float32Array() ([]float32, error) {
	if v.Tag != ArrayFloat32 {
		return nil, mismatch(v.Tag, ArrayFloat32)
	}
	return append([]float32{}, v.f32Arr...), nil
}

func (v Value) Float64Array() ([]float64, error) {
	if v.Tag != ArrayFloat64 {
		return nil, mismatch(v.Tag, ArrayFloat64)
	}
	return append([]float64{}, v.f64Arr...), nil
}

func (v Value) StringArray() ([]string, error) {
	if v.Tag != ArrayString {
		return nil, mismatch(v.Tag, ArrayString)
	}
	return append([]string{}, v.strArr...), nil
}

// Equal reports value equality under v's own TypeID.
func (v Value) Equal(other Value) bool {
	if v.Tag != other.Tag {
		return false
	}
	switch v.Tag {
	case Boolean:
		return v.boolVal == other.boolVal
	case Int32:
		return v.i32Val == other.i32Val
	case Int64:
		return v.i64Val == other.i64Val
	case Float32:
		return v.f32Val == other.f32Val
	case Float64:
		return v.f64Val == other.f64Val
	case String:
		return v.strVal == other.strVal
	case ArrayBoolean:
		return equalSlices(v.boolArr, other.boolArr)
	case ArrayInt32:
		return equalSlices(v.i32Arr, other.i32Arr)
	case ArrayInt64:
		return equalSlices(v.i64Arr, other.i64Arr)
	case ArrayFloat32:
		return equalSlices(v.f32Arr, other.f32Arr)
	case ArrayFloat64:
		return equalSlices(v.f64Arr, other.f64Arr)
	case ArrayString:
		return equalSlices(v.strArr, other.strArr)
	default:
		return false
	}
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GoString supports %#v style debug printing without exposing internals.
func (v Value) GoString() string {
	return fmt.Sprintf("metainfo.Value{Tag: %s}", v.Tag)
}
