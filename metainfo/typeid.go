// Package metainfo implements the typed key-value attribute bag
// (MetaInfoMap) used both for per-field schema metadata and for the
// Serializer's global catalog metadata.
package metainfo

import "fmt"

// TypeID is the closed enumeration of element scalar types. Every field
// and every metadata value carries a TypeID.
type TypeID int

const (
	Invalid TypeID = iota
	Boolean
	Int32
	Int64
	Float32
	Float64
	String

	// Array variants are valid only as MetaInfoValue tags, never as a
	// FieldMetaInfo element type.
	ArrayBoolean
	ArrayInt32
	ArrayInt64
	ArrayFloat32
	ArrayFloat64
	ArrayString
)

var typeNames = map[TypeID]string{
	Invalid:      "Invalid",
	Boolean:      "Boolean",
	Int32:        "Int32",
	Int64:        "Int64",
	Float32:      "Float32",
	Float64:      "Float64",
	String:       "String",
	ArrayBoolean: "ArrayBoolean",
	ArrayInt32:   "ArrayInt32",
	ArrayInt64:   "ArrayInt64",
	ArrayFloat32: "ArrayFloat32",
	ArrayFloat64: "ArrayFloat64",
	ArrayString:  "ArrayString",
}

var namesToType = func() map[string]TypeID {
	m := make(map[string]TypeID, len(typeNames))
	for id, name := range typeNames {
		m[name] = id
	}
	return m
}()

func (t TypeID) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TypeID(%d)", int(t))
}

// ParseTypeID resolves a wire symbol (as stored in the catalog JSON) back
// to a TypeID. It returns (Invalid, false) for unknown symbols.
func ParseTypeID(symbol string) (TypeID, bool) {
	t, ok := namesToType[symbol]
	return t, ok
}

// IsArray reports whether t is one of the Array* tags.
func (t TypeID) IsArray() bool {
	return t >= ArrayBoolean && t <= ArrayString
}

// Scalar returns the scalar TypeID underlying an array tag. It is a no-op
// for already-scalar tags.
func (t TypeID) Scalar() TypeID {
	switch t {
	case ArrayBoolean:
		return Boolean
	case ArrayInt32:
		return Int32
	case ArrayInt64:
		return Int64
	case ArrayFloat32:
		return Float32
	case ArrayFloat64:
		return Float64
	case ArrayString:
		return String
	default:
		return t
	}
}

// AsArray returns the Array* tag corresponding to scalar TypeID t.
func (t TypeID) AsArray() TypeID {
	switch t {
	case Boolean:
		return ArrayBoolean
	case Int32:
		return ArrayInt32
	case Int64:
		return ArrayInt64
	case Float32:
		return ArrayFloat32
	case Float64:
		return ArrayFloat64
	case String:
		return ArrayString
	default:
		return Invalid
	}
}

// IsNumeric reports whether t is one of the numeric scalar kinds eligible
// for widening/narrowing conversions.
func (t TypeID) IsNumeric() bool {
	switch t {
	case Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// Valid reports whether t is a recognized, non-Invalid TypeID.
func (t TypeID) Valid() bool {
	_, ok := typeNames[t]
	return ok && t != Invalid
}
