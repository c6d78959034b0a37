package metainfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapInsertRejectsDuplicateAndReserved(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Insert("n", NewInt32(1)))
	require.Error(t, m.Insert("n", NewInt32(2)))
	require.Error(t, m.Insert(ReservedPrefix+"anything", NewBool(true)))
}

func TestMapKeysInsertionOrder(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Insert("b", NewInt32(2)))
	require.NoError(t, m.Insert("a", NewInt32(1)))
	require.Equal(t, []string{"b", "a"}, m.Keys())
}

func TestMapEqualIgnoresOrder(t *testing.T) {
	a := NewMap()
	require.NoError(t, a.Insert("x", NewInt32(1)))
	require.NoError(t, a.Insert("y", NewInt32(2)))

	b := NewMap()
	require.NoError(t, b.Insert("y", NewInt32(2)))
	require.NoError(t, b.Insert("x", NewInt32(1)))

	require.True(t, a.Equal(b))
}

func TestValueWideningAndNarrowing(t *testing.T) {
	v := NewInt32(42)
	wide, err := v.As(Int64)
	require.NoError(t, err)
	i64, err := wide.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(42), i64)

	big := NewInt64(1 << 40)
	_, err = big.As(Int32)
	require.Error(t, err)
}

func TestValueFloatNarrowingRejectsLossyConversion(t *testing.T) {
	v := NewFloat64(0.1)
	_, err := v.As(Float32)
	require.Error(t, err)

	exact := NewFloat64(2.0)
	narrowed, err := exact.As(Float32)
	require.NoError(t, err)
	f32, err := narrowed.Float32()
	require.NoError(t, err)
	require.Equal(t, float32(2.0), f32)
}

func TestJSONRoundTrip(t *testing.T) {
	m := NewMap()
	require.NoError(t, m.Insert("step", NewInt32(3)))
	require.NoError(t, m.Insert("label", NewString("warmup")))
	require.NoError(t, m.Insert("ratios", NewFloat64Array([]float64{1.5, 2.5})))

	data, err := m.MarshalJSON()
	require.NoError(t, err)

	out := NewMap()
	require.NoError(t, out.UnmarshalJSON(data))
	require.True(t, m.Equal(out))
	require.Equal(t, m.Keys(), out.Keys())
}
