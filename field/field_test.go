package field

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

func TestMetaInfoValidateRejectsNonPositiveDims(t *testing.T) {
	f := New(metainfo.Float64, []int64{4, 0})
	err := f.Validate()
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.DimensionMismatch))
}

func TestMetaInfoValidateRejectsEmptyDims(t *testing.T) {
	f := New(metainfo.Int32, nil)
	require.Error(t, f.Validate())
}

func TestMetaInfoNumElements(t *testing.T) {
	f := New(metainfo.Float64, []int64{2, 3, 4})
	require.Equal(t, int64(24), f.NumElements())
}

func TestMapRegisterFieldIdempotentReregistration(t *testing.T) {
	m := NewMap()
	info := New(metainfo.Float64, []int64{4})
	created, err := m.RegisterField("temperature", info)
	require.NoError(t, err)
	require.True(t, created)

	again, err := m.RegisterField("temperature", New(metainfo.Float64, []int64{4}))
	require.NoError(t, err)
	require.False(t, again)
}

func TestMapRegisterFieldRejectsShapeConflict(t *testing.T) {
	m := NewMap()
	_, err := m.RegisterField("temperature", New(metainfo.Float64, []int64{4}))
	require.NoError(t, err)

	_, err = m.RegisterField("temperature", New(metainfo.Float64, []int64{8}))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.FieldAlreadyRegisteredButDifferent))
}

func TestMapFindFieldNotRegistered(t *testing.T) {
	m := NewMap()
	_, err := m.FindField("missing")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.FieldNotRegistered))
}

func TestMapNamesPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	_, _ = m.RegisterField("b", New(metainfo.Int32, []int64{1}))
	_, _ = m.RegisterField("a", New(metainfo.Int32, []int64{1}))
	require.Equal(t, []string{"b", "a"}, m.Names())
}
