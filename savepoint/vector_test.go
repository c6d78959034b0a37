package savepoint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/metainfo"
)

func TestVectorInsertRejectsDuplicateSavepoint(t *testing.T) {
	v := NewVector()
	sp := New("step0")
	_, err := v.Insert(sp)
	require.NoError(t, err)

	_, err = v.Insert(New("step0"))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.SavepointAlreadyExists))
}

func TestVectorInsertAllowsSameNameDifferentMeta(t *testing.T) {
	v := NewVector()
	a := New("step")
	require.NoError(t, a.Meta.Insert("iter", metainfo.NewInt32(1)))
	_, err := v.Insert(a)
	require.NoError(t, err)

	b := New("step")
	require.NoError(t, b.Meta.Insert("iter", metainfo.NewInt32(2)))
	_, err = v.Insert(b)
	require.NoError(t, err)
	require.Equal(t, 2, v.Len())
}

func TestVectorAddFieldOccurrenceIncrementsAcrossSavepoints(t *testing.T) {
	v := NewVector()
	sp0 := New("step0")
	sp1 := New("step1")
	_, _ = v.Insert(sp0)
	_, _ = v.Insert(sp1)

	id0, err := v.AddField(sp0, "temperature")
	require.NoError(t, err)
	require.Equal(t, uint64(0), id0.Occurrence)

	id1, err := v.AddField(sp1, "temperature")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id1.Occurrence)
}

func TestVectorAddFieldRejectsDuplicateCell(t *testing.T) {
	v := NewVector()
	sp := New("step0")
	_, _ = v.Insert(sp)
	_, err := v.AddField(sp, "temperature")
	require.NoError(t, err)

	_, err = v.AddField(sp, "temperature")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.FieldAlreadyExistsAtSavepoint))
}

func TestVectorRemoveFieldRollsBackOccupiedCellOnly(t *testing.T) {
	v := NewVector()
	sp := New("step0")
	_, _ = v.Insert(sp)
	_, err := v.AddField(sp, "temperature")
	require.NoError(t, err)

	v.RemoveField(sp, "temperature")
	_, err = v.Lookup(sp, "temperature")
	require.Error(t, err)

	// A fresh AddField after rollback must be allowed again.
	id, err := v.AddField(sp, "temperature")
	require.NoError(t, err)
	require.Equal(t, uint64(1), id.Occurrence, "occurrence counter is not rolled back, only the cell")
}

func TestVectorRestoreFieldAdvancesCounterWithoutAllocating(t *testing.T) {
	v := NewVector()
	sp := New("step0")
	_, _ = v.Insert(sp)

	id, err := v.RestoreField(sp, "temperature", 5)
	require.NoError(t, err)
	require.Equal(t, uint64(5), id.Occurrence)

	sp1 := New("step1")
	_, _ = v.Insert(sp1)
	next, err := v.AddField(sp1, "temperature")
	require.NoError(t, err)
	require.Equal(t, uint64(6), next.Occurrence)
}

func TestVectorLookupUnknownFieldFails(t *testing.T) {
	v := NewVector()
	sp := New("step0")
	_, _ = v.Insert(sp)
	_, err := v.Lookup(sp, "missing")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.FieldNotExistsAtSavepoint))
}
