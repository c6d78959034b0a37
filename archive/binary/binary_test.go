package binary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/serialbox/archive"
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/storageview"
)

func TestBackendRegisteredUnderBinary(t *testing.T) {
	require.True(t, archive.Registered("Binary"))
}

func TestBackendWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := New(archive.Write, dir, "run")
	require.NoError(t, err)

	id := savepoint.FieldID{FieldName: "temperature", Occurrence: 0}
	data := []float64{1, 2, 3, 4}
	view := storageview.FromFloat64(data, []int64{4}, []int64{1})

	_, err = b.Write(view, id)
	require.NoError(t, err)
	require.NoError(t, b.UpdateMetaData())

	out := make([]float64, 4)
	outView := storageview.FromFloat64(out, []int64{4}, []int64{1})
	require.NoError(t, b.Read(outView, id))
	require.Equal(t, data, out)
}

func TestBackendReadUnknownFieldFails(t *testing.T) {
	dir := t.TempDir()
	b, err := New(archive.Write, dir, "run")
	require.NoError(t, err)

	out := make([]float64, 4)
	outView := storageview.FromFloat64(out, []int64{4}, []int64{1})
	err = b.Read(outView, savepoint.FieldID{FieldName: "missing", Occurrence: 0})
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ArchiveFieldNotFound))
}

func TestBackendReadModeRequiresExistingCatalog(t *testing.T) {
	dir := t.TempDir()
	_, err := New(archive.Read, dir, "run")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.MetaDataNotFound))
}

func TestBackendDoesNotSupportSlicing(t *testing.T) {
	dir := t.TempDir()
	b, err := New(archive.Write, dir, "run")
	require.NoError(t, err)
	require.False(t, b.SupportsSlicing())
	_, ok := b.(archive.Slicer)
	require.False(t, ok)
}

func TestBackendAppendModeLoadsExistingCatalog(t *testing.T) {
	dir := t.TempDir()
	b, err := New(archive.Write, dir, "run")
	require.NoError(t, err)
	id := savepoint.FieldID{FieldName: "temperature", Occurrence: 0}
	view := storageview.FromFloat64([]float64{1, 2}, []int64{2}, []int64{1})
	_, err = b.Write(view, id)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	reopened, err := New(archive.Append, dir, "run")
	require.NoError(t, err)
	out := make([]float64, 2)
	outView := storageview.FromFloat64(out, []int64{2}, []int64{1})
	require.NoError(t, reopened.Read(outView, id))
	require.Equal(t, []float64{1, 2}, out)
}
