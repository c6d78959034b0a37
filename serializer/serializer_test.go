package serializer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/joshuapare/serialbox/archive/binary"
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/metainfo"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/storageview"
)

// S1: a scalar field round-trips through a Write session and a
// subsequent Read session.
func TestScalarRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)

	created, err := w.RegisterField("step_count", field.New(metainfo.Int32, []int64{1}))
	require.NoError(t, err)
	require.True(t, created)

	sp := savepoint.New("init")
	data := []int32{42}
	view := storageview.FromInt32(data, []int64{1}, []int64{1})
	require.NoError(t, w.Write("step_count", sp, view))
	require.NoError(t, w.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out := make([]int32, 1)
	outView := storageview.FromInt32(out, []int64{1}, []int64{1})
	require.NoError(t, r.Read("step_count", savepoint.New("init"), outView))
	require.Equal(t, data, out)
}

// S2: writing with one stride permutation and reading back with a
// different one yields the same logical values.
func TestStridePermutationRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("grid", field.New(metainfo.Float64, []int64{2, 3}))
	require.NoError(t, err)

	sp := savepoint.New("t0")
	data := []float64{1, 2, 3, 4, 5, 6}
	rowMajor := storageview.FromFloat64(data, []int64{2, 3}, []int64{3, 1})
	require.NoError(t, w.Write("grid", sp, rowMajor))
	require.NoError(t, w.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out := make([]float64, 6)
	colMajor := storageview.FromFloat64(out, []int64{2, 3}, []int64{1, 2})
	require.NoError(t, r.Read("grid", savepoint.New("t0"), colMajor))
	require.True(t, storageview.Equal(rowMajor, colMajor))
}

// Writing a forward view and reading back through a reversed,
// negative-stride view yields the same logical values.
func TestNegativeStrideRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("series", field.New(metainfo.Float64, []int64{4}))
	require.NoError(t, err)

	sp := savepoint.New("t0")
	data := []float64{1, 2, 3, 4}
	forward := storageview.FromFloat64(data, []int64{4}, []int64{1})
	require.NoError(t, w.Write("series", sp, forward))
	require.NoError(t, w.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out := make([]float64, 4)
	reversed := storageview.FromFloat64(out, []int64{4}, []int64{-1}).WithOrigin(3)
	require.NoError(t, r.Read("series", savepoint.New("t0"), reversed))
	require.True(t, storageview.Equal(forward, reversed))
	require.Equal(t, []float64{4, 3, 2, 1}, out)
}

// S3: the same field written at two distinct savepoints is
// disambiguated by savepoint identity on read.
func TestSavepointDisambiguation(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)

	sp0 := savepoint.New("step0")
	sp1 := savepoint.New("step1")
	require.NoError(t, w.Write("temperature", sp0, storageview.FromFloat64([]float64{10}, []int64{1}, []int64{1})))
	require.NoError(t, w.Write("temperature", sp1, storageview.FromFloat64([]float64{20}, []int64{1}, []int64{1})))
	require.NoError(t, w.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out0 := make([]float64, 1)
	require.NoError(t, r.Read("temperature", savepoint.New("step0"), storageview.FromFloat64(out0, []int64{1}, []int64{1})))
	require.Equal(t, []float64{10}, out0)

	out1 := make([]float64, 1)
	require.NoError(t, r.Read("temperature", savepoint.New("step1"), storageview.FromFloat64(out1, []int64{1}, []int64{1})))
	require.Equal(t, []float64{20}, out1)
}

// S4: reopening in Append mode after a prior Write session continues
// the occurrence counter rather than restarting it, and previously
// written data stays readable.
func TestReopenAppendContinuesOccurrenceCounter(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("loss", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)
	require.NoError(t, w.Write("loss", savepoint.New("epoch0"), storageview.FromFloat64([]float64{0.9}, []int64{1}, []int64{1})))
	require.NoError(t, w.Close())

	a, err := New(Append, dir, "run", "Binary")
	require.NoError(t, err)
	require.Equal(t, OpenAppend, a.State())

	_, err = a.RegisterField("loss", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)
	require.NoError(t, a.Write("loss", savepoint.New("epoch1"), storageview.FromFloat64([]float64{0.5}, []int64{1}, []int64{1})))
	require.NoError(t, a.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out0 := make([]float64, 1)
	require.NoError(t, r.Read("loss", savepoint.New("epoch0"), storageview.FromFloat64(out0, []int64{1}, []int64{1})))
	require.Equal(t, []float64{0.9}, out0)

	out1 := make([]float64, 1)
	require.NoError(t, r.Read("loss", savepoint.New("epoch1"), storageview.FromFloat64(out1, []int64{1}, []int64{1})))
	require.Equal(t, []float64{0.5}, out1)
}

// S5: writing the same field twice at the same savepoint is rejected
// as a duplicate cell, not absorbed as an idempotent no-op.
func TestDuplicateCellWriteRejected(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)

	sp := savepoint.New("step0")
	view := storageview.FromFloat64([]float64{1}, []int64{1}, []int64{1})
	require.NoError(t, w.Write("temperature", sp, view))

	err = w.Write("temperature", sp, view)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.FieldAlreadyExistsAtSavepoint))
	require.NoError(t, w.Close())
}

// S6: writing with a view whose dims don't match the field's
// registered shape is rejected.
func TestMismatchedDimsRejected(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("grid", field.New(metainfo.Float64, []int64{2, 3}))
	require.NoError(t, err)

	sp := savepoint.New("step0")
	badView := storageview.FromFloat64(make([]float64, 4), []int64{2, 2}, []int64{2, 1})
	err = w.Write("grid", sp, badView)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.DimensionMismatch))
	require.NoError(t, w.Close())
}

func TestWriteRejectsTypeMismatch(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)

	badView := storageview.FromInt32([]int32{1}, []int64{1}, []int64{1})
	err = w.Write("temperature", savepoint.New("step0"), badView)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.TypeMismatch))
	require.NoError(t, w.Close())
}

func TestReadModeRejectsWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := New(Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	err = r.Write("temperature", savepoint.New("step0"), storageview.FromFloat64([]float64{1}, []int64{1}, []int64{1}))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.SerializerClosed))
}

func TestOperationsAfterCloseFail(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "Close must be idempotent")

	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.SerializerClosed))
}

func TestWriteIsNoOpWhenSerializationDisabled(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	_, err = w.RegisterField("temperature", field.New(metainfo.Float64, []int64{1}))
	require.NoError(t, err)

	SetEnabled(false)
	defer SetEnabled(true)

	sp := savepoint.New("step0")
	view := storageview.FromFloat64([]float64{1}, []int64{1}, []int64{1})
	require.NoError(t, w.Write("temperature", sp, view))
	require.False(t, w.HasSavepoint(sp), "a disabled write must not touch the catalog")
	require.NoError(t, w.Close())
}

func TestOpenReadUnknownDirectoryFails(t *testing.T) {
	_, err := New(Read, t.TempDir(), "run", "Binary")
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.MetaDataNotFound))
}

func TestOpenWriteRemovesStaleManagedFilesButKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	keepPath := dir + "/notes.txt"
	require.NoError(t, os.WriteFile(keepPath, []byte("keep me"), 0o644))
	stalePath := dir + "/run_stale_0.dat"
	require.NoError(t, os.WriteFile(stalePath, []byte("stale"), 0o644))

	w2, err := New(Write, dir, "run", "Binary")
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	require.FileExists(t, keepPath)
	require.NoFileExists(t, stalePath)
}
