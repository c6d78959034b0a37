package bindings

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/joshuapare/serialbox/archive/binary"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/metainfo"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/serializer"
	"github.com/joshuapare/serialbox/storageview"
)

func TestSessionWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(serializer.Write, dir, "run", "Binary")
	require.NoError(t, err)

	created, err := w.RegisterField("temperature", field.New(metainfo.Float64, []int64{4}))
	require.NoError(t, err)
	require.True(t, created)

	sp := savepoint.New("step0")
	data := []float64{1, 2, 3, 4}
	view := storageview.FromFloat64(data, []int64{4}, []int64{1})

	require.NoError(t, w.Write("temperature", sp, view))
	require.NoError(t, w.Close())

	r, err := Open(serializer.Read, dir, "run", "Binary")
	require.NoError(t, err)
	defer r.Close()

	out := make([]float64, 4)
	outView := storageview.FromFloat64(out, []int64{4}, []int64{1})
	require.NoError(t, r.Read("temperature", savepoint.New("step0"), outView))
	require.Equal(t, data, out)
}

func TestSessionOpenUnknownArchive(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(serializer.Write, dir, "run", "DoesNotExist")
	require.Error(t, err)
}
