package storageview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/serialbox/errs"
)

func TestViewValidateRejectsMismatchedLengths(t *testing.T) {
	v := FromInt32([]int32{1, 2, 3}, []int64{3}, []int64{1, 1})
	err := v.Validate()
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.DimensionMismatch))
}

func TestViewValidateRejectsOutOfBoundsStride(t *testing.T) {
	v := FromFloat64([]float64{1, 2}, []int64{4}, []int64{1})
	err := v.Validate()
	require.Error(t, err)
}

func TestViewValidateNegativeStrideRequiresOrigin(t *testing.T) {
	// Strides=[-1] over a 4-element buffer addresses [-3, 0] without an
	// origin shift; only Origin=3 keeps every logical index in [0, 4).
	noOrigin := FromFloat64([]float64{1, 2, 3, 4}, []int64{4}, []int64{-1})
	require.Error(t, noOrigin.Validate())

	withOrigin := noOrigin.WithOrigin(3)
	require.NoError(t, withOrigin.Validate())
}

func TestViewRoundTripNegativeStride(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	forward := FromFloat64(data, []int64{4}, []int64{1})

	out := make([]float64, 4)
	reversed := FromFloat64(out, []int64{4}, []int64{-1}).WithOrigin(3)

	var buf bytes.Buffer
	_, err := forward.WriteTo(&buf)
	require.NoError(t, err)
	_, err = reversed.ReadFrom(&buf)
	require.NoError(t, err)

	require.True(t, Equal(forward, reversed))
	require.Equal(t, []float64{4, 3, 2, 1}, out)
}

func TestViewWriteReadRoundTripContiguous(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	src := FromFloat64(data, []int64{2, 3}, []int64{3, 1})

	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	out := make([]float64, 6)
	dst := FromFloat64(out, []int64{2, 3}, []int64{3, 1})
	_, err = dst.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestViewRoundTripIndependentOfStrideLayout(t *testing.T) {
	// Row-major source, column-major destination of the same logical shape.
	data := []float64{1, 2, 3, 4, 5, 6}
	src := FromFloat64(data, []int64{2, 3}, []int64{3, 1})

	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	out := make([]float64, 6)
	dst := FromFloat64(out, []int64{2, 3}, []int64{1, 2})
	_, err = dst.ReadFrom(&buf)
	require.NoError(t, err)

	require.True(t, Equal(src, dst))
}

func TestViewStringRoundTrip(t *testing.T) {
	data := []string{"alpha", "", "gamma-ray"}
	src := FromString(data, []int64{3}, []int64{1})

	var buf bytes.Buffer
	_, err := src.WriteTo(&buf)
	require.NoError(t, err)

	out := make([]string, 3)
	dst := FromString(out, []int64{3}, []int64{1})
	_, err = dst.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestViewSameDimsIgnoresStrides(t *testing.T) {
	a := FromInt32([]int32{1, 2, 3, 4}, []int64{2, 2}, []int64{2, 1})
	b := FromInt32([]int32{1, 2, 3, 4}, []int64{2, 2}, []int64{1, 2})
	require.True(t, a.SameDims(b))
}

func TestViewContiguousDetection(t *testing.T) {
	a := FromInt32([]int32{1, 2, 3, 4}, []int64{2, 2}, []int64{2, 1})
	require.True(t, a.Contiguous())

	b := FromInt32([]int32{1, 2, 3, 4}, []int64{2, 2}, []int64{1, 2})
	require.False(t, b.Contiguous())
}
