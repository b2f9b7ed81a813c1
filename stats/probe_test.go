package stats_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenbyte/colcodec/stats"
)

func TestProbeIntBasic(t *testing.T) {
	s := stats.ProbeInt([]int64{1, 1, 2, 3, 3, 3}, nil)

	require.Equal(t, 6, s.TupleCount)
	require.Equal(t, 0, s.NullCount)
	require.Equal(t, int64(1), s.Min)
	require.Equal(t, int64(3), s.Max)
	require.True(t, s.IsSorted)
	require.Equal(t, 3, s.UniqueCount)
	require.InDelta(t, 6.0/3.0, s.AverageRunLength, 1e-9)
}

func TestProbeIntWithNullsAndUnsorted(t *testing.T) {
	validity := []bool{true, false, true, true}
	s := stats.ProbeInt([]int64{5, 0, 2, 9}, validity)

	require.Equal(t, 1, s.NullCount)
	require.Equal(t, int64(2), s.Min)
	require.Equal(t, int64(9), s.Max)
	require.False(t, s.IsSorted)
}

func TestProbeIntDistinctCapped(t *testing.T) {
	vals := make([]int64, 100)
	for i := range vals {
		vals[i] = int64(i)
	}

	s := stats.ProbeInt(vals, nil)
	require.LessOrEqual(t, s.UniqueCount, 100/stats.MinDictRatio+1)
}

func TestProbeBool(t *testing.T) {
	s := stats.ProbeBool([]bool{true, true, false, false, true}, nil)
	require.Equal(t, 3, s.TrueCount)
	require.Equal(t, 2, s.FalseCount)
	require.InDelta(t, 5.0/3.0, s.AverageRunLength, 1e-9)
}

func TestProbeBytes(t *testing.T) {
	vals := [][]byte{[]byte("aa"), []byte("aa"), []byte("bb")}
	s := stats.ProbeBytes(vals, nil)

	require.Equal(t, 2, s.UniqueCount)
	require.Equal(t, int64(4), s.UniqueValueByteLen)
	require.True(t, s.IsSorted)
}

func TestProbeFloatSignedZeroAndNaN(t *testing.T) {
	nan := nan()
	vals := []float64{0.0, negZero(), nan, nan}
	s := stats.ProbeFloat(vals, nil)

	require.Equal(t, 3, s.UniqueCount)
}

func nan() float64 {
	var z float64
	return z / z
}

func negZero() float64 {
	var z float64
	return -z
}
