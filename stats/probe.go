// Package stats implements StatsProbe: a single pass over
// a leaf column that collects the summary statistics LeafCodec's cost
// model (leaf package) uses to pick a typed codec.
//
package stats

import "math"

// MinDictRatio bounds distinct-value tracking: once the number of unique
// values seen exceeds tuple_count/MinDictRatio, further values are still
// counted toward tuple_count but are no longer added to the distinct set.
// This keeps a probe over an all-distinct column from building a map as
// large as the column itself.
const MinDictRatio = 2

// Int summarizes an integer leaf column of values vs, with validity
// (nil means "no nulls, all valid").
type Int struct {
	TupleCount        int
	NullCount         int
	Min, Max          int64
	HasValid          bool
	IsSorted          bool
	DistinctValues    map[int64]int
	UniqueCount       int
	AverageRunLength  float64
}

// ProbeInt runs StatsProbe over an integer leaf.
func ProbeInt(vals []int64, validity []bool) Int {
	out := Int{TupleCount: len(vals), IsSorted: true, DistinctValues: map[int64]int{}}

	cap := distinctCap(len(vals))
	var runs int
	var prevValid int64
	var havePrev bool

	for i, v := range vals {
		valid := validity == nil || validity[i]
		if !valid {
			out.NullCount++
			continue
		}

		if !out.HasValid {
			out.Min, out.Max = v, v
			out.HasValid = true
		} else {
			if v < out.Min {
				out.Min = v
			}
			if v > out.Max {
				out.Max = v
			}
			if v < prevValid {
				out.IsSorted = false
			}
		}

		if len(out.DistinctValues) < cap || out.DistinctValues[v] > 0 {
			out.DistinctValues[v]++
		}

		if !havePrev || v != prevValid {
			runs++
		}
		prevValid = v
		havePrev = true
	}

	out.UniqueCount = len(out.DistinctValues)
	if runs > 0 {
		out.AverageRunLength = float64(out.TupleCount) / float64(runs)
	}

	return out
}

// Bool summarizes a boolean leaf column.
type Bool struct {
	TupleCount       int
	NullCount        int
	TrueCount        int
	FalseCount       int
	AverageRunLength float64
}

// ProbeBool runs StatsProbe over a boolean leaf.
func ProbeBool(vals []bool, validity []bool) Bool {
	out := Bool{TupleCount: len(vals)}

	var runs int
	var prevValid bool
	var havePrev bool

	for i, v := range vals {
		valid := validity == nil || validity[i]
		if !valid {
			out.NullCount++
			continue
		}

		if v {
			out.TrueCount++
		} else {
			out.FalseCount++
		}

		if !havePrev || v != prevValid {
			runs++
		}
		prevValid = v
		havePrev = true
	}

	if runs > 0 {
		out.AverageRunLength = float64(out.TupleCount) / float64(runs)
	}

	return out
}

// Bytes summarizes a byte-slice leaf column.
type Bytes struct {
	TupleCount           int
	NullCount            int
	Min, Max             []byte
	HasValid             bool
	IsSorted             bool
	DistinctValues       map[string]int
	UniqueCount          int
	UniqueValueByteLen   int64
	AverageRunLength     float64
}

// ProbeBytes runs StatsProbe over a byte-slice leaf.
func ProbeBytes(vals [][]byte, validity []bool) Bytes {
	out := Bytes{TupleCount: len(vals), IsSorted: true, DistinctValues: map[string]int{}}

	cap := distinctCap(len(vals))
	var runs int
	var prevValid string
	var havePrev bool

	for i, v := range vals {
		valid := validity == nil || validity[i]
		if !valid {
			out.NullCount++
			continue
		}

		if !out.HasValid {
			out.Min, out.Max = v, v
			out.HasValid = true
		} else {
			if string(v) < string(out.Min) {
				out.Min = v
			}
			if string(v) > string(out.Max) {
				out.Max = v
			}
			if string(v) < prevValid {
				out.IsSorted = false
			}
		}

		s := string(v)
		if _, seen := out.DistinctValues[s]; seen {
			out.DistinctValues[s]++
		} else if len(out.DistinctValues) < cap {
			out.DistinctValues[s] = 1
			out.UniqueValueByteLen += int64(len(v))
		}

		if !havePrev || s != prevValid {
			runs++
		}
		prevValid = s
		havePrev = true
	}

	out.UniqueCount = len(out.DistinctValues)
	if runs > 0 {
		out.AverageRunLength = float64(out.TupleCount) / float64(runs)
	}

	return out
}

// Float summarizes a float64 leaf column. Distinct values are keyed by
// the bit pattern (via math.Float64bits) so that -0.0 and +0.0 compare
// distinct and NaN, which is not equal to itself under ==, is hashable.
type Float struct {
	TupleCount       int
	NullCount        int
	Min, Max         float64
	HasValid         bool
	IsSorted         bool
	DistinctValues   map[uint64]int
	UniqueCount      int
	AverageRunLength float64
}

// ProbeFloat runs StatsProbe over a float64 leaf.
func ProbeFloat(vals []float64, validity []bool) Float {
	out := Float{TupleCount: len(vals), IsSorted: true, DistinctValues: map[uint64]int{}}

	cap := distinctCap(len(vals))
	var runs int
	var prevValid float64
	var havePrev bool

	for i, v := range vals {
		valid := validity == nil || validity[i]
		if !valid {
			out.NullCount++
			continue
		}

		if !out.HasValid {
			out.Min, out.Max = v, v
			out.HasValid = true
		} else {
			if v < out.Min {
				out.Min = v
			}
			if v > out.Max {
				out.Max = v
			}
			if v < prevValid {
				out.IsSorted = false
			}
		}

		bits := math.Float64bits(v)
		if len(out.DistinctValues) < cap || out.DistinctValues[bits] > 0 {
			out.DistinctValues[bits]++
		}

		if !havePrev || math.Float64bits(v) != math.Float64bits(prevValid) {
			runs++
		}
		prevValid = v
		havePrev = true
	}

	out.UniqueCount = len(out.DistinctValues)
	if runs > 0 {
		out.AverageRunLength = float64(out.TupleCount) / float64(runs)
	}

	return out
}

func distinctCap(tupleCount int) int {
	c := tupleCount/MinDictRatio + 1
	if c < 1 {
		c = 1
	}

	return c
}
