package selection

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ValueStats summarises the intensity values under the current selection.
type ValueStats struct {
	// Count is the number of selected voxels.
	Count int

	// Mean and StdDev are the sample mean and standard deviation of the
	// selected intensity values.
	Mean   float64
	StdDev float64

	// Min and Max are the extreme selected intensity values.
	Min float64
	Max float64
}

// SelectionStats computes descriptive statistics of the data values under
// the selected voxels. The data source must match this selection's grid,
// with the same dimensionality rules as SelectByValue. An empty selection
// yields a zero-valued ValueStats.
func (s *Selection) SelectionStats(data DataSource, vol int) (ValueStats, error) {
	dims := data.Dims()
	if len(dims) != 3 && len(dims) != 4 {
		return ValueStats{}, &DimensionalityError{Dims: len(dims)}
	}
	if len(dims) == 4 {
		if vol < 0 || vol >= dims[3] {
			return ValueStats{}, &VolumeIndexError{Index: vol, Count: dims[3]}
		}
	} else {
		vol = 0
	}

	grid := [3]int{dims[0], dims[1], dims[2]}
	if grid != s.shape {
		return ValueStats{}, &IncompatibleArrayError{Want: s.shape, Got: grid,
			Reason: "data source grid does not match selection shape"}
	}

	var vals []float64
	for _, idx := range s.Indices(nil) {
		vals = append(vals, data.ValueAt(idx[0], idx[1], idx[2], vol))
	}
	if len(vals) == 0 {
		return ValueStats{}, nil
	}

	out := ValueStats{
		Count:  len(vals),
		Mean:   stat.Mean(vals, nil),
		StdDev: stat.StdDev(vals, nil),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	if len(vals) == 1 {
		// StdDev of a single sample is undefined; report zero spread.
		out.StdDev = 0
	}
	for _, v := range vals {
		out.Min = math.Min(out.Min, v)
		out.Max = math.Max(out.Max, v)
	}
	return out, nil
}
