package indicators

import "math"

// RollingMean computes the simple moving average over a trailing window.
// Indices before window-1 are NaN: the value is undefined until the
// window is full.
func RollingMean(data []float64, window int) []float64 {
	out := nanSlice(len(data))
	if window <= 0 || len(data) < window {
		return out
	}

	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingMin computes the trailing-window minimum. Same warm-up rule as
// RollingMean.
func RollingMin(data []float64, window int) []float64 {
	out := nanSlice(len(data))
	if window <= 0 || len(data) < window {
		return out
	}

	for i := window - 1; i < len(data); i++ {
		min := data[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if data[j] < min {
				min = data[j]
			}
		}
		out[i] = min
	}
	return out
}

// SlopePercent computes the percentage change of a series over a trailing
// look-back: (v[i]/v[i-period] - 1) * 100. Undefined whenever either
// endpoint is undefined.
func SlopePercent(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}

	for i := period; i < len(values); i++ {
		cur, prev := values[i], values[i-period]
		if math.IsNaN(cur) || math.IsNaN(prev) || prev == 0 {
			continue
		}
		out[i] = (cur/prev - 1) * 100
	}
	return out
}

// RollingAllTrue reports, per index, whether the predicate held on every
// one of the trailing window bars. False during warm-up.
func RollingAllTrue(flags []bool, window int) []bool {
	out := make([]bool, len(flags))
	if window <= 0 || len(flags) < window {
		return out
	}

	streak := 0
	for i, ok := range flags {
		if ok {
			streak++
		} else {
			streak = 0
		}
		out[i] = streak >= window
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
