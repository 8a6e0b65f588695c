package engine

import "math"

// dailyReturns computes simple percent changes between consecutive prices.
func dailyReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		r := (prices[i] - prev) / prev
		if math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		returns = append(returns, r)
	}
	return returns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev is the n-1 (sample) standard deviation, matching the
// convention the stored metric rows were produced with.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

func downsideReturns(returns []float64) []float64 {
	negatives := make([]float64, 0)
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	return negatives
}

// maxDrawdown returns the deepest peak-to-trough decline as a negative
// fraction, plus the index where the trough occurred.
func maxDrawdown(values []float64) (float64, int) {
	if len(values) < 2 {
		return 0, 0
	}
	peak := values[0]
	maxDD := 0.0
	maxIdx := 0
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		dd := (v - peak) / peak
		if dd < maxDD {
			maxDD = dd
			maxIdx = i
		}
	}
	return maxDD, maxIdx
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
