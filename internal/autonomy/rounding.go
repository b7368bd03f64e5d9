package autonomy

import "math"

// RoundDistance rounds a distance in km to DistanceDecimals places.
func RoundDistance(km float64) float64 {
	return roundHalfUp(km, DistanceDecimals)
}

// RoundCost rounds a cost per km to CostDecimals places.
func RoundCost(cost float64) float64 {
	return roundHalfUp(cost, CostDecimals)
}

// roundHalfUp rounds v to the given number of decimals, with ties
// going away from zero (0.625 -> 0.63, -0.125 -> -0.13).
func roundHalfUp(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
