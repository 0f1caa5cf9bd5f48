package aggregation

import "math"

// FlightHours converts minutes to hours rounded to one decimal
func FlightHours(minutes ...int) float64 {
	total := 0
	for _, m := range minutes {
		total += m
	}
	return math.Round(float64(total)/60*10) / 10
}
