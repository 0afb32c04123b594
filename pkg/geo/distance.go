package geo

import "math"

const EarthRadiusKm = 6371.0

const milesPerKilometre = 0.621371

type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// HaversineKm returns the great-circle distance in kilometres between two coordinates
func HaversineKm(a Coordinate, b Coordinate) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lat2 := degreesToRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(b.Longitude - a.Longitude)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)

	return EarthRadiusKm * 2 * math.Asin(math.Sqrt(h))
}

// DistanceKm is HaversineKm for optional coordinates, a missing end gives 0
func DistanceKm(a *Coordinate, b *Coordinate) float64 {
	if a == nil || b == nil {
		return 0
	}

	return HaversineKm(*a, *b)
}

func KilometresToMiles(km float64) float64 {
	return km * milesPerKilometre
}

func MilesToKilometres(miles float64) float64 {
	return miles / milesPerKilometre
}

func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Interpolate walks linearly (not geodesically) from a towards b by fraction t
func Interpolate(a Coordinate, b Coordinate, t float64) Coordinate {
	return Coordinate{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
