package utils

import "math"

const earthRadiusMeters = 6371000

// DistanceMeters is the great-circle distance between two points (haversine).
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	// rounding can push a a hair past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsWithinGeofence is boundary-inclusive.
func IsWithinGeofence(userLat, userLng, centerLat, centerLng, radiusMeters float64) bool {
	return DistanceMeters(userLat, userLng, centerLat, centerLng) <= radiusMeters
}

type Fence struct {
	Name   string
	Lat    float64
	Lng    float64
	Radius float64
	Hard   bool
}

type GeofenceVerdict int

const (
	GeofenceInside GeofenceVerdict = iota
	GeofenceFlagged
	GeofenceRejected
)

// GeofenceResult says how a punch position relates to an employee's fences.
// Where names the matched fence when inside, otherwise the nearest one.
type GeofenceResult struct {
	Verdict  GeofenceVerdict
	Where    string
	Distance float64
}

// CheckGeofences evaluates a position against all fences. Inside any fence
// wins; outside all of them is a rejection if any fence is hard, a flag otherwise.
// No fences means inside.
func CheckGeofences(lat, lng float64, fences []Fence) GeofenceResult {
	if len(fences) == 0 {
		return GeofenceResult{Verdict: GeofenceInside}
	}

	nearest := GeofenceResult{Distance: math.Inf(1)}
	anyHard := false
	for _, f := range fences {
		d := DistanceMeters(lat, lng, f.Lat, f.Lng)
		if d <= f.Radius {
			return GeofenceResult{Verdict: GeofenceInside, Where: f.Name, Distance: d}
		}
		if f.Hard {
			anyHard = true
		}
		if d < nearest.Distance {
			nearest.Distance = d
			nearest.Where = f.Name
		}
	}

	if anyHard {
		nearest.Verdict = GeofenceRejected
	} else {
		nearest.Verdict = GeofenceFlagged
	}
	return nearest
}

// AnyHard reports whether a fence list contains a hard fence.
func AnyHard(fences []Fence) bool {
	for _, f := range fences {
		if f.Hard {
			return true
		}
	}
	return false
}
