package game

import (
	"math"
	"strings"
)

// ZoneID identifies one of the six game areas.
type ZoneID string

const (
	ZoneHome      ZoneID = "home"
	ZoneForest    ZoneID = "forest"
	ZoneMountains ZoneID = "mountains"
	ZoneGalaxy    ZoneID = "galaxy"
	ZoneOcean     ZoneID = "ocean"
	ZoneCrystal   ZoneID = "crystal"
)

// ZoneOrder is the unlock order. Only forward unlocking is gated by it.
var ZoneOrder = []ZoneID{ZoneHome, ZoneForest, ZoneMountains, ZoneGalaxy, ZoneOcean, ZoneCrystal}

// PuzzleZones are the zones that award a fragment.
var PuzzleZones = ZoneOrder[1:]

// TotalFragments is the number of fragments needed for victory.
const TotalFragments = 5

// Index returns the zone's position in ZoneOrder, or -1 if unknown.
func (z ZoneID) Index() int {
	for i, id := range ZoneOrder {
		if id == z {
			return i
		}
	}
	return -1
}

// Valid reports whether z is a known zone.
func (z ZoneID) Valid() bool {
	return z.Index() >= 0
}

// HasFragment reports whether solving z awards a fragment.
func (z ZoneID) HasFragment() bool {
	return z.Valid() && z != ZoneHome
}

// ParseZone accepts a zone id or its 0-based index ("0".."5").
func ParseZone(s string) (ZoneID, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '5' {
		return ZoneOrder[s[0]-'0'], true
	}
	z := ZoneID(s)
	return z, z.Valid()
}

// Vec3 is a point or direction in world space (y is up).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// V is shorthand for building a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Finite reports whether no component is NaN or infinite.
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Distance is the full 3D euclidean distance.
func (v Vec3) Distance(o Vec3) float64 {
	d := v.Sub(o)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// DistanceXZ ignores the vertical component.
func (v Vec3) DistanceXZ(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}
