package game

import (
	"math"

	"lost-algorithm/internal/game/spatial"
)

// pickSlop tolerates pointer hits reported slightly outside a hit sphere.
const pickSlop = 0.05

// Picker resolves a world-space pointer position to the nearest pickable
// entity: a ground-plane grid for the broad phase, then a 3D sphere test.
type Picker struct {
	grid      *spatial.SpatialGrid
	maxRadius float64
	indexed   []*Entity
}

// NewPicker covers a square world of the given half-extent.
func NewPicker(halfExtent float64, maxEntities int) *Picker {
	return &Picker{
		grid:    spatial.NewSpatialGrid(spatial.Centered(halfExtent), 2, maxEntities),
		indexed: make([]*Entity, 0, maxEntities),
	}
}

// Pick returns the entity whose hit sphere contains point, preferring the closest.
func (p *Picker) Pick(entities []*Entity, point Vec3) (*Entity, bool) {
	p.grid.Clear()
	p.indexed = p.indexed[:0]
	p.maxRadius = 0

	for _, e := range entities {
		if e.HitRadius <= 0 {
			continue
		}
		c := e.HitCenter()
		p.grid.Insert(uint32(len(p.indexed)), c.X, c.Z)
		p.indexed = append(p.indexed, e)
		if e.HitRadius > p.maxRadius {
			p.maxRadius = e.HitRadius
		}
	}
	if len(p.indexed) == 0 {
		return nil, false
	}

	var best *Entity
	bestDist := math.Inf(1)
	for _, idx := range p.grid.QueryRadius(point.X, point.Z, p.maxRadius+pickSlop) {
		e := p.indexed[idx]
		d := point.Distance(e.HitCenter())
		if d <= e.HitRadius+pickSlop && d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, best != nil
}
