package game

import (
	"fmt"
	"math/rand"

	"lost-algorithm/internal/config"
)

// EntityKind classifies scene entities for rendering and picking.
type EntityKind string

const (
	KindGlobe    EntityKind = "globe"
	KindPortal   EntityKind = "portal"
	KindTree     EntityKind = "tree"
	KindBoulder  EntityKind = "boulder"
	KindTarget   EntityKind = "target"
	KindPlanet   EntityKind = "planet"
	KindRing     EntityKind = "ring"
	KindStars    EntityKind = "stars"
	KindSlider   EntityKind = "slider"
	KindButton   EntityKind = "button"
	KindKelp     EntityKind = "kelp"
	KindTreasure EntityKind = "treasure"
	KindCrystal  EntityKind = "crystal"
)

// Entity is a visual object in a zone scene. Pickable entities have a
// positive HitRadius around Transform.Position+HitOffset.
type Entity struct {
	ID        string
	Kind      EntityKind
	Base      Transform // pose restored on every mount
	Transform Transform
	Color     string
	HitRadius float64
	HitOffset Vec3

	motion   Motion
	animated bool
}

// HitCenter is the world-space center of the hit sphere.
func (e *Entity) HitCenter() Vec3 {
	return e.Transform.Position.Add(e.HitOffset)
}

// Scene is the set of entities and effects shown while a zone is active.
type Scene struct {
	Zone     ZoneID
	Entities []*Entity
	Field    *ParticleField // celebration particles at the success anchor
	Stars    []Vec3         // static star points (galaxy only)

	byID map[string]*Entity
}

func newScene(zone ZoneID) *Scene {
	return &Scene{Zone: zone, byID: make(map[string]*Entity)}
}

func (s *Scene) add(e *Entity) *Entity {
	e.Transform = e.Base
	s.Entities = append(s.Entities, e)
	s.byID[e.ID] = e
	return e
}

// Entity looks up an entity by id.
func (s *Scene) Entity(id string) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Mount restores every entity to its base pose and registers its motion
// with d. The driver is expected to be reset beforehand.
func (s *Scene) Mount(d *AnimationDriver) {
	for _, e := range s.Entities {
		e.Transform = e.Base
		if e.animated {
			d.Register(&e.Transform, e.motion)
		}
	}
}

func at(p config.Point) Vec3 {
	return Vec3{X: p[0], Y: p[1], Z: p[2]}
}

func pose(p config.Point) Transform {
	return Transform{Position: at(p)}
}

// sceneBuilder turns a zone catalog into scenes.
type sceneBuilder struct {
	catalog       *config.ZoneCatalog
	rng           *rand.Rand
	particleCount int
}

func (b *sceneBuilder) field(zone ZoneID) *ParticleField {
	spec, _ := b.catalog.Zone(string(zone))
	return NewParticleField(b.particleCount, at(spec.Success.Anchor), spec.Color, b.rng)
}

// buildScenes creates one scene per zone.
func (b *sceneBuilder) buildScenes() map[ZoneID]*Scene {
	return map[ZoneID]*Scene{
		ZoneHome:      b.hub(),
		ZoneForest:    b.forest(),
		ZoneMountains: b.mountains(),
		ZoneGalaxy:    b.galaxy(),
		ZoneOcean:     b.ocean(),
		ZoneCrystal:   b.crystal(),
	}
}

func (b *sceneBuilder) hub() *Scene {
	s := newScene(ZoneHome)
	hub := b.catalog.Hub
	home, _ := b.catalog.Zone(string(ZoneHome))

	s.add(&Entity{ID: "globe", Kind: KindGlobe, Color: home.Color,
		motion: Turntable(hub.Spin), animated: true})

	for _, z := range PuzzleZones {
		spec, _ := b.catalog.Zone(string(z))
		s.add(&Entity{
			ID:        "portal:" + string(z),
			Kind:      KindPortal,
			Base:      pose(spec.Portal.Position),
			Color:     spec.Color,
			HitRadius: hub.PortalRadius,
		})
	}
	s.Field = NewParticleField(b.particleCount, V(0, 0, 0), "#FFFFFF", b.rng)
	return s
}

func (b *sceneBuilder) forest() *Scene {
	s := newScene(ZoneForest)
	f := b.catalog.Forest
	for i, t := range f.Trees {
		s.add(&Entity{
			ID:        fmt.Sprintf("tree:%d", i),
			Kind:      KindTree,
			Base:      pose(t.Position),
			Color:     "#16A34A",
			HitRadius: f.LeafRadius,
			HitOffset: V(0, f.LeafHeight, 0),
			motion:    Floating(f.Float.Speed, f.Float.Amplitude),
			animated:  true,
		})
	}
	s.Field = b.field(ZoneForest)
	return s
}

func (b *sceneBuilder) mountains() *Scene {
	s := newScene(ZoneMountains)
	m := b.catalog.Mountains
	for _, bl := range m.Boulders {
		s.add(&Entity{
			ID:   fmt.Sprintf("target:%d", bl.ID),
			Kind: KindTarget,
			Base: Transform{Position: at(bl.Target).Add(V(0, -0.4, 0))},
			// Dark disc under the target position.
			Color: "#374151",
		})
		s.add(&Entity{
			ID:        fmt.Sprintf("boulder:%d", bl.ID),
			Kind:      KindBoulder,
			Base:      pose(bl.Position),
			Color:     "#64748B",
			HitRadius: m.BoulderRadius,
		})
	}
	s.Field = b.field(ZoneMountains)
	return s
}

func (b *sceneBuilder) galaxy() *Scene {
	s := newScene(ZoneGalaxy)
	g := b.catalog.Galaxy

	s.add(&Entity{ID: "stars", Kind: KindStars, motion: Rotating(g.StarSpin), animated: true})
	half := g.StarSpread / 2
	s.Stars = make([]Vec3, g.StarCount)
	for i := range s.Stars {
		s.Stars[i] = Vec3{
			X: (b.rng.Float64() - 0.5) * 2 * half,
			Y: (b.rng.Float64() - 0.5) * 2 * half,
			Z: (b.rng.Float64() - 0.5) * 2 * half,
		}
	}

	for _, p := range g.Planets {
		s.add(&Entity{ID: "planet:" + p.Channel, Kind: KindPlanet, Base: pose(p.Position),
			motion: Rotating(g.PlanetSpin), animated: true})
		s.add(&Entity{ID: "ring:" + p.Channel, Kind: KindRing, Base: pose(p.Position),
			motion: Rotating(g.RingSpin), animated: true})
	}

	panel := at(g.Panel)
	for _, sl := range g.Sliders {
		s.add(&Entity{
			ID:        "slider:" + sl.Channel,
			Kind:      KindSlider,
			Base:      Transform{Position: panel.Add(V(sl.OffsetX, 0, 0))},
			Color:     sliderColor(sl.Channel),
			HitRadius: 1, // half the track length
		})
	}
	s.Field = b.field(ZoneGalaxy)
	return s
}

func sliderColor(ch string) string {
	switch ch {
	case "r":
		return "#FF0000"
	case "g":
		return "#00FF00"
	}
	return "#0000FF"
}

func (b *sceneBuilder) ocean() *Scene {
	s := newScene(ZoneOcean)
	o := b.catalog.Ocean
	s.add(&Entity{ID: "dive", Kind: KindButton, Base: pose(o.DiveButton), Color: "#059669", HitRadius: 1})
	for i, k := range o.Kelp {
		s.add(&Entity{ID: fmt.Sprintf("kelp:%d", i), Kind: KindKelp, Base: pose(k), Color: "#16A34A"})
	}
	s.add(&Entity{ID: "treasure", Kind: KindTreasure, Base: pose(o.Treasure), Color: "#FBBF24"})
	s.Field = b.field(ZoneOcean)
	return s
}

func (b *sceneBuilder) crystal() *Scene {
	s := newScene(ZoneCrystal)
	c := b.catalog.Crystal
	for i, slot := range c.Slots {
		s.add(&Entity{
			ID:        fmt.Sprintf("crystal:%d", i),
			Kind:      KindCrystal,
			Base:      pose(slot),
			Color:     "#9CA3AF",
			HitRadius: 1,
			motion:    Floating(c.Float.Speed, c.Float.Amplitude),
			animated:  true,
		})
	}
	s.Field = b.field(ZoneCrystal)
	return s
}
