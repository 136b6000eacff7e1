package game

import (
	"math"
	"math/rand"
)

const (
	DefaultParticleCount = 50
	ParticleEscape       = 5.0 // respawn once any coordinate's magnitude exceeds this
)

// Particle is a kinematic point relative to its field's origin.
type Particle struct {
	Position Vec3
	Velocity Vec3
}

// ParticleField is a fixed pool of particles. Velocities are sampled once;
// escaped particles get a fresh position and keep their velocity.
type ParticleField struct {
	Origin Vec3
	Color  string

	particles []Particle
	active    bool
	rng       *rand.Rand
}

// NewParticleField samples count particles. The field starts inactive.
func NewParticleField(count int, origin Vec3, color string, rng *rand.Rand) *ParticleField {
	if count < 0 {
		count = 0
	}
	f := &ParticleField{
		Origin:    origin,
		Color:     color,
		particles: make([]Particle, count),
		rng:       rng,
	}
	for i := range f.particles {
		f.particles[i] = Particle{
			Position: f.spawnPosition(),
			Velocity: Vec3{
				X: (f.rng.Float64() - 0.5) * 0.1,
				Y: f.rng.Float64() * 0.1,
				Z: (f.rng.Float64() - 0.5) * 0.1,
			},
		}
	}
	return f
}

// spawnPosition is uniform in [-1,1)^3.
func (f *ParticleField) spawnPosition() Vec3 {
	return Vec3{
		X: (f.rng.Float64() - 0.5) * 2,
		Y: (f.rng.Float64() - 0.5) * 2,
		Z: (f.rng.Float64() - 0.5) * 2,
	}
}

// SetActive suspends or resumes the field. Suspension keeps particle state.
func (f *ParticleField) SetActive(active bool) {
	f.active = active
}

func (f *ParticleField) Active() bool {
	return f.active
}

func (f *ParticleField) Len() int {
	return len(f.particles)
}

// Tick integrates one frame. Inactive fields do nothing.
func (f *ParticleField) Tick() {
	if !f.active {
		return
	}
	for i := range f.particles {
		p := &f.particles[i]
		p.Position = p.Position.Add(p.Velocity)
		if escaped(p.Position) {
			p.Position = f.spawnPosition()
		}
	}
}

func escaped(v Vec3) bool {
	return math.Abs(v.X) > ParticleEscape ||
		math.Abs(v.Y) > ParticleEscape ||
		math.Abs(v.Z) > ParticleEscape
}

// Particles returns a copy of the pool in local coordinates.
func (f *ParticleField) Particles() []Particle {
	return append([]Particle(nil), f.particles...)
}

// AppendRender appends world-space particles to dst, up to limit total.
// Inactive fields render nothing.
func (f *ParticleField) AppendRender(dst []ParticleSnapshot, limit int) []ParticleSnapshot {
	if !f.active {
		return dst
	}
	for _, p := range f.particles {
		if len(dst) >= limit {
			break
		}
		dst = append(dst, ParticleSnapshot{
			Position: f.Origin.Add(p.Position),
			Color:    f.Color,
		})
	}
	return dst
}
