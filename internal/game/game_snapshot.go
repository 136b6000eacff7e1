package game

import (
	"sync"
	"sync/atomic"
	"time"

	"lost-algorithm/internal/config"
)

// DefaultLimits provides production-safe default limits
var DefaultLimits = config.DefaultLimits()

// GameState is the read-only view of the progression state machine plus
// every zone's progress, for progress bars, navigation and victory banners.
type GameState struct {
	CurrentZone    ZoneID         `json:"currentZone"`
	Fragments      int            `json:"fragments"`
	TotalFragments int            `json:"totalFragments"`
	Progress       float64        `json:"progress"`
	UnlockedZones  []ZoneID       `json:"unlockedZones"`
	NavEnabled     []ZoneID       `json:"navEnabled"`
	Victory        bool           `json:"victory"`
	Zones          []ZoneProgress `json:"zones"` // in ZoneOrder
}

// Zone returns the progress entry for id.
func (s GameState) Zone(id ZoneID) (ZoneProgress, bool) {
	for _, z := range s.Zones {
		if z.Zone == id {
			return z, true
		}
	}
	return ZoneProgress{}, false
}

// EntitySnapshot is an immutable copy of a scene entity for rendering
type EntitySnapshot struct {
	ID       string     `json:"id"`
	Kind     EntityKind `json:"kind"`
	Position Vec3       `json:"position"`
	Rotation Vec3       `json:"rotation"`
	Color    string     `json:"color"`
	Label    string     `json:"label,omitempty"`
	Active   bool       `json:"active,omitempty"`   // revealed / placed / activated
	Emissive float64    `json:"emissive,omitempty"` // glow intensity
	Value    float64    `json:"value,omitempty"`    // slider channel value
	Hidden   bool       `json:"hidden,omitempty"`
}

// ParticleSnapshot is an immutable particle in world space
type ParticleSnapshot struct {
	Position Vec3   `json:"position"`
	Color    string `json:"color"`
}

// GameSnapshot is a complete immutable frame for rendering
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tick"`
	Elapsed    float64   `json:"elapsed"`
	RNGSeed    int64     `json:"rngSeed"`

	State GameState `json:"state"`

	// Active scene
	Entities  []EntitySnapshot   `json:"entities"`
	Particles []ParticleSnapshot `json:"particles"`
	Stars     []Vec3             `json:"stars,omitempty"`
	StarColor string             `json:"starColor,omitempty"`
	Banner    string             `json:"banner,omitempty"` // success message of the current zone
	Grabbed   int                `json:"grabbed,omitempty"`
	Hovered   string             `json:"hovered,omitempty"`
	Cue       SoundCue           `json:"cue"`
}

// Entity returns the entity snapshot with the given id.
func (s *GameSnapshot) Entity(id string) (EntitySnapshot, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return EntitySnapshot{}, false
}

// Clone deep-copies the slices the producer reuses.
func (s *GameSnapshot) Clone() *GameSnapshot {
	c := *s
	c.Entities = append([]EntitySnapshot(nil), s.Entities...)
	c.Particles = append([]ParticleSnapshot(nil), s.Particles...)
	c.State.UnlockedZones = append([]ZoneID(nil), s.State.UnlockedZones...)
	c.State.NavEnabled = append([]ZoneID(nil), s.State.NavEnabled...)
	c.State.Zones = append([]ZoneProgress(nil), s.State.Zones...)
	// Stars and the ZoneProgress variants are rebuilt, never mutated, by the producer.
	return &c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering: the producer fills one slot while readers copy the last published one.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	slotMu    [3]sync.RWMutex
	limits    config.ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
	published atomic.Bool
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits config.ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Entities:  make([]EntitySnapshot, 0, limits.MaxEntities),
			Particles: make([]ParticleSnapshot, 0, limits.MaxParticlesPerField),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called under the engine lock).
// The slot stays locked until PublishWrite.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	p.slotMu[idx].Lock()
	snap := &p.snapshots[idx]

	// Reset slices but keep capacity
	snap.Entities = snap.Entities[:0]
	snap.Particles = snap.Particles[:0]
	snap.Stars = nil
	snap.StarColor = ""
	snap.Banner = ""
	snap.Grabbed = 0
	snap.Hovered = ""
	snap.Cue = SoundCue{}

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite unlocks the slot filled by AcquireWrite and makes it readable.
func (p *SnapshotPool) PublishWrite() {
	idx := atomic.LoadUint32(&p.writeIdx) % 3
	p.slotMu[idx].Unlock()
	atomic.StoreUint32(&p.readIdx, idx)
	p.published.Store(true)
}

// AcquireRead returns a private copy of the latest published snapshot,
// or nil before the first publish.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	if !p.published.Load() {
		return nil
	}
	idx := atomic.LoadUint32(&p.readIdx) % 3
	p.slotMu[idx].RLock()
	defer p.slotMu[idx].RUnlock()
	return p.snapshots[idx].Clone()
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() config.ResourceLimits {
	return p.limits
}
