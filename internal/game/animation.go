package game

import "math"

// AnimationScale converts motion speeds and amplitudes into per-frame units.
const AnimationScale = 0.01

// Transform is the animated pose of a scene entity.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

// MotionKind selects a decorative motion primitive.
type MotionKind uint8

const (
	MotionFloat     MotionKind = iota // position.y += sin(t·speed)·amplitude·scale
	MotionRotate                      // rotation.y += speed·scale each frame
	MotionTurntable                   // rotation.y = t·speed
)

// Motion is a stateless per-frame transform. It never reads puzzle state.
type Motion struct {
	Kind      MotionKind
	Speed     float64
	Amplitude float64
}

func Floating(speed, amplitude float64) Motion {
	return Motion{Kind: MotionFloat, Speed: speed, Amplitude: amplitude}
}

func Rotating(speed float64) Motion {
	return Motion{Kind: MotionRotate, Speed: speed}
}

func Turntable(speed float64) Motion {
	return Motion{Kind: MotionTurntable, Speed: speed}
}

// Apply advances t by one frame at elapsed seconds.
func (m Motion) Apply(t *Transform, elapsed float64) {
	switch m.Kind {
	case MotionFloat:
		t.Position.Y += math.Sin(elapsed*m.Speed) * m.Amplitude * AnimationScale
	case MotionRotate:
		t.Rotation.Y += m.Speed * AnimationScale
	case MotionTurntable:
		t.Rotation.Y = elapsed * m.Speed
	}
}

// AnimationHandle identifies a registration for Unregister.
type AnimationHandle uint32

type animationEntry struct {
	handle AnimationHandle
	target *Transform
	motion Motion
}

// AnimationDriver is the per-frame update list. The host drains it once per
// tick; entries are independent, so their order is unspecified.
type AnimationDriver struct {
	entries    []animationEntry
	nextHandle AnimationHandle
	maxEntries int
}

// NewAnimationDriver creates a driver holding at most maxEntries registrations.
func NewAnimationDriver(maxEntries int) *AnimationDriver {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &AnimationDriver{
		entries:    make([]animationEntry, 0, 64),
		maxEntries: maxEntries,
	}
}

// Register adds target to the update list. Returns false when the driver is full.
func (d *AnimationDriver) Register(target *Transform, m Motion) (AnimationHandle, bool) {
	if target == nil || len(d.entries) >= d.maxEntries {
		return 0, false
	}
	d.nextHandle++
	d.entries = append(d.entries, animationEntry{handle: d.nextHandle, target: target, motion: m})
	return d.nextHandle, true
}

// Unregister removes one registration (swap-remove, order not kept).
func (d *AnimationDriver) Unregister(h AnimationHandle) bool {
	for i := range d.entries {
		if d.entries[i].handle == h {
			last := len(d.entries) - 1
			d.entries[i] = d.entries[last]
			d.entries[last] = animationEntry{}
			d.entries = d.entries[:last]
			return true
		}
	}
	return false
}

// Reset drops every registration but keeps capacity.
func (d *AnimationDriver) Reset() {
	for i := range d.entries {
		d.entries[i] = animationEntry{}
	}
	d.entries = d.entries[:0]
}

// Len returns the number of registered entries.
func (d *AnimationDriver) Len() int {
	return len(d.entries)
}

// Tick applies every registered motion once.
func (d *AnimationDriver) Tick(elapsed float64) {
	for i := range d.entries {
		e := &d.entries[i]
		e.motion.Apply(e.target, elapsed)
	}
}
