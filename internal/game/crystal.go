package game

import (
	"math"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// CrystalSlots is the fixed number of crystals.
const CrystalSlots = 5

// EmissiveScale converts resonance into glow intensity for activated crystals.
const EmissiveScale = 0.5

// CrystalProgress is the crystal core's visible state.
type CrystalProgress struct {
	Activated        []int   `json:"activated"`
	Resonance        float64 `json:"resonance"`
	ResonancePercent int     `json:"resonancePercent"`
}

// CrystalPuzzle exposes a continuous resonance metric and is solved at full resonance.
type CrystalPuzzle struct {
	slots     []Vec3
	activated mapset.Set[int]
	latch     solveLatch
}

func NewCrystalPuzzle(slots []Vec3, collector FragmentCollector) *CrystalPuzzle {
	return &CrystalPuzzle{
		slots:     append([]Vec3(nil), slots...),
		activated: mapset.New[int](),
		latch:     solveLatch{zone: ZoneCrystal, collector: collector},
	}
}

func (c *CrystalPuzzle) Zone() ZoneID { return ZoneCrystal }

// ActivateCrystal adds index to the activated set. Re-activation and
// out-of-range indices are no-ops.
func (c *CrystalPuzzle) ActivateCrystal(index int) bool {
	if index < 0 || index >= len(c.slots) || c.activated.Has(index) {
		return false
	}
	c.activated.Put(index)
	c.latch.observe(c.IsSolved())
	return true
}

func (c *CrystalPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractActivate {
		return false
	}
	return c.ActivateCrystal(in.Slot)
}

// Resonance is |activated| / slots.
func (c *CrystalPuzzle) Resonance() float64 {
	if len(c.slots) == 0 {
		return 0
	}
	return float64(c.activated.Size()) / float64(len(c.slots))
}

// ResonancePercent is the rounded percentage shown to players.
func (c *CrystalPuzzle) ResonancePercent() int {
	return int(math.Round(c.Resonance() * 100))
}

// IsActivated reports whether slot index glows.
func (c *CrystalPuzzle) IsActivated(index int) bool {
	return c.activated.Has(index)
}

// EmissiveIntensity is resonance·0.5 for activated crystals, 0 otherwise.
func (c *CrystalPuzzle) EmissiveIntensity(index int) float64 {
	if !c.activated.Has(index) {
		return 0
	}
	return c.Resonance() * EmissiveScale
}

func (c *CrystalPuzzle) IsSolved() bool {
	return c.Resonance() == 1
}

func (c *CrystalPuzzle) Progress() ZoneProgress {
	active := make([]int, 0, c.activated.Size())
	c.activated.Each(func(i int) {
		active = append(active, i)
	})
	sort.Ints(active)

	return ZoneProgress{
		Zone:   ZoneCrystal,
		Solved: c.IsSolved(),
		Crystal: &CrystalProgress{
			Activated:        active,
			Resonance:        c.Resonance(),
			ResonancePercent: c.ResonancePercent(),
		},
	}
}
