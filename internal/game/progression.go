package game

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// Progression owns the session's GameState: current zone, unlocked zones and
// fragments. All mutation goes through ChangeZone and CollectFragment.
//
// Progression is not safe for concurrent use; the Engine serializes access.
type Progression struct {
	currentZone ZoneID
	fragments   int
	unlocked    mapset.Set[ZoneID]
	completed   map[ZoneID]bool
}

// NewProgression starts a session at home with nothing collected.
func NewProgression() *Progression {
	p := &Progression{
		currentZone: ZoneHome,
		unlocked:    mapset.New[ZoneID](),
		completed:   make(map[ZoneID]bool, len(PuzzleZones)),
	}
	p.unlocked.Put(ZoneHome)
	for _, z := range PuzzleZones {
		p.completed[z] = false
	}
	return p
}

// ChangeZone moves to target if it is home, already unlocked, or at most one
// step past the current zone. Otherwise the request is ignored and false is returned.
func (p *Progression) ChangeZone(target ZoneID) bool {
	if !p.CanEnter(target) {
		return false
	}

	p.currentZone = target
	p.unlocked.Put(target)
	p.assertInvariants()
	return true
}

// CanEnter reports whether ChangeZone(target) would be accepted right now.
func (p *Progression) CanEnter(target ZoneID) bool {
	if !target.Valid() {
		return false
	}
	return target == ZoneHome ||
		p.unlocked.Has(target) ||
		target.Index() <= p.currentZone.Index()+1
}

// CollectFragment marks zone completed and counts its fragment.
// Returns false if the zone was already completed or has no fragment.
func (p *Progression) CollectFragment(zone ZoneID) bool {
	if !zone.HasFragment() || p.completed[zone] {
		return false
	}
	p.completed[zone] = true
	p.fragments++
	p.assertInvariants()
	return true
}

// CurrentZone returns the active zone.
func (p *Progression) CurrentZone() ZoneID {
	return p.currentZone
}

// Fragments returns the number of fragments collected.
func (p *Progression) Fragments() int {
	return p.fragments
}

// Completed reports whether zone's fragment has been collected.
func (p *Progression) Completed(zone ZoneID) bool {
	return p.completed[zone]
}

// IsUnlocked reports whether zone has been entered at least once (home always).
func (p *Progression) IsUnlocked(zone ZoneID) bool {
	return p.unlocked.Has(zone)
}

// NavEnabled reports whether a navigation control for zone should be enabled.
func (p *Progression) NavEnabled(zone ZoneID) bool {
	return zone == ZoneHome || p.unlocked.Has(zone)
}

// Unlocked returns the unlocked zones in unlock order.
func (p *Progression) Unlocked() []ZoneID {
	out := make([]ZoneID, 0, len(ZoneOrder))
	for _, z := range ZoneOrder {
		if p.unlocked.Has(z) {
			out = append(out, z)
		}
	}
	return out
}

// Progress returns fragments / total in [0,1].
func (p *Progression) Progress() float64 {
	return float64(p.fragments) / float64(TotalFragments)
}

// Victory is derived, never stored.
func (p *Progression) Victory() bool {
	return p.fragments == TotalFragments
}

// assertInvariants panics on states no sequence of valid operations can reach.
func (p *Progression) assertInvariants() {
	if !p.unlocked.Has(ZoneHome) {
		panic("progression: home missing from unlocked zones")
	}
	count := 0
	for _, done := range p.completed {
		if done {
			count++
		}
	}
	if count != p.fragments {
		panic(fmt.Sprintf("progression: fragments=%d but %d zones completed", p.fragments, count))
	}
	if p.fragments > TotalFragments {
		panic(fmt.Sprintf("progression: fragments=%d exceeds total %d", p.fragments, TotalFragments))
	}
}
