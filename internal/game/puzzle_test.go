package game

import (
	"math"
	"testing"
)

// recordingCollector counts fragment deliveries per zone.
type recordingCollector struct {
	zones []ZoneID
}

func (r *recordingCollector) CollectFragment(zone ZoneID) bool {
	r.zones = append(r.zones, zone)
	return true
}

func (r *recordingCollector) count(zone ZoneID) int {
	n := 0
	for _, z := range r.zones {
		if z == zone {
			n++
		}
	}
	return n
}

func testTrees() []Tree {
	return []Tree{
		{Position: V(-3, 0, 2), Number: 7},
		{Position: V(1, 0, 3), Number: 3},
		{Position: V(4, 0, -1), Number: 9},
		{Position: V(-1, 0, -3), Number: 1},
		{Position: V(2, 0, 1), Number: 5},
	}
}

func TestForestPuzzle(t *testing.T) {
	tests := []struct {
		name   string
		reveal []int
		solved bool
	}{
		{"all five in any order", []int{7, 3, 9, 1, 5}, true},
		{"sorted order", []int{1, 3, 5, 7, 9}, true},
		{"four numbers", []int{7, 3, 9, 1}, false},
		{"duplicates ignored", []int{7, 7, 3, 3, 9}, false},
		{"nothing revealed", nil, false},
		{"even numbers never solve", []int{2, 4, 6, 8, 10}, false},
		{"stray number then all five", []int{2, 7, 3, 9, 1, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &recordingCollector{}
			f := NewForestPuzzle(testTrees(), c)
			for _, n := range tt.reveal {
				f.RegisterInteraction(Interaction{Kind: InteractReveal, Number: n})
			}

			if f.IsSolved() != tt.solved {
				t.Errorf("Expected solved=%v, got %v", tt.solved, f.IsSolved())
			}
			want := 0
			if tt.solved {
				want = 1
			}
			if got := c.count(ZoneForest); got != want {
				t.Errorf("Expected %d fragment deliveries, got %d", want, got)
			}
		})
	}
}

func TestForestRevealOrderKept(t *testing.T) {
	f := NewForestPuzzle(testTrees(), nil)
	f.RevealTree(2)
	f.RevealTree(0)
	if f.RevealTree(2) {
		t.Error("Revealing the same tree twice should be a no-op")
	}
	if f.RevealTree(9) {
		t.Error("Out-of-range tree should be ignored")
	}

	got := f.Progress().Forest.RevealedNumbers
	if len(got) != 2 || got[0] != 9 || got[1] != 7 {
		t.Errorf("Expected [9 7], got %v", got)
	}
}

func TestForestRejectsNumbersNoTreeHides(t *testing.T) {
	f := NewForestPuzzle(testTrees(), nil)
	for _, n := range []int{0, 2, 11, -1} {
		if f.RevealNumber(n) {
			t.Errorf("Expected %d to be rejected", n)
		}
	}
	if got := f.Progress().Forest.RevealedNumbers; len(got) != 0 {
		t.Errorf("Expected nothing revealed, got %v", got)
	}
}

func TestForestIgnoresOtherKinds(t *testing.T) {
	f := NewForestPuzzle(testTrees(), nil)
	if f.RegisterInteraction(Interaction{Kind: InteractDive}) {
		t.Error("Forest should ignore dive interactions")
	}
}

func testBoulders() []Boulder {
	return []Boulder{
		{ID: 1, Position: V(-4, 1, 2), Target: V(-2, 1, 0)},
		{ID: 2, Position: V(0, 1, 4), Target: V(0, 1, 0)},
		{ID: 3, Position: V(4, 1, -2), Target: V(2, 1, 0)},
	}
}

func TestMountainsRejectsNonFinitePositions(t *testing.T) {
	tests := []struct {
		name string
		pos  Vec3
	}{
		{"NaN x", V(math.NaN(), 1, 0)},
		{"infinite z", V(0, 1, math.Inf(1))},
		{"negative infinite y", V(0, math.Inf(-1), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMountainsPuzzle(testBoulders(), nil)
			if m.MoveBoulder(1, tt.pos) {
				t.Error("Expected non-finite move to be rejected")
			}
			b, _ := m.Boulder(1)
			if b.Position != V(-4, 1, 2) {
				t.Errorf("Expected boulder to stay at (-4,1,2), got %+v", b.Position)
			}
		})
	}
}

func TestMountainsPlacementBoundary(t *testing.T) {
	tests := []struct {
		name   string
		offset float64
		placed bool
	}{
		{"just inside", 0.99, true},
		{"exactly one unit", 1.0, false},
		{"outside", 1.5, false},
		{"on target", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMountainsPuzzle(testBoulders(), nil)
			m.MoveBoulder(2, V(tt.offset, 1, 0))

			b, _ := m.Boulder(2)
			if b.Placed != tt.placed {
				t.Errorf("Expected placed=%v at offset %v, got %v", tt.placed, tt.offset, b.Placed)
			}
		})
	}
}

func TestMountainsSolveFiresOnce(t *testing.T) {
	c := &recordingCollector{}
	m := NewMountainsPuzzle(testBoulders(), c)

	m.MoveBoulder(1, V(-2, 1, 0))
	m.MoveBoulder(2, V(0, 1, 0))
	if m.IsSolved() {
		t.Fatal("Two of three boulders placed should not solve")
	}
	m.MoveBoulder(3, V(2.5, 1, 0.5))
	if !m.IsSolved() {
		t.Fatal("Expected solved with all boulders placed")
	}

	// Moving off and back does not award a second fragment.
	m.MoveBoulder(3, V(5, 1, 5))
	if m.IsSolved() {
		t.Error("Solved state is recomputed from positions")
	}
	m.MoveBoulder(3, V(2, 1, 0))
	if got := c.count(ZoneMountains); got != 1 {
		t.Errorf("Expected 1 fragment delivery, got %d", got)
	}
}

func TestMountainsMoveKeepsHeight(t *testing.T) {
	m := NewMountainsPuzzle(testBoulders(), nil)
	m.RegisterInteraction(Interaction{Kind: InteractMove, BoulderID: 1, Point: V(-2, 7, 0)})

	b, _ := m.Boulder(1)
	if b.Position != V(-2, 1, 0) {
		t.Errorf("Expected (-2,1,0), got %+v", b.Position)
	}
	if m.RegisterInteraction(Interaction{Kind: InteractMove, BoulderID: 9}) {
		t.Error("Unknown boulder should be ignored")
	}
}

func TestGalaxyTolerance(t *testing.T) {
	tests := []struct {
		name   string
		colors ColorChannels
		solved bool
	}{
		{"near golden target", ColorChannels{R: 0.62, G: 0.49, B: 0.74}, true},
		{"exact target", ColorTarget, true},
		{"green too high", ColorChannels{R: 0.62, G: 0.70, B: 0.74}, false},
		{"initial colors", ColorChannels{R: 0.5, G: 0.3, B: 0.8}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGalaxyPuzzle(ColorChannels{R: 0.5, G: 0.3, B: 0.8}, nil)
			g.UpdateColor(ChannelR, tt.colors.R)
			g.UpdateColor(ChannelG, tt.colors.G)
			g.UpdateColor(ChannelB, tt.colors.B)

			if g.IsSolved() != tt.solved {
				t.Errorf("Expected solved=%v, got %v", tt.solved, g.IsSolved())
			}
		})
	}
}

func TestGalaxyRevealLatches(t *testing.T) {
	c := &recordingCollector{}
	g := NewGalaxyPuzzle(ColorChannels{R: 0.5, G: 0.3, B: 0.8}, c)

	g.UpdateColor(ChannelR, 0.62)
	g.UpdateColor(ChannelG, 0.49)
	g.UpdateColor(ChannelB, 0.74)
	if !g.Revealed() {
		t.Fatal("Expected revealed after solving")
	}

	g.UpdateColor(ChannelG, 0.70)
	if g.IsSolved() {
		t.Error("Expected unsolved after moving green away")
	}
	if !g.Revealed() {
		t.Error("Revealed should stay latched")
	}

	g.UpdateColor(ChannelG, 0.49)
	if got := c.count(ZoneGalaxy); got != 1 {
		t.Errorf("Expected 1 fragment delivery, got %d", got)
	}
}

func TestGalaxyClampsInput(t *testing.T) {
	g := NewGalaxyPuzzle(ColorChannels{R: 0.5, G: 0.3, B: 0.8}, nil)

	g.UpdateColor(ChannelR, 1.7)
	g.UpdateColor(ChannelG, -0.2)
	if g.UpdateColor(ChannelB, math.NaN()) {
		t.Error("NaN should be ignored")
	}
	if g.UpdateColor(Channel("x"), 0.5) {
		t.Error("Unknown channel should be ignored")
	}

	got := g.Colors()
	if got.R != 1 || got.G != 0 || got.B != 0.8 {
		t.Errorf("Expected (1, 0, 0.8), got %+v", got)
	}
}

func TestSliderValueAt(t *testing.T) {
	tests := []struct {
		sliderX, pointX, want float64
	}{
		{0, 0, 0.5},
		{0, 1, 1},
		{0, -1, 0},
		{-2, -1.5, 0.75},
		{2, 9, 1},
	}

	for _, tt := range tests {
		if got := SliderValueAt(tt.sliderX, tt.pointX); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SliderValueAt(%v, %v): expected %v, got %v", tt.sliderX, tt.pointX, tt.want, got)
		}
	}
}

func TestColorHex(t *testing.T) {
	if got := (ColorChannels{R: 1, G: 0, B: 0.5}).Hex(); got != "#FF0080" {
		t.Errorf("Expected #FF0080, got %s", got)
	}
}

func TestOceanDive(t *testing.T) {
	c := &recordingCollector{}
	o := NewOceanPuzzle(V(0, -8, 0), c)

	for i := 1; i <= 7; i++ {
		o.Dive()
	}
	if o.TreasureFound() {
		t.Fatal("Treasure should stay hidden above depth 8")
	}
	if !o.KelpVisible() {
		t.Error("Kelp should be visible below depth 3")
	}

	o.Dive()
	if !o.TreasureFound() {
		t.Fatal("Expected treasure at depth 8")
	}

	o.Dive()
	o.Dive()
	if o.Dive() {
		t.Error("Dive at max depth should report no change")
	}
	if o.Depth() != MaxDepth {
		t.Errorf("Expected depth %d, got %d", MaxDepth, o.Depth())
	}
	if got := c.count(ZoneOcean); got != 1 {
		t.Errorf("Expected 1 fragment delivery, got %d", got)
	}
}

func TestOceanKelpThreshold(t *testing.T) {
	o := NewOceanPuzzle(V(0, -8, 0), nil)
	for i := 0; i < KelpDepth; i++ {
		o.Dive()
	}
	if o.KelpVisible() {
		t.Errorf("Kelp should be hidden at depth %d", o.Depth())
	}
	o.Dive()
	if !o.KelpVisible() {
		t.Errorf("Kelp should be visible at depth %d", o.Depth())
	}
}

func TestCrystalResonance(t *testing.T) {
	c := &recordingCollector{}
	slots := make([]Vec3, CrystalSlots)
	p := NewCrystalPuzzle(slots, c)

	for i := 0; i < 4; i++ {
		p.ActivateCrystal(i)
	}
	if math.Abs(p.Resonance()-0.8) > 1e-9 {
		t.Errorf("Expected resonance 0.8, got %v", p.Resonance())
	}
	if p.ResonancePercent() != 80 {
		t.Errorf("Expected 80%%, got %d", p.ResonancePercent())
	}
	if c.count(ZoneCrystal) != 0 {
		t.Fatal("Fragment fired before full resonance")
	}
	if math.Abs(p.EmissiveIntensity(0)-0.4) > 1e-9 {
		t.Errorf("Expected emissive 0.4, got %v", p.EmissiveIntensity(0))
	}
	if p.EmissiveIntensity(4) != 0 {
		t.Errorf("Inactive crystal should not glow, got %v", p.EmissiveIntensity(4))
	}

	p.ActivateCrystal(4)
	if p.Resonance() != 1 || !p.IsSolved() {
		t.Errorf("Expected full resonance, got %v", p.Resonance())
	}

	if p.ActivateCrystal(4) {
		t.Error("Re-activation should be a no-op")
	}
	if p.ActivateCrystal(7) {
		t.Error("Out-of-range slot should be ignored")
	}
	if got := c.count(ZoneCrystal); got != 1 {
		t.Errorf("Expected 1 fragment delivery, got %d", got)
	}
}

// stubNavigator records zone requests.
type stubNavigator struct {
	progression *Progression
	requests    []ZoneID
}

func (n *stubNavigator) ChangeZone(target ZoneID) bool {
	n.requests = append(n.requests, target)
	return n.progression.ChangeZone(target)
}

func (n *stubNavigator) Victory() bool {
	return n.progression.Victory()
}

func TestHubSelect(t *testing.T) {
	p := NewProgression()
	nav := &stubNavigator{progression: p}
	hub := NewHubPuzzle([]Portal{{Zone: ZoneForest}, {Zone: ZoneMountains}}, nav, p.CanEnter)

	if hub.RegisterInteraction(Interaction{Kind: InteractSelect, Target: ZoneMountains}) {
		t.Error("Skipping ahead from home should be rejected")
	}
	if !hub.RegisterInteraction(Interaction{Kind: InteractSelect, Target: ZoneForest}) {
		t.Error("Expected forest to be accepted")
	}
	if len(nav.requests) != 2 {
		t.Errorf("Expected 2 navigation requests, got %d", len(nav.requests))
	}

	states := hub.Progress().Hub.Portals
	if !states[0].Unlocked || !states[1].Unlocked {
		t.Errorf("Expected both portals reachable from forest, got %+v", states)
	}
}

func TestHubSolvedOnVictory(t *testing.T) {
	p := NewProgression()
	hub := NewHubPuzzle(nil, &stubNavigator{progression: p}, p.CanEnter)

	if hub.IsSolved() {
		t.Fatal("Hub should not be solved before victory")
	}
	for _, z := range PuzzleZones {
		p.CollectFragment(z)
	}
	if !hub.IsSolved() {
		t.Error("Hub should be solved once all fragments are collected")
	}
}
