package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultEngineConfig()
	cfg.Seed = 42
	return NewEngine(cfg)
}

// TestNewEngine verifies engine creation with correct defaults
func TestNewEngine(t *testing.T) {
	tests := []struct {
		name     string
		tickRate int
	}{
		{"standard 30 FPS", 30},
		{"high 60 FPS", 60},
		{"zero falls back", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			cfg.TickRate = tt.tickRate
			engine := NewEngine(cfg)
			if engine == nil {
				t.Fatal("NewEngine returned nil")
			}

			snap := engine.GetSnapshot()
			if snap == nil {
				t.Fatal("Expected an initial snapshot")
			}
			if snap.State.CurrentZone != ZoneHome {
				t.Errorf("Expected home, got %s", snap.State.CurrentZone)
			}
			if _, ok := snap.Entity("globe"); !ok {
				t.Error("Expected globe in the home scene")
			}
			for _, z := range PuzzleZones {
				if _, ok := snap.Entity("portal:" + string(z)); !ok {
					t.Errorf("Expected portal for %s", z)
				}
			}
		})
	}
}

// TestEngineStartStop verifies engine can start and stop without panics
func TestEngineStartStop(t *testing.T) {
	engine := newTestEngine(t)

	engine.Start()
	time.Sleep(100 * time.Millisecond)
	if !engine.IsRunning() {
		t.Error("Expected engine running")
	}

	engine.Stop()
	// Should not panic on double stop
	engine.Stop()

	if engine.TickCount() == 0 {
		t.Error("Expected frames to be simulated while running")
	}
}

func TestEngineRestart(t *testing.T) {
	engine := newTestEngine(t)

	engine.Start()
	engine.Stop()
	before := engine.TickCount()

	engine.Start()
	defer engine.Stop()
	time.Sleep(100 * time.Millisecond)

	if !engine.IsRunning() {
		t.Error("Expected engine running after restart")
	}
	if engine.TickCount() <= before {
		t.Errorf("Expected ticks after restart, got %d (was %d)", engine.TickCount(), before)
	}
}

func TestSelectZoneRejectsSkip(t *testing.T) {
	engine := newTestEngine(t)

	if engine.SelectZone("test", ZoneGalaxy) {
		t.Error("Skipping from home to galaxy should be rejected")
	}
	if got := engine.GetState().CurrentZone; got != ZoneHome {
		t.Errorf("Expected home after rejection, got %s", got)
	}
	if !engine.SelectZone("test", ZoneForest) {
		t.Error("Expected forest to be accepted")
	}
	if snap := engine.GetSnapshot(); snap.State.CurrentZone != ZoneForest {
		t.Errorf("Expected snapshot in forest, got %s", snap.State.CurrentZone)
	}
}

func TestPortalPointer(t *testing.T) {
	engine := newTestEngine(t)

	if engine.Pointer("test", "portal:mountains", nil) {
		t.Error("Mountains portal should be rejected from home")
	}
	if !engine.Pointer("test", "portal:forest", nil) {
		t.Fatal("Forest portal should be accepted")
	}
	if got := engine.GetState().CurrentZone; got != ZoneForest {
		t.Errorf("Expected forest, got %s", got)
	}
	snap := engine.GetSnapshot()
	if _, ok := snap.Entity("tree:0"); !ok {
		t.Error("Expected forest scene mounted after portal click")
	}
}

func TestInteractionForOtherZoneIgnored(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)

	if engine.Interact("test", Interaction{Kind: InteractReveal, Zone: ZoneMountains, Number: 7}) {
		t.Error("Interaction addressed to another zone should be ignored")
	}
	if engine.Interact("test", Interaction{Kind: InteractDive}) {
		t.Error("Dive in the forest should not apply")
	}
	if got := engine.forest.Progress().Forest.RevealedNumbers; len(got) != 0 {
		t.Errorf("Expected nothing revealed, got %v", got)
	}
}

func TestForestTreeLabels(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)

	engine.Pointer("test", "tree:0", nil)
	snap := engine.GetSnapshot()

	tree, _ := snap.Entity("tree:0")
	if !tree.Active || tree.Label != "7" {
		t.Errorf("Expected revealed tree labelled 7, got %+v", tree)
	}
	other, _ := snap.Entity("tree:1")
	if other.Active || other.Label != "" {
		t.Errorf("Expected hidden tree:1, got %+v", other)
	}
}

func TestPointerCoordinatesPickTree(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)

	// Tree 0 stands at (-3,0,2); its canopy is centered 2.5 above.
	if engine.Pointer("test", "", &Vec3{X: -3, Y: 0, Z: 2}) {
		t.Error("Clicking the ground below the canopy should miss")
	}
	if !engine.Pointer("test", "", &Vec3{X: -3, Y: 2.5, Z: 2.5}) {
		t.Fatal("Clicking the canopy should reveal the tree")
	}
	if got := engine.forest.Progress().Forest.RevealedNumbers; len(got) != 1 || got[0] != 7 {
		t.Errorf("Expected [7], got %v", got)
	}
}

func TestMountainsGrabAndDrop(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)
	engine.SelectZone("test", ZoneMountains)

	if !engine.Pointer("test", "", &Vec3{X: -4, Y: 1, Z: 2}) {
		t.Fatal("Clicking boulder 1 should grab it")
	}
	if snap := engine.GetSnapshot(); snap.Grabbed != 1 {
		t.Errorf("Expected boulder 1 grabbed, got %d", snap.Grabbed)
	}

	if !engine.Pointer("test", "", &Vec3{X: -2.2, Y: 0, Z: 0.1}) {
		t.Fatal("Clicking empty ground should drop the boulder")
	}
	b, _ := engine.mountains.Boulder(1)
	if b.Position != V(-2.2, 1, 0.1) {
		t.Errorf("Expected boulder at (-2.2,1,0.1), got %+v", b.Position)
	}
	if !b.Placed {
		t.Error("Expected boulder 1 placed")
	}

	snap := engine.GetSnapshot()
	if snap.Grabbed != 0 {
		t.Errorf("Expected nothing grabbed after drop, got %d", snap.Grabbed)
	}
	ent, _ := snap.Entity("boulder:1")
	if !ent.Active || ent.Position != b.Position {
		t.Errorf("Expected snapshot to follow the boulder, got %+v", ent)
	}

	// The scene entity moved too, so it is picked at its new spot.
	if !engine.Pointer("test", "", &Vec3{X: -2.2, Y: 1, Z: 0.1}) {
		t.Error("Expected to grab boulder 1 at its new position")
	}
}

func TestNonFiniteInputKeepsSnapshotEncodable(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)
	engine.SelectZone("test", ZoneMountains)

	if engine.Interact("test", Interaction{Kind: InteractMove, Zone: ZoneMountains, BoulderID: 1, Point: V(math.NaN(), 0, 0)}) {
		t.Error("Expected NaN move to be rejected")
	}
	if engine.Pointer("test", "", &Vec3{X: math.Inf(1), Y: 0, Z: 0}) {
		t.Error("Expected infinite pointer to be rejected")
	}
	if _, err := json.Marshal(engine.GetSnapshot()); err != nil {
		t.Errorf("Expected snapshot to encode, got %v", err)
	}
}

func TestGalaxySliderPointer(t *testing.T) {
	engine := newTestEngine(t)
	for _, z := range []ZoneID{ZoneForest, ZoneMountains, ZoneGalaxy} {
		engine.SelectZone("test", z)
	}

	// The red slider track is centered at x=-2.
	if !engine.Pointer("test", "slider:r", &Vec3{X: -1.5, Y: -3, Z: 0}) {
		t.Fatal("Slider click should apply")
	}
	if got := engine.galaxy.Colors().R; math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected red 0.75, got %v", got)
	}
	if engine.Pointer("test", "slider:r", nil) {
		t.Error("Slider click without a point should be ignored")
	}

	snap := engine.GetSnapshot()
	if len(snap.Stars) != 200 {
		t.Errorf("Expected 200 stars, got %d", len(snap.Stars))
	}
	if snap.StarColor != engine.galaxy.Colors().Hex() {
		t.Errorf("Expected star color %s, got %s", engine.galaxy.Colors().Hex(), snap.StarColor)
	}
	slider, _ := snap.Entity("slider:r")
	if math.Abs(slider.Value-0.75) > 1e-9 {
		t.Errorf("Expected slider value 0.75, got %v", slider.Value)
	}
}

func TestHoverCue(t *testing.T) {
	engine := newTestEngine(t)

	engine.Interact("test", Interaction{Kind: InteractHover, Entity: "portal:forest"})
	snap := engine.GetSnapshot()
	if snap.Hovered != "portal:forest" {
		t.Errorf("Expected hovered portal, got %q", snap.Hovered)
	}
	if snap.Cue.Kind != CueHover {
		t.Errorf("Expected hover cue, got %s", snap.Cue.Kind)
	}
	portal, _ := snap.Entity("portal:forest")
	if portal.Emissive == 0 {
		t.Error("Expected hovered portal to glow")
	}
}

func TestTickAdvancesAnimation(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Seed = 42
	cfg.TickRate = 10
	engine := NewEngine(cfg)

	for i := 0; i < 10; i++ {
		engine.tick()
	}

	snap := engine.GetSnapshot()
	if snap.TickNumber != 10 {
		t.Errorf("Expected tick 10, got %d", snap.TickNumber)
	}
	if math.Abs(snap.Elapsed-1) > 1e-9 {
		t.Errorf("Expected 1s elapsed, got %v", snap.Elapsed)
	}
	globe, _ := snap.Entity("globe")
	if math.Abs(globe.Rotation.Y-0.2) > 1e-9 {
		t.Errorf("Expected globe rotation 0.2, got %v", globe.Rotation.Y)
	}
	if len(snap.Particles) != 0 {
		t.Errorf("Expected no particles before victory, got %d", len(snap.Particles))
	}
}

func TestCueExpires(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Seed = 42
	cfg.CueTicks = 2
	engine := NewEngine(cfg)

	engine.Interact("test", Interaction{Kind: InteractHover, Entity: "globe"})
	engine.tick()
	engine.tick()
	if snap := engine.GetSnapshot(); snap.Cue.Playing() {
		t.Errorf("Expected cue expired, got %+v", snap.Cue)
	}
}

// TestFullPlaythrough solves every zone in order through the public API.
func TestFullPlaythrough(t *testing.T) {
	engine := newTestEngine(t)

	fragments := make(chan ZoneID, TotalFragments)
	victory := make(chan struct{}, 1)
	engine.SetCallbacks(
		func(zone ZoneID, _ int) { fragments <- zone },
		nil,
		func() { victory <- struct{}{} },
	)

	// Forest: reveal every tree.
	engine.Pointer("test", "portal:forest", nil)
	for i := 0; i < 5; i++ {
		engine.Pointer("test", treeID(i), nil)
	}
	if snap := engine.GetSnapshot(); !strings.Contains(snap.Banner, "Forest") {
		t.Errorf("Expected forest banner, got %q", snap.Banner)
	}

	// Mountains: home only leads back to unlocked zones, so go straight on.
	if !engine.SelectZone("test", ZoneMountains) {
		t.Fatal("Expected mountains reachable from the forest")
	}
	for id, target := range map[int]Vec3{1: V(-2, 0, 0), 2: V(0, 0, 0), 3: V(2, 0, 0)} {
		engine.Interact("test", Interaction{Kind: InteractMove, BoulderID: id, Point: target})
	}

	// Galaxy: dial in the golden ratio.
	engine.SelectZone("test", ZoneGalaxy)
	engine.Interact("test", Interaction{Kind: InteractColor, Channel: ChannelR, Value: 0.62})
	engine.Interact("test", Interaction{Kind: InteractColor, Channel: ChannelG, Value: 0.49})
	engine.Interact("test", Interaction{Kind: InteractColor, Channel: ChannelB, Value: 0.74})

	// Ocean: dive to the treasure.
	engine.SelectZone("test", ZoneOcean)
	for i := 0; i < TreasureDepth; i++ {
		engine.Pointer("test", "dive", nil)
	}
	snap := engine.GetSnapshot()
	if treasure, _ := snap.Entity("treasure"); treasure.Hidden {
		t.Error("Expected treasure visible")
	}
	if dive, _ := snap.Entity("dive"); dive.Label != "DIVE (Depth: 8)" {
		t.Errorf("Expected depth label, got %q", dive.Label)
	}

	// Crystal: light every crystal.
	engine.SelectZone("test", ZoneCrystal)
	for i := 0; i < CrystalSlots; i++ {
		engine.Pointer("test", crystalID(i), nil)
	}

	state := engine.GetState()
	if !state.Victory || state.Fragments != TotalFragments {
		t.Fatalf("Expected victory with %d fragments, got %+v", TotalFragments, state)
	}
	for _, z := range PuzzleZones {
		zp, _ := state.Zone(z)
		if !zp.Completed {
			t.Errorf("Expected %s completed", z)
		}
	}

	snap = engine.GetSnapshot()
	if snap.Cue.Kind != CueComplete {
		t.Errorf("Expected complete cue, got %s", snap.Cue.Kind)
	}

	seen := make(map[ZoneID]bool)
	for i := 0; i < TotalFragments; i++ {
		select {
		case z := <-fragments:
			seen[z] = true
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for fragment callbacks")
		}
	}
	if len(seen) != TotalFragments {
		t.Errorf("Expected one callback per zone, got %v", seen)
	}
	select {
	case <-victory:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for victory callback")
	}

	// Hub is solved and its particles are live.
	engine.SelectZone("test", ZoneHome)
	hub, _ := engine.GetState().Zone(ZoneHome)
	if !hub.Solved {
		t.Error("Expected hub solved at victory")
	}
	engine.tick()
	if snap := engine.GetSnapshot(); len(snap.Particles) == 0 {
		t.Error("Expected victory particles on the hub")
	}
}

func TestSolvedZoneParticlesOnlyInThatScene(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)
	for i := 0; i < 5; i++ {
		engine.Pointer("test", treeID(i), nil)
	}

	engine.tick()
	if snap := engine.GetSnapshot(); len(snap.Particles) != DefaultParticleCount {
		t.Errorf("Expected %d forest particles, got %d", DefaultParticleCount, len(snap.Particles))
	}

	engine.SelectZone("test", ZoneMountains)
	engine.tick()
	if snap := engine.GetSnapshot(); len(snap.Particles) != 0 {
		t.Errorf("Expected no particles in unsolved mountains, got %d", len(snap.Particles))
	}
}

func TestZones(t *testing.T) {
	engine := newTestEngine(t)
	engine.SelectZone("test", ZoneForest)

	zones := engine.Zones()
	if len(zones) != len(ZoneOrder) {
		t.Fatalf("Expected %d zones, got %d", len(ZoneOrder), len(zones))
	}
	tests := []struct {
		zone      ZoneID
		current   bool
		unlocked  bool
		reachable bool
	}{
		{ZoneHome, false, true, true},
		{ZoneForest, true, true, true},
		{ZoneMountains, false, false, true},
		{ZoneGalaxy, false, false, false},
	}
	for _, tt := range tests {
		z := zones[tt.zone.Index()]
		if z.ID != tt.zone {
			t.Fatalf("Expected %s at index %d, got %s", tt.zone, tt.zone.Index(), z.ID)
		}
		if z.Current != tt.current || z.Unlocked != tt.unlocked || z.Reachable != tt.reachable {
			t.Errorf("%s: expected current=%v unlocked=%v reachable=%v, got %+v",
				tt.zone, tt.current, tt.unlocked, tt.reachable, z)
		}
		if z.Name == "" {
			t.Errorf("%s: expected a display name", tt.zone)
		}
	}
}

func TestEngineEventLog(t *testing.T) {
	engine := newTestEngine(t)
	if err := engine.StartEventLog(); err != nil {
		t.Fatalf("StartEventLog failed: %v", err)
	}
	defer engine.StopEventLog()

	engine.SelectZone("alice", ZoneGalaxy)
	engine.SelectZone("alice", ZoneForest)

	events := engine.RecentEvents(10)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTypeZoneRejected || events[1].Type != EventTypeZoneChange {
		t.Errorf("Expected zone_rejected then zone_change, got %s then %s", events[0].Name, events[1].Name)
	}
	if events[1].Source != "alice" {
		t.Errorf("Expected source alice, got %q", events[1].Source)
	}
}

func treeID(i int) string {
	return fmt.Sprintf("tree:%d", i)
}

func crystalID(i int) string {
	return fmt.Sprintf("crystal:%d", i)
}
