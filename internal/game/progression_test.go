package game

import "testing"

func TestNewProgression(t *testing.T) {
	p := NewProgression()

	if p.CurrentZone() != ZoneHome {
		t.Errorf("Expected current zone home, got %s", p.CurrentZone())
	}
	if p.Fragments() != 0 {
		t.Errorf("Expected 0 fragments, got %d", p.Fragments())
	}
	if got := p.Unlocked(); len(got) != 1 || got[0] != ZoneHome {
		t.Errorf("Expected only home unlocked, got %v", got)
	}
	if p.Victory() {
		t.Error("Fresh session should not be a victory")
	}
}

func TestChangeZone(t *testing.T) {
	tests := []struct {
		name     string
		path     []ZoneID
		target   ZoneID
		accepted bool
		current  ZoneID
	}{
		{"next zone from home", nil, ZoneForest, true, ZoneForest},
		{"skip ahead from home", nil, ZoneGalaxy, false, ZoneHome},
		{"two steps from forest", []ZoneID{ZoneForest}, ZoneGalaxy, false, ZoneForest},
		{"one step from forest", []ZoneID{ZoneForest}, ZoneMountains, true, ZoneMountains},
		{"home is always allowed", []ZoneID{ZoneForest, ZoneMountains}, ZoneHome, true, ZoneHome},
		{"backward to unlocked", []ZoneID{ZoneForest, ZoneMountains}, ZoneForest, true, ZoneForest},
		{"unlocked zone from home", []ZoneID{ZoneForest, ZoneMountains, ZoneHome}, ZoneMountains, true, ZoneMountains},
		{"unknown zone", nil, ZoneID("moon"), false, ZoneHome},
		{"same zone", []ZoneID{ZoneForest}, ZoneForest, true, ZoneForest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgression()
			for _, z := range tt.path {
				if !p.ChangeZone(z) {
					t.Fatalf("Setup change to %s rejected", z)
				}
			}

			if got := p.ChangeZone(tt.target); got != tt.accepted {
				t.Errorf("Expected accepted=%v, got %v", tt.accepted, got)
			}
			if p.CurrentZone() != tt.current {
				t.Errorf("Expected current zone %s, got %s", tt.current, p.CurrentZone())
			}
		})
	}
}

func TestRejectedChangeLeavesStateUntouched(t *testing.T) {
	p := NewProgression()
	p.ChangeZone(ZoneForest)
	before := p.Unlocked()

	p.ChangeZone(ZoneCrystal)

	after := p.Unlocked()
	if len(before) != len(after) {
		t.Errorf("Expected unlocked %v, got %v", before, after)
	}
	if p.IsUnlocked(ZoneCrystal) {
		t.Error("Rejected zone must not be unlocked")
	}
}

func TestUnlockIsMonotonic(t *testing.T) {
	p := NewProgression()
	for _, z := range []ZoneID{ZoneForest, ZoneMountains, ZoneGalaxy, ZoneHome, ZoneForest, ZoneHome} {
		p.ChangeZone(z)
	}

	for _, z := range []ZoneID{ZoneHome, ZoneForest, ZoneMountains, ZoneGalaxy} {
		if !p.IsUnlocked(z) {
			t.Errorf("Expected %s to stay unlocked", z)
		}
		if !p.NavEnabled(z) {
			t.Errorf("Expected nav enabled for %s", z)
		}
	}
	if p.NavEnabled(ZoneOcean) {
		t.Error("Ocean was never entered, nav should be disabled")
	}
}

func TestCollectFragmentIdempotent(t *testing.T) {
	p := NewProgression()

	if !p.CollectFragment(ZoneForest) {
		t.Fatal("First collection should be accepted")
	}
	if p.CollectFragment(ZoneForest) {
		t.Error("Second collection of the same zone should be ignored")
	}
	if p.Fragments() != 1 {
		t.Errorf("Expected 1 fragment, got %d", p.Fragments())
	}
	if !p.Completed(ZoneForest) {
		t.Error("Expected forest completed")
	}
}

func TestCollectFragmentIgnoresHome(t *testing.T) {
	p := NewProgression()

	if p.CollectFragment(ZoneHome) {
		t.Error("Home has no fragment")
	}
	if p.CollectFragment(ZoneID("moon")) {
		t.Error("Unknown zone has no fragment")
	}
	if p.Fragments() != 0 {
		t.Errorf("Expected 0 fragments, got %d", p.Fragments())
	}
}

func TestVictoryIsDerived(t *testing.T) {
	p := NewProgression()

	for i, z := range PuzzleZones {
		if p.Victory() {
			t.Fatalf("Victory before collecting %s", z)
		}
		p.CollectFragment(z)
		want := float64(i+1) / float64(TotalFragments)
		if p.Progress() != want {
			t.Errorf("Expected progress %v, got %v", want, p.Progress())
		}
	}

	if !p.Victory() {
		t.Error("Expected victory after all fragments")
	}
	if p.Progress() != 1 {
		t.Errorf("Expected progress 1, got %v", p.Progress())
	}
}

func TestParseZone(t *testing.T) {
	tests := []struct {
		in   string
		want ZoneID
		ok   bool
	}{
		{"forest", ZoneForest, true},
		{" Galaxy ", ZoneGalaxy, true},
		{"0", ZoneHome, true},
		{"5", ZoneCrystal, true},
		{"6", "", false},
		{"moon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseZone(tt.in)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
