package game

// PlacementRadius is the horizontal distance under which a boulder counts as placed.
const PlacementRadius = 1.0

// Boulder is a movable rock with a fixed target.
type Boulder struct {
	ID       int  `json:"id"`
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
	Placed   bool `json:"placed"`
}

func (b Boulder) onTarget() bool {
	return b.Position.DistanceXZ(b.Target) < PlacementRadius
}

// MountainsProgress is the mountains' visible state.
type MountainsProgress struct {
	Boulders []Boulder `json:"boulders"`
}

// MountainsPuzzle is solved while every boulder sits on its target.
type MountainsPuzzle struct {
	boulders []Boulder
	latch    solveLatch
}

func NewMountainsPuzzle(boulders []Boulder, collector FragmentCollector) *MountainsPuzzle {
	m := &MountainsPuzzle{
		boulders: append([]Boulder(nil), boulders...),
		latch:    solveLatch{zone: ZoneMountains, collector: collector},
	}
	for i := range m.boulders {
		m.boulders[i].Placed = m.boulders[i].onTarget()
	}
	return m
}

func (m *MountainsPuzzle) Zone() ZoneID { return ZoneMountains }

// MoveBoulder sets boulder id's position and recomputes its placement.
// Non-finite positions are ignored.
func (m *MountainsPuzzle) MoveBoulder(id int, pos Vec3) bool {
	b := m.find(id)
	if b == nil || !pos.Finite() {
		return false
	}
	b.Position = pos
	b.Placed = b.onTarget()
	m.latch.observe(m.IsSolved())
	return true
}

// RegisterInteraction drags a boulder across the ground: it takes the
// pointer's x and z and keeps its own height.
func (m *MountainsPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractMove {
		return false
	}
	b := m.find(in.BoulderID)
	if b == nil {
		return false
	}
	return m.MoveBoulder(in.BoulderID, V(in.Point.X, b.Position.Y, in.Point.Z))
}

// IsSolved recomputes placement from positions on every call.
func (m *MountainsPuzzle) IsSolved() bool {
	for _, b := range m.boulders {
		if !b.onTarget() {
			return false
		}
	}
	return len(m.boulders) > 0
}

// Boulder returns a copy of boulder id.
func (m *MountainsPuzzle) Boulder(id int) (Boulder, bool) {
	if b := m.find(id); b != nil {
		return *b, true
	}
	return Boulder{}, false
}

func (m *MountainsPuzzle) find(id int) *Boulder {
	for i := range m.boulders {
		if m.boulders[i].ID == id {
			return &m.boulders[i]
		}
	}
	return nil
}

func (m *MountainsPuzzle) Progress() ZoneProgress {
	return ZoneProgress{
		Zone:      ZoneMountains,
		Solved:    m.IsSolved(),
		Mountains: &MountainsProgress{Boulders: append([]Boulder(nil), m.boulders...)},
	}
}
