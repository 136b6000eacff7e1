package game

const (
	MaxDepth      = 10
	TreasureDepth = 8
	KelpDepth     = 3 // kelp shows below this depth
)

// OceanProgress is the ocean's visible state.
type OceanProgress struct {
	Depth            int  `json:"depth"`
	MaxDepth         int  `json:"maxDepth"`
	TreasureFound    bool `json:"treasureFound"`
	TreasurePosition Vec3 `json:"treasurePosition"`
	KelpVisible      bool `json:"kelpVisible"`
}

// OceanPuzzle is solved on the first dive that reaches TreasureDepth.
type OceanPuzzle struct {
	depth    int
	found    bool
	treasure Vec3
	latch    solveLatch
}

func NewOceanPuzzle(treasure Vec3, collector FragmentCollector) *OceanPuzzle {
	return &OceanPuzzle{
		treasure: treasure,
		latch:    solveLatch{zone: ZoneOcean, collector: collector},
	}
}

func (o *OceanPuzzle) Zone() ZoneID { return ZoneOcean }

// Dive descends one level, stopping at MaxDepth. Returns false at the bottom.
func (o *OceanPuzzle) Dive() bool {
	next := o.depth + 1
	if next > MaxDepth {
		next = MaxDepth
	}
	changed := next != o.depth
	o.depth = next

	if o.latch.observe(o.IsSolved()) {
		o.found = true
	}
	return changed
}

func (o *OceanPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractDive {
		return false
	}
	return o.Dive()
}

func (o *OceanPuzzle) IsSolved() bool {
	return o.depth >= TreasureDepth
}

func (o *OceanPuzzle) Depth() int { return o.depth }

func (o *OceanPuzzle) TreasureFound() bool { return o.found }

func (o *OceanPuzzle) KelpVisible() bool { return o.depth > KelpDepth }

func (o *OceanPuzzle) Progress() ZoneProgress {
	return ZoneProgress{
		Zone:   ZoneOcean,
		Solved: o.IsSolved(),
		Ocean: &OceanProgress{
			Depth:            o.depth,
			MaxDepth:         MaxDepth,
			TreasureFound:    o.found,
			TreasurePosition: o.treasure,
			KelpVisible:      o.KelpVisible(),
		},
	}
}
