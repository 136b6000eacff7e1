package game

// InteractionKind tags an Interaction.
type InteractionKind string

const (
	InteractReveal   InteractionKind = "reveal"   // forest: Number
	InteractMove     InteractionKind = "move"     // mountains: BoulderID + Point
	InteractColor    InteractionKind = "color"    // galaxy: Channel + Value
	InteractDive     InteractionKind = "dive"     // ocean
	InteractActivate InteractionKind = "activate" // crystal: Slot
	InteractSelect   InteractionKind = "select"   // hub: Target
	InteractHover    InteractionKind = "hover"    // any zone: Entity, cue only
)

// Interaction is a pointer or command event addressed to the active zone's puzzle.
// Only the fields named by Kind are read.
type Interaction struct {
	Kind      InteractionKind `json:"kind"`
	Zone      ZoneID          `json:"zone,omitempty"` // if set, must match the current zone
	Number    int             `json:"number,omitempty"`
	BoulderID int             `json:"boulder,omitempty"`
	Point     Vec3            `json:"point"`
	Channel   Channel         `json:"channel,omitempty"`
	Value     float64         `json:"value,omitempty"`
	Slot      int             `json:"slot"`
	Target    ZoneID          `json:"target,omitempty"`
	Entity    string          `json:"entity,omitempty"`
}

// Puzzle is one zone's resolution strategy. Implementations own their
// ZoneProgress exclusively and report completion through a FragmentCollector.
type Puzzle interface {
	Zone() ZoneID
	// RegisterInteraction applies in and reports whether puzzle state changed.
	RegisterInteraction(in Interaction) bool
	IsSolved() bool
	Progress() ZoneProgress
}

// FragmentCollector receives a zone's fragment when its puzzle is solved.
type FragmentCollector interface {
	CollectFragment(zone ZoneID) bool
}

// ZoneNavigator performs zone changes requested from inside a scene.
type ZoneNavigator interface {
	ChangeZone(target ZoneID) bool
	Victory() bool
}

// solveLatch fires CollectFragment on the first false→true edge of a predicate only.
type solveLatch struct {
	zone      ZoneID
	collector FragmentCollector
	fired     bool
}

// observe returns true when this call fired the fragment.
func (l *solveLatch) observe(solved bool) bool {
	if !solved || l.fired {
		return false
	}
	l.fired = true
	if l.collector != nil {
		l.collector.CollectFragment(l.zone)
	}
	return true
}

// ZoneProgress is a read-only copy of one zone's puzzle state, tagged by Zone.
// Exactly one of the variant pointers is set.
type ZoneProgress struct {
	Zone      ZoneID `json:"zone"`
	Completed bool   `json:"completed"`
	Solved    bool   `json:"solved"`

	Hub       *HubProgress       `json:"hub,omitempty"`
	Forest    *ForestProgress    `json:"forest,omitempty"`
	Mountains *MountainsProgress `json:"mountains,omitempty"`
	Galaxy    *GalaxyProgress    `json:"galaxy,omitempty"`
	Ocean     *OceanProgress     `json:"ocean,omitempty"`
	Crystal   *CrystalProgress   `json:"crystal,omitempty"`
}
