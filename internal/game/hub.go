package game

// Portal is a clickable zone entrance on the hub globe.
type Portal struct {
	Zone     ZoneID `json:"zone"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position Vec3   `json:"position"`
}

// HubProgress lists the portals and which of them lead somewhere reachable.
type HubProgress struct {
	Portals []PortalState `json:"portals"`
}

type PortalState struct {
	Portal
	Unlocked bool `json:"unlocked"`
}

// HubPuzzle is the globe: selecting a portal requests a zone change.
// It has no fragment; its completion predicate is overall victory.
type HubPuzzle struct {
	portals  []Portal
	nav      ZoneNavigator
	unlocked func(ZoneID) bool
}

// NewHubPuzzle wires portals to nav. unlocked reports portal reachability for display.
func NewHubPuzzle(portals []Portal, nav ZoneNavigator, unlocked func(ZoneID) bool) *HubPuzzle {
	return &HubPuzzle{
		portals:  append([]Portal(nil), portals...),
		nav:      nav,
		unlocked: unlocked,
	}
}

func (h *HubPuzzle) Zone() ZoneID { return ZoneHome }

// Select asks the navigator to enter zone. Rejections are silent.
func (h *HubPuzzle) Select(zone ZoneID) bool {
	if h.nav == nil {
		return false
	}
	return h.nav.ChangeZone(zone)
}

func (h *HubPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractSelect {
		return false
	}
	return h.Select(in.Target)
}

func (h *HubPuzzle) IsSolved() bool {
	return h.nav != nil && h.nav.Victory()
}

// Portals returns the portal layout.
func (h *HubPuzzle) Portals() []Portal {
	return h.portals
}

func (h *HubPuzzle) Progress() ZoneProgress {
	states := make([]PortalState, len(h.portals))
	for i, p := range h.portals {
		states[i] = PortalState{Portal: p, Unlocked: h.unlocked != nil && h.unlocked(p.Zone)}
	}
	return ZoneProgress{
		Zone:   ZoneHome,
		Solved: h.IsSolved(),
		Hub:    &HubProgress{Portals: states},
	}
}
