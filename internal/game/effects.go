package game

// CueKind is a visual stand-in for a sound effect.
type CueKind string

const (
	CueNone     CueKind = ""
	CueCollect  CueKind = "collect"  // fragment collected
	CueHover    CueKind = "hover"    // pointer over an entity
	CueComplete CueKind = "complete" // all fragments collected
)

// Glyph returns the indicator shown while the cue plays.
func (k CueKind) Glyph() string {
	switch k {
	case CueCollect:
		return "🎵"
	case CueComplete:
		return "🎉"
	case CueNone:
		return ""
	default:
		return "🔊"
	}
}

// priority keeps a hover from hiding a collect or complete cue.
func (k CueKind) priority() int {
	switch k {
	case CueComplete:
		return 3
	case CueCollect:
		return 2
	case CueHover:
		return 1
	}
	return 0
}

// SoundCue is a short-lived indicator. Timer counts remaining ticks.
type SoundCue struct {
	Kind  CueKind `json:"kind,omitempty"`
	Timer int     `json:"timer,omitempty"`
}

// Playing reports whether the cue is still visible.
func (c SoundCue) Playing() bool {
	return c.Kind != CueNone && c.Timer > 0
}

// Trigger replaces the cue unless a higher-priority one is still playing.
func (c *SoundCue) Trigger(kind CueKind, ticks int) {
	if c.Playing() && c.Kind.priority() > kind.priority() {
		return
	}
	c.Kind = kind
	c.Timer = ticks
}

// Update counts down one tick.
func (c *SoundCue) Update() {
	if c.Timer > 0 {
		c.Timer--
	}
	if c.Timer == 0 {
		c.Kind = CueNone
	}
}
