package game

import (
	"fmt"
	"math"
)

// Channel names a galaxy color slider.
type Channel string

const (
	ChannelR Channel = "r"
	ChannelG Channel = "g"
	ChannelB Channel = "b"
)

// Channels in slider order.
var Channels = []Channel{ChannelR, ChannelG, ChannelB}

// ParseChannel accepts r/g/b or red/green/blue.
func ParseChannel(s string) (Channel, bool) {
	switch s {
	case "r", "red", "R":
		return ChannelR, true
	case "g", "green", "G":
		return ChannelG, true
	case "b", "blue", "B":
		return ChannelB, true
	}
	return "", false
}

const (
	GoldenRatio    = 0.618
	ColorTolerance = 0.1
)

// ColorTarget is the center of the solved region.
var ColorTarget = ColorChannels{R: GoldenRatio, G: GoldenRatio * 0.8, B: GoldenRatio * 1.2}

// ColorChannels holds the slider values, each in [0,1].
type ColorChannels struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Get returns the value of ch.
func (c ColorChannels) Get(ch Channel) float64 {
	switch ch {
	case ChannelR:
		return c.R
	case ChannelG:
		return c.G
	case ChannelB:
		return c.B
	}
	return 0
}

// Hex renders the channels as #RRGGBB.
func (c ColorChannels) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", toByte(c.R), toByte(c.G), toByte(c.B))
}

func toByte(v float64) int {
	return int(math.Round(clamp01(v) * 255))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// SliderValueAt maps a pointer x on a slider track centered at sliderX
// (track length 2) to a channel value.
func SliderValueAt(sliderX, pointX float64) float64 {
	return clamp01((pointX-sliderX)/2 + 0.5)
}

// GalaxyProgress is the galaxy's visible state.
type GalaxyProgress struct {
	Colors   ColorChannels `json:"colors"`
	Revealed bool          `json:"revealed"`
}

// GalaxyPuzzle is solved while all three channels sit within the
// tolerance band around ColorTarget.
type GalaxyPuzzle struct {
	colors   ColorChannels
	revealed bool
	latch    solveLatch
}

func NewGalaxyPuzzle(initial ColorChannels, collector FragmentCollector) *GalaxyPuzzle {
	return &GalaxyPuzzle{
		colors: ColorChannels{R: clamp01(initial.R), G: clamp01(initial.G), B: clamp01(initial.B)},
		latch:  solveLatch{zone: ZoneGalaxy, collector: collector},
	}
}

func (g *GalaxyPuzzle) Zone() ZoneID { return ZoneGalaxy }

// UpdateColor clamps value into [0,1] and assigns it to channel.
// NaN and unknown channels are ignored.
func (g *GalaxyPuzzle) UpdateColor(ch Channel, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	v := clamp01(value)
	switch ch {
	case ChannelR:
		g.colors.R = v
	case ChannelG:
		g.colors.G = v
	case ChannelB:
		g.colors.B = v
	default:
		return false
	}

	if g.latch.observe(g.IsSolved()) {
		g.revealed = true
	}
	return true
}

func (g *GalaxyPuzzle) RegisterInteraction(in Interaction) bool {
	if in.Kind != InteractColor {
		return false
	}
	return g.UpdateColor(in.Channel, in.Value)
}

func (g *GalaxyPuzzle) IsSolved() bool {
	return math.Abs(g.colors.R-ColorTarget.R) < ColorTolerance &&
		math.Abs(g.colors.G-ColorTarget.G) < ColorTolerance &&
		math.Abs(g.colors.B-ColorTarget.B) < ColorTolerance
}

// Colors returns the current channel values.
func (g *GalaxyPuzzle) Colors() ColorChannels {
	return g.colors
}

// Revealed latches true on the first solve.
func (g *GalaxyPuzzle) Revealed() bool {
	return g.revealed
}

func (g *GalaxyPuzzle) Progress() ZoneProgress {
	return ZoneProgress{
		Zone:   ZoneGalaxy,
		Solved: g.IsSolved(),
		Galaxy: &GalaxyProgress{Colors: g.colors, Revealed: g.revealed},
	}
}
