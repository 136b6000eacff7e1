package tui

import (
	"fmt"

	"lost-algorithm/internal/game"

	"github.com/gdamore/tcell/v2"
)

// Action is what the composer should do with a key press.
type Action uint8

const (
	ActionNone Action = iota
	ActionCommand
	ActionHelp
	ActionPrompt
	ActionQuit
)

const (
	boulderStep = 0.5
	colorStep   = 0.05
)

// Controls turns key presses into text commands. It keeps only UI
// selection state; every puzzle rule stays in the engine.
type Controls struct {
	boulder int // index into the mountains boulder list
	channel game.Channel
}

// NewControls starts with the first boulder and the red channel selected.
func NewControls() *Controls {
	return &Controls{channel: game.ChannelR}
}

// SelectedBoulder returns the index of the boulder that arrows move.
func (c *Controls) SelectedBoulder() int { return c.boulder }

// SelectedChannel returns the galaxy channel that arrows change.
func (c *Controls) SelectedChannel() game.Channel { return c.channel }

// Key maps ev to an action. For ActionCommand the returned line is ready
// for a CommandSink.
func (c *Controls) Key(ev *tcell.EventKey, snap *game.GameSnapshot) (Action, string) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit, ""
	case tcell.KeyTab:
		c.nextBoulder(snap)
		return ActionNone, ""
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyLeft, tcell.KeyRight:
		return c.arrow(ev.Key(), snap)
	case tcell.KeyRune:
	default:
		return ActionNone, ""
	}

	zone := currentZone(snap)
	r := ev.Rune()
	switch r {
	case 'q', 'Q':
		return ActionQuit, ""
	case '?':
		return ActionHelp, ""
	case ':':
		return ActionPrompt, ""
	case 'h', 'H':
		return ActionCommand, "goto home"
	case '[':
		return c.step(zone, -1)
	case ']':
		return c.step(zone, 1)
	case ' ':
		if zone == game.ZoneOcean {
			return ActionCommand, "dive"
		}
	case 'r', 'g', 'b':
		if zone == game.ZoneGalaxy {
			c.channel = game.Channel(string(r))
		}
	case '1', '2', '3', '4', '5':
		n := int(r - '1')
		switch zone {
		case game.ZoneForest:
			return ActionCommand, fmt.Sprintf("point tree:%d", n)
		case game.ZoneCrystal:
			return ActionCommand, fmt.Sprintf("activate %d", n)
		}
	}
	return ActionNone, ""
}

// step moves to the neighbouring zone in unlock order. The engine decides
// whether the move is allowed.
func (c *Controls) step(zone game.ZoneID, delta int) (Action, string) {
	idx := zone.Index() + delta
	if idx < 0 || idx >= len(game.ZoneOrder) {
		return ActionNone, ""
	}
	return ActionCommand, "goto " + string(game.ZoneOrder[idx])
}

func (c *Controls) nextBoulder(snap *game.GameSnapshot) {
	boulders := mountainBoulders(snap)
	if len(boulders) == 0 {
		return
	}
	c.boulder = (c.boulder + 1) % len(boulders)
}

func (c *Controls) arrow(key tcell.Key, snap *game.GameSnapshot) (Action, string) {
	switch currentZone(snap) {
	case game.ZoneMountains:
		boulders := mountainBoulders(snap)
		if len(boulders) == 0 {
			return ActionNone, ""
		}
		b := boulders[c.boulder%len(boulders)]
		x, z := b.Position.X, b.Position.Z
		switch key {
		case tcell.KeyLeft:
			x -= boulderStep
		case tcell.KeyRight:
			x += boulderStep
		case tcell.KeyUp:
			z -= boulderStep
		case tcell.KeyDown:
			z += boulderStep
		}
		return ActionCommand, fmt.Sprintf("move %d %.2f %.2f", b.ID, x, z)

	case game.ZoneGalaxy:
		zp, ok := snap.State.Zone(game.ZoneGalaxy)
		if !ok || zp.Galaxy == nil {
			return ActionNone, ""
		}
		v := zp.Galaxy.Colors.Get(c.channel)
		if key == tcell.KeyUp || key == tcell.KeyRight {
			v += colorStep
		} else {
			v -= colorStep
		}
		v = min(max(v, 0), 1)
		return ActionCommand, fmt.Sprintf("color %s %.2f", c.channel, v)
	}
	return ActionNone, ""
}

func currentZone(snap *game.GameSnapshot) game.ZoneID {
	if snap == nil {
		return game.ZoneHome
	}
	return snap.State.CurrentZone
}

func mountainBoulders(snap *game.GameSnapshot) []game.Boulder {
	if snap == nil {
		return nil
	}
	zp, ok := snap.State.Zone(game.ZoneMountains)
	if !ok || zp.Mountains == nil {
		return nil
	}
	return zp.Mountains.Boulders
}
