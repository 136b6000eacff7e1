package command

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"lost-algorithm/internal/config"
	"lost-algorithm/internal/game"
)

// Game is the subset of the engine the command layer drives.
type Game interface {
	SelectZone(source string, zone game.ZoneID) bool
	Interact(source string, in game.Interaction) bool
	Pointer(source, entityID string, point *game.Vec3) bool
	GetState() game.GameState
}

// Result describes what a command did. Rejected moves are results, not errors.
type Result struct {
	Command string         `json:"command"`
	Applied bool           `json:"applied"`
	Message string         `json:"message"`
	Zone    game.ZoneID    `json:"zone"`
	State   game.GameState `json:"state"`
}

// Handler parses text commands and applies them to the game
type Handler struct {
	game        Game
	rateLimiter *RateLimiter
}

// NewHandler creates a new command handler
func NewHandler(g Game, cfg config.CommandConfig) *Handler {
	return &Handler{
		game:        g,
		rateLimiter: NewRateLimiter(cfg.RatePerSecond, cfg.Burst),
	}
}

// Close stops the rate limiter's background cleanup.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}

// ProcessLine parses and runs one line from source.
func (h *Handler) ProcessLine(source, line string) (Result, error) {
	cmd, err := Parse(source, line)
	if err != nil {
		return Result{Command: cmd.Name}, err
	}
	return h.ProcessCommand(cmd)
}

// ProcessCommand handles a single parsed command
func (h *Handler) ProcessCommand(cmd Command) (Result, error) {
	// Rate limit check
	if !h.rateLimiter.Allow(cmd.Source) {
		log.Printf("🚫 Rate limited: %s", cmd.Source)
		return Result{Command: cmd.Name}, fmt.Errorf("%w: %s", ErrRateLimited, cmd.Source)
	}

	var (
		res Result
		err error
	)
	switch cmd.Type {
	case CmdGoto:
		res, err = h.handleGoto(cmd)
	case CmdReveal:
		res, err = h.handleReveal(cmd)
	case CmdMove:
		res, err = h.handleMove(cmd)
	case CmdColor:
		res, err = h.handleColor(cmd)
	case CmdDive:
		res, err = h.interact(cmd, game.Interaction{Kind: game.InteractDive, Zone: game.ZoneOcean})
	case CmdActivate:
		res, err = h.handleActivate(cmd)
	case CmdPoint:
		res, err = h.handlePoint(cmd)
	case CmdStatus:
		res = Result{Applied: true}
	case CmdHelp:
		res = Result{Applied: true, Message: Usage}
	default:
		return Result{Command: cmd.Name}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	if err != nil {
		return Result{Command: cmd.Name}, err
	}

	res.Command = cmd.Name
	res.State = h.game.GetState()
	res.Zone = res.State.CurrentZone
	if res.Message == "" {
		res.Message = statusLine(res.State)
	}
	return res, nil
}

// handleGoto requests a zone change. A locked zone is not an error.
func (h *Handler) handleGoto(cmd Command) (Result, error) {
	if len(cmd.Args) != 1 {
		return Result{}, fmt.Errorf("%w: usage: goto <zone>", ErrInvalidArgs)
	}
	zone, ok := game.ParseZone(cmd.Args[0])
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown zone %q", ErrInvalidArgs, cmd.Args[0])
	}

	if !h.game.SelectZone(cmd.Source, zone) {
		log.Printf("🔒 %s tried to enter locked zone %s", cmd.Source, zone)
		return Result{Message: fmt.Sprintf("%s is locked", zone)}, nil
	}
	log.Printf("🧭 %s entered %s", cmd.Source, zone)
	return Result{Applied: true, Message: fmt.Sprintf("entered %s", zone)}, nil
}

func (h *Handler) handleReveal(cmd Command) (Result, error) {
	n, err := intArgs(cmd.Args, 1, "reveal <number>")
	if err != nil {
		return Result{}, err
	}
	return h.interact(cmd, game.Interaction{Kind: game.InteractReveal, Zone: game.ZoneForest, Number: n[0]})
}

func (h *Handler) handleMove(cmd Command) (Result, error) {
	if len(cmd.Args) != 3 {
		return Result{}, fmt.Errorf("%w: usage: move <id> <x> <z>", ErrInvalidArgs)
	}
	id, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return Result{}, fmt.Errorf("%w: boulder id %q", ErrInvalidArgs, cmd.Args[0])
	}
	xz, err := floatArgs(cmd.Args[1:], 2, "move <id> <x> <z>")
	if err != nil {
		return Result{}, err
	}
	return h.interact(cmd, game.Interaction{
		Kind:      game.InteractMove,
		Zone:      game.ZoneMountains,
		BoulderID: id,
		Point:     game.V(xz[0], 0, xz[1]),
	})
}

func (h *Handler) handleColor(cmd Command) (Result, error) {
	if len(cmd.Args) != 2 {
		return Result{}, fmt.Errorf("%w: usage: color <r|g|b> <value>", ErrInvalidArgs)
	}
	ch, ok := game.ParseChannel(strings.ToLower(cmd.Args[0]))
	if !ok {
		return Result{}, fmt.Errorf("%w: channel %q", ErrInvalidArgs, cmd.Args[0])
	}
	v, err := floatArgs(cmd.Args[1:], 1, "color <r|g|b> <value>")
	if err != nil {
		return Result{}, err
	}
	return h.interact(cmd, game.Interaction{Kind: game.InteractColor, Zone: game.ZoneGalaxy, Channel: ch, Value: v[0]})
}

func (h *Handler) handleActivate(cmd Command) (Result, error) {
	n, err := intArgs(cmd.Args, 1, "activate <index>")
	if err != nil {
		return Result{}, err
	}
	return h.interact(cmd, game.Interaction{Kind: game.InteractActivate, Zone: game.ZoneCrystal, Slot: n[0]})
}

// handlePoint clicks an entity by id or a world position.
func (h *Handler) handlePoint(cmd Command) (Result, error) {
	var applied bool
	switch len(cmd.Args) {
	case 1:
		applied = h.game.Pointer(cmd.Source, cmd.Args[0], nil)
	case 3:
		p, err := floatArgs(cmd.Args, 3, "point <x> <y> <z>")
		if err != nil {
			return Result{}, err
		}
		pt := game.V(p[0], p[1], p[2])
		applied = h.game.Pointer(cmd.Source, "", &pt)
	default:
		return Result{}, fmt.Errorf("%w: usage: point <entity> | point <x> <y> <z>", ErrInvalidArgs)
	}
	return Result{Applied: applied}, nil
}

// interact sends in and reports whether the current zone accepted it.
func (h *Handler) interact(cmd Command, in game.Interaction) (Result, error) {
	if !h.game.Interact(cmd.Source, in) {
		if cur := h.game.GetState().CurrentZone; cur != in.Zone {
			return Result{Message: fmt.Sprintf("%s only works in %s (you are in %s)", cmd.Name, in.Zone, cur)}, nil
		}
		return Result{Message: "nothing changed"}, nil
	}
	return Result{Applied: true}, nil
}

func intArgs(args []string, n int, usage string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: usage: %s", ErrInvalidArgs, usage)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgs, a)
		}
		out[i] = v
	}
	return out, nil
}

func floatArgs(args []string, n int, usage string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: usage: %s", ErrInvalidArgs, usage)
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArgs, a)
		}
		out[i] = v
	}
	return out, nil
}

// statusLine summarizes progress in one line.
func statusLine(s game.GameState) string {
	line := fmt.Sprintf("zone %s | fragments %d/%d (%.0f%%)",
		s.CurrentZone, s.Fragments, s.TotalFragments, s.Progress*100)
	if s.Victory {
		line += " | all fragments recovered"
	}
	return line
}
