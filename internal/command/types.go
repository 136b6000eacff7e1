package command

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidArgs    = errors.New("invalid arguments")
	ErrRateLimited    = errors.New("rate limited")
	ErrQueueFull      = errors.New("command queue full")
)

// Command is a parsed text command
type Command struct {
	Name       string
	Type       CommandType
	Args       []string // Arguments after command
	Source     string   // Client that sent it
	ReceivedAt time.Time
}

// CommandType for routing
type CommandType int

const (
	CmdGoto CommandType = iota
	CmdReveal
	CmdMove
	CmdColor
	CmdDive
	CmdActivate
	CmdPoint
	CmdStatus
	CmdHelp
	CmdUnknown
)

// SupportedCommands maps command strings to types
var SupportedCommands = map[string]CommandType{
	// Navigation
	"goto": CmdGoto,
	"go":   CmdGoto,
	"zone": CmdGoto,

	// Puzzle inputs
	"reveal":   CmdReveal,
	"r":        CmdReveal,
	"move":     CmdMove,
	"m":        CmdMove,
	"color":    CmdColor,
	"c":        CmdColor,
	"dive":     CmdDive,
	"d":        CmdDive,
	"activate": CmdActivate,
	"a":        CmdActivate,
	"point":    CmdPoint,
	"p":        CmdPoint,

	// Info
	"status": CmdStatus,
	"help":   CmdHelp,
	"?":      CmdHelp,
}

// GetCommandType returns the command type for a lowercased name
func GetCommandType(name string) CommandType {
	if t, ok := SupportedCommands[name]; ok {
		return t
	}
	return CmdUnknown
}

// Parse splits a line like "!move 1 -2 0" into a Command.
// The leading "!" is optional and the name is case-insensitive.
func Parse(source, line string) (Command, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "!")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	name := strings.ToLower(fields[0])
	cmd := Command{
		Name:       name,
		Type:       GetCommandType(name),
		Args:       fields[1:],
		Source:     source,
		ReceivedAt: time.Now(),
	}
	if cmd.Type == CmdUnknown {
		return cmd, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Usage is the help text, one command per line.
const Usage = `goto <zone|0-5>       change zone (home always allowed)
reveal <number>       forest: reveal a tree's number
move <id> <x> <z>     mountains: drag a boulder
color <r|g|b> <0-1>   galaxy: set a color channel
dive                  ocean: descend one level
activate <0-4>        crystal: light a crystal
point <entity>        click an entity, e.g. tree:2 or portal:forest
point <x> <y> <z>     click a world position
status                show progress
help                  show this list`
