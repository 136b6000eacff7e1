package tui

import (
	"lost-algorithm/internal/command"
	"lost-algorithm/internal/game"
)

// SnapshotSource supplies the frame to draw.
type SnapshotSource interface {
	GetSnapshot() *game.GameSnapshot
}

// CommandSink accepts a text command and returns an immediate reply, which
// may be empty when the reply arrives asynchronously.
type CommandSink interface {
	Submit(line string) (string, error)
}

// replySource is implemented by sinks whose replies arrive later.
type replySource interface {
	LastMessage() string
}

// LocalSink runs commands against an in-process handler.
type LocalSink struct {
	Handler *command.Handler
	Source  string
}

// Submit implements CommandSink.
func (s LocalSink) Submit(line string) (string, error) {
	source := s.Source
	if source == "" {
		source = "terminal"
	}
	res, err := s.Handler.ProcessLine(source, line)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
