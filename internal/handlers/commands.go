package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/vancomm/minefield/internal/session"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0,
	"r": 1,
	"f": 1,
	"n": 0,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandArgs    = errors.New("invalid number of arguments")
)

// command is one parsed websocket line. A zero move means the client only
// asked for the current state.
type command struct {
	move  session.Move
	index int
}

func parseCommand(line string) (cmd command, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return cmd, ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return cmd, ErrUnknownCommand
	}
	if nargs != len(parts)-1 {
		return cmd, ErrCommandArgs
	}
	switch parts[0] {
	case "g":
	case "n":
		cmd.move = session.Restart
	case "r", "f":
		if cmd.index, err = strconv.Atoi(parts[1]); err != nil {
			return cmd, errors.New("argument must be an int")
		}
		cmd.move = session.Reveal
		if parts[0] == "f" {
			cmd.move = session.Flag
		}
	}
	return cmd, nil
}
