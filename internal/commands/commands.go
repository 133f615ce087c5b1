// Package commands is the player's input vocabulary and the selection state
// that turns a command into a simulation call.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a player command.
type Kind uint8

const (
	Quit Kind = iota
	Cancel
	ToggleStore
	CycleDaemon
	ToggleCooling
	Replace
	ReplaceModel
	NextFocus
	FocusProcessors
	FocusJobs
	Up
	Down
	Select
	SelectIndex
	Status
	Help
)

var kindNames = map[Kind]string{
	Quit:            "quit",
	Cancel:          "cancel",
	ToggleStore:     "store",
	CycleDaemon:     "daemon",
	ToggleCooling:   "cooling",
	Replace:         "replace",
	ReplaceModel:    "replace-model",
	NextFocus:       "tab",
	FocusProcessors: "left",
	FocusJobs:       "right",
	Up:              "up",
	Down:            "down",
	Select:          "enter",
	SelectIndex:     "pick",
	Status:          "status",
	Help:            "help",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Command is one parsed input line. Index is only meaningful for SelectIndex.
type Command struct {
	Kind  Kind
	Index int
}

// ErrUnknownCommand is returned by Parse for input it does not recognise.
var ErrUnknownCommand = errors.New("unknown command")

var aliases = map[string]Kind{
	"q": Quit, "quit": Quit, "exit": Quit,
	"esc": Cancel, "cancel": Cancel,
	"s": ToggleStore, "store": ToggleStore,
	"d": CycleDaemon, "daemon": CycleDaemon,
	"D": ToggleCooling, "cooling": ToggleCooling,
	"r": Replace, "replace": Replace,
	"R": ReplaceModel, "replace-model": ReplaceModel,
	"tab": NextFocus, "focus": NextFocus,
	"left": FocusProcessors, "h": FocusProcessors, "procs": FocusProcessors,
	"right": FocusJobs, "l": FocusJobs, "jobs": FocusJobs,
	"up": Up, "k": Up,
	"down": Down, "j": Down,
	"enter": Select, "a": Select,
	"pick": SelectIndex, "p": SelectIndex,
	"status": Status, "?": Status,
	"help": Help,
}

// Parse reads one input line. Single-letter commands are case sensitive so
// "D" and "R" can carry the shifted variants; words are not.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Kind: Select}, nil
	}

	word := fields[0]
	if len(word) > 1 {
		word = strings.ToLower(word)
	}
	kind, ok := aliases[word]
	if !ok && len(word) == 1 {
		kind, ok = aliases[strings.ToLower(word)]
	}
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}

	cmd := Command{Kind: kind}
	if kind == SelectIndex {
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("%s needs an index", kind)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return Command{}, fmt.Errorf("%s: invalid index %q", kind, fields[1])
		}
		cmd.Index = n
	}
	return cmd, nil
}

// Usage lists the accepted commands.
const Usage = `commands:
  tab | left | right      switch focus between processors and jobs
  up | down | pick N      move the selection
  enter (a)               queue the selected job / assign it / accept an assist suggestion
  esc                     return the queued job to the board
  d | D                   cycle daemon mode | toggle cooling minimums
  r | R                   replace processor | replace every failed unit of the model
  s                       open or close the store (enter buys, esc closes)
  status                  print the current state
  q                       save and quit`
