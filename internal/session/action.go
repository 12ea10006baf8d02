package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joescharf/votehub/internal/submit"
)

// ErrUnknownCommand is returned by ParseLine for an unrecognised command word.
var ErrUnknownCommand = errors.New("unknown command")

// ListAction changes the view controls and renders the list. Empty fields
// keep the current setting.
type ListAction struct {
	Category string `yaml:"category,omitempty"`
	Sort     string `yaml:"sort,omitempty"`
}

// VoteAction casts a vote on one feature.
type VoteAction struct {
	ID        string `yaml:"id"`
	Direction string `yaml:"direction"`
}

// Action is one user interaction. Exactly one field is set.
type Action struct {
	List       *ListAction        `yaml:"list,omitempty"`
	Vote       *VoteAction        `yaml:"vote,omitempty"`
	Add        *submit.Submission `yaml:"add,omitempty"`
	Show       string             `yaml:"show,omitempty"`
	Categories bool               `yaml:"categories,omitempty"`

	Help bool `yaml:"-"`
	Quit bool `yaml:"-"`
}

// Validate checks that exactly one action is set.
func (a Action) Validate() error {
	n := 0
	for _, set := range []bool{a.List != nil, a.Vote != nil, a.Add != nil, a.Show != "", a.Categories, a.Help, a.Quit} {
		if set {
			n++
		}
	}
	if n != 1 {
		return fmt.Errorf("action must set exactly one of list, vote, add, show, categories (got %d)", n)
	}
	if a.Vote != nil && a.Vote.ID == "" {
		return fmt.Errorf("vote: id is required")
	}
	return nil
}

// Script is a recorded sequence of actions.
type Script struct {
	Actions []Action `yaml:"actions"`
}

// ParseScript decodes a YAML script. Unknown keys are rejected.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// LoadScript reads and decodes a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseLine converts one line of interactive input into an Action.
//
//	list                          render with current filter and sort
//	filter <category|all>         change the category filter
//	sort <votes|recent>           change the sort order
//	vote <id> <up|down>           vote (also: up <id>, down <id>)
//	add <category> | <title> | <description>
//	show <id>
//	categories
//	help
//	quit
func ParseLine(line string) (Action, error) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(cmd) {
	case "list", "ls":
		return Action{List: &ListAction{}}, nil
	case "filter":
		if rest == "" {
			return Action{}, fmt.Errorf("usage: filter <category|all>")
		}
		return Action{List: &ListAction{Category: rest}}, nil
	case "sort":
		if len(args) != 1 {
			return Action{}, fmt.Errorf("usage: sort <votes|recent>")
		}
		return Action{List: &ListAction{Sort: args[0]}}, nil
	case "vote":
		if len(args) != 2 {
			return Action{}, fmt.Errorf("usage: vote <id> <up|down>")
		}
		return Action{Vote: &VoteAction{ID: args[0], Direction: args[1]}}, nil
	case "up", "down":
		if len(args) != 1 {
			return Action{}, fmt.Errorf("usage: %s <id>", cmd)
		}
		return Action{Vote: &VoteAction{ID: args[0], Direction: strings.ToLower(cmd)}}, nil
	case "add":
		parts := strings.SplitN(rest, "|", 3)
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("usage: add <category> | <title> | <description>")
		}
		return Action{Add: &submit.Submission{
			Category:    parts[0],
			Title:       parts[1],
			Description: parts[2],
		}}, nil
	case "show":
		if len(args) != 1 {
			return Action{}, fmt.Errorf("usage: show <id>")
		}
		return Action{Show: args[0]}, nil
	case "categories", "cats":
		return Action{Categories: true}, nil
	case "help", "?":
		return Action{Help: true}, nil
	case "quit", "exit", "q":
		return Action{Quit: true}, nil
	}
	return Action{}, fmt.Errorf("%w: %q (try help)", ErrUnknownCommand, cmd)
}
