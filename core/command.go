package core

import (
	"errors"
	"io"
	"sync"
)

// Console command lines have the form "<axis>.<command>[:<arg>]", or a
// bare "<command>" for commands that take no axis.

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownAxis    = errors.New("unknown axis")
	ErrBadArgument    = errors.New("bad argument")
)

// CommandHandler runs one console command. a is nil for global commands.
// Replies go to out.
type CommandHandler func(a *Axis, arg string, out io.StringWriter) error

// Command represents a console command
type Command struct {
	Name    string
	Help    string
	Global  bool
	Handler CommandHandler
}

// CommandRegistry holds all registered console commands
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	order    []string
}

var globalRegistry = NewCommandRegistry()

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
	}
}

// Register adds a per-axis command. Registering a name twice keeps the
// first handler.
func (r *CommandRegistry) Register(name, help string, handler CommandHandler) {
	r.add(&Command{Name: name, Help: help, Handler: handler})
}

// RegisterGlobal adds a command that takes no axis
func (r *CommandRegistry) RegisterGlobal(name, help string, handler CommandHandler) {
	r.add(&Command{Name: name, Help: help, Global: true, Handler: handler})
}

func (r *CommandRegistry) add(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
}

// GetCommand retrieves a command by name
func (r *CommandRegistry) GetCommand(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch parses line and calls the matching handler
func (r *CommandRegistry) Dispatch(line string, out io.StringWriter) error {
	line = trimLine(line)

	axisName, rest := "", line
	if i := indexByte(line, '.'); i >= 0 {
		axisName, rest = line[:i], line[i+1:]
	}
	name, arg := rest, ""
	if i := indexByte(rest, ':'); i >= 0 {
		name, arg = rest[:i], rest[i+1:]
	}

	cmd, ok := r.GetCommand(name)
	if !ok {
		return &commandError{err: ErrUnknownCommand, detail: name}
	}
	if cmd.Global {
		if axisName != "" {
			return &commandError{err: ErrUnknownAxis, detail: name + " takes no axis"}
		}
		return cmd.Handler(nil, arg, out)
	}

	a := FindAxis(axisName)
	if a == nil {
		return &commandError{err: ErrUnknownAxis, detail: axisName}
	}
	return cmd.Handler(a, arg, out)
}

// Help returns one line per command in registration order
func (r *CommandRegistry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	help := ""
	for _, name := range r.order {
		cmd := r.commands[name]
		if cmd.Global {
			help += name
		} else {
			help += "<axis>." + name
		}
		if cmd.Help != "" {
			help += "  " + cmd.Help
		}
		help += "\n"
	}
	return help
}

// DispatchCommand is a convenience function using the global registry
func DispatchCommand(line string, out io.StringWriter) error {
	return globalRegistry.Dispatch(line, out)
}

// GetGlobalRegistry returns the global command registry
func GetGlobalRegistry() *CommandRegistry {
	return globalRegistry
}

type commandError struct {
	err    error
	detail string
}

func (e *commandError) Error() string { return e.err.Error() + ": " + e.detail }

func (e *commandError) Unwrap() error { return e.err }
