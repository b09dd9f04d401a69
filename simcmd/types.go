// Package simcmd is a trimmed command framework for driving a running
// Simulation from a console or script: a name/alias registry, a Source
// abstraction (who issued the command), and a small Output buffer a
// Command writes human-readable lines and errors to.
//
// Adapted from server/cmd (execute.go's ExecuteLine dispatch loop) and
// server/cmd/builtin's command set. The full struct-tag/reflection based
// parameter parser those files build on (cmd.New, cmd.Optional[T],
// cmd.Enum, cmd.Varargs, cmd.Target) wasn't present in the curated
// teacher file set — rather than invent an equally large parser
// ungrounded, Command.Run here takes a plain []string of already-split
// arguments, which is what every builtin command in the examples
// actually consumes after cmd's parser hands it off.
package simcmd

import (
	"fmt"
	"strings"
)

// Source identifies who issued a command line.
type Source interface {
	Name() string
}

// Output accumulates the lines and errors a Command produces for its
// Source. Grounded on cmd.Output's Print/Printf/Error/Errorf surface,
// trimmed of the translation-table variants (Errort/Writet) since this
// simulator has no client-facing chat translation layer.
type Output struct {
	lines  []string
	errors []string
}

func (o *Output) Print(a ...any) { o.lines = append(o.lines, fmt.Sprint(a...)) }

func (o *Output) Printf(format string, a ...any) { o.lines = append(o.lines, fmt.Sprintf(format, a...)) }

func (o *Output) Error(a ...any) { o.errors = append(o.errors, fmt.Sprint(a...)) }

func (o *Output) Errorf(format string, a ...any) { o.errors = append(o.errors, fmt.Sprintf(format, a...)) }

// Lines returns the accumulated output lines, in call order.
func (o *Output) Lines() []string { return o.lines }

// Errors returns the accumulated error lines, in call order.
func (o *Output) Errors() []string { return o.errors }

// Command is a named, runnable console operation.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Run(src Source, args []string, o *Output)
}

// Allower may be implemented by a Command to restrict who may run it.
// No command in simcmd/builtin implements it, so every builtin command
// allows any Source; the console package's source is the only Source this
// module constructs.
type Allower interface {
	Allow(src Source) bool
}

var registry = map[string]Command{}

// Register adds cmd to the global registry under its name and aliases,
// lower-cased. A later registration for the same alias overwrites an
// earlier one, mirroring cmd.Register's last-registration-wins behavior.
func Register(cmd Command) {
	registry[strings.ToLower(cmd.Name())] = cmd
	for _, alias := range cmd.Aliases() {
		registry[strings.ToLower(alias)] = cmd
	}
}

// ByAlias looks up a registered Command by name or alias, case-insensitive.
func ByAlias(alias string) (Command, bool) {
	c, ok := registry[strings.ToLower(alias)]
	return c, ok
}

// Commands returns every alias->Command mapping currently registered.
func Commands() map[string]Command {
	out := make(map[string]Command, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}
