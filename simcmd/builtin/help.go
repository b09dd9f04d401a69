package builtin

import (
	"sort"
	"strings"

	"github.com/simobility/shortterm/simcmd"
)

type helpCommand struct{}

func newHelpCommand() simcmd.Command { return helpCommand{} }

func (helpCommand) Name() string        { return "help" }
func (helpCommand) Description() string { return "Shows available commands." }
func (helpCommand) Aliases() []string    { return []string{"?"} }

func (helpCommand) Run(_ simcmd.Source, args []string, o *simcmd.Output) {
	if len(args) > 0 {
		name := strings.ToLower(strings.TrimPrefix(args[0], "/"))
		cmd, ok := simcmd.ByAlias(name)
		if !ok {
			o.Errorf("unknown command: %s", name)
			return
		}
		o.Print(cmd.Description())
		return
	}

	commands := simcmd.Commands()
	names := make([]string, 0, len(commands))
	seen := map[string]bool{}
	for alias, cmd := range commands {
		if alias != strings.ToLower(cmd.Name()) || seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		names = append(names, cmd.Name())
	}
	sort.Strings(names)

	o.Printf("Available commands (%d):", len(names))
	for _, name := range names {
		cmd, _ := simcmd.ByAlias(name)
		line := "/" + name
		if desc := cmd.Description(); desc != "" {
			line += " - " + desc
		}
		o.Print(line)
	}
}
