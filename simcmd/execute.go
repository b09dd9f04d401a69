package simcmd

import "strings"

// ExecuteLine parses a "/name arg1 arg2" commandLine and runs it against
// src, writing all output to o. Unknown commands and commands the Source
// is not Allowed to run produce an Output error rather than a panic.
// Grounded on cmd.ExecuteLine's prefix-strip + ByAlias + dispatch shape.
func ExecuteLine(src Source, commandLine string, o *Output) {
	commandLine = strings.TrimSpace(commandLine)
	if commandLine == "" {
		return
	}
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return
	}
	name, ok := strings.CutPrefix(fields[0], "/")
	if !ok || name == "" {
		name = fields[0]
	}

	command, ok := ByAlias(name)
	if !ok {
		o.Errorf("unknown command: %s", name)
		return
	}
	if a, ok := command.(Allower); ok && !a.Allow(src) {
		o.Errorf("%s is not permitted to run %s", src.Name(), name)
		return
	}
	command.Run(src, fields[1:], o)
}
