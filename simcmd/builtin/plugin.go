package builtin

import "github.com/simobility/shortterm/simcmd"

type pluginCommand struct {
	host Host
}

func newPluginCommand(host Host) simcmd.Command { return pluginCommand{host: host} }

func (pluginCommand) Name() string { return "plugin" }
func (pluginCommand) Description() string {
	return "Manages roleplugin behavioral models: plugin list|enable <path>|disable <name>|reload <name>."
}
func (pluginCommand) Aliases() []string { return nil }

func (p pluginCommand) Run(_ simcmd.Source, args []string, o *simcmd.Output) {
	if !p.host.PluginsEnabled() {
		o.Error("roleplugin subsystem is disabled")
		return
	}
	if len(args) == 0 {
		o.Error("usage: plugin list|enable <path>|disable <name>|reload <name>")
		return
	}

	switch args[0] {
	case "list":
		infos := p.host.Plugins()
		if len(infos) == 0 {
			o.Print("No role plugins loaded.")
			return
		}
		for _, info := range infos {
			o.Printf("%s (%s) - %s", info.Name, info.Version, info.Path)
		}
	case "enable":
		if len(args) < 2 {
			o.Error("usage: plugin enable <path>")
			return
		}
		info, err := p.host.EnablePlugin(args[1])
		if err != nil {
			o.Errorf("enable %s: %v", args[1], err)
			return
		}
		o.Printf("Enabled %s (%s).", info.Name, info.Path)
	case "disable":
		if len(args) < 2 {
			o.Error("usage: plugin disable <name>")
			return
		}
		info, err := p.host.DisablePlugin(args[1])
		if err != nil {
			o.Errorf("disable %s: %v", args[1], err)
			return
		}
		o.Printf("Disabled %s.", info.Name)
	case "reload":
		if len(args) < 2 {
			o.Error("usage: plugin reload <name>")
			return
		}
		info, err := p.host.ReloadPlugin(args[1])
		if err != nil {
			o.Errorf("reload %s: %v", args[1], err)
			return
		}
		o.Printf("Reloaded %s.", info.Name)
	default:
		o.Errorf("unknown plugin subcommand: %s", args[0])
	}
}
