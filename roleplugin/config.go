package roleplugin

// Config controls the behavior of the dynamic RoleFactory loader. Mirrors
// server/plugin.Config's shape; TOML-tagged so it nests directly inside
// sim/config.Scenario.
type Config struct {
	Enabled       bool     `toml:"enabled"`
	Directory     string   `toml:"directory"`
	DataDirectory string   `toml:"data_directory"`
	Autoload      bool     `toml:"autoload"`
	Files         []string `toml:"files"`
}
