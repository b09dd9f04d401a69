package roleplugin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"log/slog"
)

// API exposes Simulation functionality to dynamically loaded RoleFactory
// plugins. Grounded on server/plugin.API, trimmed to the accessors a
// behavioral-model plugin plausibly needs (logger, data directory,
// lifecycle context, Simulation/Config access, other-plugin lookup) —
// none of the chat/form/title/player-lookup surface applies here.
type API[S any, C any] struct {
	manager *Manager[S, C]
	host    Host[S, C]
	name    atomic.Value
	ctx     atomic.Value
	dataDir atomic.Value
}

func newAPI[S any, C any](manager *Manager[S, C], host Host[S, C], name string) *API[S, C] {
	api := &API[S, C]{manager: manager, host: host}
	api.name.Store(name)
	api.ctx.Store(context.Background())
	return api
}

func (api *API[S, C]) setName(name string) {
	if name == "" {
		return
	}
	api.name.Store(name)
}

func (api *API[S, C]) pluginName() string {
	if v := api.name.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "plugin"
}

func (api *API[S, C]) setContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	api.ctx.Store(ctx)
}

// Context returns a context invalidated when the plugin is disabled.
func (api *API[S, C]) Context() context.Context {
	if v := api.ctx.Load(); v != nil {
		if ctx, ok := v.(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

func (api *API[S, C]) setDataDirectory(dir string) {
	if dir == "" {
		api.dataDir.Store("")
		return
	}
	api.dataDir.Store(filepath.Clean(dir))
}

// DataDirectory returns the path to the plugin's data directory. It is
// relative to the working directory when the plugin directory is configured
// as a relative path, as the default "roleplugins" is.
func (api *API[S, C]) DataDirectory() string {
	if v := api.dataDir.Load(); v != nil {
		if dir, ok := v.(string); ok && dir != "" {
			return dir
		}
	}
	return api.manager.pluginDataDirectory(api.pluginName())
}

func (api *API[S, C]) resolveDataPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("data path is empty")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("data path must be relative")
	}
	base := api.DataDirectory()
	cleaned := filepath.Clean(name)
	target := filepath.Join(base, cleaned)
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("data path escapes plugin directory")
	}
	return target, nil
}

// EnsureDataSubdir ensures a subdirectory of the plugin data directory
// exists and returns its path, resolved the same way as DataDirectory.
func (api *API[S, C]) EnsureDataSubdir(name string) (string, error) {
	if name == "" {
		dir := api.DataDirectory()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}
	path, err := api.resolveDataPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// OpenDataFile opens or creates a file within the plugin data directory.
func (api *API[S, C]) OpenDataFile(name string, flag int, perm fs.FileMode) (*os.File, error) {
	path, err := api.resolveDataPath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if perm == 0 {
		perm = 0o644
	}
	return os.OpenFile(path, flag, perm)
}

// Go launches fn on a goroutine tied to the plugin's lifecycle context.
// Panics disable the plugin rather than crashing the simulation process.
func (api *API[S, C]) Go(fn func(context.Context)) {
	if fn == nil {
		return
	}
	ctx := api.Context()
	name := api.pluginName()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				api.manager.handlePluginPanic(name, r)
			}
		}()
		fn(ctx)
	}()
}

// Simulation returns the running Simulation instance.
func (api *API[S, C]) Simulation() S { return api.host.Instance() }

// Config returns a snapshot of the scenario configuration.
func (api *API[S, C]) Config() C { return api.host.Config() }

// Logger returns a logger scoped to the plugin's name.
func (api *API[S, C]) Logger() *slog.Logger {
	logger := api.host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("roleplugin", api.pluginName())
}

// Plugins returns metadata for all currently loaded plugins.
func (api *API[S, C]) Plugins() []Info { return api.manager.Infos() }

// Plugin returns a loaded plugin's Role by name, if present.
func (api *API[S, C]) Plugin(name string) (Role, bool) { return api.manager.Plugin(name) }

// PluginDirectory returns the directory scanned for plugin binaries.
func (api *API[S, C]) PluginDirectory() string { return api.manager.Directory() }

// PluginDataRoot returns the root directory used to persist plugin data.
func (api *API[S, C]) PluginDataRoot() string { return api.manager.DataRoot() }

// ResolvePluginPath resolves path against the configured plugin directory.
func (api *API[S, C]) ResolvePluginPath(path string) string { return api.manager.ResolvePath(path) }
