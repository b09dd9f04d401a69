// Package console is a trimmed interactive/scripted command-line front end
// for a running Simulation, grounded on server/console's Console (stdin
// scanning vs. go-prompt interactive mode, history, tab completion).
// The full parameter-aware completion server/console.go builds (type
// hints per cmd.Parameter, player-name suggestions) has no analogue here
// since simcmd.Command takes a plain []string rather than typed
// parameters; completion here is command-name only.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"github.com/simobility/shortterm/simcmd"
)

const (
	defaultPromptPrefix = "sim> "
	maxHistoryEntries   = 128
)

// Console reads command lines from an io.Reader (defaulting to os.Stdin)
// and executes them via simcmd.ExecuteLine, writing results to log.
type Console struct {
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console reading from os.Stdin.
func New(log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{log: log, reader: os.Stdin}
}

// WithReader sets a custom reader, for tests or scripted execution without
// go-prompt's terminal requirements.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands until ctx is cancelled or the reader hits EOF.
func (c *Console) Run(ctx context.Context) {
	if c.reader != os.Stdin {
		c.runScanner(ctx)
		return
	}
	c.runInteractive(ctx)
}

func (c *Console) runScanner(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &consoleSource{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) runInteractive(ctx context.Context) {
	src := &consoleSource{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := prompt.Input(defaultPromptPrefix, func(doc prompt.Document) []prompt.Suggest {
			return c.commandSuggestions(strings.TrimPrefix(doc.GetWordBeforeCursor(), "/"))
		},
			prompt.OptionTitle("SimMobility Short-Term Console"),
			prompt.OptionHistory(c.history),
			prompt.OptionPrefix(defaultPromptPrefix),
			prompt.OptionCompletionOnDown(),
			prompt.OptionMaxSuggestion(12),
		)

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.execute(line, src)
	}
}

func (c *Console) execute(line string, src *consoleSource) {
	input := strings.TrimSpace(line)
	if input == "" {
		return
	}
	if !strings.HasPrefix(input, "/") {
		input = "/" + input
	}

	c.history = append(c.history, input)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	out := &simcmd.Output{}
	simcmd.ExecuteLine(src, input, out)
	for _, l := range out.Lines() {
		c.log.Info(l)
	}
	for _, e := range out.Errors() {
		c.log.Error(e)
	}
}

func (c *Console) commandSuggestions(prefix string) []prompt.Suggest {
	commands := simcmd.Commands()
	suggestions := make([]prompt.Suggest, 0, len(commands))
	done := make(map[string]struct{}, len(commands))

	for alias, cmd := range commands {
		name := cmd.Name()
		if alias != name {
			continue
		}
		if _, ok := done[name]; ok {
			continue
		}
		done[name] = struct{}{}
		suggestions = append(suggestions, prompt.Suggest{
			Text:        name,
			Description: cmd.Description(),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Text < suggestions[j].Text
	})
	return prompt.FilterHasPrefix(suggestions, strings.TrimSpace(prefix), true)
}

type consoleSource struct {
	log *slog.Logger
}

func (c *consoleSource) Name() string { return "Console" }

var _ simcmd.Source = (*consoleSource)(nil)
