// Package console implements the line-oriented command shell over a core.Store.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/hbnb/pkg/core"
)

// DefaultPrompt is printed before each line in interactive sessions.
const DefaultPrompt = "(hbnb) "

// Console reads commands, dispatches them to the store and prints results.
type Console struct {
	store       core.Store
	in          io.Reader
	out         io.Writer
	prompt      string
	logger      *slog.Logger
	interactive bool
	forced      *bool
	refresh     func(ctx context.Context) error
	commands    map[string]command

	executed int
	last     string
}

// Option configures a Console.
type Option func(*Console)

// WithInput sets the command source. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(c *Console) {
		c.in = r
	}
}

// WithOutput sets where results are printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		c.out = w
	}
}

// WithPrompt overrides DefaultPrompt.
func WithPrompt(prompt string) Option {
	return func(c *Console) {
		c.prompt = prompt
	}
}

// WithLogger sets the logger used for errors the user cannot act on.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithInteractive forces prompting on or off. By default the console prompts
// only when its input is a terminal.
func WithInteractive(interactive bool) Option {
	return func(c *Console) {
		c.forced = &interactive
	}
}

// WithRefresher registers a hook run before every non-empty line, used to
// pick up external changes of the backing file.
func WithRefresher(fn func(ctx context.Context) error) Option {
	return func(c *Console) {
		c.refresh = fn
	}
}

// New creates a console over store.
func New(store core.Store, opts ...Option) *Console {
	c := &Console{
		store:  store,
		in:     os.Stdin,
		out:    os.Stdout,
		prompt: DefaultPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.forced != nil {
		c.interactive = *c.forced
	} else {
		c.interactive = isTerminal(c.in)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	c.commands = c.commandTable()
	return c
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run reads lines until quit, EOF or cancellation of ctx.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if c.interactive {
			fmt.Fprint(c.out, c.prompt)
		}
		if !scanner.Scan() {
			break
		}
		if c.Execute(ctx, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if c.interactive {
		fmt.Fprintln(c.out)
	}
	return nil
}

// Execute runs a single line and reports whether the shell should stop.
func (c *Console) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			c.fail("refresh failed", err)
		}
	}

	name, args := splitCommand(rewrite(line))
	c.executed++
	c.last = name

	cmd, ok := c.commands[name]
	if !ok {
		fmt.Fprintf(c.out, "*** Unknown syntax: %s\n", line)
		return false
	}
	return cmd.run(ctx, args)
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// fail reports an operational error: a one-liner for the user, the detail
// in the log.
func (c *Console) fail(msg string, err error) {
	c.logger.Error(msg, "error", err)
	fmt.Fprintf(c.out, "** %v **\n", err)
}
