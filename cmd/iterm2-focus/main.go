// iterm2-focus brings an iTerm2 session to the foreground by its session ID.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/semistrict/iterm2focus/pkg/config"
	"github.com/semistrict/iterm2focus/pkg/focus"
	"github.com/semistrict/iterm2focus/pkg/iterm2"
	"github.com/semistrict/iterm2focus/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.SetupLogging(os.Stderr)

	connector := iterm2.NewScriptConnector(cfg.Osascript, cfg.AppName)
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, cfg, connector))
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	svc    *focus.Service
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, cfg *config.Config, connector iterm2.Connector) int {
	var list, jsonOutput, getCurrent, showVersion, help bool
	var name string

	flagSet := pflag.NewFlagSet("iterm2-focus", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVarP(&list, "list", "l", false, "list all sessions")
	flagSet.BoolVar(&jsonOutput, "json", false, "with --list, print sessions as JSON")
	flagSet.BoolVarP(&getCurrent, "get-current", "c", false, "print the session ID of the current terminal")
	flagSet.StringVarP(&name, "name", "n", "", "focus the session whose title or profile name matches")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "print version and exit")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	c := &cli{stdout: stdout, stderr: stderr, cfg: cfg, svc: focus.NewService(connector)}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			c.usage(flagSet)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Run 'iterm2-focus --help' for usage.")
		return 1
	}

	switch {
	case help:
		c.usage(flagSet)
		return 0
	case showVersion:
		fmt.Fprintf(stdout, "iterm2-focus %s\n", version.Version)
		return 0
	case list:
		return c.list(ctx, jsonOutput)
	case getCurrent:
		return c.getCurrent()
	case name != "":
		return c.focusByName(ctx, name)
	}

	rest := flagSet.Args()
	switch len(rest) {
	case 0:
		c.usage(flagSet)
		return 1
	case 1:
		return c.focus(ctx, rest[0])
	default:
		fmt.Fprintf(stderr, "Error: expected one session ID, got %d\n", len(rest))
		return 1
	}
}

func (c *cli) usage(flagSet *pflag.FlagSet) {
	fmt.Fprintln(c.stdout, "iterm2-focus - Focus iTerm2 session by ID")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Usage:")
	fmt.Fprintln(c.stdout, "  iterm2-focus <session_id>")
	fmt.Fprintln(c.stdout, "  iterm2-focus --list [--json]")
	fmt.Fprintln(c.stdout, "  iterm2-focus --get-current")
	fmt.Fprintln(c.stdout, "  iterm2-focus --name <name>")
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Options:")
	fmt.Fprint(c.stdout, flagSet.FlagUsages())
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, "Examples:")
	fmt.Fprintln(c.stdout, "  iterm2-focus w0t0p0:12345678-1234-1234-1234-123456789012")
	fmt.Fprintln(c.stdout, "  iterm2-focus 12345678-1234-1234-1234-123456789012")
	fmt.Fprintln(c.stdout, "  iterm2-focus --list")
	fmt.Fprintln(c.stdout, `  iterm2-focus --name "server logs"`)
	fmt.Fprintln(c.stdout, `  SID=$(iterm2-focus --get-current); ...; iterm2-focus "$SID"`)
}

func (c *cli) list(ctx context.Context, jsonOutput bool) int {
	infos, err := c.svc.Sessions(ctx)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	if jsonOutput {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if len(infos) == 0 {
		fmt.Fprintln(c.stdout, "No iTerm2 sessions found")
		return 0
	}
	for _, info := range infos {
		marker := " "
		if info.IsActive {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %s\t%s\n", marker, label(info), info.SessionID)
	}
	return 0
}

func label(info focus.SessionInfo) string {
	switch {
	case info.Title != nil:
		return *info.Title
	case info.Name != nil:
		return *info.Name
	default:
		return "(unnamed)"
	}
}

// getCurrent reads ITERM_SESSION_ID; it never talks to iTerm2.
func (c *cli) getCurrent() int {
	if c.cfg.SessionID == "" {
		fmt.Fprintln(c.stderr, "Error: ITERM_SESSION_ID is not set. Are you running inside iTerm2?")
		return 1
	}
	fmt.Fprintln(c.stdout, c.cfg.SessionID)
	return 0
}

func (c *cli) focus(ctx context.Context, id string) int {
	found, err := c.svc.Focus(ctx, focus.StripPrefix(id))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	if !found {
		fmt.Fprintf(c.stderr, "Session not found: %s\n", id)
		return 1
	}
	fmt.Fprintf(c.stdout, "Focused session: %s\n", id)
	return 0
}

func (c *cli) focusByName(ctx context.Context, name string) int {
	s, err := c.svc.FocusByName(ctx, name)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	if s == nil {
		fmt.Fprintf(c.stderr, "Session not found: %s\n", name)
		return 1
	}
	fmt.Fprintf(c.stdout, "Focused session: %s\n", s.ID)
	return 0
}
