package iterm2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes an AppleScript program and returns its standard output.
type Runner func(ctx context.Context, script string) (string, error)

// ScriptConnector drives iTerm2 through its AppleScript dictionary by piping
// scripts into osascript.
type ScriptConnector struct {
	Osascript string
	AppName   string
	// Runner replaces the osascript subprocess when set.
	Runner Runner
}

func NewScriptConnector(osascript, appName string) *ScriptConnector {
	return &ScriptConnector{Osascript: osascript, AppName: appName}
}

const notRunningMarker = "!not-running"

// Records are tab separated, one per line:
//
//	C <current window id>
//	W <window id> <current session of current tab>
//	T <current session of tab>
//	S <unique id> <profile name> <name>
//
// T belongs to the last W, S to the last T.
const dumpScript = `set sep to character id 9
set nl to character id 10
if application %[1]s is not running then return "%[2]s"
tell application %[1]s
	set out to ""
	try
		set out to out & "C" & sep & (id of current window) & nl
	end try
	repeat with w in windows
		set cur to ""
		try
			set cur to unique id of current session of current tab of w
		end try
		set out to out & "W" & sep & (id of w) & sep & cur & nl
		repeat with t in tabs of w
			set tcur to ""
			try
				set tcur to unique id of current session of t
			end try
			set out to out & "T" & sep & tcur & nl
			repeat with s in sessions of t
				set pn to ""
				set sn to ""
				try
					set pn to profile name of s
				end try
				try
					set sn to name of s
				end try
				if pn is missing value then set pn to ""
				if sn is missing value then set sn to ""
				set out to out & "S" & sep & (unique id of s) & sep & pn & sep & sn & nl
			end repeat
		end repeat
	end repeat
	return out
end tell
`

const selectSessionScript = `tell application %[1]s
	repeat with s in sessions of tab %[3]d of window id %[2]d
		if unique id of s is %[4]s then
			select s
			return "ok"
		end if
	end repeat
end tell
error "no session " & %[4]s number -1728
`

const selectTabScript = `tell application %[1]s to select tab %[3]d of window id %[2]d
`

const activateWindowScript = `tell application %[1]s
	select window id %[2]d
	activate
end tell
`

// AppleScript error numbers that mean the application could not be talked to:
// -600 not running, -609 connection invalid, -1743 not authorized.
var connectionErrorCodes = []string{"(-600)", "(-609)", "(-1743)"}

func (c *ScriptConnector) Connect(ctx context.Context) (App, error) {
	out, err := c.run(ctx, fmt.Sprintf(dumpScript, quote(c.appName()), notRunningMarker))
	if err != nil {
		if IsConnectionError(err) {
			return nil, err
		}
		return nil, &ConnectionError{Err: err}
	}
	if strings.TrimSpace(out) == notRunningMarker {
		return nil, &ConnectionError{Err: ErrNotRunning}
	}
	snap, err := parseSnapshot(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read iTerm2 state: %w", err)
	}
	return &scriptApp{connector: c, snapshot: snap}, nil
}

func (c *ScriptConnector) appName() string {
	if c.AppName == "" {
		return "iTerm2"
	}
	return c.AppName
}

func (c *ScriptConnector) run(ctx context.Context, script string) (string, error) {
	slog.DebugContext(ctx, "running osascript", "bytes", len(script))
	if c.Runner != nil {
		return c.Runner(ctx, script)
	}
	path := c.Osascript
	if path == "" {
		path = "osascript"
	}
	return runOsascript(ctx, path, script)
}

func runOsascript(ctx context.Context, path, script string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "-")
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", classifyScriptError(err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func classifyScriptError(err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return &ConnectionError{Err: fmt.Errorf("osascript unavailable: %w", err)}
	}
	scriptErr := &ScriptError{Stderr: stderr, Err: err}
	for _, code := range connectionErrorCodes {
		if strings.Contains(stderr, code) {
			return &ConnectionError{Err: scriptErr}
		}
	}
	return scriptErr
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

type scriptApp struct {
	connector *ScriptConnector
	snapshot  *Snapshot
}

func (a *scriptApp) Snapshot() *Snapshot {
	return a.snapshot
}

func (a *scriptApp) ActivateSession(ctx context.Context, s *Session) error {
	if s.Tab == nil || s.Tab.Window == nil {
		return fmt.Errorf("session %s is detached from its tab", s.ID)
	}
	_, err := a.connector.run(ctx, fmt.Sprintf(selectSessionScript,
		quote(a.connector.appName()), s.Tab.Window.scriptID, s.Tab.index, quote(s.ID)))
	if err != nil {
		return fmt.Errorf("failed to activate session %s: %w", s.ID, err)
	}
	return nil
}

func (a *scriptApp) SelectTab(ctx context.Context, t *Tab) error {
	if t.Window == nil {
		return fmt.Errorf("tab %s is detached from its window", t.ID)
	}
	_, err := a.connector.run(ctx, fmt.Sprintf(selectTabScript,
		quote(a.connector.appName()), t.Window.scriptID, t.index))
	if err != nil {
		return fmt.Errorf("failed to select tab %s: %w", t.ID, err)
	}
	return nil
}

func (a *scriptApp) ActivateWindow(ctx context.Context, w *Window) error {
	_, err := a.connector.run(ctx, fmt.Sprintf(activateWindowScript,
		quote(a.connector.appName()), w.scriptID))
	if err != nil {
		return fmt.Errorf("failed to activate window %s: %w", w.ID, err)
	}
	return nil
}

// Close is a no-op: every script runs in its own osascript process.
func (a *scriptApp) Close() error {
	return nil
}

func parseSnapshot(out string) (*Snapshot, error) {
	snap := &Snapshot{}
	currentWindow := -1
	windowCurrent := map[*Window]string{}
	tabCurrent := map[*Tab]string{}

	var w *Window
	var t *Tab
	for n, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		switch fields[0] {
		case "C":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: malformed current window record", n+1)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad window id %q: %w", n+1, fields[1], err)
			}
			currentWindow = id
		case "W":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed window record", n+1)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad window id %q: %w", n+1, fields[1], err)
			}
			w = snap.AddWindow(fields[1])
			w.scriptID = id
			windowCurrent[w] = fields[2]
			t = nil
		case "T":
			if w == nil {
				return nil, fmt.Errorf("line %d: tab outside of a window", n+1)
			}
			t = w.AddTab(strconv.Itoa(len(w.Tabs) + 1))
			if len(fields) > 1 {
				tabCurrent[t] = fields[1]
			}
		case "S":
			if t == nil {
				return nil, fmt.Errorf("line %d: session outside of a tab", n+1)
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: malformed session record", n+1)
			}
			s := t.AddSession(fields[1], fields[2])
			s.Title = fields[3]
		default:
			return nil, fmt.Errorf("line %d: unknown record %q", n+1, fields[0])
		}
	}

	for _, w := range snap.Windows {
		if w.scriptID == currentWindow {
			snap.CurrentWindow = w
		}
		for _, t := range w.Tabs {
			for _, s := range t.Sessions {
				if s.ID == tabCurrent[t] {
					t.CurrentSession = s
				}
				if s.ID == windowCurrent[w] {
					w.CurrentTab = t
				}
			}
		}
	}
	return snap, nil
}
