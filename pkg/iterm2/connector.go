package iterm2

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotRunning is reported when iTerm2 is not running.
var ErrNotRunning = errors.New("iTerm2 is not running")

// Connector opens a connection to iTerm2's automation interface.
// Every call is a fresh attempt; there is no pooling or reuse.
type Connector interface {
	Connect(ctx context.Context) (App, error)
}

// App is a connected handle on iTerm2. The snapshot it carries was taken when
// the connection was established.
type App interface {
	Snapshot() *Snapshot
	ActivateSession(ctx context.Context, s *Session) error
	SelectTab(ctx context.Context, t *Tab) error
	ActivateWindow(ctx context.Context, w *Window) error
	Close() error
}

// ConnectionError means iTerm2 could not be reached at all.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err (or anything it wraps) is a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// ScriptError is a failed osascript invocation that is not a connection problem.
type ScriptError struct {
	Stderr string
	Err    error
}

func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("osascript failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("osascript failed: %v", e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
