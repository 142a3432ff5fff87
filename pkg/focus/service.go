// Package focus finds iTerm2 sessions and brings them to the foreground.
//
// Service has two faces. The CLI-facing methods (Focus, FocusByName,
// Sessions) return a *Error when something goes wrong. The tool-facing methods
// (ListSessions, GetCurrentSession, FocusSession) never fail: every outcome is
// encoded in their return value.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/semistrict/iterm2focus/pkg/iterm2"
)

// SessionInfo is a flattened view of a session and its ancestry.
type SessionInfo struct {
	SessionID string  `json:"session_id"`
	WindowID  string  `json:"window_id"`
	TabID     string  `json:"tab_id"`
	IsActive  bool    `json:"is_active"`
	Title     *string `json:"title"`
	Name      *string `json:"name"`
}

// FocusResult is the outcome of FocusSession.
type FocusResult struct {
	Success   bool   `json:"success"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Error is the single error kind surfaced to CLI callers. Message is meant to
// be shown to the user as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProgressFunc receives step updates while a session is being focused.
type ProgressFunc func(ctx context.Context, step, total int, message string)

type Option func(*Service)

// WithProgress reports the connecting, searching and activating steps of
// FocusSession to p.
func WithProgress(p ProgressFunc) Option {
	return func(s *Service) {
		s.progress = p
	}
}

// Service runs focus operations against a Connector. It keeps no state
// between calls and is safe for concurrent use.
type Service struct {
	connector iterm2.Connector
	progress  ProgressFunc
}

func NewService(connector iterm2.Connector, opts ...Option) *Service {
	s := &Service{connector: connector}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const focusSteps = 3

func (s *Service) report(ctx context.Context, step int, message string) {
	if s.progress != nil {
		s.progress(ctx, step, focusSteps, message)
	}
}

func (s *Service) withApp(ctx context.Context, fn func(app iterm2.App) error) error {
	app, err := s.connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.DebugContext(ctx, "closing iTerm2 connection", "err", err)
		}
	}()
	return fn(app)
}

func connectFailure(err error) string {
	return fmt.Sprintf("Failed to connect to iTerm2: %v. Make sure iTerm2 is running and automation is allowed.", err)
}

func toError(err error) error {
	var focusErr *Error
	if errors.As(err, &focusErr) {
		return focusErr
	}
	if iterm2.IsConnectionError(err) {
		return &Error{Message: connectFailure(err), Err: err}
	}
	return &Error{Message: fmt.Sprintf("Unexpected error: %v", err), Err: err}
}

// Focus activates the session with exactly this ID. It returns false and no
// error if there is no such session.
func (s *Service) Focus(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.withApp(ctx, func(app iterm2.App) error {
		sess := FindSession(app.Snapshot(), id)
		if sess == nil {
			return nil
		}
		found = true
		return Activate(ctx, app, sess)
	})
	if err != nil {
		return false, toError(err)
	}
	return found, nil
}

// FocusByName activates the single session matching name (see FindByName).
// It returns nil and no error if nothing matches.
func (s *Service) FocusByName(ctx context.Context, name string) (*iterm2.Session, error) {
	var focused *iterm2.Session
	err := s.withApp(ctx, func(app iterm2.App) error {
		matches := FindByName(app.Snapshot(), name)
		switch len(matches) {
		case 0:
			return nil
		case 1:
			focused = matches[0]
			return Activate(ctx, app, focused)
		default:
			ids := make([]string, len(matches))
			for i, m := range matches {
				ids[i] = m.ID
			}
			return &Error{Message: fmt.Sprintf("Multiple sessions match %q: %s", name, strings.Join(ids, ", "))}
		}
	})
	if err != nil {
		return nil, toError(err)
	}
	return focused, nil
}

// Sessions lists every session, surfacing connection failures.
func (s *Service) Sessions(ctx context.Context) ([]SessionInfo, error) {
	var infos []SessionInfo
	err := s.withApp(ctx, func(app iterm2.App) error {
		infos = Flatten(app.Snapshot())
		return nil
	})
	if err != nil {
		return nil, toError(err)
	}
	return infos, nil
}

// ListSessions lists every session. Any failure yields an empty list so that
// a caller is never blocked by iTerm2 being unavailable.
func (s *Service) ListSessions(ctx context.Context) []SessionInfo {
	infos, err := s.Sessions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "listing sessions failed", "err", err)
		return []SessionInfo{}
	}
	return infos
}

// GetCurrentSession describes the session reached through the current window
// and its current tab. It returns nil if there is none or on failure.
func (s *Service) GetCurrentSession(ctx context.Context) *SessionInfo {
	var info *SessionInfo
	err := s.withApp(ctx, func(app iterm2.App) error {
		snap := app.Snapshot()
		cur := snap.CurrentSession()
		if cur == nil {
			return nil
		}
		w := snap.CurrentWindow
		i := newSessionInfo(w, w.CurrentTab, cur, true)
		info = &i
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "reading current session failed", "err", err)
		return nil
	}
	return info
}

// FocusSession activates the session with exactly this ID and reports the
// outcome in the result rather than as an error.
func (s *Service) FocusSession(ctx context.Context, id string) FocusResult {
	fail := func(err error) FocusResult {
		slog.WarnContext(ctx, "focus failed", "session_id", id, "err", err)
		msg := fmt.Sprintf("Failed: %v", err)
		if iterm2.IsConnectionError(err) {
			msg = connectFailure(err)
		}
		return FocusResult{Success: false, SessionID: id, Message: msg}
	}

	s.report(ctx, 1, "Connecting to iTerm2")
	app, err := s.connector.Connect(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	s.report(ctx, 2, "Searching for session "+id)
	sess := FindSession(app.Snapshot(), id)
	if sess == nil {
		return FocusResult{Success: false, SessionID: id, Message: "Session not found: " + id}
	}

	s.report(ctx, 3, "Activating session "+id)
	if err := Activate(ctx, app, sess); err != nil {
		return fail(err)
	}
	slog.DebugContext(ctx, "focused session", "session_id", id)
	return FocusResult{Success: true, SessionID: id, Message: "Successfully focused session " + id}
}

// Flatten turns a snapshot into one SessionInfo per session, in window, tab,
// pane order.
func Flatten(snap *iterm2.Snapshot) []SessionInfo {
	infos := []SessionInfo{}
	if snap == nil {
		return infos
	}
	current := snap.CurrentSession()
	for _, w := range snap.Windows {
		for _, t := range w.Tabs {
			for _, sess := range t.Sessions {
				infos = append(infos, newSessionInfo(w, t, sess, sess == current))
			}
		}
	}
	return infos
}

func newSessionInfo(w *iterm2.Window, t *iterm2.Tab, s *iterm2.Session, active bool) SessionInfo {
	return SessionInfo{
		SessionID: s.ID,
		WindowID:  w.ID,
		TabID:     t.ID,
		IsActive:  active,
		Title:     optional(s.Title),
		Name:      optional(s.Name),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
