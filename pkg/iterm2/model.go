package iterm2

// Snapshot is a point-in-time view of iTerm2's windows, tabs and sessions.
// It is fetched fresh on every Connect and never updated afterwards.
type Snapshot struct {
	Windows       []*Window
	CurrentWindow *Window
}

// Window is a top-level iTerm2 window. It owns its tabs.
type Window struct {
	ID         string
	Tabs       []*Tab
	CurrentTab *Tab

	scriptID int
}

// Tab groups one or more sessions (split panes) inside a window.
type Tab struct {
	ID             string
	Sessions       []*Session
	CurrentSession *Session
	Window         *Window

	index int
}

// Session is a single pane, the unit of focus.
type Session struct {
	ID    string
	Name  string
	Title string
	Tab   *Tab
}

func (s *Snapshot) AddWindow(id string) *Window {
	w := &Window{ID: id}
	s.Windows = append(s.Windows, w)
	return w
}

func (w *Window) AddTab(id string) *Tab {
	t := &Tab{ID: id, Window: w, index: len(w.Tabs) + 1}
	w.Tabs = append(w.Tabs, t)
	return t
}

func (t *Tab) AddSession(id, name string) *Session {
	s := &Session{ID: id, Name: name, Tab: t}
	t.Sessions = append(t.Sessions, s)
	return s
}

// CurrentSession follows current window -> current tab -> current session.
// It returns nil if any link in that chain is missing.
func (s *Snapshot) CurrentSession() *Session {
	if s == nil || s.CurrentWindow == nil {
		return nil
	}
	t := s.CurrentWindow.CurrentTab
	if t == nil {
		return nil
	}
	return t.CurrentSession
}

// Sessions returns every session in window, tab, pane order.
func (s *Snapshot) Sessions() []*Session {
	if s == nil {
		return nil
	}
	var sessions []*Session
	for _, w := range s.Windows {
		for _, t := range w.Tabs {
			sessions = append(sessions, t.Sessions...)
		}
	}
	return sessions
}
