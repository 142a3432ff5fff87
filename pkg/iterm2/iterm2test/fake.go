// Package iterm2test provides an in-memory iterm2.Connector for tests.
package iterm2test

import (
	"context"
	"sync"

	"github.com/semistrict/iterm2focus/pkg/iterm2"
)

// Fake is a Connector serving a fixed snapshot and recording every
// activation call. It is safe for concurrent use.
type Fake struct {
	Snap *iterm2.Snapshot

	ConnectErr        error
	ActivateErr       error
	SelectErr         error
	ActivateWindowErr error

	mu       sync.Mutex
	connects int
	closes   int
	calls    []string
}

// NewFake returns a Fake with an empty snapshot.
func NewFake() *Fake {
	return &Fake{Snap: &iterm2.Snapshot{}}
}

// SingleSession builds the common fixture: one window "w0" with one tab "t0"
// holding one active session.
func SingleSession(id, name string) *Fake {
	f := NewFake()
	w := f.Snap.AddWindow("w0")
	t := w.AddTab("t0")
	s := t.AddSession(id, name)
	f.Snap.CurrentWindow = w
	w.CurrentTab = t
	t.CurrentSession = s
	return f
}

func (f *Fake) Connect(ctx context.Context) (iterm2.App, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.ConnectErr != nil {
		return nil, f.ConnectErr
	}
	return &fakeApp{fake: f}, nil
}

// Connects returns how many times Connect was called.
func (f *Fake) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// Closes returns how many connections were closed.
func (f *Fake) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// Calls returns the activation calls in order, formatted as
// "session:<id>", "tab:<id>" or "window:<id>".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) record(call string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return err
}

type fakeApp struct {
	fake *Fake
}

func (a *fakeApp) Snapshot() *iterm2.Snapshot {
	return a.fake.Snap
}

func (a *fakeApp) ActivateSession(ctx context.Context, s *iterm2.Session) error {
	return a.fake.record("session:"+s.ID, a.fake.ActivateErr)
}

func (a *fakeApp) SelectTab(ctx context.Context, t *iterm2.Tab) error {
	return a.fake.record("tab:"+t.ID, a.fake.SelectErr)
}

func (a *fakeApp) ActivateWindow(ctx context.Context, w *iterm2.Window) error {
	return a.fake.record("window:"+w.ID, a.fake.ActivateWindowErr)
}

func (a *fakeApp) Close() error {
	a.fake.mu.Lock()
	defer a.fake.mu.Unlock()
	a.fake.closes++
	return nil
}
