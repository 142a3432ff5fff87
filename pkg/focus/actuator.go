package focus

import (
	"context"
	"fmt"

	"github.com/semistrict/iterm2focus/pkg/iterm2"
)

// Activate brings s to the foreground: the session is selected inside its
// tab, the tab inside its window, and finally the window is raised, which is
// what brings iTerm2 itself to the front. The first failing step aborts.
func Activate(ctx context.Context, app iterm2.App, s *iterm2.Session) error {
	if s.Tab == nil || s.Tab.Window == nil {
		return fmt.Errorf("session %s has no parent tab or window", s.ID)
	}
	if err := app.ActivateSession(ctx, s); err != nil {
		return err
	}
	if err := app.SelectTab(ctx, s.Tab); err != nil {
		return err
	}
	return app.ActivateWindow(ctx, s.Tab.Window)
}
