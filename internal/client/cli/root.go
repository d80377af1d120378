package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if sess := a.currentSession(); sess != nil {
		s = displayName(sess) + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores a persisted session, starts the connectivity watcher when a
// remote is configured and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to genzes CLI (type 'help' for commands)")

	sub := a.data.OnAuthStateChange(a.onAuthEvent)
	defer sub.Unsubscribe()

	if a.mode() != ModeLocal {
		a.checkOnline(ctx)
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	a.restoreSession(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}
