// Package cli provides the interactive genzes command-line client.
//
// It wires configuration, the local store, the optional remote backend and
// the fallback client into a REPL. A background watcher pings the remote and
// the prompt shows whether calls currently go online, would fall back
// offline, or run local-only because no remote is configured.
//
// Key features:
//   - register / login / session / logout (remote first, local fallback)
//   - profile [id] / update / avatar <path>
//   - search <q>, send <user-id> <text>, messages <user-id> (remote first, local store otherwise)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
