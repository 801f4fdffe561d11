// Package cli provides the interactive gymkeeper command-line client.
//
// It wires configuration, local token storage, the gym API client and the
// session manager, and exposes them through a cobra command tree and an
// interactive REPL. Typical flow: restore the persisted session, start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Login / Register / Logout
//   - whoami and profile views of the current session
//   - A prompt that shows user, role and the token expiry countdown
//   - A notice when the session is torn down by expiry or by the server
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See NewRootCommand, App, StartOnlineStatusWatcher, and runREPL for details.
package cli
