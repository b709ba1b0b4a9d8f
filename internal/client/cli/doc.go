// Package cli provides the interactive EduBD command-line client.
//
// It wires configuration, the local token database, the gateway client, the
// session store, the access-gated router, the auth dialog and the
// notification channel, and drives them from a REPL. The session is
// restored in the background on start, so the first prompt may show the
// "bootstrapping" status.
//
// Key features:
//   - goto / back: navigate, with protected pages gated by the session
//   - login / register / forgot: the auth dialog's forms
//   - reset: the password reset page reached from an email link
//   - profile, users, deluser: signed-in and admin pages
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
