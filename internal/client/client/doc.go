// Package client talks to the Credential Gateway, the remote REST service
// that owns accounts and issues bearer tokens.
//
// # Overview
//
// The package provides:
//  1. The transport-agnostic Client contract (register, login, profile
//     fetch and update, password reset, admin user listing and deletion).
//  2. HTTPClient, the net/http implementation. Bearer tokens are attached
//     by an x/oauth2 transport, outbound calls are throttled with
//     x/time/rate and tagged with an X-Request-ID.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite file holding the persisted token.
//
// # Error Handling
//
// Network failures wrap ErrUnavailable. Non-2xx answers are *APIError; any
// 401 also matches ErrUnauthorized with errors.Is. Use Detail to get the
// server-provided message for display.
package client
