// Package client contains the transport building blocks of docchat.
//
// # Overview
//
// The package provides:
//  1. The Content API contract (see ContentAPI and its narrower parts
//     AuthAPI, ConversationAPI, ChatAPI, FileAPI, ProfileAPI, AdminAPI).
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient) built on the
//     hertz client. The bearer credential is read from a TokenSource on every
//     call.
//  3. A websocket client for the streaming ask endpoint (see StreamClient).
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures are returned as *APIError whose Err is one of the sentinel errors
// in internal/common, so callers match with errors.Is:
//
//	401                 -> common.ErrUnauthenticated
//	403                 -> common.ErrUnauthenticated (common.ErrForbidden on admin routes)
//	404                 -> common.ErrNotFound
//	400, 409, 422       -> common.ErrConflict
//	5xx, dial, timeouts -> common.ErrTransport
//
// The server's "detail" text, when present, is kept in APIError.Detail.
//
// # Concurrency & Contexts
//
// HTTPClient and StreamClient are safe for concurrent use. All operations
// accept context.Context; a context deadline bounds the whole request.
package client
