// Package client contains the remote backend client of genzes.
//
// # Overview
//
// GRPCClient implements backend.Backend over the rpc wire protocol. It
// remembers the access token returned by the last successful sign-in and
// injects it into every outgoing call through an interceptor. gRPC status
// codes are mapped to sentinel errors so that the fallback client can tell
// an unreachable backend from one that answered.
//
// # Error Handling
//
// Callers match errors with errors.Is: ErrUnavailable (which also matches
// common.ErrRemoteUnavailable), ErrUnauthorized and
// common.ErrRemoteCallFailed for everything else. Refusals reported by the
// backend itself arrive in the response body, not as errors.
//
// # Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations accept a
// context.Context; calls without a deadline get the configured call
// timeout.
package client
