// Package localstore implements the local authentication and data store
// used when the remote backend is absent or unreachable.
//
// Every table is a single JSON document in a kv.Storage: users keyed by
// email, profiles keyed by user id, and an append-only list of messages.
// The current session is a fourth document. Operations are full-table
// read-modify-write cycles serialized by a mutex, so one Store is safe for
// concurrent use within a process. Several processes sharing one backend
// race and the last write wins.
package localstore
