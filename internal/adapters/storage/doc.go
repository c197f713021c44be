// Package storage provides the durable key-value backends behind
// ports.KeyValueStore: SQLite (default), PostgreSQL, S3 and an in-process
// map used for tests and for session-scoped values.
//
// Every backend stores opaque byte values under string keys. Missing keys
// surface as domain.ErrNotFound; every other failure is a
// *domain.PersistenceError naming the operation and key.
package storage
