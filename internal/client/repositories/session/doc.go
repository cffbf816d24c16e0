// Package session provides the durable key/value Session Store used by the
// client to keep one serialized session record across process restarts.
//
// # Overview
//
// The package defines a Store interface (Get/Set/Delete by key) and three
// drivers:
//
//   - SQLiteStore - table session_store in the local SQLite DB (default)
//   - RedisStore  - keys under a prefix in a Redis instance
//   - MemoryStore - process-local map, for tests and throwaway runs
//
// Get reports an absent key as ("", false, nil). Delete of an absent key is
// not an error. Drivers wrap backend failures with the operation and key.
//
// Typical Usage
//
//	store := session.NewSQLiteStore(db)
//	_ = store.Set(ctx, common.SessionStoreKey, raw)
//	raw, ok, err := store.Get(ctx, common.SessionStoreKey)
//	_ = store.Delete(ctx, common.SessionStoreKey)
package session
