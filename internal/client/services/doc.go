// Package services contains application services for the authkeeper client.
//
// SessionManager is the single owner of authentication state: the logged-in
// user, the session expiry, a pending OTP flow and the Loading flag. It talks
// to the Auth API through client.Client, persists the session through a
// session.Store and publishes every change as a Snapshot to subscribers.
//
// Lifecycle:
//
//	m := services.NewSessionManager(api, store, services.Options{...})
//	m.Init(ctx)          // restore a persisted session, never fails
//	defer m.Close()      // stop the expiry sweep
//
// A session is persisted before it is published: when the store write fails
// the operation reports failure and subscribers see nothing. Logout and
// expiry always publish the anonymous state, even when the store delete
// fails.
//
// While a session is active one ticker (Options.CheckInterval) re-checks the
// remaining time and logs the user out once it reaches zero. Time comes from
// an injected clockwork.Clock.
package services
