// Package cli provides the interactive authkeeper command-line client.
//
// It wires configuration, the session store, the Auth API client and the
// session manager, then runs a REPL on stdin. Passwords are read without
// echo via golang.org/x/term and wiped after use.
//
// Commands: register, login, otp, resend, cancel, forgot, profile, session,
// logout, help, exit | quit.
//
// The CLI subscribes to the session manager and prints changes it did not
// trigger itself, such as a restored session on start-up, automatic logout on
// expiry and the expiry warning.
package cli
