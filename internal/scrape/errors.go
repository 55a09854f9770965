package scrape

import "errors"

// Acquisition failure taxonomy. Backends wrap these sentinels so callers can
// classify with errors.Is.
var (
	// ErrNotFound marks a URL that does not exist. Terminal, never retried.
	ErrNotFound = errors.New("document not found")

	// ErrBlocked marks a page that stayed behind an anti-bot challenge for
	// the whole wait budget, or a forbidden response that survived identity
	// rotation. Terminal for that page; pagination advances past it.
	ErrBlocked = errors.New("blocked by anti-bot challenge")

	// ErrTimeout marks a per-request deadline that elapsed.
	ErrTimeout = errors.New("acquisition timed out")

	// ErrTransport marks a transient transport failure that exhausted its
	// retry budget.
	ErrTransport = errors.New("transport error")

	// ErrSessionUnavailable means no browser could be attached or launched.
	// Fatal for the whole source.
	ErrSessionUnavailable = errors.New("no browser session available")
)
