package port

import "context"

// FileStore persists uploaded file content and resolves locators. Locators
// are opaque to everything above the storage layer.
type FileStore interface {
	// Save stores content under a generated locator and returns it.
	Save(name string, content []byte) (locator string, err error)

	// Remove deletes the stored file for a locator. Removing an unknown
	// locator is not an error.
	Remove(locator string) error
}

// MailSender delivers a rendered notification. Implementations must not be
// relied on for lifecycle correctness: send failures are recorded and
// surfaced, never retried implicitly.
type MailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
