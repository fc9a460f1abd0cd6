// Package store persists the visitor ID and the last synced advertising ID
// between process restarts.
package store

// Store is the persistence contract used by the resolver.
// An empty string means the value is not stored.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored visitor ID.
	Get() (string, error)
	// Set persists the visitor ID.
	Set(visitorID string) error
	// SyncedAdvertisingID returns the last synced advertising ID.
	// It returns an empty value if no visitor ID is stored at all,
	// or if no advertising ID has been synced yet.
	SyncedAdvertisingID() (string, error)
	// SetSyncedAdvertisingID persists the last synced advertising ID.
	// Call it only after a successful ID sync.
	SetSyncedAdvertisingID(advertisingID string) error
	// Delete clears both values.
	Delete() error
}
