package store

import (
	"github.com/sasha-s/go-deadlock"
)

// Memory is an in-process Store, for tests and ephemeral use.
type Memory struct {
	lock                *deadlock.RWMutex
	visitorID           string
	syncedAdvertisingID string
}

func NewMemory() *Memory {
	return &Memory{lock: &deadlock.RWMutex{}}
}

func (s *Memory) Get() (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.visitorID, nil
}

func (s *Memory) Set(visitorID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.visitorID = visitorID
	return nil
}

func (s *Memory) SyncedAdvertisingID() (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.visitorID == "" {
		return "", nil
	}
	return s.syncedAdvertisingID, nil
}

func (s *Memory) SetSyncedAdvertisingID(advertisingID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.syncedAdvertisingID = advertisingID
	return nil
}

func (s *Memory) Delete() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.visitorID = ""
	s.syncedAdvertisingID = ""
	return nil
}
