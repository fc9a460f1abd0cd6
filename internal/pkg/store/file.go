package store

import (
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/sasha-s/go-deadlock"

	"github.com/mcvid/mcvid/internal/pkg/utils/errors"
)

// File is a Store backed by a JSON file on disk.
// Writes are atomic, a temporary file is written first and then renamed.
type File struct {
	lock *deadlock.Mutex
	path string
}

type fileContent struct {
	VisitorID           string `json:"visitorId,omitempty"`
	SyncedAdvertisingID string `json:"syncedAdvertisingId,omitempty"`
}

func NewFile(path string) *File {
	return &File{lock: &deadlock.Mutex{}, path: path}
}

func (s *File) Get() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	content, err := s.read()
	if err != nil {
		return "", err
	}
	return content.VisitorID, nil
}

func (s *File) Set(visitorID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	content, err := s.read()
	if err != nil {
		return err
	}
	content.VisitorID = visitorID
	return s.write(content)
}

func (s *File) SyncedAdvertisingID() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	content, err := s.read()
	if err != nil {
		return "", err
	}
	// No advertising ID without a stored visitor ID
	if content.VisitorID == "" {
		return "", nil
	}
	return content.SyncedAdvertisingID, nil
}

func (s *File) SetSyncedAdvertisingID(advertisingID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	content, err := s.read()
	if err != nil {
		return err
	}
	content.SyncedAdvertisingID = advertisingID
	return s.write(content)
}

func (s *File) Delete() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.PrefixErrorf(err, `cannot delete store file "%s"`, s.path)
	}
	return nil
}

func (s *File) read() (*fileContent, error) {
	content := &fileContent{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return content, nil
		}
		return nil, errors.PrefixErrorf(err, `cannot read store file "%s"`, s.path)
	}
	if err := jsoniter.Unmarshal(data, content); err != nil {
		return nil, errors.PrefixErrorf(err, `cannot parse store file "%s"`, s.path)
	}
	return content, nil
}

func (s *File) write(content *fileContent) error {
	data, err := jsoniter.Marshal(content)
	if err != nil {
		return errors.PrefixError(err, "cannot encode store content")
	}

	tempPath := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.PrefixErrorf(err, `cannot create store directory for "%s"`, s.path)
	}
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return errors.PrefixErrorf(err, `cannot write store file "%s"`, tempPath)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		return errors.PrefixErrorf(err, `cannot replace store file "%s"`, s.path)
	}
	return nil
}
