package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
	"igmonthly/pkg/logger"
)

// Store persists serialized authentication state per account. The blob is
// opaque to the store; only the file's age decides validity.
type Store struct {
	dir    string
	ttl    time.Duration
	logger logger.Logger
}

// NewStore creates a session store rooted at the configured directory
func NewStore(cfg *config.SessionConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &Store{
		dir:    cfg.Directory,
		ttl:    cfg.TTL,
		logger: logger.GetLogger(),
	}, nil
}

// Path returns the session file path for a username
func (s *Store) Path(username string) string {
	return filepath.Join(s.dir, fmt.Sprintf("session_%s.json", username))
}

// TTL returns the age past which a session is treated as absent
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// IsValid reports whether a session file exists and is younger than the TTL
func (s *Store) IsValid(username string) bool {
	info, err := os.Stat(s.Path(username))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < s.ttl
}

// Load returns the session blob for a username. A missing or stale file is
// a session_expired error; an unreadable or empty one is session_corrupt.
func (s *Store) Load(username string) ([]byte, error) {
	path := s.Path(username)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Newf(errs.KindSessionExpired, "no session for %s", username)
		}
		return nil, errs.Newf(errs.KindSessionCorrupt, "failed to stat session file: %v", err)
	}

	if age := time.Since(info.ModTime()); age >= s.ttl {
		logger.LogSessionEvent(username, "stale")
		return nil, errs.Newf(errs.KindSessionExpired, "session for %s is %s old", username, age.Round(time.Second))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Newf(errs.KindSessionCorrupt, "failed to read session file: %v", err)
	}
	if len(data) == 0 {
		return nil, errs.Newf(errs.KindSessionCorrupt, "session file for %s is empty", username)
	}

	logger.LogSessionEvent(username, "loaded")
	return data, nil
}

// Save writes the session blob atomically. The file carries cookies, so it
// is created private to the user.
func (s *Store) Save(username string, blob []byte) error {
	path := s.Path(username)

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temporary session file: %w", err)
	}

	if _, err := file.Write(blob); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync session file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	logger.LogSessionEvent(username, "saved")
	return nil
}

// EvictIfExpired deletes the session file once its age has reached the TTL.
// Called opportunistically at the end of a run; there is no background
// eviction.
func (s *Store) EvictIfExpired(username string) error {
	path := s.Path(username)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat session file: %w", err)
	}

	if time.Since(info.ModTime()) < s.ttl {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove expired session file: %w", err)
	}

	s.logger.InfoWithFields(fmt.Sprintf("Old session file %s removed.", path), map[string]interface{}{
		"username": username,
	})
	return nil
}
