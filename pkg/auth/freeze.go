package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"igmonthly/pkg/config"
	"igmonthly/pkg/logger"
)

// Freeze records a per-account cooldown after a recoverable failure.
// An indefinite freeze never expires and must be cleared manually.
type Freeze struct {
	Username   string    `json:"username"`
	Reason     string    `json:"reason"`
	Until      time.Time `json:"until,omitempty"`
	Indefinite bool      `json:"indefinite,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the cooldown has passed. Indefinite freezes
// never expire.
func (f *Freeze) Expired(now time.Time) bool {
	if f.Indefinite {
		return false
	}
	return !now.Before(f.Until)
}

// FreezeStore persists freezes as freeze_<username>.json files in the
// session directory so cooldowns survive process restarts.
type FreezeStore struct {
	dir string
	log logger.Logger
}

// NewFreezeStore creates the store, making the directory if needed.
func NewFreezeStore(cfg *config.SessionConfig) (*FreezeStore, error) {
	if err := os.MkdirAll(cfg.Directory, 0700); err != nil {
		return nil, fmt.Errorf("failed to create freeze directory: %w", err)
	}
	return &FreezeStore{
		dir: cfg.Directory,
		log: logger.GetLogger(),
	}, nil
}

// Path returns the freeze file path for a username.
func (s *FreezeStore) Path(username string) string {
	return filepath.Join(s.dir, fmt.Sprintf("freeze_%s.json", username))
}

// Set records a cooldown of the given duration starting now.
func (s *FreezeStore) Set(username, reason string, d time.Duration) error {
	return s.write(&Freeze{
		Username:  username,
		Reason:    reason,
		Until:     time.Now().Add(d),
		CreatedAt: time.Now(),
	})
}

// SetIndefinite records a cooldown that only auth unfreeze can clear.
func (s *FreezeStore) SetIndefinite(username, reason string) error {
	return s.write(&Freeze{
		Username:   username,
		Reason:     reason,
		Indefinite: true,
		CreatedAt:  time.Now(),
	})
}

func (s *FreezeStore) write(f *Freeze) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal freeze: %w", err)
	}
	if err := os.WriteFile(s.Path(f.Username), data, 0600); err != nil {
		return fmt.Errorf("failed to write freeze file: %w", err)
	}
	s.log.WarnWithFields("Account frozen", map[string]interface{}{
		"username":   f.Username,
		"reason":     f.Reason,
		"until":      f.Until,
		"indefinite": f.Indefinite,
	})
	return nil
}

// Get returns the stored freeze for a username, expired or not.
// A missing file returns (nil, nil).
func (s *FreezeStore) Get(username string) (*Freeze, error) {
	data, err := os.ReadFile(s.Path(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read freeze file: %w", err)
	}
	var f Freeze
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse freeze file: %w", err)
	}
	return &f, nil
}

// Active returns the freeze currently in effect, or nil. Expiry is
// implicit, a freeze whose until has passed is ignored but kept on disk
// for auth status inspection.
func (s *FreezeStore) Active(username string) (*Freeze, error) {
	f, err := s.Get(username)
	if err != nil {
		return nil, err
	}
	if f == nil || f.Expired(time.Now()) {
		return nil, nil
	}
	return f, nil
}

// Clear removes the freeze file. Clearing a missing freeze is a no-op.
func (s *FreezeStore) Clear(username string) error {
	err := os.Remove(s.Path(username))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear freeze: %w", err)
	}
	return nil
}
