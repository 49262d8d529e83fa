package instagram

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UUIDs is the per-device identity Instagram expects to stay stable across
// requests from the same install.
type UUIDs struct {
	PhoneID         string `json:"phone_id"`
	AdvertisingID   string `json:"advertising_id"`
	ClientSessionID string `json:"client_session_id"`
}

// Settings is the serializable client state: device identity, user agent,
// cookies, and the logged-in user. This is the opaque blob the session
// store persists between runs.
type Settings struct {
	UUIDs     UUIDs             `json:"uuids"`
	DeviceID  string            `json:"device_id"`
	UserAgent string            `json:"user_agent"`
	UserID    int64             `json:"user_id"`
	Username  string            `json:"username"`
	Cookies   map[string]string `json:"cookies"`
	CreatedAt time.Time         `json:"created_at"`
}

// newSettings builds a fresh device identity
func newSettings(userAgent string) Settings {
	return Settings{
		UUIDs: UUIDs{
			PhoneID:         uuid.NewString(),
			AdvertisingID:   uuid.NewString(),
			ClientSessionID: uuid.NewString(),
		},
		DeviceID:  newAndroidDeviceID(),
		UserAgent: userAgent,
		Cookies:   make(map[string]string),
		CreatedAt: time.Now(),
	}
}

// newAndroidDeviceID derives an android-style device id
func newAndroidDeviceID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("android-%s", raw[:16])
}

// marshalSettings serializes settings for the session store
func marshalSettings(s Settings) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

// unmarshalSettings restores settings from a session blob
func unmarshalSettings(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if s.Cookies == nil {
		s.Cookies = make(map[string]string)
	}
	return s, nil
}
