package cas4

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattermost/mattermost/server/public/plugin"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

const (
	// CredentialKeyPrefix starts every stored credential key
	CredentialKeyPrefix = "session_"

	credentialKeySuffix = "_credentials"
)

// CredentialKey returns the KV key holding the credentials of a Mattermost user.
func CredentialKey(mattermostUserID string) string {
	return fmt.Sprintf("%s%s%s", CredentialKeyPrefix, mattermostUserID, credentialKeySuffix)
}

// UserIDFromCredentialKey extracts the Mattermost user ID from a credential key.
func UserIDFromCredentialKey(key string) (string, bool) {
	if !strings.HasPrefix(key, CredentialKeyPrefix) || !strings.HasSuffix(key, credentialKeySuffix) {
		return "", false
	}
	userID := strings.TrimSuffix(strings.TrimPrefix(key, CredentialKeyPrefix), credentialKeySuffix)
	if userID == "" {
		return "", false
	}
	return userID, true
}

// StateStore persists one user's CAS4 credentials in the Mattermost KV store.
// Token and server user ID are kept in a single record so they are written
// and removed together.
type StateStore struct {
	api              plugin.API
	mattermostUserID string
}

// NewStateStore creates a credential store for a specific Mattermost user
func NewStateStore(api plugin.API, mattermostUserID string) *StateStore {
	return &StateStore{
		api:              api,
		mattermostUserID: mattermostUserID,
	}
}

var _ hazard.CredentialStore = (*StateStore)(nil)

// Save stores the credential pair
func (s *StateStore) Save(creds hazard.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if appErr := s.api.KVSet(CredentialKey(s.mattermostUserID), data); appErr != nil {
		return fmt.Errorf("failed to save credentials: %w", appErr)
	}

	return nil
}

// Load retrieves the stored credential pair.
// Returns empty credentials if nothing is stored.
func (s *StateStore) Load() (hazard.Credentials, error) {
	data, appErr := s.api.KVGet(CredentialKey(s.mattermostUserID))
	if appErr != nil {
		return hazard.Credentials{}, fmt.Errorf("failed to get credentials: %w", appErr)
	}

	if data == nil {
		return hazard.Credentials{}, nil
	}

	var creds hazard.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return hazard.Credentials{}, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return creds, nil
}

// Clear removes the stored credential pair. Clearing an absent record succeeds.
func (s *StateStore) Clear() error {
	if appErr := s.api.KVDelete(CredentialKey(s.mattermostUserID)); appErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", appErr)
	}
	return nil
}
