package cas4

import (
	"encoding/json"
	"testing"

	"github.com/mattermost/mattermost/server/public/model"
	"github.com/mattermost/mattermost/server/public/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

func TestCredentialKey(t *testing.T) {
	assert.Equal(t, "session_user123_credentials", CredentialKey("user123"))

	userID, ok := UserIDFromCredentialKey("session_user123_credentials")
	assert.True(t, ok)
	assert.Equal(t, "user123", userID)

	for _, key := range []string{"session__credentials", "backend_x_auth", "session_user123", "mmi_botid"} {
		_, ok := UserIDFromCredentialKey(key)
		assert.False(t, ok, key)
	}
}

func TestStateStore_Credentials(t *testing.T) {
	t.Run("save and load credentials", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		creds := hazard.Credentials{Token: "tok", UserID: "7"}
		expectedData, _ := json.Marshal(creds)

		api.On("KVSet", "session_user123_credentials", expectedData).Return(nil)
		require.NoError(t, store.Save(creds))

		api.On("KVGet", "session_user123_credentials").Return(expectedData, nil)
		loaded, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, creds, loaded)

		api.AssertExpectations(t)
	})

	t.Run("load when nothing stored", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		api.On("KVGet", "session_user123_credentials").Return(nil, nil)

		creds, err := store.Load()
		require.NoError(t, err)
		assert.False(t, creds.IsPresent())
		api.AssertExpectations(t)
	})

	t.Run("load with corrupted data", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		api.On("KVGet", "session_user123_credentials").Return([]byte("invalid json"), nil)

		_, err := store.Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal")
	})

	t.Run("load fails on KV error", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		api.On("KVGet", "session_user123_credentials").Return(nil, model.NewAppError("KVGet", "kv.error", nil, "boom", 500))

		_, err := store.Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get credentials")
	})

	t.Run("save fails on KV error", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		api.On("KVSet", "session_user123_credentials", mock.AnythingOfType("[]uint8")).Return(model.NewAppError("KVSet", "kv.error", nil, "boom", 500))

		err := store.Save(hazard.Credentials{Token: "tok", UserID: "7"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save credentials")
	})

	t.Run("clear removes the record", func(t *testing.T) {
		api := &plugintest.API{}
		store := NewStateStore(api, "user123")

		api.On("KVDelete", "session_user123_credentials").Return(nil)

		require.NoError(t, store.Clear())
		api.AssertExpectations(t)
	})
}
