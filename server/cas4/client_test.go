package cas4

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

func newGraphQLServer(t *testing.T, handler func(t *testing.T, r *http.Request, req GraphQLRequest) (int, string)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req GraphQLRequest
		require.NoError(t, json.Unmarshal(body, &req))

		status, response := handler(t, r, req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAPIClient_Login(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, r *http.Request, req GraphQLRequest) (int, string) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Contains(t, req.Query, "login(input: $input)")

			input := req.Variables["input"].(map[string]any)
			assert.Equal(t, "user@example.com", input["email"])
			assert.Equal(t, "secret", input["password"])

			return http.StatusOK, `{"data":{"login":{"accessToken":"tok","tokenType":"Bearer","userId":7}}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		creds, err := client.Login(context.Background(), "user@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, hazard.Credentials{Token: "tok", UserID: "7"}, creds)
	})

	t.Run("server error messages are returned", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusOK, `{"data":null,"errors":[{"message":"Invalid email or password"}]}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.Login(context.Background(), "user@example.com", "wrong")
		require.Error(t, err)

		var apiErr *hazard.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, []string{"Invalid email or password"}, apiErr.Messages)
		assert.False(t, errors.Is(err, hazard.ErrUnauthorized))
	})

	t.Run("missing token in response", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusOK, `{"data":{"login":{"accessToken":"","userId":7}}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.Login(context.Background(), "user@example.com", "secret")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing token")
	})
}

func TestAPIClient_UnseenNotifications(t *testing.T) {
	t.Run("sends bearer token and decodes list", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, r *http.Request, req GraphQLRequest) (int, string) {
			assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
			assert.Contains(t, req.Query, "notifications(seen: false)")
			return http.StatusOK, `{"data":{"notifications":[
				{"id":1,"createdAt":100,"level":"ONE","seen":false,"alert":{"id":3,"text1":"a","text2":"b","text3":"c"},"movingActivity":"STILL"},
				{"id":2,"createdAt":"200","level":"TWO","seen":false,"alert":{"id":4,"text1":"d","text2":"e","text3":"f"},"movingActivity":"IN_VEHICLE"}
			]}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		list, err := client.UnseenNotifications(context.Background(), testCreds)
		require.NoError(t, err)
		require.Len(t, list, 2)

		assert.Equal(t, "1", list[0].ID)
		assert.Equal(t, "2", list[1].ID)
		assert.Equal(t, int64(200), list[1].CreatedAt.Unix())
		assert.Equal(t, "e", list[1].Text())
		assert.Equal(t, hazard.ActivityInVehicle, list[1].Position.MovingActivity)
	})

	t.Run("HTTP 401 is an auth failure", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusUnauthorized, `{"errors":[{"message":"Unauthorized"}]}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.UnseenNotifications(context.Background(), testCreds)
		require.Error(t, err)
		assert.True(t, errors.Is(err, hazard.ErrUnauthorized))
	})

	t.Run("Unauthorized message in a 200 response is an auth failure", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusOK, `{"data":null,"errors":[{"message":"Unauthorized"}]}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.UnseenNotifications(context.Background(), testCreds)
		require.Error(t, err)
		assert.True(t, errors.Is(err, hazard.ErrUnauthorized))

		var apiErr *hazard.APIError
		assert.True(t, errors.As(err, &apiErr))
	})

	t.Run("unexpected status", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusInternalServerError, `oops`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.UnseenNotifications(context.Background(), testCreds)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected HTTP status 500")
		assert.False(t, errors.Is(err, hazard.ErrUnauthorized))
	})

	t.Run("null data", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusOK, `{"data":null}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.UnseenNotifications(context.Background(), testCreds)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no data")
	})
}

func TestAPIClient_Notification(t *testing.T) {
	t.Run("invalid id performs no request", func(t *testing.T) {
		var calls atomic.Int32
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			calls.Add(1)
			return http.StatusOK, `{"data":{"notifications":[]}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.Notification(context.Background(), testCreds, "1) { id } #")
		require.Error(t, err)
		assert.True(t, errors.Is(err, hazard.ErrInvalidID))

		err = client.MarkSeen(context.Background(), testCreds, "abc")
		assert.True(t, errors.Is(err, hazard.ErrInvalidID))

		_, err = client.Alert(context.Background(), testCreds, "")
		assert.True(t, errors.Is(err, hazard.ErrInvalidID))

		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, req GraphQLRequest) (int, string) {
			assert.Contains(t, req.Query, "notifications(id: 55)")
			return http.StatusOK, `{"data":{"notifications":[]}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		_, err := client.Notification(context.Background(), testCreds, "55")
		assert.True(t, errors.Is(err, hazard.ErrNotFound))
	})

	t.Run("detail with areas and flat position", func(t *testing.T) {
		server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, _ GraphQLRequest) (int, string) {
			return http.StatusOK, `{"data":{"notifications":[{
				"id":5,"createdAt":100,"level":"THREE","seen":false,
				"alert":{"id":3,"area":"POLYGON((11.0 44.0, 11.1 44.1, 11.2 44.0, 11.0 44.0))","areaLevel2":"","areaLevel3":"","text1":"a","text2":"b","text3":"c"},
				"latitude":44.05,"longitude":11.1,"movingActivity":"WALKING"
			}]}}`
		})

		client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
		n, err := client.Notification(context.Background(), testCreds, "5")
		require.NoError(t, err)

		assert.Equal(t, "c", n.Text())
		assert.Equal(t, []string{"POLYGON((11.0 44.0, 11.1 44.1, 11.2 44.0, 11.0 44.0))"}, n.Alert.Areas)
		assert.Equal(t, 44.05, n.Position.Coordinate.Latitude)
		assert.Equal(t, hazard.ActivityWalking, n.Position.MovingActivity)
	})
}

func TestAPIClient_MarkSeen(t *testing.T) {
	server := newGraphQLServer(t, func(t *testing.T, r *http.Request, req GraphQLRequest) (int, string) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Contains(t, req.Query, "notificationUpdate")

		input := req.Variables["input"].(map[string]any)
		assert.Equal(t, float64(12), input["id"])
		assert.Equal(t, true, input["seen"])

		return http.StatusOK, `{"data":{"notificationUpdate":{"id":12,"seen":true}}}`
	})

	client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
	require.NoError(t, client.MarkSeen(context.Background(), testCreds, "12"))
}

func TestAPIClient_Alerts(t *testing.T) {
	server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, req GraphQLRequest) (int, string) {
		if req.Query == alertsQuery {
			return http.StatusOK, `{"data":{"alerts":[{"id":1,"userId":2,"createdAt":100,"area":"POLYGON((1 2, 3 4, 1 2))","level":"ONE"}]}}`
		}
		return http.StatusOK, `{"data":{"alerts":[]}}`
	})

	client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})

	alerts, err := client.Alerts(context.Background(), testCreds)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "1", alerts[0].ID)
	assert.Equal(t, "2", alerts[0].UserID)

	_, err = client.Alert(context.Background(), testCreds, "9")
	assert.True(t, errors.Is(err, hazard.ErrNotFound))
}

func TestAPIClient_RegisterDevice(t *testing.T) {
	server := newGraphQLServer(t, func(t *testing.T, _ *http.Request, req GraphQLRequest) (int, string) {
		input := req.Variables["input"].(map[string]any)
		assert.Equal(t, "device-token", input["token"])
		return http.StatusOK, `{"data":{"registerDevice":{"id":7}}}`
	})

	client := NewAPIClient(server.URL, 5*time.Second, hazard.NopLogger{})
	require.NoError(t, client.RegisterDevice(context.Background(), testCreds, "device-token"))
}
