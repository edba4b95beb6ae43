package cas4

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

const graphQLPath = "/graphql"

// APIClient talks to the CAS4 GraphQL endpoint
type APIClient struct {
	http   *resty.Client
	logger hazard.Logger
}

var _ hazard.Remote = (*APIClient)(nil)

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string, timeout time.Duration, logger hazard.Logger) *APIClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &APIClient{
		http:   client,
		logger: logger,
	}
}

// do posts one GraphQL request and decodes its data member into out
func (c *APIClient) do(ctx context.Context, token string, request GraphQLRequest, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(request)
	if token != "" {
		req.SetAuthToken(token)
	}

	resp, err := req.Post(graphQLPath)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}

	status := resp.StatusCode()
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w (HTTP %d)", hazard.ErrUnauthorized, status)
	}

	var envelope GraphQLResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		if status != http.StatusOK {
			return fmt.Errorf("unexpected HTTP status %d", status)
		}
		return fmt.Errorf("failed to parse graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return graphQLError(envelope.Errors)
	}

	if status != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", status)
	}

	if out == nil {
		return nil
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("graphql response has no data")
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse graphql data: %w", err)
	}

	return nil
}

// graphQLError converts the errors array. A message of "Unauthorized" is the
// server's way of rejecting a token inside a 200 response.
func graphQLError(errs []GraphQLError) error {
	apiErr := &hazard.APIError{Messages: make([]string, 0, len(errs))}
	unauthorized := false
	for _, e := range errs {
		apiErr.Messages = append(apiErr.Messages, e.Message)
		if strings.EqualFold(strings.TrimSpace(e.Message), "unauthorized") {
			unauthorized = true
		}
	}

	if unauthorized {
		return fmt.Errorf("%w: %w", hazard.ErrUnauthorized, apiErr)
	}
	return apiErr
}

// Login exchanges email and password for credentials
func (c *APIClient) Login(ctx context.Context, email, password string) (hazard.Credentials, error) {
	request := GraphQLRequest{
		Query: loginMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"email":    email,
				"password": password,
			},
		},
	}

	var data LoginData
	if err := c.do(ctx, "", request, &data); err != nil {
		return hazard.Credentials{}, err
	}

	if data.Login == nil || data.Login.AccessToken == "" || data.Login.UserID == "" {
		return hazard.Credentials{}, fmt.Errorf("login response missing token or user id")
	}

	c.logger.Debug("Logged in to CAS4 server", "userId", string(data.Login.UserID))

	return hazard.Credentials{
		Token:  data.Login.AccessToken,
		UserID: string(data.Login.UserID),
	}, nil
}

// RegisterDevice associates a push token with the authenticated user
func (c *APIClient) RegisterDevice(ctx context.Context, creds hazard.Credentials, token string) error {
	request := GraphQLRequest{
		Query: registerDeviceMutation,
		Variables: map[string]any{
			"input": map[string]any{"token": token},
		},
	}

	if err := c.do(ctx, creds.Token, request, nil); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// UnseenNotifications fetches the notifications not yet marked as seen
func (c *APIClient) UnseenNotifications(ctx context.Context, creds hazard.Credentials) ([]hazard.Notification, error) {
	var data NotificationsData
	if err := c.do(ctx, creds.Token, GraphQLRequest{Query: unseenNotificationsQuery}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch unseen notifications: %w", err)
	}

	c.logger.Debug("Fetched unseen notifications", "count", len(data.Notifications))

	return NormalizeNotifications(data.Notifications), nil
}

// Notifications fetches every notification of the user
func (c *APIClient) Notifications(ctx context.Context, creds hazard.Credentials) ([]hazard.Notification, error) {
	var data NotificationsData
	if err := c.do(ctx, creds.Token, GraphQLRequest{Query: notificationsQuery}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return NormalizeNotifications(data.Notifications), nil
}

// Notification fetches one notification with its alert areas.
// Returns hazard.ErrNotFound when the server has no such notification.
func (c *APIClient) Notification(ctx context.Context, creds hazard.Credentials, id string) (*hazard.Notification, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var data NotificationsData
	request := GraphQLRequest{Query: fmt.Sprintf(notificationDetailQuery, n)}
	if err := c.do(ctx, creds.Token, request, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch notification %d: %w", n, err)
	}

	if len(data.Notifications) == 0 {
		return nil, hazard.ErrNotFound
	}

	notification := NormalizeNotification(data.Notifications[0])
	return &notification, nil
}

// MarkSeen flags a notification as seen
func (c *APIClient) MarkSeen(ctx context.Context, creds hazard.Credentials, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}

	request := GraphQLRequest{
		Query: notificationUpdateMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"id":   n,
				"seen": true,
			},
		},
	}

	if err := c.do(ctx, creds.Token, request, nil); err != nil {
		return fmt.Errorf("failed to mark notification %d as seen: %w", n, err)
	}
	return nil
}

// Alerts fetches every alert visible to the user
func (c *APIClient) Alerts(ctx context.Context, creds hazard.Credentials) ([]hazard.Alert, error) {
	var data AlertsData
	if err := c.do(ctx, creds.Token, GraphQLRequest{Query: alertsQuery}, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	return NormalizeAlerts(data.Alerts), nil
}

// Alert fetches one alert with all of its areas.
// Returns hazard.ErrNotFound when the server has no such alert.
func (c *APIClient) Alert(ctx context.Context, creds hazard.Credentials, id string) (*hazard.Alert, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var data AlertsData
	request := GraphQLRequest{Query: fmt.Sprintf(alertDetailQuery, n)}
	if err := c.do(ctx, creds.Token, request, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch alert %d: %w", n, err)
	}

	if len(data.Alerts) == 0 {
		return nil, hazard.ErrNotFound
	}

	alert := NormalizeAlert(data.Alerts[0])
	return &alert, nil
}
