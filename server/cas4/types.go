package cas4

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// GraphQLRequest is the body of every call to the query/mutation endpoint
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse is the envelope returned by the endpoint
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is one entry of the errors array
type GraphQLError struct {
	Message string `json:"message"`
}

// FlexibleID accepts IDs encoded either as JSON numbers or strings
type FlexibleID string

// UnmarshalJSON implements custom JSON unmarshaling for FlexibleID
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*f = FlexibleID(n.String())
	return nil
}

// UnixTime is a timestamp sent as unix seconds, either as a JSON number or a
// numeric string. RFC 3339 strings are accepted as well.
type UnixTime struct {
	time.Time
}

// UnmarshalJSON implements custom JSON unmarshaling for UnixTime
func (u *UnixTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		u.Time = time.Time{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			u.Time = time.Time{}
			return nil
		}
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		whole := int64(seconds)
		nanos := int64((seconds - float64(whole)) * float64(time.Second))
		u.Time = time.Unix(whole, nanos).UTC()
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", raw)
	}
	u.Time = parsed.UTC()
	return nil
}

// LoginPayload is the result of the login mutation
type LoginPayload struct {
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	UserID      FlexibleID `json:"userId"`
}

// AlertPayload is an alert as returned by the server. Older deployments send
// extendedArea, newer ones areaLevel2 and areaLevel3.
type AlertPayload struct {
	ID           FlexibleID `json:"id"`
	UserID       FlexibleID `json:"userId"`
	CreatedAt    UnixTime   `json:"createdAt"`
	Area         string     `json:"area"`
	ExtendedArea string     `json:"extendedArea"`
	AreaLevel2   string     `json:"areaLevel2"`
	AreaLevel3   string     `json:"areaLevel3"`
	Level        string     `json:"level"`
	Text1        string     `json:"text1"`
	Text2        string     `json:"text2"`
	Text3        string     `json:"text3"`
	ReachedUsers int        `json:"reachedUsers"`
}

// PositionPayload is the position a notification was raised for
type PositionPayload struct {
	ID             FlexibleID `json:"id"`
	Latitude       float64    `json:"latitude"`
	Longitude      float64    `json:"longitude"`
	MovingActivity string     `json:"movingActivity"`
}

// NotificationPayload is a notification as returned by the server. The
// position arrives either nested or flattened onto the notification.
type NotificationPayload struct {
	ID             FlexibleID       `json:"id"`
	CreatedAt      UnixTime         `json:"createdAt"`
	Level          string           `json:"level"`
	Seen           bool             `json:"seen"`
	Alert          *AlertPayload    `json:"alert"`
	Position       *PositionPayload `json:"position"`
	Latitude       float64          `json:"latitude"`
	Longitude      float64          `json:"longitude"`
	MovingActivity string           `json:"movingActivity"`
}

// NotificationsData is the data member of a notifications query
type NotificationsData struct {
	Notifications []NotificationPayload `json:"notifications"`
}

// AlertsData is the data member of an alerts query
type AlertsData struct {
	Alerts []AlertPayload `json:"alerts"`
}

// LoginData is the data member of the login mutation
type LoginData struct {
	Login *LoginPayload `json:"login"`
}

// TelemetryRequest is the body posted to the position endpoint
type TelemetryRequest struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Login          string  `json:"login"`
	UID            string  `json:"uid"`
	MovingActivity string  `json:"movingActivity"`
}
