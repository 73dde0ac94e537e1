package dropinblog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a remote identifier. The API returns ids both as JSON strings and as
// numbers, so ID accepts either and keeps the textual form.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the textual id.
func (id ID) String() string {
	return string(id)
}

// Int64 returns the id as a number, for fields the API defines as numeric.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// Blog is a blog the authenticated account can manage.
type Blog struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Status is a post status defined for the account.
type Status struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// WebhookRequest registers a callback URL for a set of events.
type WebhookRequest struct {
	HookURL string `json:"hookUrl"`

	// Events is a JSON array serialized into a string. The API requires the
	// double encoding, e.g. "[\"post.published\"]".
	Events string `json:"events"`

	Source string `json:"source"`
}

// Webhook is the API's response to a webhook registration.
type Webhook struct {
	HookID ID `json:"hookId"`

	// Raw is the full response body.
	Raw json.RawMessage `json:"-"`
}

// EncodeEvents serializes event names into the string form the webhooks
// endpoint expects.
func EncodeEvents(events ...string) (string, error) {
	if events == nil {
		events = []string{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "", fmt.Errorf("failed to encode events: %w", err)
	}
	return string(b), nil
}
