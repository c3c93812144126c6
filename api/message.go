package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DefaultNetworkMessage is surfaced for transport failures.
const DefaultNetworkMessage = "Network error"

// Message derives the human readable text for err. HTTP failures prefer a
// non-empty "message", then "error", string field of a JSON body and fall
// back to "Request failed (<status>)".
func Message(err error, networkMessage string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if networkMessage == "" {
			return DefaultNetworkMessage
		}
		return networkMessage
	}
	return err.Error()
}

func messageFromBody(status int, body []byte) string {
	var fields struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &fields) == nil {
		if s, ok := fields.Message.(string); ok && s != "" {
			return s
		}
		if s, ok := fields.Error.(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("Request failed (%d)", status)
}
