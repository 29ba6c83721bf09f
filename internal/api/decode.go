package api

import (
	"bytes"
	"encoding/json"
	"errors"
)

// decodeClaims accepts ["a", "b"] or {"claims": ["a", "b"]}
func decodeClaims(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("request body must list claims")
	}

	var list []string
	if body[0] == '[' {
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, errors.New("claims must be a JSON array of strings")
		}
		return list, nil
	}

	var wrapped struct {
		Claims []string `json:"claims"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, errors.New("claims must be a JSON array of strings")
	}
	return wrapped.Claims, nil
}
