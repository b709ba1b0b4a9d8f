package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnavailable  = errors.New("gateway unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadResponse  = errors.New("malformed gateway response")
)

// APIError is a non-2xx answer from the gateway. Detail holds the most
// useful human-readable message found in the body, if any.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("gateway returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Detail)
}

// Is makes any 401 match ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Detail extracts the server-provided detail from err, if err carries one.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

const maxDetailLen = 200

// parseDetail understands the error shapes the backend produces:
// {"detail": "..."}, {"error": "..."} and field errors such as
// {"username": ["already exists"]}. Anything else is returned as text.
func parseDetail(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return truncate(text)
	}

	for _, key := range []string{"detail", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			return fmt.Sprintf("%s: %s", k, v)
		case []any:
			if len(v) > 0 {
				return fmt.Sprintf("%s: %v", k, v[0])
			}
		}
	}
	return truncate(text)
}

// truncate cuts s to at most maxDetailLen bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	cut := maxDetailLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
