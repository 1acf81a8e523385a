package auth

import (
	"context"
	"encoding/json"
	"os"
)

// Environment variables the EnvSource reads, in order of preference.
// SUBSTACK_COOKIES holds a JSON object of cookie name to value;
// SUBSTACK_SID holds just the session cookie value.
const (
	EnvCookies = "SUBSTACK_COOKIES"
	EnvSession = "SUBSTACK_SID"
)

// EnvSource reads cookies from environment variables.
type EnvSource struct{}

// Cookies returns Substack cookies from the environment.
func (EnvSource) Cookies(_ context.Context) (map[string]string, error) {
	if raw := os.Getenv(EnvCookies); raw != "" {
		var cookies map[string]string
		if err := json.Unmarshal([]byte(raw), &cookies); err == nil && len(cookies) > 0 {
			return cookies, nil
		}
		// Malformed JSON falls through to the plain session variable.
	}

	if sid := os.Getenv(EnvSession); sid != "" {
		return map[string]string{SessionCookie: sid}, nil
	}

	return nil, nil //nolint:nilnil // no env vars set is not an error
}
