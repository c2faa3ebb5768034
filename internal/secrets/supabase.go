package secrets

import (
	"errors"
	"net/url"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the tracker's secrets in the OS keychain.
	KeyringService = "orbit-tracker"
)

var ErrNoSupabaseKey = errors.New("supabase API key not found (set SUPABASE_ANON_KEY or store it in the keychain)")

// SupabaseKeyringAccount names the keychain entry for one project URL.
func SupabaseKeyringAccount(projectURL string) string {
	host := strings.TrimSpace(projectURL)
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}
	return "supabase:" + strings.ToLower(host)
}

// SupabaseKey prefers the key from the environment and falls back to the
// keychain.
func SupabaseKey(projectURL, fromEnv string) (string, error) {
	if k := strings.TrimSpace(fromEnv); k != "" {
		return k, nil
	}
	if strings.TrimSpace(projectURL) == "" {
		return "", ErrNoSupabaseKey
	}
	k, err := keyring.Get(KeyringService, SupabaseKeyringAccount(projectURL))
	if err == nil && strings.TrimSpace(k) != "" {
		return strings.TrimSpace(k), nil
	}
	return "", ErrNoSupabaseKey
}

func SetSupabaseKey(projectURL, key string) error {
	if strings.TrimSpace(projectURL) == "" {
		return errors.New("supabase url is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, SupabaseKeyringAccount(projectURL), strings.TrimSpace(key))
}

func DeleteSupabaseKey(projectURL string) error {
	if strings.TrimSpace(projectURL) == "" {
		return errors.New("supabase url is empty")
	}
	return keyring.Delete(KeyringService, SupabaseKeyringAccount(projectURL))
}
