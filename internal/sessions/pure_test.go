package sessions

import (
	"strings"
	"testing"
)

func TestSessionKey_Deterministic(t *testing.T) {
	t.Parallel()

	token := "4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"

	key1 := sessionKey(token)
	key2 := sessionKey(token)

	if key1 != key2 {
		t.Error("Same token should produce same key")
	}
}

func TestSessionKey_HidesToken(t *testing.T) {
	t.Parallel()

	token := "4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"
	key := sessionKey(token)

	if !strings.HasPrefix(key, sessionKeyPrefix) {
		t.Errorf("expected prefix %q, got %s", sessionKeyPrefix, key)
	}
	if strings.Contains(key, token) {
		t.Error("raw token must not appear in the Redis key")
	}
}

func TestSessionKey_Different(t *testing.T) {
	t.Parallel()

	if sessionKey("token-a") == sessionKey("token-b") {
		t.Error("Different tokens should produce different keys")
	}
}

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	if hashIP("192.168.1.1") == hashIP("192.168.1.2") {
		t.Error("Different IPs should produce different hashes")
	}
}
