package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(secret string, issuedAt time.Time) *HMACAuthenticator {
	a := NewHMACAuthenticator(secret, "admin", "curesight")
	a.now = func() time.Time { return issuedAt }
	return a
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator("topsecret", issued)

	token, err := a.Issue("admin", "curesight")
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)
	assert.True(t, strings.HasPrefix(token, "admin."))

	assert.True(t, a.Verify(token, issued))
	assert.True(t, a.Verify(token, issued.Add(TokenTTL-time.Second)))
}

func TestVerifyExpiry(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator("topsecret", issued)
	token, err := a.Issue("admin", "curesight")
	require.NoError(t, err)

	assert.False(t, a.Verify(token, issued.Add(TokenTTL)), "expires exactly at the window edge")
	assert.False(t, a.Verify(token, issued.Add(30*24*time.Hour)))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issued := time.Now()
	a := newTestAuthenticator("secret-a", issued)
	b := newTestAuthenticator("secret-b", issued)

	token, err := a.Issue("admin", "curesight")
	require.NoError(t, err)

	assert.False(t, b.Verify(token, issued))
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	a := newTestAuthenticator("topsecret", time.Now())
	token, err := a.Issue("admin", "curesight")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"two fields", parts[0] + "." + parts[1]},
		{"four fields", token + ".extra"},
		{"tampered principal", "root." + parts[1] + "." + parts[2]},
		{"tampered signature", parts[0] + "." + parts[1] + "." + strings.Repeat("0", 64)},
		{"non-numeric timestamp", signedWithTimestamp(a, "admin", "later")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, a.Verify(tt.token, time.Now()))
		})
	}
}

// signedWithTimestamp builds a correctly signed token around an arbitrary
// timestamp field.
func signedWithTimestamp(a *HMACAuthenticator, principal, ts string) string {
	return principal + "." + ts + "." + a.sign(principal, ts)
}

func TestIssueRejectsBadCredentials(t *testing.T) {
	a := newTestAuthenticator("topsecret", time.Now())

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong username", "root", "curesight"},
		{"both wrong", "root", "nope"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Issue(tt.username, tt.password)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestNewHMACAuthenticatorPanics(t *testing.T) {
	assert.Panics(t, func() { NewHMACAuthenticator("", "admin", "pw") })
	assert.Panics(t, func() { NewHMACAuthenticator("secret", "", "pw") })
}
