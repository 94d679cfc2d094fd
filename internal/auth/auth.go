package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// TokenTTL is how long an issued token stays valid. Tokens are stateless and
// never revoked; compromise of the secret grants access until natural expiry.
const TokenTTL = 7 * 24 * time.Hour

// ErrUnauthorized is returned when login credentials do not match the
// configured admin identity.
var ErrUnauthorized = errors.New("auth: invalid credentials")

// Authenticator issues and verifies the signed tokens gating admin writes.
// Verification is fully recomputable from the token, the shared secret and
// the current time; there is no server-side session state.
type Authenticator interface {
	Issue(username, password string) (string, error)
	Verify(token string, now time.Time) bool
}

// HMACAuthenticator signs tokens of the form principal.issued_at.signature,
// where signature is hex HMAC-SHA256 over "principal:issued_at".
type HMACAuthenticator struct {
	secret   []byte
	username string
	password string
	now      func() time.Time
}

var _ Authenticator = (*HMACAuthenticator)(nil)

// NewHMACAuthenticator builds an authenticator for the single configured
// admin identity.
func NewHMACAuthenticator(secret, username, password string) *HMACAuthenticator {
	if secret == "" {
		panic("auth: signing secret cannot be empty")
	}
	if username == "" {
		panic("auth: admin username cannot be empty")
	}
	return &HMACAuthenticator{
		secret:   []byte(secret),
		username: username,
		password: password,
		now:      time.Now,
	}
}

// Issue returns a fresh token when the credentials match the admin identity,
// ErrUnauthorized otherwise.
func (a *HMACAuthenticator) Issue(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK {
		return "", ErrUnauthorized
	}
	ts := strconv.FormatInt(a.now().UTC().Unix(), 10)
	return username + "." + ts + "." + a.sign(username, ts), nil
}

// Verify recomputes the signature and checks freshness. Malformed tokens,
// signature mismatches and tokens issued TokenTTL or more before now are all
// rejected.
func (a *HMACAuthenticator) Verify(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	principal, ts, sig := parts[0], parts[1], parts[2]

	expected := a.sign(principal, ts)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return false
	}

	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	return now.Sub(time.Unix(issued, 0)) < TokenTTL
}

func (a *HMACAuthenticator) sign(principal, ts string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(principal + ":" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
