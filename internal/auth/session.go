package auth

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	sessionCookieName = "session"
	sessionMaxAge     = 30 * 24 * 60 * 60 // 30 days
)

// SessionManager encodes the logged-in account into a signed, encrypted
// cookie. Sessions are independent from device bindings: logout clears the
// session and leaves the binding alone.
type SessionManager struct {
	sc       *securecookie.SecureCookie
	isSecure bool
}

// SessionData is the payload stored in the session cookie.
type SessionData struct {
	AccountID int64 `json:"account_id"`
	IssuedAt  int64 `json:"issued_at"`
}

// NewSessionManager reads hash/block keys from SESSION_HASH_KEY and
// SESSION_BLOCK_KEY (hex), generating throwaway keys when unset.
func NewSessionManager(isSecure bool) *SessionManager {
	sc := securecookie.New(
		keyFromEnv("SESSION_HASH_KEY", 32),
		keyFromEnv("SESSION_BLOCK_KEY", 32),
	)
	sc.MaxAge(sessionMaxAge)

	return &SessionManager{sc: sc, isSecure: isSecure}
}

func keyFromEnv(envVar string, length int) []byte {
	if keyHex := os.Getenv(envVar); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err == nil && len(key) >= length {
			return key[:length]
		}
		slog.Warn("invalid session key in env, generating random key", "var", envVar)
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	slog.Warn("session key not set, sessions won't survive restarts", "var", envVar)
	return key
}

// SetSession writes a session cookie for the given account.
func (sm *SessionManager) SetSession(w http.ResponseWriter, accountID int64) error {
	encoded, err := sm.sc.Encode(sessionCookieName, SessionData{
		AccountID: accountID,
		IssuedAt:  time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		Secure:   sm.isSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// GetSession reads and validates the session cookie, if any.
func (sm *SessionManager) GetSession(r *http.Request) (*SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, err
	}

	var data SessionData
	if err := sm.sc.Decode(sessionCookieName, cookie.Value, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ClearSession expires the session cookie.
func (sm *SessionManager) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   sm.isSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
