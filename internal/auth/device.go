package auth

import "net/http"

const (
	deviceCookieName   = "device_token"
	deviceCookieMaxAge = 365 * 24 * 60 * 60 // ~1 year
)

// SetDeviceCookie pins the device token to the browser as a long-lived
// cookie. Strict same-site and http-only: the token identifies the device, so
// it must never be readable by scripts or sent cross-site.
func (sm *SessionManager) SetDeviceCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     deviceCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   deviceCookieMaxAge,
		Secure:   sm.isSecure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// DeviceToken returns the device token presented by the request, or "" when
// no device cookie was sent.
func DeviceToken(r *http.Request) string {
	cookie, err := r.Cookie(deviceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
