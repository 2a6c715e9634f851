package relay

import (
	"net/http"
	"strings"
	"time"

	"github.com/minus-twelve/relay/types"
)

// ParseCookieHeader splits a Cookie request header of "name=value" pairs
// joined by "; ". Pairs without '=' are skipped; the first occurrence of a
// name wins.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		if _, seen := cookies[name]; seen {
			continue
		}
		cookies[name] = strings.Trim(value, `"`)
	}
	return cookies
}

// SetCookie writes the session cookie. A cookie whose expiry has passed is
// written with MaxAge -1 so the client drops it.
func SetCookie(w http.ResponseWriter, c types.Cookie, secure bool) {
	cookie := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     "/",
		Expires:  c.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !c.ExpiresAt.After(time.Now()) {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
