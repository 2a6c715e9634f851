package relay

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/minus-twelve/relay/types"
)

func TestParseCookieHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{"empty", "", map[string]string{}},
		{"single", "sessionId=abc", map[string]string{"sessionId": "abc"}},
		{"several", "a=1; sessionId=abc;b=2", map[string]string{"a": "1", "sessionId": "abc", "b": "2"}},
		{"first wins", "sessionId=one; sessionId=two", map[string]string{"sessionId": "one"}},
		{"quoted", `sessionId="abc"`, map[string]string{"sessionId": "abc"}},
		{"value with equals", "token=a=b", map[string]string{"token": "a=b"}},
		{"junk skipped", "junk; =nope; ok=1", map[string]string{"ok": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCookieHeader(tt.header)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseCookieHeader(%q) = %v, want %v", tt.header, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseCookieHeader(%q)[%q] = %q, want %q", tt.header, k, got[k], v)
				}
			}
		})
	}
}

func TestSetCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, types.Cookie{
		Name:      "sessionId",
		Value:     "abc",
		ExpiresAt: time.Now().Add(time.Hour),
	}, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != "sessionId" || c.Value != "abc" {
		t.Errorf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", c)
	}
	if c.MaxAge != 0 {
		t.Errorf("MaxAge = %d, want 0 for a live cookie", c.MaxAge)
	}
}

func TestSetCookieExpired(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, types.Cookie{
		Name:      "sessionId",
		Value:     "abc",
		ExpiresAt: time.Now().Add(-time.Second),
	}, false)

	c := rec.Result().Cookies()[0]
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative for an expired cookie", c.MaxAge)
	}
	if c.Secure {
		t.Error("Secure set without being asked")
	}
}
