package clickgate

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc_PrefersVisitorCookie(t *testing.T) {
	fn := DefaultKeyFunc(DefaultVisitorCookie, "X-Client", true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Client", "client-123")
	r.AddCookie(&http.Cookie{Name: DefaultVisitorCookie, Value: "vid-1"})

	if got := fn(r); got != "vid-1" {
		t.Fatalf("expected cookie key, got %q", got)
	}
}

func TestDefaultKeyFunc_PrefersHeaderWhenSet(t *testing.T) {
	fn := DefaultKeyFunc("", "X-Client", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.Header.Set("X-Client", " client-123 ")

	if got := fn(r); got != "client-123" {
		t.Fatalf("expected header key, got %q", got)
	}
}

func TestDefaultKeyFunc_TrustXForwardedForUsesFirstIP(t *testing.T) {
	fn := DefaultKeyFunc("", "", true)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")

	if got := fn(r); got != "1.2.3.4" {
		t.Fatalf("expected first XFF ip, got %q", got)
	}
}

func TestDefaultKeyFunc_FallbacksToRemoteAddrHost(t *testing.T) {
	fn := DefaultKeyFunc(DefaultVisitorCookie, "", false)

	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r.RemoteAddr = "10.0.0.9:5555"

	if got := fn(r); got != "10.0.0.9" {
		t.Fatalf("expected remote host, got %q", got)
	}
}

func TestEnsureVisitorCookie_IssuesOnlyWhenMissing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	w := httptest.NewRecorder()

	id, issued := ensureVisitorCookie(w, r, DefaultVisitorCookie, false)
	if !issued || id == "" {
		t.Fatalf("expected a new visitor id, got %q issued=%v", id, issued)
	}
	if got := w.Result().Cookies(); len(got) != 1 || got[0].Value != id {
		t.Fatalf("expected Set-Cookie with visitor id, got %v", got)
	}

	r2 := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	r2.AddCookie(&http.Cookie{Name: DefaultVisitorCookie, Value: id})
	w2 := httptest.NewRecorder()
	again, issued := ensureVisitorCookie(w2, r2, DefaultVisitorCookie, false)
	if issued || again != id {
		t.Fatalf("expected existing id %q, got %q issued=%v", id, again, issued)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Fatalf("expected no Set-Cookie for known visitor")
	}
}
