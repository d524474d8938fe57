package clickgate

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultVisitorCookie é o cookie que identifica o visitante entre requests.
const DefaultVisitorCookie = "cg_vid"

type KeyFunc func(r *http.Request) string

// DefaultKeyFunc identifica o visitante, nesta ordem: cookie de visitante, header
// configurado, primeiro IP do X-Forwarded-For (se confiável), host do RemoteAddr.
func DefaultKeyFunc(cookieName, keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if cookieName != "" {
			if c, err := r.Cookie(cookieName); err == nil {
				if v := strings.TrimSpace(c.Value); v != "" {
					return v
				}
			}
		}

		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				parts := strings.Split(xff, ",")
				if len(parts) > 0 {
					ip := strings.TrimSpace(parts[0])
					if ip != "" {
						return ip
					}
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// ensureVisitorCookie emite o cookie de visitante quando ele ainda não existe e
// retorna o id que deve ser usado como chave neste request.
func ensureVisitorCookie(w http.ResponseWriter, r *http.Request, name string, secure bool) (string, bool) {
	if name == "" {
		return "", false
	}
	if c, err := r.Cookie(name); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), false
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}
