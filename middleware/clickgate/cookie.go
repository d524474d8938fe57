package clickgate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"click-gateway/middleware/clickgate/domain"
)

type httpPairKey struct{}

type httpPair struct {
	w http.ResponseWriter
	r *http.Request
}

// withHTTP coloca o par request/response no contexto para o CookieFlagStore.
func withHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) context.Context {
	return context.WithValue(ctx, httpPairKey{}, httpPair{w: w, r: r})
}

func httpFrom(ctx context.Context) (httpPair, bool) {
	p, ok := ctx.Value(httpPairKey{}).(httpPair)
	return p, ok && p.r != nil
}

// CookieFlagStore persiste o flag no próprio navegador do visitante:
// "clickLimit=true; expires=...; path=/".
//
// O request/response do momento viaja no contexto; fora de um request HTTP
// o store fica indisponível (o gate trata como fail-open / fail-silent).
type CookieFlagStore struct {
	Path   string
	Secure bool
	Now    func() time.Time
}

func NewCookieFlagStore(secure bool) *CookieFlagStore {
	return &CookieFlagStore{Path: "/", Secure: secure, Now: time.Now}
}

func (s *CookieFlagStore) Get(ctx context.Context, name string) (string, bool, error) {
	p, ok := httpFrom(ctx)
	if !ok {
		return "", false, fmt.Errorf("%w: no http request in context", domain.ErrFlagStoreUnavailable)
	}
	c, err := p.r.Cookie(name)
	if err != nil {
		return "", false, nil
	}
	return c.Value, true, nil
}

func (s *CookieFlagStore) Set(ctx context.Context, name, value string, ttl time.Duration) error {
	p, ok := httpFrom(ctx)
	if !ok || p.w == nil {
		return fmt.Errorf("%w: no http response in context", domain.ErrFlagStoreUnavailable)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	path := s.Path
	if path == "" {
		path = "/"
	}

	http.SetCookie(p.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  now().Add(ttl).UTC(),
		MaxAge:   int(ttl.Seconds()),
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
