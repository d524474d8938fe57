package clickgate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"click-gateway/middleware/clickgate/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieFlagStore_SetWritesClickLimitCookie(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &CookieFlagStore{Path: "/", Now: func() time.Time { return now }}

	r := httptest.NewRequest(http.MethodPost, "http://example/v1/click", nil)
	w := httptest.NewRecorder()
	ctx := withHTTP(context.Background(), w, r)

	require.NoError(t, s.Set(ctx, domain.FlagName, domain.FlagValue, 86400*time.Second))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "clickLimit", c.Name)
	assert.Equal(t, "true", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.Expires.Equal(now.Add(24*time.Hour)))
}

func TestCookieFlagStore_GetReadsRequestCookie(t *testing.T) {
	s := NewCookieFlagStore(false)

	r := httptest.NewRequest(http.MethodPost, "http://example/v1/load", nil)
	r.AddCookie(&http.Cookie{Name: domain.FlagName, Value: "true"})
	ctx := withHTTP(context.Background(), httptest.NewRecorder(), r)

	v, ok, err := s.Get(ctx, domain.FlagName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok, err = s.Get(withHTTP(context.Background(), nil, httptest.NewRequest(http.MethodGet, "/", nil)), domain.FlagName)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieFlagStore_OutsideRequestIsUnavailable(t *testing.T) {
	s := NewCookieFlagStore(false)

	_, _, err := s.Get(context.Background(), domain.FlagName)
	assert.True(t, errors.Is(err, domain.ErrFlagStoreUnavailable))
	assert.True(t, errors.Is(s.Set(context.Background(), domain.FlagName, "true", time.Hour), domain.ErrFlagStoreUnavailable))
}
