package gate

import (
	"net/http"
	"testing"
	"time"

	"github.com/duktw/duk/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestGate(now time.Time) *Gate {
	g := New(testSecret, false)
	g.now = func() time.Time { return now }

	return g
}

func protectedMapping() *mapping.Mapping {
	return &mapping.Mapping{Hash: "xyz999", Password: "1234"}
}

func TestCheck(t *testing.T) {
	now := time.Now()

	t.Run("public mapping passes without cookies", func(t *testing.T) {
		g := newTestGate(now)
		m := &mapping.Mapping{Hash: "pbQyTD"}

		assert.NoError(t, g.Check(m, ""))
	})

	t.Run("expired mapping fails regardless of password state", func(t *testing.T) {
		g := newTestGate(now)
		past := now.Add(-time.Minute)

		public := &mapping.Mapping{Hash: "pbQyTD", ExpiresAt: &past}
		assert.ErrorIs(t, g.Check(public, ""), ErrExpired)

		protected := protectedMapping()
		protected.ExpiresAt = &past
		assert.ErrorIs(t, g.Check(protected, ""), ErrExpired)
	})

	t.Run("protected mapping without cookie requires password", func(t *testing.T) {
		g := newTestGate(now)

		assert.ErrorIs(t, g.Check(protectedMapping(), ""), ErrPasswordRequired)
	})

	t.Run("valid cookie passes without re-prompting", func(t *testing.T) {
		g := newTestGate(now)
		m := protectedMapping()

		cookie, err := g.IssueCookie(m.Hash)
		require.NoError(t, err)

		assert.NoError(t, g.Check(m, cookie.String()))
	})

	t.Run("cookie for another hash is rejected", func(t *testing.T) {
		g := newTestGate(now)

		cookie, err := g.IssueCookie("otherHash")
		require.NoError(t, err)

		// Present the other hash's token under this hash's cookie name.
		forged := CookieName("xyz999") + "=" + cookie.Value

		assert.ErrorIs(t, g.Check(protectedMapping(), forged), ErrPasswordRequired)
	})

	t.Run("expired cookie is rejected", func(t *testing.T) {
		g := newTestGate(now)
		m := protectedMapping()

		cookie, err := g.IssueCookie(m.Hash)
		require.NoError(t, err)

		later := newTestGate(now.Add(CookieLifetime + time.Minute))

		assert.ErrorIs(t, later.Check(m, cookie.String()), ErrPasswordRequired)
	})

	t.Run("cookie signed with another secret is rejected", func(t *testing.T) {
		other := New("other-secret", false)
		other.now = func() time.Time { return now }

		cookie, err := other.IssueCookie("xyz999")
		require.NoError(t, err)

		g := newTestGate(now)

		assert.ErrorIs(t, g.Check(protectedMapping(), cookie.String()), ErrPasswordRequired)
	})

	t.Run("garbage cookie header is rejected", func(t *testing.T) {
		g := newTestGate(now)

		assert.ErrorIs(t, g.Check(protectedMapping(), "auth_xyz999=not-a-token"), ErrPasswordRequired)
	})
}

func TestVerifyPassword(t *testing.T) {
	now := time.Now()

	t.Run("correct password passes", func(t *testing.T) {
		g := newTestGate(now)

		assert.NoError(t, g.VerifyPassword(protectedMapping(), "1234"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		g := newTestGate(now)

		assert.ErrorIs(t, g.VerifyPassword(protectedMapping(), "9999"), ErrInvalidPassword)
	})

	t.Run("missing submission is required, not invalid", func(t *testing.T) {
		g := newTestGate(now)

		assert.ErrorIs(t, g.VerifyPassword(protectedMapping(), ""), ErrPasswordRequired)
	})

	t.Run("expired mapping fails before password check", func(t *testing.T) {
		g := newTestGate(now)
		m := protectedMapping()
		past := now.Add(-time.Hour)
		m.ExpiresAt = &past

		assert.ErrorIs(t, g.VerifyPassword(m, "1234"), ErrExpired)
	})

	t.Run("public mapping always passes", func(t *testing.T) {
		g := newTestGate(now)
		m := &mapping.Mapping{Hash: "pbQyTD"}

		assert.NoError(t, g.VerifyPassword(m, ""))
		assert.NoError(t, g.VerifyPassword(m, "anything"))
	})
}

func TestIssueCookie(t *testing.T) {
	now := time.Now()
	g := newTestGate(now)

	cookie, err := g.IssueCookie("xyz999")
	require.NoError(t, err)

	assert.Equal(t, "auth_xyz999", cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(CookieLifetime.Seconds()), cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	t.Run("secure flag follows production setting", func(t *testing.T) {
		prod := New(testSecret, true)

		cookie, err := prod.IssueCookie("xyz999")
		require.NoError(t, err)

		assert.True(t, cookie.Secure)
	})
}
