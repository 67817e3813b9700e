package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "sid", "secret", time.Hour, false), mr
}

func commitCookie(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, sess))
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTripThroughRedis(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, sess.Dirty())
	sess.Set("role", "teacher")

	cookie := commitCookie(t, sm, sess)
	assert.Equal(t, "sid", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, strings.HasPrefix(cookie.Value, sess.ID+"."))
	assert.True(t, mr.Exists("edudash:session:"+sess.ID))
	assert.False(t, sess.Dirty())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "teacher", loaded.Get("role"))
	assert.False(t, loaded.Dirty())
}

func TestSessionRejectsForgedCookie(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("role", "admin")
	cookie := commitCookie(t, sm, sess)

	for _, value := range []string{
		sess.ID,
		sess.ID + ".forged",
		"not-a-uuid." + strings.SplitN(cookie.Value, ".", 2)[1],
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: value})
		loaded, err := sm.Load(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, sess.ID, loaded.ID, value)
		assert.Empty(t, loaded.Get("role"))
	}
}

func TestSessionExpiredInRedisKeepsID(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookie := commitCookie(t, sm, sess)
	mr.FastForward(2 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.True(t, loaded.Dirty())
}

func TestSessionDestroyRemovesKeyAndCookie(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	commitCookie(t, sm, sess)
	require.True(t, mr.Exists("edudash:session:"+sess.ID))

	sm.Destroy(sess)
	cookie := commitCookie(t, sm, sess)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.False(t, mr.Exists("edudash:session:"+sess.ID))
}

func TestSessionValues(t *testing.T) {
	sess := &Session{}
	assert.Empty(t, sess.Get("missing"))

	sess.Set("k", "v")
	assert.True(t, sess.Dirty())
	sess.dirty = false

	sess.Set("k", "v")
	assert.False(t, sess.Dirty(), "unchanged value")

	sess.Delete("absent")
	assert.False(t, sess.Dirty())
	sess.Delete("k")
	assert.True(t, sess.Dirty())
	assert.Empty(t, sess.Get("k"))
}
