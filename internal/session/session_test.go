package session_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/credential"
	"github.com/insuretm/console/internal/session"
	"github.com/insuretm/console/tests/testutil"
)

// backend is a configurable fake of the InsureTM auth endpoints.
type backend struct {
	refreshCalls int32

	loginStatus   int
	userStatus    int
	refreshStatus int
	accessToken   string
	refreshedTo   string
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		if b.loginStatus != 0 {
			w.WriteHeader(b.loginStatus)
			fmt.Fprint(w, `{"detail":"invalid credentials"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access":  b.accessToken,
			"refresh": "refresh-1",
		})
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.refreshCalls, 1)
		if b.refreshStatus != 0 {
			w.WriteHeader(b.refreshStatus)
			fmt.Fprint(w, `{"detail":"token blacklisted"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access": b.refreshedTo})
	})
	mux.HandleFunc("/users/7/", func(w http.ResponseWriter, r *http.Request) {
		if b.userStatus != 0 {
			w.WriteHeader(b.userStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       7,
			"username": "nadia",
			"email":    "nadia@example.com",
			"role":     "TESTER",
		})
	})
	return mux
}

func newSession(t *testing.T, b *backend) (*session.Store, *testutil.MemoryTokenStore) {
	t.Helper()

	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, zap.NewNop())
	tokens := testutil.NewMemoryTokenStore()
	sess := session.New(client, tokens, zap.NewNop())
	client.SetTokenSource(sess)
	return sess, tokens
}

func TestLoginEstablishesSession(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{accessToken: access})

	user, err := sess.Login(context.Background(), "nadia", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, access, sess.AccessToken())

	stored, _ := tokens.Get(credential.KeyAccessToken)
	assert.Equal(t, access, stored)
	refresh, _ := tokens.Get(credential.KeyRefreshToken)
	assert.Equal(t, "refresh-1", refresh)

	st := sess.State()
	assert.False(t, st.Resolving)
	require.NotNil(t, st.User)
	assert.Equal(t, int64(7), st.User.ID)
}

func TestLoginRejectedLeavesNoTrace(t *testing.T) {
	sess, tokens := newSession(t, &backend{loginStatus: http.StatusUnauthorized})

	_, err := sess.Login(context.Background(), "nadia", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))

	assert.Nil(t, sess.CurrentUser())
	assert.Zero(t, tokens.Len())
}

func TestLoginRollsBackWhenIdentityFetchFails(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{
		accessToken: access,
		userStatus:  http.StatusInternalServerError,
	})

	_, err := sess.Login(context.Background(), "nadia", "secret")
	require.Error(t, err)

	// Tokens were written before the identity fetch; the failure must
	// roll them back so the session is never half-established.
	assert.Nil(t, sess.CurrentUser())
	assert.Empty(t, sess.AccessToken())
	assert.Zero(t, tokens.Len())
}

func TestLogoutIsIdempotent(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{accessToken: access})

	_, err := sess.Login(context.Background(), "nadia", "secret")
	require.NoError(t, err)

	sess.Logout()
	sess.Logout()

	assert.Nil(t, sess.CurrentUser())
	assert.Empty(t, sess.AccessToken())
	assert.Zero(t, tokens.Len())
}

func TestRestoreWithoutStoredTokens(t *testing.T) {
	sess, _ := newSession(t, &backend{})

	assert.True(t, sess.State().Resolving)
	sess.Restore(context.Background())

	st := sess.State()
	assert.False(t, st.Resolving)
	assert.Nil(t, st.User)
}

func TestRestoreResolvesStoredToken(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{accessToken: access})
	require.NoError(t, tokens.Set(credential.KeyAccessToken, access))
	require.NoError(t, tokens.Set(credential.KeyRefreshToken, "refresh-1"))

	sess.Restore(context.Background())

	user := sess.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, access, sess.AccessToken())
}

func TestRestoreClearsCorruptToken(t *testing.T) {
	sess, tokens := newSession(t, &backend{})
	require.NoError(t, tokens.Set(credential.KeyAccessToken, "not-a-jwt"))
	require.NoError(t, tokens.Set(credential.KeyRefreshToken, "refresh-1"))

	sess.Restore(context.Background())

	assert.Nil(t, sess.CurrentUser())
	assert.Zero(t, tokens.Len())
}

func TestRestoreClearsRejectedToken(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{
		accessToken: access,
		userStatus:  http.StatusForbidden,
	})
	require.NoError(t, tokens.Set(credential.KeyAccessToken, access))

	sess.Restore(context.Background())

	assert.Nil(t, sess.CurrentUser())
	assert.Zero(t, tokens.Len())
}

func TestRefreshAccessCoalescesConcurrentCallers(t *testing.T) {
	stale := testutil.AccessToken(t, 7, time.Now().Add(-time.Minute))
	fresh := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	b := &backend{accessToken: stale, refreshedTo: fresh}
	sess, tokens := newSession(t, b)
	require.NoError(t, tokens.Set(credential.KeyAccessToken, stale))
	require.NoError(t, tokens.Set(credential.KeyRefreshToken, "refresh-1"))

	sess.Restore(context.Background())
	require.NotNil(t, sess.CurrentUser())

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = sess.RefreshAccess(context.Background(), stale)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, fresh, results[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.refreshCalls),
		"concurrent 401s must share one refresh round trip")

	stored, _ := tokens.Get(credential.KeyAccessToken)
	assert.Equal(t, fresh, stored)
}

func TestRefreshAccessFastPathAfterRefresh(t *testing.T) {
	stale := testutil.AccessToken(t, 7, time.Now().Add(-time.Minute))
	fresh := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	b := &backend{accessToken: stale, refreshedTo: fresh}
	sess, tokens := newSession(t, b)
	require.NoError(t, tokens.Set(credential.KeyAccessToken, stale))
	require.NoError(t, tokens.Set(credential.KeyRefreshToken, "refresh-1"))
	sess.Restore(context.Background())

	got, err := sess.RefreshAccess(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	// A caller still holding the stale token gets the fresh one
	// without another round trip.
	got, err = sess.RefreshAccess(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&b.refreshCalls))
}

func TestRefreshAccessWithoutRefreshTokenLogsOut(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{accessToken: access})
	require.NoError(t, tokens.Set(credential.KeyAccessToken, access))

	sess.Restore(context.Background())
	require.NotNil(t, sess.CurrentUser())

	_, err := sess.RefreshAccess(context.Background(), access)
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.Nil(t, sess.CurrentUser())
}

func TestRefreshAccessRejectedTearsSessionDown(t *testing.T) {
	access := testutil.AccessToken(t, 7, time.Now().Add(time.Hour))
	sess, tokens := newSession(t, &backend{
		accessToken:   access,
		refreshStatus: http.StatusUnauthorized,
	})
	require.NoError(t, tokens.Set(credential.KeyAccessToken, access))
	require.NoError(t, tokens.Set(credential.KeyRefreshToken, "refresh-1"))

	sess.Restore(context.Background())
	require.NotNil(t, sess.CurrentUser())

	_, err := sess.RefreshAccess(context.Background(), access)
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.Nil(t, sess.CurrentUser())
	assert.Zero(t, tokens.Len())
}
