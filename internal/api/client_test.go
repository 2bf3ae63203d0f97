package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
)

// fakeTokens is a scripted api.TokenSource.
type fakeTokens struct {
	access       string
	refreshed    string
	refreshErr   error
	refreshCalls int32
}

func (f *fakeTokens) AccessToken() string { return f.access }

func (f *fakeTokens) RefreshAccess(ctx context.Context, stale string) (string, error) {
	atomic.AddInt32(&f.refreshCalls, 1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.access = f.refreshed
	return f.refreshed, nil
}

func newClient(t *testing.T, handler http.HandlerFunc) (*api.Client, *fakeTokens) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &fakeTokens{access: "stale-token", refreshed: "fresh-token"}
	client := api.NewClient(srv.URL, zap.NewNop())
	client.SetTokenSource(tokens)
	return client, tokens
}

func TestUnauthorizedTriggersOneRefreshAndRetry(t *testing.T) {
	var calls int32
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"id":1,"username":"amine","role":"ADMIN"}]`)
	})

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "amine", users[0].Username)

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.refreshCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "original request plus one retry")
}

func TestUnauthorizedAfterRetryIsAuthError(t *testing.T) {
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokens.refreshCalls),
		"exactly one refresh attempt, never a loop")
}

func TestRefreshFailurePropagates(t *testing.T) {
	client, tokens := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	tokens.refreshErr = &api.AuthError{Message: "refresh token expired"}

	_, err := client.ListUsers(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
}

func TestErrorDetailSurfaced(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"detail":"campaign already processed"}`)
	})
	client.SetTokenSource(nil)

	err := client.DeleteCampaign(context.Background(), 3)
	require.Error(t, err)

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Detail, "already processed")
}

func TestIsNotFound(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"not found"}`)
	})
	client.SetTokenSource(nil)

	err := client.DeleteProject(context.Background(), 99)
	assert.True(t, api.IsNotFound(err))
}

func TestListNotificationsToleratesNonArrayBody(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count":0,"results":null}`)
	})

	notifications, err := client.ListNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifications)
	assert.NotNil(t, notifications)
}

func TestListNotificationsDecodesArray(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":1,"type":"anomaly_reported","title":"Anomaly","is_read":false,"related_object_id":4},
			{"id":2,"type":"comment_posted","title":"Comment","is_read":true,"related_object_id":9}
		]`)
	})

	notifications, err := client.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, int64(4), notifications[0].RelatedObjectID)
	assert.True(t, notifications[1].IsRead)
}

func TestCreateAnomalySendsMultipartForm(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "12", r.FormValue("test_case"))
		assert.Equal(t, "Broken quote screen", r.FormValue("titre"))
		assert.Equal(t, "CRITIQUE", r.FormValue("criticite"))

		file, header, err := r.FormFile("preuve_image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "proof.png", header.Filename)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":5,"titre":"Broken quote screen","criticite":"CRITIQUE"}`)
	})

	anomaly, err := client.CreateAnomaly(context.Background(), 12,
		"Broken quote screen", "quote totals are wrong", "CRITIQUE",
		&api.File{Field: "preuve_image", Name: "proof.png", Data: []byte{1, 2, 3}},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(5), anomaly.ID)
	assert.Equal(t, "CRITIQUE", anomaly.Criticality)
}

func TestDecodeToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"exp":     exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	claims, err := api.DecodeToken(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, err := api.DecodeToken("not-a-jwt")
	assert.Error(t, err)
}

func TestDecodeTokenRequiresUserID(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = api.DecodeToken(raw)
	assert.Error(t, err)
}
