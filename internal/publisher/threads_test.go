package publisher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
)

func newTestThreads(baseURL string) *ThreadsClient {
	return &ThreadsClient{
		userID:      "42",
		accessToken: "token",
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 5 * time.Second},
		limiter:     rate.NewLimiter(rate.Inf, 1),
		settleDelay: time.Millisecond,
		backoffBase: time.Millisecond,
	}
}

func TestNewThreads_MissingCredentials(t *testing.T) {
	_, err := NewThreads("", "token")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "THREADS_USER_ID")

	_, err = NewThreads("42", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "THREADS_ACCESS_TOKEN")
}

func TestThreadsPublish_TwoStepProtocol(t *testing.T) {
	var gotCreationID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/42/threads":
			assert.Equal(t, "TEXT", r.URL.Query().Get("media_type"))
			assert.Equal(t, "hello deals", r.URL.Query().Get("text"))
			w.Write([]byte(`{"id":"container-1"}`))
		case "/42/threads_publish":
			gotCreationID = r.URL.Query().Get("creation_id")
			w.Write([]byte(`{"id":"post-9"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestThreads(srv.URL)
	res, err := c.Publish(context.Background(), "hello deals")
	require.NoError(t, err)
	assert.Equal(t, "post-9", res.ID)
	assert.Equal(t, "container-1", gotCreationID, "publish must reference the created container")
}

func TestThreadsPublish_RetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/42/threads" {
			if attempts.Add(1) <= 2 {
				http.Error(w, `{"error":"transient"}`, http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"id":"container-1"}`))
			return
		}
		w.Write([]byte(`{"id":"post-9"}`))
	}))
	defer srv.Close()

	c := newTestThreads(srv.URL)
	start := time.Now()
	res, err := c.Publish(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, "post-9", res.ID)
	assert.Equal(t, int32(3), attempts.Load(), "exactly 3 attempts expected")
	// Backoff delays: base then 2*base.
	assert.GreaterOrEqual(t, time.Since(start), 3*time.Millisecond)
}

func TestThreadsPublish_AllAttemptsFail(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"error":"nope"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestThreads(srv.URL)
	_, err := c.Publish(context.Background(), "doomed")
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Contains(t, err.Error(), "502")
}

func TestThreadsPublish_EmptyPostIDStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/42/threads" {
			w.Write([]byte(`{"id":"container-1"}`))
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestThreads(srv.URL)
	res, err := c.Publish(context.Background(), "no id back")
	require.NoError(t, err)
	assert.Empty(t, res.ID)
}

func TestThreadsPublish_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"slow"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestThreads(srv.URL)
	_, err := c.Publish(ctx, "cancelled")
	require.Error(t, err)
	if !errors.Is(err, context.Canceled) {
		t.Logf("non-context error accepted when first attempt ran: %v", err)
	}
}

func TestThreadsWhoAmI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		w.Write([]byte(`{"id":"42","username":"dealbot"}`))
	}))
	defer srv.Close()

	c := newTestThreads(srv.URL)
	id, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "42", id.ID)
	assert.Equal(t, "dealbot", id.Username)
}
