package publisher

import (
	"context"
	"encoding/json"
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

func newTestTwitter(baseURL string) *TwitterClient {
	return &TwitterClient{
		accessToken: "bearer-token",
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 5 * time.Second},
		limiter:     rate.NewLimiter(rate.Inf, 1),
		backoffBase: time.Millisecond,
	}
}

func TestNewTwitter_MissingCredentials(t *testing.T) {
	_, err := NewTwitter("")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingCredentials)
}

func TestTwitterPublish_SingleCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer bearer-token", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "deal text", payload["text"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"tweet-7","text":"deal text"}}`))
	}))
	defer srv.Close()

	c := newTestTwitter(srv.URL)
	res, err := c.Publish(context.Background(), "deal text")
	require.NoError(t, err)
	assert.Equal(t, "tweet-7", res.ID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTwitterPublish_RetriesOnFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"title":"Too Many Requests"}`, http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{"id":"tweet-8"}}`))
	}))
	defer srv.Close()

	c := newTestTwitter(srv.URL)
	res, err := c.Publish(context.Background(), "retry text")
	require.NoError(t, err)
	assert.Equal(t, "tweet-8", res.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTwitterWhoAmI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/users/me", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"99","username":"dealbot_tech"}}`))
	}))
	defer srv.Close()

	c := newTestTwitter(srv.URL)
	id, err := c.WhoAmI(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "99", id.ID)
	assert.Equal(t, "dealbot_tech", id.Username)
}
