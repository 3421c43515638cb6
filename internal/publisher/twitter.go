package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
	"github.com/BunsoMendoza/dealbot-tech/internal/util"
)

const (
	defaultTwitterBaseURL = "https://api.twitter.com"
	twitterBackoffBase    = time.Second
)

// TwitterClient posts text-only tweets via the v2 API using an OAuth 2.0
// user-context bearer token. Single call per attempt, no container step.
type TwitterClient struct {
	accessToken string
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	backoffBase time.Duration
}

func NewTwitter(accessToken string) (*TwitterClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: TWITTER_ACCESS_TOKEN", models.ErrMissingCredentials)
	}
	return &TwitterClient{
		accessToken: accessToken,
		baseURL:     defaultTwitterBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(5*time.Second), 1),
		backoffBase: twitterBackoffBase,
	}, nil
}

func (c *TwitterClient) Platform() string { return "twitter" }

func (c *TwitterClient) Publish(ctx context.Context, text string) (Result, error) {
	var res Result
	err := util.RetryWithBackoff(ctx, publishRetries, c.backoffBase, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		id, err := c.createTweet(ctx, text)
		if err != nil {
			slog.Warn("Tweet creation failed", "attempt", attempt+1, "error", err)
			return err
		}
		res = Result{ID: id}
		return nil
	})
	return res, err
}

func (c *TwitterClient) WhoAmI(ctx context.Context) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2/users/me", nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	var body struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.do(req, &body); err != nil {
		return Identity{}, fmt.Errorf("twitter me: %w", err)
	}
	return Identity{ID: body.Data.ID, Username: body.Data.Username}, nil
}

func (c *TwitterClient) createTweet(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(req, &body); err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	return body.Data.ID, nil
}

func (c *TwitterClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("twitter status: %s, body: %s", resp.Status, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}
