package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
	"github.com/BunsoMendoza/dealbot-tech/internal/util"
)

const (
	defaultThreadsBaseURL = "https://graph.threads.net/v1.0"
	threadsBackoffBase    = 2 * time.Second

	// Meta recommends pausing after container creation before publishing;
	// the container is processed asynchronously server-side and an early
	// publish may be rejected. The pause is unconditional because there is
	// no readiness check to gate it on.
	containerSettleDelay = time.Second
)

// ThreadsClient posts via the Threads API two-step protocol:
// create a media container, then publish it.
type ThreadsClient struct {
	userID      string
	accessToken string
	baseURL     string
	client      *http.Client
	limiter     *rate.Limiter
	settleDelay time.Duration
	backoffBase time.Duration
}

func NewThreads(userID, accessToken string) (*ThreadsClient, error) {
	var missing []string
	if userID == "" {
		missing = append(missing, "THREADS_USER_ID")
	}
	if accessToken == "" {
		missing = append(missing, "THREADS_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingCredentials, strings.Join(missing, ", "))
	}

	return &ThreadsClient{
		userID:      userID,
		accessToken: accessToken,
		baseURL:     defaultThreadsBaseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		limiter:     rate.NewLimiter(rate.Every(5*time.Second), 1),
		settleDelay: containerSettleDelay,
		backoffBase: threadsBackoffBase,
	}, nil
}

func (c *ThreadsClient) Platform() string { return "threads" }

// Publish creates and publishes a text post, retrying the whole two-step
// sequence on failure.
func (c *ThreadsClient) Publish(ctx context.Context, text string) (Result, error) {
	var res Result
	err := util.RetryWithBackoff(ctx, publishRetries, c.backoffBase, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		creationID, err := c.createContainer(ctx, text)
		if err != nil {
			slog.Warn("Threads container creation failed", "attempt", attempt+1, "error", err)
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.settleDelay):
		}

		id, err := c.publishContainer(ctx, creationID)
		if err != nil {
			slog.Warn("Threads publish failed", "attempt", attempt+1, "error", err)
			return err
		}
		res = Result{ID: id}
		return nil
	})
	return res, err
}

func (c *ThreadsClient) WhoAmI(ctx context.Context) (Identity, error) {
	endpoint := fmt.Sprintf("%s/me?%s", c.baseURL, url.Values{"access_token": {c.accessToken}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, err
	}

	var body struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := c.do(req, &body); err != nil {
		return Identity{}, fmt.Errorf("threads me: %w", err)
	}
	return Identity{ID: body.ID, Username: body.Username}, nil
}

// createContainer performs step one and returns the creation id.
func (c *ThreadsClient) createContainer(ctx context.Context, text string) (string, error) {
	params := url.Values{
		"media_type":   {"TEXT"},
		"text":         {text},
		"access_token": {c.accessToken},
	}
	endpoint := fmt.Sprintf("%s/%s/threads?%s", c.baseURL, c.userID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &body); err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}
	if body.ID == "" {
		return "", fmt.Errorf("create container: no creation id in response")
	}
	return body.ID, nil
}

// publishContainer performs step two and returns the post id, which may be
// empty when the platform omits it.
func (c *ThreadsClient) publishContainer(ctx context.Context, creationID string) (string, error) {
	params := url.Values{
		"creation_id":  {creationID},
		"access_token": {c.accessToken},
	}
	endpoint := fmt.Sprintf("%s/%s/threads_publish?%s", c.baseURL, c.userID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &body); err != nil {
		return "", fmt.Errorf("publish container: %w", err)
	}
	return body.ID, nil
}

func (c *ThreadsClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("threads status: %s, body: %s", resp.Status, string(bodyBytes))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(bodyBytes, out)
}
