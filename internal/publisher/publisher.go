// Package publisher delivers post text to a social platform. Implementations
// retry with exponential backoff; there is no idempotency key, so a publish
// that times out after succeeding server-side can produce a duplicate remote
// post when retried. That is an accepted limitation of the platform APIs.
package publisher

import "context"

// Result is the platform response for a successful publish. ID may be empty
// when the platform response omits it.
type Result struct {
	ID string
}

// Identity describes the authenticated account. Diagnostic only.
type Identity struct {
	ID       string
	Username string
}

type Publisher interface {
	Publish(ctx context.Context, text string) (Result, error)
	WhoAmI(ctx context.Context) (Identity, error)
	Platform() string
}

// publishRetries is the retry budget beyond the first attempt: 3 attempts
// total, backoff doubling from a platform-specific base.
const publishRetries = 2
